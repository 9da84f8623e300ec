package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 Bytes"},
		{500, "500 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1048576, "1 MB"},
		{1234567, "1.18 MB"},
		{3 * 1024 * 1024 * 1024, "3 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFileSize(tt.size), "size %d", tt.size)
	}
}

func TestSavingsPercent(t *testing.T) {
	assert.Equal(t, 75.0, SavingsPercent(1000, 250))
	assert.Equal(t, -50.0, SavingsPercent(100, 150))
	assert.Zero(t, SavingsPercent(0, 10))
}

func TestPrettyJSON(t *testing.T) {
	assert.Equal(t, "{\n  \"a\": 1\n}", PrettyJSON(map[string]int{"a": 1}))
	assert.Equal(t, "plain text", PrettyJSON("plain text"))
	assert.Equal(t, "[\n  \"<b>\"\n]", PrettyJSON([]string{"<b>"}))
}
