package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTML_GFM(t *testing.T) {
	out, err := HTML(Sample)
	require.NoError(t, err)

	assert.Contains(t, out, "<h1>Welcome to Markdown Previewer</h1>")
	assert.Contains(t, out, "<strong>Bold text</strong>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, `type="checkbox"`)
	assert.Contains(t, out, "<blockquote>")
	assert.Contains(t, out, `<a href="https://example.com">Links</a>`)
}

func TestHTML_StripsRawHTML(t *testing.T) {
	out, err := HTML("hello <script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
}

func TestHTML_Empty(t *testing.T) {
	out, err := HTML("")
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out))
}

func TestTerminal(t *testing.T) {
	for _, theme := range []string{"light", "dark", "unknown"} {
		out, err := Terminal("# Title\n\nsome *text*", theme, 40)
		require.NoError(t, err, theme)
		assert.Contains(t, out, "Title")
	}
}
