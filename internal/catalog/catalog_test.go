package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	for _, id := range IDs() {
		got, ok := Lookup(id.String())
		require.True(t, ok, id.String())
		assert.Equal(t, id, got)
		assert.Equal(t, "/tools/"+id.String(), id.Tool().Path)
	}

	_, ok := Lookup("json-formatter")
	assert.False(t, ok)
	_, ok = Lookup("")
	assert.False(t, ok)
}

func TestAll_FixedRegistry(t *testing.T) {
	ids := make([]string, 0)
	for _, tool := range All() {
		ids = append(ids, tool.ID)
	}
	assert.Equal(t, []string{"qr-generator", "jwt-decoder", "image-to-webp", "markdown-previewer", "json-api-tester"}, ids)
}

func TestSearch(t *testing.T) {
	assert.Len(t, Search(""), 5)

	groups := Search("JWT")
	require.Len(t, groups, 1)
	assert.Equal(t, "Security", groups[0].Category)
	assert.Equal(t, "jwt-decoder", groups[0].Tools[0].ID)

	// по ключевому слову
	groups = Search("barcode")
	require.Len(t, groups, 1)
	assert.Equal(t, "qr-generator", groups[0].Tools[0].ID)

	// по категории
	groups = Search("design")
	require.Len(t, groups, 1)
	assert.Equal(t, "image-to-webp", groups[0].Tools[0].ID)

	// "json" есть и в описании тестировщика, и в ключевых словах декодера
	groups = Search("json")
	require.Len(t, groups, 2)
	assert.Equal(t, "Security", groups[0].Category)
	assert.Equal(t, "Development Tools", groups[1].Category)

	assert.Empty(t, Search("nothing-matches"))
}

func TestToolReturnsCopy(t *testing.T) {
	tool := JWTDecoder.Tool()
	tool.Keywords[0] = "changed"
	assert.Equal(t, "jwt", JWTDecoder.Tool().Keywords[0])
}

func TestMetaTitle(t *testing.T) {
	assert.Equal(t, "Jwt Decoder - Tools", MetaTitle("jwt-decoder"))
	assert.Equal(t, "Image To Webp - Tools", MetaTitle("image-to-webp"))
	assert.Equal(t, "Json Api Tester", DisplayName("json-api-tester"))
}
