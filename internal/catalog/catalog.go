// Package catalog описывает закрытый набор инструментов и поиск по нему.
package catalog

import (
	"strings"

	"github.com/fblazt/toolbox/internal/model"
)

// ID идентификатор инструмента. Набор фиксирован на этапе сборки.
type ID int

const (
	QRGenerator ID = iota
	JWTDecoder
	ImageToWebP
	MarkdownPreviewer
	JSONAPITester
)

var registry = [...]model.Tool{
	QRGenerator: {
		ID:          "qr-generator",
		Title:       "QR Code Generator",
		Description: "Generate QR codes from text or URLs",
		Category:    "Encoding",
		Keywords:    []string{"qr", "code", "generator", "barcode", "scan"},
	},
	JWTDecoder: {
		ID:          "jwt-decoder",
		Title:       "JWT Decoder",
		Description: "Decode and verify JSON Web Tokens",
		Category:    "Security",
		Keywords:    []string{"jwt", "token", "decoder", "json", "web", "token"},
	},
	ImageToWebP: {
		ID:          "image-to-webp",
		Title:       "Image to WebP Converter",
		Description: "Convert images to WebP format",
		Category:    "Design",
		Keywords:    []string{"image", "webp", "converter", "format", "picture", "photo"},
	},
	MarkdownPreviewer: {
		ID:          "markdown-previewer",
		Title:       "Markdown Previewer",
		Description: "Preview Markdown text with live formatting",
		Category:    "Text Tools",
		Keywords:    []string{"markdown", "preview", "md", "text", "formatting"},
	},
	JSONAPITester: {
		ID:          "json-api-tester",
		Title:       "JSON API Tester",
		Description: "Test REST APIs with JSON payloads",
		Category:    "Development Tools",
		Keywords:    []string{"api", "test", "rest", "json", "http", "request"},
	},
}

// IDs все инструменты в порядке каталога.
func IDs() []ID {
	return []ID{QRGenerator, JWTDecoder, ImageToWebP, MarkdownPreviewer, JSONAPITester}
}

// Tool возвращает карточку инструмента.
func (id ID) Tool() model.Tool {
	t := registry[id]
	t.Path = "/tools/" + t.ID
	t.Keywords = append([]string(nil), t.Keywords...)
	return t
}

func (id ID) String() string { return registry[id].ID }

// Lookup находит инструмент по строковому идентификатору из URL.
func Lookup(s string) (ID, bool) {
	for _, id := range IDs() {
		if registry[id].ID == s {
			return id, true
		}
	}
	return 0, false
}

// All возвращает карточки всех инструментов.
func All() []model.Tool {
	out := make([]model.Tool, 0, len(registry))
	for _, id := range IDs() {
		out = append(out, id.Tool())
	}
	return out
}

// Match проверяет, подходит ли инструмент под строку поиска.
// Пустой запрос подходит всем.
func Match(t model.Tool, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q) ||
		strings.Contains(strings.ToLower(t.Category), q) {
		return true
	}
	for _, k := range t.Keywords {
		if strings.Contains(k, q) {
			return true
		}
	}
	return false
}

// Search фильтрует каталог и группирует результат по категориям
// в порядке первого появления.
func Search(query string) []model.ToolGroup {
	groups := []model.ToolGroup{}
	index := map[string]int{}
	for _, t := range All() {
		if !Match(t, query) {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(groups)
			index[t.Category] = i
			groups = append(groups, model.ToolGroup{Category: t.Category})
		}
		groups[i].Tools = append(groups[i].Tools, t)
	}
	return groups
}

// DisplayName строит имя из идентификатора: "jwt-decoder" -> "Jwt Decoder".
func DisplayName(toolID string) string {
	words := strings.Split(toolID, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// MetaTitle заголовок страницы инструмента: "jwt-decoder" -> "Jwt Decoder - Tools".
func MetaTitle(toolID string) string {
	return DisplayName(toolID) + " - Tools"
}
