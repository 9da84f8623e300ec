// Package markdown рендерит GitHub Flavored Markdown в HTML и в терминал.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// ExportName имя файла при скачивании исходника.
const ExportName = "markdown.md"

// Sample документ, который загружается кнопкой Load Sample.
const Sample = "# Welcome to Markdown Previewer\n\n" +
	"## Features\n\n" +
	"- **Bold text** and *italic text*\n" +
	"- `Inline code` and code blocks\n" +
	"- [Links](https://example.com)\n" +
	"- Lists and checkboxes\n\n" +
	"## Code Example\n\n" +
	"```javascript\n" +
	"function greet(name) {\n" +
	"  console.log(`Hello, ${name}!`);\n" +
	"}\n" +
	"```\n\n" +
	"## Task List\n\n" +
	"- [x] Completed task\n" +
	"- [ ] Pending task\n\n" +
	"> Blockquotes are supported\n" +
	"> \n" +
	"> Even nested ones!\n\n" +
	"| Column 1 | Column 2 | Column 3 |\n" +
	"|----------|----------|----------|\n" +
	"| Cell 1   | Cell 2   | Cell 3   |\n" +
	"| Cell 4   | Cell 5   | Cell 6   |\n\n" +
	"---\n\n" +
	"### Try it out!\n\n" +
	"Edit the markdown on the left and see the live preview on the right."

// gfm без html.WithUnsafe: сырой HTML из документа не попадает в вывод.
var gfm = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithXHTML()),
)

// HTML рендерит markdown в HTML.
func HTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := gfm.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// Terminal рендерит markdown для терминала в стиле темы ("light" или "dark").
func Terminal(src, theme string, width int) (string, error) {
	if theme != "light" {
		theme = "dark"
	}
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(theme),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("init renderer: %w", err)
	}
	return r.Render(src)
}
