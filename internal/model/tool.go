package model

// Tool карточка инструмента в каталоге.
type Tool struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Keywords    []string `json:"keywords"`
	Path        string   `json:"path"`
}

// ToolGroup инструменты одной категории в результатах поиска.
type ToolGroup struct {
	Category string `json:"category"`
	Tools    []Tool `json:"tools"`
}

// SearchResponse ответ палитры поиска.
type SearchResponse struct {
	Query  string      `json:"query"`
	Groups []ToolGroup `json:"groups"`
}

// ThemeRequest тело запроса на смену темы.
type ThemeRequest struct {
	Theme string `json:"theme"`
}

// ThemeResponse текущая тема клиента.
type ThemeResponse struct {
	Theme string `json:"theme"`
}

// MarkdownRequest исходный текст для превью.
type MarkdownRequest struct {
	Markdown string `json:"markdown"`
}

// MarkdownResponse результат рендеринга markdown.
type MarkdownResponse struct {
	HTML string `json:"html"`
}
