package handlers

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/fblazt/toolbox/internal/catalog"
	"github.com/fblazt/toolbox/internal/model"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const layout = `<!DOCTYPE html>
<html lang="en" class="{{.Theme}}">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta name="description" content="{{.Description}}">
</head>
<body>
<nav>
<a href="/">Home</a>
{{range .Sidebar}}<a href="{{.Path}}">{{.Title}}</a>
{{end}}</nav>
<main>
{{template "content" .}}
</main>
</body>
</html>
`

const homeContent = `{{define "content"}}<h1>fblazt-tools</h1>
<p>A collection of client-side processing tools for various tasks</p>
{{range .Tools}}<article>
<h2><a href="{{.Path}}">{{.Title}}</a></h2>
<p>{{.Description}}</p>
<small>{{.Category}}</small>
</article>
{{end}}{{end}}`

const indexContent = `{{define "content"}}<h1>Tools</h1>
<p>Select a tool from the sidebar to get started</p>
{{range .Groups}}<section>
<h2>{{.Category}}</h2>
<ul>{{range .Tools}}<li><a href="{{.Path}}">{{.Title}}</a></li>{{end}}</ul>
</section>
{{end}}{{end}}`

const toolContent = `{{define "content"}}{{with .Tool}}<h1>{{.Title}}</h1>
<p>{{.Description}}</p>{{end}}
<h2>Endpoints</h2>
<ul>{{range .Endpoints}}<li><code>{{.}}</code></li>{{end}}</ul>
{{end}}`

const toolNotFoundContent = `{{define "content"}}<h1>Tool Not Found</h1>
<p>The tool you're looking for doesn't exist.</p>
<a href="/">Go back home</a>
{{end}}`

const notFoundContent = `{{define "content"}}<h1>Page Not Found</h1>
<p>404</p>
<p>The page you're looking for doesn't exist. It might have been moved, deleted, or you entered the wrong URL.</p>
<a href="/">Go Home</a>
{{end}}`

var pages = map[string]*template.Template{
	"home":         page(homeContent),
	"index":        page(indexContent),
	"tool":         page(toolContent),
	"toolNotFound": page(toolNotFoundContent),
	"notFound":     page(notFoundContent),
}

func page(content string) *template.Template {
	return template.Must(template.Must(template.New("layout").Parse(layout)).Parse(content))
}

type pageData struct {
	Title       string
	Description string
	Theme       string
	Sidebar     []model.Tool
	Tools       []model.Tool
	Groups      []model.ToolGroup
	Tool        *model.Tool
	Endpoints   []string
}

// endpoints перечисляет API инструмента для его страницы.
func endpoints(id catalog.ID) []string {
	switch id {
	case catalog.QRGenerator:
		return []string{"GET /api/qr.png?text=&size=&fg=&bg=", "GET /api/qr.svg?text=&size=&fg=&bg="}
	case catalog.JWTDecoder:
		return []string{"POST /api/jwt/decode"}
	case catalog.ImageToWebP:
		return []string{"POST /api/images?quality=", "GET /api/images", "GET /api/images/archive",
			"GET /api/images/{id}", "DELETE /api/images/{id}", "DELETE /api/images"}
	case catalog.MarkdownPreviewer:
		return []string{"POST /api/markdown/render", "POST /api/markdown/export"}
	case catalog.JSONAPITester:
		return []string{"POST /api/requests", "GET /api/requests/history", "DELETE /api/requests/history",
			"GET /api/requests/samples"}
	default:
		panic("unknown tool id: " + id.String())
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	data.Theme = string(h.workspace(w, r).Theme.Current())
	data.Sidebar = catalog.All()

	var buf bytes.Buffer
	if err := pages[name].Execute(&buf, data); err != nil {
		h.Logger.Error("Template error", zap.String("page", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// Home главная страница с карточками всех инструментов.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "home", pageData{
		Title:       "fblazt-tools - Client-Side Tools Collection",
		Description: "A collection of client-side processing tools for various tasks",
		Tools:       catalog.All(),
	})
}

// ToolsIndex список инструментов по категориям.
func (h *Handler) ToolsIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "index", pageData{
		Title:       "Tools - Client-Side Tools Collection",
		Description: "Select a tool from the sidebar to get started",
		Groups:      h.Service.SearchTools(""),
	})
}

// ToolPage страница инструмента. Для неизвестного id отдаётся
// "Tool Not Found" с кодом 404, заголовок строится из id в обоих случаях.
func (h *Handler) ToolPage(w http.ResponseWriter, r *http.Request) {
	toolID := chi.URLParam(r, "toolId")
	title := catalog.MetaTitle(toolID)
	description := "Use our " + catalog.DisplayName(toolID) + " tool for client-side processing"

	id, ok := catalog.Lookup(toolID)
	if !ok {
		h.render(w, r, http.StatusNotFound, "toolNotFound", pageData{Title: title, Description: description})
		return
	}
	tool := id.Tool()
	h.render(w, r, http.StatusOK, "tool", pageData{
		Title:       title,
		Description: description,
		Tool:        &tool,
		Endpoints:   endpoints(id),
	})
}

// NotFound страница 404 для любых других путей.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "notFound", pageData{
		Title:       "Page Not Found - Tools",
		Description: "The page you're looking for doesn't exist",
	})
}
