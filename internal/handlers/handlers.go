package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/fblazt/toolbox/internal/model"
	"github.com/fblazt/toolbox/internal/service"
	"github.com/fblazt/toolbox/internal/session"
	"github.com/fblazt/toolbox/internal/theme"
	"github.com/fblazt/toolbox/internal/tools/apitester"
	"github.com/fblazt/toolbox/internal/tools/imageconv"
	"github.com/fblazt/toolbox/internal/tools/markdown"
	"github.com/fblazt/toolbox/internal/tools/qrcode"
	"go.uber.org/zap"
)

// maxJSONBody ограничение на тело JSON-запросов.
const maxJSONBody = 1 << 20

var errBadJSON = errors.New("invalid JSON body")

type Handler struct {
	Service   *service.ToolboxService
	Session   *session.Session
	Logger    *zap.Logger
	MaxUpload int64
	Quality   int
}

func NewHandler(svc *service.ToolboxService, sess *session.Session, logger *zap.Logger, maxUpload int64, quality int) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if quality == 0 {
		quality = imageconv.DefaultQuality
	}
	return &Handler{
		Service:   svc,
		Session:   sess,
		Logger:    logger,
		MaxUpload: maxUpload,
		Quality:   quality,
	}
}

// workspace находит состояние клиента. Если запрос пришёл мимо
// session.Middleware, кука выдаётся здесь же.
func (h *Handler) workspace(w http.ResponseWriter, r *http.Request) *service.Workspace {
	clientID, ok := session.FromContext(r.Context())
	if !ok {
		clientID = h.Session.GetOrSetClientID(w, r)
	}
	return h.Service.Workspace(r.Context(), clientID)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(v); err != nil {
		return errBadJSON
	}
	return nil
}

// statusFor сопоставляет ошибку инструмента HTTP-коду.
func statusFor(err error) int {
	var reqErr *apitester.RequestError
	switch {
	case errors.Is(err, errBadJSON),
		errors.Is(err, apitester.ErrEmptyURL),
		errors.Is(err, apitester.ErrInvalidJSONBody),
		errors.Is(err, apitester.ErrUnsupportedMethod),
		errors.Is(err, imageconv.ErrInvalidQuality),
		errors.Is(err, theme.ErrUnknownTheme),
		errors.Is(err, qrcode.ErrEmptyText),
		errors.Is(err, qrcode.ErrInvalidSize),
		errors.Is(err, qrcode.ErrInvalidColor),
		errors.Is(err, qrcode.ErrTextTooLong):
		return http.StatusBadRequest
	case errors.Is(err, imageconv.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &reqErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.Logger.Error("Internal error", zap.Error(err))
		msg = http.StatusText(status)
	}
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

// SearchTools отдаёт результаты палитры поиска.
func (h *Handler) SearchTools(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	writeJSON(w, http.StatusOK, model.SearchResponse{Query: q, Groups: h.Service.SearchTools(q)})
}

// DecodeJWT декодирует токен. Ошибки формата возвращаются в теле с кодом 200,
// как и в интерфейсе инструмента.
func (h *Handler) DecodeJWT(w http.ResponseWriter, r *http.Request) {
	var req model.DecodeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Service.DecodeJWT(req.Token))
}

// GetTheme возвращает текущую тему клиента.
func (h *Handler) GetTheme(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	writeJSON(w, http.StatusOK, model.ThemeResponse{Theme: string(ws.Theme.Current())})
}

// SetTheme меняет тему и сохраняет её.
func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req model.ThemeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	t, err := theme.Parse(req.Theme)
	if err != nil {
		h.writeError(w, err)
		return
	}
	ws := h.workspace(w, r)
	if err := ws.Theme.Set(r.Context(), t); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.ThemeResponse{Theme: string(t)})
}

// ToggleTheme переключает тему на противоположную.
func (h *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	t, err := ws.Theme.Toggle(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.ThemeResponse{Theme: string(t)})
}

func qrOptions(r *http.Request) (qrcode.Options, error) {
	q := r.URL.Query()
	opts := qrcode.Options{
		Text:       q.Get("text"),
		Foreground: q.Get("fg"),
		Background: q.Get("bg"),
	}
	if s := q.Get("size"); s != "" {
		size, err := strconv.Atoi(s)
		if err != nil {
			return opts, qrcode.ErrInvalidSize
		}
		opts.Size = size
	}
	return opts, nil
}

// QRCodePNG отдаёт QR-код в PNG.
func (h *Handler) QRCodePNG(w http.ResponseWriter, r *http.Request) {
	h.serveQR(w, r, "image/png", qrcode.PNGName, qrcode.PNG)
}

// QRCodeSVG отдаёт QR-код в SVG.
func (h *Handler) QRCodeSVG(w http.ResponseWriter, r *http.Request) {
	h.serveQR(w, r, "image/svg+xml", qrcode.SVGName, qrcode.SVG)
}

func (h *Handler) serveQR(w http.ResponseWriter, r *http.Request, contentType, name string, render func(qrcode.Options) ([]byte, error)) {
	opts, err := qrOptions(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	data, err := render(opts)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	if r.URL.Query().Get("download") != "" {
		w.Header().Set("Content-Disposition", attachment(name))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// RenderMarkdown рендерит markdown в HTML.
func (h *Handler) RenderMarkdown(w http.ResponseWriter, r *http.Request) {
	var req model.MarkdownRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	html, err := h.Service.RenderMarkdown(req.Markdown)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.MarkdownResponse{HTML: html})
}

// ExportMarkdown возвращает исходный текст как файл markdown.md.
func (h *Handler) ExportMarkdown(w http.ResponseWriter, r *http.Request) {
	var req model.MarkdownRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(markdown.ExportName))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, req.Markdown)
}

// Ping проверяет доступность хранилища
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Ping(r.Context()); err != nil {
		h.Logger.Error("Storage ping failed", zap.Error(err))
		http.Error(w, "storage unavailable", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// attachment строит Content-Disposition, экранируя имя файла.
func attachment(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}
