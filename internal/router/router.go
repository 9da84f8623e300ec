package router

import (
	"github.com/fblazt/toolbox/internal/handlers"
	"github.com/fblazt/toolbox/internal/middleware"
	"github.com/fblazt/toolbox/internal/session"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NewRouter создаёт и настраивает маршрутизатор
func NewRouter(handler *handlers.Handler, sess *session.Session, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(sess.Middleware)                      // Идентификатор клиента
	r.Use(middleware.LoggingMiddleware(logger)) // Подключаем логирование
	r.Use(middleware.GzipMiddleware)            // Gzip-сжатие

	r.Get("/", handler.Home)
	r.Get("/tools", handler.ToolsIndex)
	r.Get("/tools/{toolId}", handler.ToolPage)
	r.Get("/ping", handler.Ping)

	r.Route("/api", func(r chi.Router) {
		r.Get("/tools", handler.SearchTools)
		r.Post("/jwt/decode", handler.DecodeJWT)

		r.Route("/images", func(r chi.Router) {
			r.Post("/", handler.UploadImages)
			r.Get("/", handler.ListImages)
			r.Delete("/", handler.ClearImages)
			r.Get("/archive", handler.ArchiveImages)
			r.Get("/{id}", handler.DownloadImage)
			r.Delete("/{id}", handler.DeleteImage)
		})

		r.Post("/requests", handler.SendRequest)
		r.Get("/requests/history", handler.RequestHistory)
		r.Delete("/requests/history", handler.ClearRequestHistory)
		r.Get("/requests/samples", handler.RequestSamples)

		r.Get("/theme", handler.GetTheme)
		r.Put("/theme", handler.SetTheme)
		r.Post("/theme/toggle", handler.ToggleTheme)

		r.Get("/qr.png", handler.QRCodePNG)
		r.Get("/qr.svg", handler.QRCodeSVG)

		r.Post("/markdown/render", handler.RenderMarkdown)
		r.Post("/markdown/export", handler.ExportMarkdown)
	})

	r.NotFound(handler.NotFound)
	return r
}
