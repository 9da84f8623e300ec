package handlers_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fblazt/toolbox/internal/handlers"
	"github.com/fblazt/toolbox/internal/service"
	"github.com/fblazt/toolbox/internal/session"
	"github.com/fblazt/toolbox/internal/storage"
	"github.com/fblazt/toolbox/internal/tools/imageconv"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func setupBenchHandler(b *testing.B) *handlers.Handler {
	b.Helper()
	logger := zap.NewNop()
	store := storage.NewFileStore(filepath.Join(b.TempDir(), "bench_data.json"), logger)
	pipeline := imageconv.NewPipeline(imageconv.NewConverter(), 0, logger)
	svc := service.NewToolboxService(store, &http.Client{}, pipeline, imageconv.PolicyAllOrNothing, "/api/images", logger)
	return handlers.NewHandler(svc, session.New("bench-secret"), logger, 10<<20, 0)
}

func withClient(r *http.Request) *http.Request {
	return r.WithContext(session.WithClientID(r.Context(), "bench-client"))
}

func BenchmarkDecodeJWT(b *testing.B) {
	handler := setupBenchHandler(b)
	body := `{"token":"eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjMiLCJleHAiOjQxMDI0NDQ4MDB9.c2ln"}`

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/jwt/decode", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.DecodeJWT(rec, withClient(req))
	}
}

func BenchmarkSearchTools(b *testing.B) {
	handler := setupBenchHandler(b)
	req := withClient(httptest.NewRequest(http.MethodGet, "/api/tools?q=json", nil))

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		handler.SearchTools(rec, req.Clone(req.Context()))
	}
}

func BenchmarkRenderMarkdown(b *testing.B) {
	handler := setupBenchHandler(b)
	body := `{"markdown":"# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n- [x] done\n- [ ] todo"}`

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/markdown/render", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.RenderMarkdown(rec, withClient(req))
	}
}

func BenchmarkSetTheme(b *testing.B) {
	handler := setupBenchHandler(b)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		body := `{"theme":"light"}`
		if i%2 == 0 {
			body = `{"theme":"dark"}`
		}
		req := httptest.NewRequest(http.MethodPut, "/api/theme", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		handler.SetTheme(rec, withClient(req))
	}
}

func BenchmarkToolPage(b *testing.B) {
	handler := setupBenchHandler(b)

	req := httptest.NewRequest(http.MethodGet, "/tools/qr-generator", nil)
	// Добавляем chi-параметр вручную
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add("toolId", "qr-generator")
	req = withClient(req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx)))

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		handler.ToolPage(rec, req.Clone(req.Context()))
	}
}
