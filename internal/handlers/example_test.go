package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/fblazt/toolbox/internal/model"
	"github.com/fblazt/toolbox/internal/service"
	"github.com/fblazt/toolbox/internal/session"
	"github.com/fblazt/toolbox/internal/storage"
	"github.com/fblazt/toolbox/internal/tools/imageconv"
	"go.uber.org/zap"
)

// ExampleHandler_DecodeJWT демонстрирует работу метода DecodeJWT.
func ExampleHandler_DecodeJWT() {
	logger := zap.NewNop()
	pipeline := imageconv.NewPipeline(imageconv.NewConverter(), 0, logger)
	svc := service.NewToolboxService(storage.NewMemoryStore(), &http.Client{}, pipeline, imageconv.PolicyAllOrNothing, "/api/images", logger)
	h := NewHandler(svc, session.New("example-secret"), logger, 10<<20, 0)

	body := `{"token":"eyJhbGciOiJub25lIn0.eyJzdWIiOiJ0b29sYm94In0."}`
	req := httptest.NewRequest(http.MethodPost, "/api/jwt/decode", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.DecodeJWT(rec, req)
	resp := rec.Result()
	defer resp.Body.Close()

	var result model.DecodedToken
	_ = json.NewDecoder(resp.Body).Decode(&result)

	fmt.Println(resp.StatusCode)
	fmt.Println(result.Valid, result.Header["alg"], result.Payload["sub"])

	// Output:
	// 200
	// true none toolbox
}

// ExampleHandler_SearchTools демонстрирует поиск по каталогу.
func ExampleHandler_SearchTools() {
	pipeline := imageconv.NewPipeline(imageconv.NewConverter(), 0, nil)
	svc := service.NewToolboxService(storage.NewMemoryStore(), &http.Client{}, pipeline, imageconv.PolicyAllOrNothing, "/api/images", nil)
	h := NewHandler(svc, session.New("example-secret"), nil, 10<<20, 0)

	rec := httptest.NewRecorder()
	h.SearchTools(rec, httptest.NewRequest(http.MethodGet, "/api/tools?q=webp", nil))

	var result model.SearchResponse
	_ = json.NewDecoder(rec.Body).Decode(&result)
	for _, g := range result.Groups {
		for _, t := range g.Tools {
			fmt.Println(g.Category, "/", t.Title)
		}
	}

	// Output:
	// Design / Image to WebP Converter
}
