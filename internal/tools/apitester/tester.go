// Package apitester выполняет произвольные HTTP-запросы пользователя и
// хранит историю последних запросов в локальном хранилище клиента.
package apitester

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fblazt/toolbox/internal/model"
	"github.com/fblazt/toolbox/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// HistoryKey ключ истории в локальном хранилище.
	HistoryKey = "api-tester-history"
	// HistoryLimit сколько последних запросов хранится.
	HistoryLimit = 10
)

var (
	ErrEmptyURL          = errors.New("Please enter a URL")
	ErrInvalidJSONBody   = errors.New("Invalid JSON in request body")
	ErrUnsupportedMethod = errors.New("unsupported HTTP method")
)

// Methods поддерживаемые методы в порядке отображения.
var Methods = []string{
	http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete,
	http.MethodPatch, http.MethodHead, http.MethodOptions,
}

var sampleURLs = []string{
	"https://jsonplaceholder.typicode.com/posts/1",
	"https://api.github.com/users/octocat",
	"https://httpbin.org/get",
	"https://api.coindesk.com/v1/bpi/currentprice.json",
}

// Samples возвращает примеры URL.
func Samples() []string {
	return slices.Clone(sampleURLs)
}

// RequestError сетевая ошибка запроса, сообщение показывается как есть.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string { return e.Err.Error() }

func (e *RequestError) Unwrap() error { return e.Err }

// Doer отправляет HTTP-запрос. *http.Client подходит.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Tester контроллер одного клиента: история и отправка запросов.
type Tester struct {
	client Doer
	store  storage.KV
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	history []model.RequestHistoryEntry
}

// Option настраивает Tester.
type Option func(*Tester)

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(t *Tester) { t.now = now }
}

// New создаёт Tester и один раз загружает историю из хранилища.
func New(ctx context.Context, client Doer, store storage.KV, logger *zap.Logger, opts ...Option) *Tester {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tester{
		client: client,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.loadHistory(ctx)
	return t
}

func (t *Tester) loadHistory(ctx context.Context) {
	raw, err := t.store.Get(ctx, HistoryKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			t.logger.Error("Failed to load history", zap.Error(err))
		}
		return
	}
	var entries []model.RequestHistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		t.logger.Error("Failed to load history", zap.Error(err))
		return
	}
	if len(entries) > HistoryLimit {
		entries = entries[:HistoryLimit]
	}
	t.history = entries
}

// History возвращает копию истории, новые записи первыми.
func (t *Tester) History() []model.RequestHistoryEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.history)
}

// ClearHistory очищает историю и удаляет ключ из хранилища.
func (t *Tester) ClearHistory(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.history = nil
	return t.store.Delete(ctx, HistoryKey)
}

func hasBody(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

// Validate проверяет запрос до отправки.
func Validate(req model.APIRequest) error {
	if strings.TrimSpace(req.URL) == "" {
		return ErrEmptyURL
	}
	method := strings.ToUpper(req.Method)
	if !slices.Contains(Methods, method) {
		return fmt.Errorf("%w: %s", ErrUnsupportedMethod, req.Method)
	}
	if hasBody(method) && strings.TrimSpace(req.Body) != "" && !json.Valid([]byte(req.Body)) {
		return ErrInvalidJSONBody
	}
	return nil
}

// BuildHeaders сливает заголовки пользователя, последний дубликат побеждает.
// Для методов с телом и непустым телом добавляется Content-Type, если
// пользователь не задал его сам.
func BuildHeaders(method string, headers []model.Header, body string) map[string]string {
	out := make(map[string]string, len(headers)+1)
	for _, h := range headers {
		if h.Key != "" && h.Value != "" {
			out[h.Key] = h.Value
		}
	}
	if hasBody(method) && strings.TrimSpace(body) != "" {
		for k := range out {
			if strings.EqualFold(k, "Content-Type") {
				return out
			}
		}
		out["Content-Type"] = "application/json"
	}
	return out
}

// Send выполняет запрос. Возвращает либо снимок ответа, либо ошибку.
func (t *Tester) Send(ctx context.Context, in model.APIRequest) (*model.APIResponse, error) {
	if in.Method == "" {
		in.Method = http.MethodGet
	}
	if err := Validate(in); err != nil {
		return nil, err
	}
	method := strings.ToUpper(in.Method)
	target := strings.TrimSpace(in.URL)

	var body io.Reader
	if hasBody(method) && strings.TrimSpace(in.Body) != "" {
		body = strings.NewReader(in.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	for k, v := range BuildHeaders(method, in.Headers, in.Body) {
		req.Header[k] = []string{v}
	}

	start := t.now()
	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Warn("API request failed", zap.String("method", method), zap.String("url", target), zap.Error(err))
		return nil, &RequestError{Err: err}
	}
	defer resp.Body.Close()
	elapsed := t.now().Sub(start)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Err: err}
	}

	snapshot := &model.APIResponse{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		Headers:    flattenHeaders(resp.Header),
		Body:       parseBody(raw),
		ElapsedMs:  elapsed.Milliseconds(),
		SizeBytes:  int64(len(raw)),
	}

	if err := t.record(ctx, method, in.URL); err != nil {
		t.logger.Error("Failed to save history", zap.Error(err))
	}
	return snapshot, nil
}

func (t *Tester) record(ctx context.Context, method, url string) error {
	now := t.now()
	entry := model.RequestHistoryEntry{
		ID:        uuid.NewString(),
		Method:    method,
		URL:       url,
		Timestamp: now.UnixMilli(),
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	updated := make([]model.RequestHistoryEntry, 0, HistoryLimit)
	updated = append(updated, entry)
	for _, e := range t.history {
		if len(updated) == HistoryLimit {
			break
		}
		updated = append(updated, e)
	}
	t.history = updated

	data, err := json.Marshal(updated)
	if err != nil {
		return err
	}
	return t.store.Set(ctx, HistoryKey, string(data))
}

func statusText(resp *http.Response) string {
	code := fmt.Sprintf("%d ", resp.StatusCode)
	if text := strings.TrimPrefix(resp.Status, code); text != resp.Status {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

// flattenHeaders приводит имена к нижнему регистру, как fetch.
func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[strings.ToLower(k)] = strings.Join(v, ", ")
	}
	return out
}

// parseBody возвращает разобранный JSON, иначе исходный текст.
func parseBody(raw []byte) any {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}
