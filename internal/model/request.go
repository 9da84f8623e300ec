package model

// Header пара заголовка, как её вводит пользователь.
type Header struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// APIRequest запрос к тестировщику API.
type APIRequest struct {
	Method  string   `json:"method"`
	URL     string   `json:"url"`
	Headers []Header `json:"headers,omitempty"`
	Body    string   `json:"body,omitempty"`
}

// APIResponse снимок ответа удалённого сервера.
// Body содержит разобранный JSON, либо исходный текст, если разобрать не удалось.
type APIResponse struct {
	Status     int               `json:"status"`
	StatusText string            `json:"status_text"`
	Headers    map[string]string `json:"headers"`
	Body       any               `json:"body"`
	ElapsedMs  int64             `json:"elapsed_ms"`
	SizeBytes  int64             `json:"size_bytes"`
}

// RequestHistoryEntry запись истории запросов.
// Формат совпадает с тем, что хранится под ключом api-tester-history.
type RequestHistoryEntry struct {
	ID        string `json:"id"`
	Method    string `json:"method"`
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
}

// HistoryResponse список последних запросов.
type HistoryResponse struct {
	Entries []RequestHistoryEntry `json:"entries"`
}

// ErrorResponse тело ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
}
