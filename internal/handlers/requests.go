package handlers

import (
	"net/http"

	"github.com/fblazt/toolbox/internal/model"
	"github.com/fblazt/toolbox/internal/tools/apitester"
)

// SendRequest выполняет запрос тестировщика API.
// Ошибка транспорта возвращается с кодом 502 и текстом ошибки.
func (h *Handler) SendRequest(w http.ResponseWriter, r *http.Request) {
	var req model.APIRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	ws := h.workspace(w, r)
	resp, err := ws.Tester.Send(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// RequestHistory последние запросы клиента, новые первыми.
func (h *Handler) RequestHistory(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	writeJSON(w, http.StatusOK, model.HistoryResponse{Entries: ws.Tester.History()})
}

// ClearRequestHistory очищает историю.
func (h *Handler) ClearRequestHistory(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if err := ws.Tester.ClearHistory(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RequestSamples адреса для быстрого старта.
func (h *Handler) RequestSamples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"samples": apitester.Samples()})
}
