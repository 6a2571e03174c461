package notifications

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/internhub/pkg/logger"
)

// envelope is the JSON body of every non-stream response.
type envelope struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *errorDetail   `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *Handler) respond(w http.ResponseWriter, data any, meta map[string]any) {
	writeJSON(w, http.StatusOK, envelope{Data: data, Meta: meta})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	he := httpError(err)
	level := slog.LevelDebug
	if he.Code >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.LogAttrs(r.Context(), level, "notification request failed",
		logger.Component("notifications_http"),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", he.Code),
		logger.Error(err),
	)
	writeJSON(w, he.Code, envelope{Error: &errorDetail{Code: he.Key, Message: http.StatusText(he.Code)}})
}
