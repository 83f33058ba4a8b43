// Package httpx holds small JSON response helpers shared by all handlers.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/jdvries/transportdesk/internal/i18n"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// JSON writes payload as application/json with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	body := []byte("null")
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Error writes an error envelope. code doubles as the i18n message code, so
// the human-readable message follows the request's Accept-Language.
func Error(w http.ResponseWriter, r *http.Request, status int, code string, details any) {
	lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
	JSON(w, status, ErrorResponse{Error: code, Message: i18n.T(lang, code), Details: details})
}
