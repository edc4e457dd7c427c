package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/capitalize-ai/trip-concierge/internal/model"
	"github.com/capitalize-ai/trip-concierge/internal/store"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// decodeJSON reads a JSON body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// statusFor maps service errors onto HTTP statuses and client-safe codes.
func statusFor(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, model.ErrEmptyMessage):
		return http.StatusBadRequest, "empty_message"
	case errors.Is(err, model.ErrMessageTooLong):
		return http.StatusBadRequest, "message_too_long"
	case errors.Is(err, model.ErrInvalidSessionID):
		return http.StatusBadRequest, "invalid_session_id"
	case errors.Is(err, model.ErrUnsupportedLanguage):
		return http.StatusBadRequest, "unsupported_language"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "body_too_large"
	}
	return http.StatusInternalServerError, "internal_error"
}

// clientError is the status, code and message a client may see for err.
// Internal errors are not echoed.
func clientError(err error) (int, string, string) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		return status, code, "internal error"
	}
	return status, code, err.Error()
}

// writeServiceError writes err with its mapped status.
func writeServiceError(w http.ResponseWriter, err error) {
	status, code, msg := clientError(err)
	writeJSON(w, status, map[string]string{
		"error": msg,
		"code":  code,
	})
}
