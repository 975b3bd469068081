package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/archdrive/internal/common"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrorInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError hides internal details for 5xx; validation messages are
// returned as is.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	switch status {
	case http.StatusBadRequest:
		writeErrorMessage(w, status, err.Error())
	case http.StatusNotFound:
		writeErrorMessage(w, status, "not found")
	default:
		s.logger.Error(r.Context(), op+" failed", "error", err)
		writeErrorMessage(w, status, "internal server error")
	}
}
