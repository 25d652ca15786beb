package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vbonduro/fridgechef/internal/flow"
	"github.com/vbonduro/fridgechef/internal/llm"
)

// maxJSONBody fits a 20 MB image after base64 expansion plus envelope.
const maxJSONBody = 28 * 1024 * 1024

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v)
}

// statusFor maps an operation error onto an HTTP status.
func statusFor(err error) int {
	var inputErr *llm.InvalidInputError
	switch {
	case errors.As(err, &inputErr):
		return http.StatusBadRequest
	case errors.Is(err, flow.ErrUnknownRecipe):
		return http.StatusNotFound
	case errors.Is(err, flow.ErrInvalidTransition), errors.Is(err, flow.ErrStaleResponse):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage is the client-facing text for err. Flow errors carry no
// sensitive detail and are returned as-is.
func errorMessage(err error) string {
	if errors.Is(err, flow.ErrUnknownRecipe) || errors.Is(err, flow.ErrInvalidTransition) || errors.Is(err, flow.ErrStaleResponse) {
		return err.Error()
	}
	return llm.UserMessage(err)
}

func (s *Server) writeOpError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("operation failed", "operation", op, "path", r.URL.Path, "error", err)
	}
	writeError(w, status, errorMessage(err))
}

func badRequest(field, reason string) error {
	return &llm.InvalidInputError{Field: field, Reason: reason}
}
