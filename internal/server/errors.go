package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/callout/pkg/errors"
)

// statusFor maps an error to an HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusNotImplemented
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Code: code, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
