package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// StatusError is an error tagged with the HTTP status it must be reported
// with. Errors without one are reported as 500.
type StatusError struct {
	Code    int
	Message string
	Err     error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %s", e.Code, e.Message, e.Err.Error())
	}
	return fmt.Sprintf("%d %s", e.Code, e.Message)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

func newStatusError(code int, message string, err error) *StatusError {
	return &StatusError{Code: code, Message: message, Err: err}
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	statusErr := &StatusError{Code: http.StatusInternalServerError, Message: INTERNAL_ERROR_MESSAGE, Err: err}
	var tagged *StatusError
	if errors.As(err, &tagged) {
		statusErr = tagged
	}

	attrs := []any{
		slog.String("path", r.URL.Path),
		slog.Int("status", statusErr.Code),
		slog.String("error", err.Error()),
	}
	if statusErr.Code >= http.StatusInternalServerError {
		h.Log.Error("Request failed", attrs...)
	} else {
		h.Log.Info("Request rejected", attrs...)
	}
	h.writeJSON(w, statusErr.Code, ErrorResponse{Message: statusErr.Message})
}
