// Package handler is the HTTP route layer: typed request records in,
// {status, message, data} envelopes out. Domain errors are mapped to status
// codes in exactly one place, writeError.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/course-platform/internal/apperror"
)

// envelope is the uniform response wrapper used by every endpoint.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// writeSuccess sends a success envelope. A nil data renders as {}.
func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	if data == nil {
		data = struct{}{}
	}
	writeJSON(w, status, envelope{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// writeError maps a domain error to its status code and sends the error
// envelope. Unrecognized errors become a 500 whose message carries the raw
// error text; that leakage is the platform's long-standing behavior and
// clients depend on the messages, so it stays.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrStateViolation):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
		}
	}

	writeJSON(w, status, envelope{
		Status:  "error",
		Message: message,
		Data:    struct{}{},
	})
}

// RateLimited is the limiter's rejection response, wired into httprate so
// throttled requests still get the envelope shape.
func RateLimited(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusTooManyRequests, envelope{
		Status:  "error",
		Message: "Too many requests, slow down",
		Data:    struct{}{},
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are already sent; nothing left to do but log
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}
