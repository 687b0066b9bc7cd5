// Package apperror defines the tagged error results services return and the
// HTTP boundary maps to status codes. Handlers match on the sentinel with
// errors.Is; everything else is treated as an unexpected internal error.
package apperror

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation failed")
	ErrConflict       = errors.New("conflict")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrStateViolation = errors.New("state violation")
)

type AppError struct {
	Err     error  // sentinel the error is tagged with
	Message string // human-readable message, returned verbatim in the envelope
	Field   string // optional: request field that caused the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: message,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Unauthorized tags credential failures: wrong password, bad or expired
// token. Handlers map it to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// StateViolation tags precondition failures on state transitions, such as
// completing onboarding twice. Handlers map it to 400.
func StateViolation(message string) *AppError {
	return &AppError{
		Err:     ErrStateViolation,
		Message: message,
	}
}
