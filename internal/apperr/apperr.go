package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrConflict          = errors.New("conflict")
	ErrValidation        = errors.New("validation failed")
	ErrResourceExhausted = errors.New("too many requests")
	ErrUnavailable       = errors.New("unavailable")
	ErrInternal          = errors.New("internal error")
)

// FieldError describes a single rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error carries a client-safe message on top of one of the sentinel kinds.
type Error struct {
	kind    error
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.kind.Error()
}

func (e *Error) Unwrap() error { return e.kind }

func New(kind error, message string) *Error {
	return &Error{kind: kind, Message: message}
}

func Unauthenticated(message string) *Error { return New(ErrUnauthenticated, message) }
func Forbidden(message string) *Error       { return New(ErrForbidden, message) }
func NotFound(message string) *Error        { return New(ErrNotFound, message) }
func InvalidState(message string) *Error    { return New(ErrInvalidState, message) }
func Conflict(message string) *Error        { return New(ErrConflict, message) }
func Internal(message string) *Error        { return New(ErrInternal, message) }

func Validation(message string, fields ...FieldError) *Error {
	return &Error{kind: ErrValidation, Message: message, Fields: fields}
}

// Status maps an error to the HTTP status used for its kind.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrResourceExhausted):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text that is safe to show to a client. Errors that
// are not *Error never leak their internals.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	return "Internal server error"
}

// Fields returns the per-field validation failures carried by err, if any.
func Fields(err error) []FieldError {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}
