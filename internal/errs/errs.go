// Package errs defines the typed errors that cross the HTTP boundary.
//
// Middlewares and handlers return an *HTTPError carrying the status code,
// a client-safe message and the component that raised it. The pipeline's
// error boundary renders it as {status, message, origin} and never sends
// the wrapped cause.
package errs

import (
	"errors"
	"net/http"
)

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// HTTPError is the error type rendered by the error boundary.
type HTTPError struct {
	Status  int          `json:"status"`
	Message string       `json:"message"`
	Origin  string       `json:"origin"`
	Errors  []FieldError `json:"errors,omitempty"`

	cause error
}

func (e *HTTPError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause for logging and errors.Is checks.
func (e *HTTPError) Unwrap() error {
	return e.cause
}

// WithCause returns a copy of e that wraps cause.
func (e *HTTPError) WithCause(cause error) *HTTPError {
	c := *e
	c.cause = cause
	return &c
}

// NewValidationError is a 400 with the per-field violations attached.
func NewValidationError(origin string, fields []FieldError) *HTTPError {
	return &HTTPError{
		Status:  http.StatusBadRequest,
		Message: "Validation failed",
		Origin:  origin,
		Errors:  fields,
	}
}

func NewBadRequestError(origin, message string) *HTTPError {
	return &HTTPError{Status: http.StatusBadRequest, Message: message, Origin: origin}
}

func NewUnauthorizedError(origin, message string) *HTTPError {
	return &HTTPError{Status: http.StatusUnauthorized, Message: message, Origin: origin}
}

func NewForbiddenError(origin, message string) *HTTPError {
	return &HTTPError{Status: http.StatusForbidden, Message: message, Origin: origin}
}

func NewNotFoundError(origin, message string) *HTTPError {
	return &HTTPError{Status: http.StatusNotFound, Message: message, Origin: origin}
}

// NewConflictError is returned by the ownership gate.
func NewConflictError(origin, message string) *HTTPError {
	return &HTTPError{Status: http.StatusConflict, Message: message, Origin: origin}
}

// NewUnprocessableError reports a referenced resource that does not exist.
func NewUnprocessableError(origin, message string) *HTTPError {
	return &HTTPError{Status: http.StatusUnprocessableEntity, Message: message, Origin: origin}
}

func NewRequestTooLargeError(origin, message string) *HTTPError {
	return &HTTPError{Status: http.StatusRequestEntityTooLarge, Message: message, Origin: origin}
}

// NewUpstreamError wraps a persistence failure. The client only sees message.
func NewUpstreamError(origin, message string, cause error) *HTTPError {
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Message: message,
		Origin:  origin,
		cause:   cause,
	}
}

// NewInternalServerError is the generic replacement for errors that are not HTTPErrors.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Message: http.StatusText(http.StatusInternalServerError),
	}
}

// From returns err as an *HTTPError, replacing anything else with a generic 500.
func From(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return NewInternalServerError().WithCause(err)
}
