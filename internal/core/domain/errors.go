package domain

import (
	"net/http"

	"github.com/google/uuid"
)

// ErrorKind names a class of failure. Kinds double as the public error name
// in API responses, so their spelling is part of the wire contract.
type ErrorKind string

const (
	KindValidation       ErrorKind = "ValidationError"
	KindUnauthorized     ErrorKind = "UnauthorizedError"
	KindForbidden        ErrorKind = "ForbiddenError"
	KindNotFound         ErrorKind = "NotFoundError"
	KindMethodNotAllowed ErrorKind = "MethodNotAllowedError"
	KindConflict         ErrorKind = "ConflictError"
	KindUnprocessable    ErrorKind = "UnprocessableEntityError"
	KindUnavailable      ErrorKind = "ServiceUnavailableError"
	KindInternal         ErrorKind = "InternalServerError"
)

// Error is the single error type that crosses layer boundaries. Message and
// Action are written for the end user; LocationCode pinpoints the origin for
// operators; Key names the offending input field when there is one.
type Error struct {
	Kind         ErrorKind
	Message      string
	Action       string
	StatusCode   int
	LocationCode string
	Key          string
	Retryable    bool
	ErrorID      string

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.cause.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error of the same kind, so callers can test against the
// sentinel values below with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is checks. Never returned directly.
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrUnauthorized  = &Error{Kind: KindUnauthorized}
	ErrForbidden     = &Error{Kind: KindForbidden}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrConflict      = &Error{Kind: KindConflict}
	ErrUnprocessable = &Error{Kind: KindUnprocessable}
	ErrUnavailable   = &Error{Kind: KindUnavailable}
	ErrInternal      = &Error{Kind: KindInternal}
)

func newError(kind ErrorKind, status int, message, action string) *Error {
	return &Error{
		Kind:       kind,
		Message:    message,
		Action:     action,
		StatusCode: status,
		ErrorID:    uuid.NewString(),
	}
}

func ValidationError(message, action string) *Error {
	return newError(KindValidation, http.StatusBadRequest, message, action)
}

func UnauthorizedError(message, action string) *Error {
	return newError(KindUnauthorized, http.StatusUnauthorized, message, action)
}

func ForbiddenError(message, action string) *Error {
	return newError(KindForbidden, http.StatusForbidden, message, action)
}

func NotFoundError(message, action string) *Error {
	return newError(KindNotFound, http.StatusNotFound, message, action)
}

func MethodNotAllowedError(message, action string) *Error {
	return newError(KindMethodNotAllowed, http.StatusMethodNotAllowed, message, action)
}

func ConflictError(message, action string) *Error {
	return newError(KindConflict, http.StatusConflict, message, action)
}

func UnprocessableEntityError(message, action string) *Error {
	return newError(KindUnprocessable, http.StatusUnprocessableEntity, message, action)
}

func ServiceUnavailableError(message, action string) *Error {
	return newError(KindUnavailable, http.StatusServiceUnavailable, message, action)
}

// InternalError wraps an unexpected failure. The cause is kept for logs and
// never rendered to clients.
func InternalError(cause error) *Error {
	e := newError(KindInternal, http.StatusInternalServerError,
		"Something unexpected happened on our side.",
		"Try again later; if the problem persists, report the error id.",
	)
	e.cause = cause
	return e
}

// WithLocation sets the operator-facing origin code and returns the error.
func (e *Error) WithLocation(code string) *Error {
	e.LocationCode = code
	return e
}

// WithKey names the input field the error refers to and returns the error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// AsRetryable marks the error as safe for the client to retry verbatim.
func (e *Error) AsRetryable() *Error {
	e.Retryable = true
	return e
}
