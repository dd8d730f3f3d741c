// Package apperr is the error taxonomy shared by the application services.
// Handlers map kinds to HTTP statuses through response.FromError; internal
// detail stays in the logs.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindInvalidAssignee
	KindListingUnavailable
	KindConflict
	KindInternal
)

// Error carries a kind, a caller-safe message and optional field-level
// detail for validation failures.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// ValidationFields wraps a set of per-field messages.
func ValidationFields(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func InvalidAssignee(message string) *Error {
	return &Error{Kind: KindInvalidAssignee, Message: message}
}

func ListingUnavailable(message string) *Error {
	return &Error{Kind: KindListingUnavailable, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Internal wraps a storage or transport failure. The cause is kept for
// logging; callers only ever see the generic message.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", cause: cause}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// StatusCode maps an error to its HTTP status. Unknown errors are treated
// as internal.
func StatusCode(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation, KindInvalidAssignee, KindListingUnavailable:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
