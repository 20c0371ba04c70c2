// Package apperr defines the error taxonomy shared by services and handlers.
// Services return *Error values; the handler layer translates them into HTTP
// responses in exactly one place. Unknown errors are treated as internal.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error into one of the client-visible categories.
type Kind int

const (
	KindValidation Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindCapacity
	KindInternal
)

// Error carries a kind, a short user-facing message and optional detail:
// Field for validation failures, Remaining for capacity failures. Status
// may override the kind's default HTTP status (already-cancelled is a
// conflict reported as 400, duplicate email a conflict reported as 409).
type Error struct {
	Kind      Kind
	Message   string
	Field     string
	Remaining int
	Status    int
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus returns the response status for the error.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Kind {
	case KindValidation, KindCapacity:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Validation reports malformed or missing input on a specific field.
func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Field: field}
}

// Unauthenticated reports a missing, invalid or expired credential.
func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

// Forbidden reports a wrong role or non-ownership of a resource.
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// NotFound reports an absent entity.
func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

// Conflict reports a duplicate unique field or an invalid state transition.
// status selects between 409 (duplicates) and 400 (already-cancelled).
func Conflict(msg string, status int) *Error {
	return &Error{Kind: KindConflict, Message: msg, Status: status}
}

// Capacity reports insufficient inventory along with the exact remaining
// ticket count.
func Capacity(remaining int) *Error {
	return &Error{
		Kind:      KindCapacity,
		Message:   fmt.Sprintf("insufficient inventory: %d ticket(s) remaining", remaining),
		Remaining: remaining,
	}
}

// Internal wraps an unexpected store or collaborator failure.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// From extracts an *Error from err, wrapping unknown errors as internal.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, k Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == k
}
