// Package apperror carries classified failures from services to the HTTP layer.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for translation into a response status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Error is a classified error with a message that is safe to show a client.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *Error {
	return newError(KindValidation, format, args...)
}

func Unauthorized(format string, args ...interface{}) *Error {
	return newError(KindUnauthorized, format, args...)
}

func Forbidden(format string, args ...interface{}) *Error {
	return newError(KindForbidden, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newError(KindConflict, format, args...)
}

func Unavailable(format string, args ...interface{}) *Error {
	return newError(KindUnavailable, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
