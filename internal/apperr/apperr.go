// Package apperr defines the error taxonomy shared by the use cases and the
// HTTP boundary. Use cases return *Error values; the transport layer maps
// Kind to an HTTP status and never re-interprets messages.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	Validation         Kind = "VALIDATION"
	VerificationFailed Kind = "VERIFICATION_FAILED"
	IllegalTransition  Kind = "ILLEGAL_TRANSITION"
	NotFound           Kind = "NOT_FOUND"
	Conflict           Kind = "CONFLICT"
	Gateway            Kind = "GATEWAY"
	Storage            Kind = "STORAGE"
	Internal           Kind = "INTERNAL"
)

type Error struct {
	Kind    Kind
	Message string
	// Code carries the upstream provider's error code for Gateway errors.
	Code      string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf extracts the taxonomy kind from any error in the chain.
// Unclassified errors report Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }

// Retryable reports whether the caller may safely retry the operation.
func Retryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}
