// Package apperr classifies application errors so the API layer can map
// them to HTTP status codes without inspecting error strings.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies the class of failure.
type Kind int

const (
	// KindInternal is the catch-all for unexpected failures.
	KindInternal Kind = iota
	// KindValidation means the input was missing or malformed.
	KindValidation
	// KindAuthentication means the caller could not be identified.
	KindAuthentication
	// KindAuthorization means the caller is known but not permitted.
	KindAuthorization
	// KindNotFound means the referenced resource does not exist.
	KindNotFound
	// KindConflict means the request clashes with existing state.
	KindConflict
	// KindPolicy means a business rule rejected the request.
	KindPolicy
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindPolicy:
		return "policy"
	default:
		return "internal"
	}
}

// Error carries a kind, a client-safe message, and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind that wraps cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client-safe message of err. Unclassified errors get
// a generic message so internals never leak to the client.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal server error"
}

// Is reports whether err is an application error of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
