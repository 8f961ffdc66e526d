// Package apperr defines the error taxonomy shared by the service layer.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so HTTP handlers can pick a response code
// without string-matching messages.
type Kind int

const (
	Unauthenticated Kind = iota
	NotFound
	InvalidState
	BackendUnavailable
	ProviderError
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case NotFound:
		return "not_found"
	case InvalidState:
		return "invalid_state"
	case BackendUnavailable:
		return "backend_unavailable"
	case ProviderError:
		return "provider_error"
	default:
		return "unknown"
	}
}

// Error carries a kind, a user-safe message and an optional cause.
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

// E builds a new taxonomy error.
func E(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap annotates an underlying error with a kind and user-safe message.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the kind from err, if err carries one.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// Message returns the user-safe message for err, or a generic fallback.
// Internal causes are never included.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "Internal server error"
}
