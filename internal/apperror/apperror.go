// Package apperror defines the typed failures shared by the auth core, the user
// service and the HTTP error boundary.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an expected failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindMissingToken
	KindInvalidToken
	KindInvalidCredentials
	KindDuplicateUsername
	KindNotFound
	KindUnauthorized
	KindInvalidField
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindMissingToken:
		return "missing_token"
	case KindInvalidToken:
		return "invalid_token"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindDuplicateUsername:
		return "duplicate_username"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidField:
		return "invalid_field"
	case KindBadRequest:
		return "bad_request"
	default:
		return "unknown"
	}
}

// Error is an expected failure with a client-safe message.
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

// Is reports kind equality so sentinels match errors carrying a custom message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// StatusCode maps the kind onto the HTTP status returned to clients.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindMissingToken, KindInvalidToken, KindInvalidCredentials:
		return http.StatusUnauthorized
	case KindUnauthorized:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicateUsername, KindInvalidField, KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Exposed reports whether Message may be shown to clients.
// Configuration failures are operator problems and stay internal.
func (e *Error) Exposed() bool {
	return e.Kind != KindUnknown && e.Kind != KindConfiguration
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

var (
	ErrConfiguration      = New(KindConfiguration, "invalid configuration")
	ErrMissingToken       = New(KindMissingToken, "Access token is missing")
	ErrInvalidToken       = New(KindInvalidToken, "Invalid access token")
	ErrInvalidCredentials = New(KindInvalidCredentials, "Invalid username or password.")
	ErrDuplicateUsername  = New(KindDuplicateUsername, "Username is already taken.")
	ErrNotFound           = New(KindNotFound, "User not found")
	ErrUnauthorized       = New(KindUnauthorized, "Unauthorized")
	ErrInvalidField       = New(KindInvalidField, "Invalid property")
	ErrBadRequest         = New(KindBadRequest, "Bad request")
)

// Configuration builds a ConfigurationError for a missing or invalid setting.
func Configuration(format string, args ...any) *Error {
	return New(KindConfiguration, fmt.Sprintf(format, args...))
}

// As extracts the typed error from a chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindUnknown for untyped errors.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindUnknown
}

// IsTokenError reports whether err is a missing or invalid token failure.
func IsTokenError(err error) bool {
	switch KindOf(err) {
	case KindMissingToken, KindInvalidToken:
		return true
	}
	return false
}
