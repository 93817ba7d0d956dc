package auth

import (
	"context"
	"fmt"

	"recipebox/internal/apperror"
)

// Mode selects how token failures are treated.
type Mode int

const (
	// Required rejects requests without a valid token.
	Required Mode = iota
	// Optional lets anonymous callers through with an empty Identity.
	Optional
)

func (m Mode) String() string {
	if m == Optional {
		return "optional"
	}
	return "required"
}

// TokenVerifier resolves a presented token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// RoleLookup reports the admin flag of a user.
type RoleLookup interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// RejectionObserver is told about every token rejection, swallowed or not.
type RejectionObserver interface {
	TokenRejected(mode Mode, err error)
}

// RequestAuthenticator turns a presented token into an Identity.
type RequestAuthenticator struct {
	tokens   TokenVerifier
	roles    RoleLookup
	observer RejectionObserver
}

type RequestOption func(*RequestAuthenticator)

func WithRejectionObserver(o RejectionObserver) RequestOption {
	return func(a *RequestAuthenticator) {
		a.observer = o
	}
}

func NewRequestAuthenticator(tokens TokenVerifier, roles RoleLookup, opts ...RequestOption) *RequestAuthenticator {
	a := &RequestAuthenticator{tokens: tokens, roles: roles}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate verifies token and looks up the caller's role.
//
// In Optional mode a missing or invalid token yields an empty Identity and a
// nil error. Role lookup failures are returned in both modes.
func (a *RequestAuthenticator) Authenticate(ctx context.Context, token string, mode Mode) (Identity, error) {
	userID, err := a.tokens.Verify(token)
	if err != nil {
		if !apperror.IsTokenError(err) {
			return Identity{}, err
		}
		return a.Reject(mode, err)
	}

	isAdmin, err := a.roles.IsAdmin(ctx, userID)
	if err != nil {
		return Identity{}, fmt.Errorf("lookup role: %w", err)
	}

	return Identity{UserID: userID, IsAdmin: isAdmin}, nil
}

// Reject applies mode to a token failure detected before verification, such
// as a malformed Authorization header.
func (a *RequestAuthenticator) Reject(mode Mode, err error) (Identity, error) {
	if a.observer != nil {
		a.observer.TokenRejected(mode, err)
	}
	if mode == Optional {
		return Identity{}, nil
	}
	return Identity{}, err
}
