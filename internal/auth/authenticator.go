package auth

import (
	"context"
	"errors"
	"fmt"

	"recipebox/internal/apperror"
	"recipebox/internal/domain"
)

// CredentialStore looks up users together with their password hash.
type CredentialStore interface {
	GetByUsername(ctx context.Context, username string, withPassword bool) (*domain.User, error)
}

// Authenticator checks username/password pairs.
type Authenticator struct {
	users     CredentialStore
	hasher    *Hasher
	dummyHash string
}

// NewAuthenticator precomputes a throwaway hash at the configured cost so
// unknown usernames still pay for one bcrypt comparison.
func NewAuthenticator(users CredentialStore, hasher *Hasher) (*Authenticator, error) {
	dummy, err := hasher.Hash("recipebox-unknown-user")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &Authenticator{
		users:     users,
		hasher:    hasher,
		dummyHash: dummy,
	}, nil
}

// Authenticate returns the sanitized user for valid credentials. Unknown
// usernames and wrong passwords fail with the same InvalidCredentials error.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := a.users.GetByUsername(ctx, username, true)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	hash := a.dummyHash
	if user != nil && user.PasswordHash != "" {
		hash = user.PasswordHash
	}

	match := a.hasher.Verify(password, hash)
	if user == nil || user.PasswordHash == "" || !match {
		return nil, apperror.ErrInvalidCredentials
	}

	return user.Sanitized(), nil
}
