package auth

import (
	"context"

	"recipebox/internal/apperror"
	"recipebox/internal/domain"
)

type fakeUsers struct {
	byUsername map[string]*domain.User
	err        error
	calls      int
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string, withPassword bool) (*domain.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byUsername[username]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	cp := *u
	if !withPassword {
		cp.PasswordHash = ""
	}
	return &cp, nil
}

type fakeTokens struct {
	ids map[string]string
}

func (f fakeTokens) Verify(token string) (string, error) {
	if token == "" {
		return "", apperror.ErrMissingToken
	}
	id, ok := f.ids[token]
	if !ok {
		return "", apperror.ErrInvalidToken
	}
	return id, nil
}

type fakeRoles struct {
	admins map[string]bool
	err    error
}

func (f fakeRoles) IsAdmin(_ context.Context, userID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	admin, ok := f.admins[userID]
	if !ok {
		return false, apperror.ErrNotFound
	}
	return admin, nil
}

type recordingObserver struct {
	modes []Mode
}

func (r *recordingObserver) TokenRejected(mode Mode, _ error) {
	r.modes = append(r.modes, mode)
}
