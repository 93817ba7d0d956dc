package service

import (
	"fmt"
	"unicode/utf8"

	"recipebox/internal/apperror"
	"recipebox/internal/domain"
)

var (
	errUsernameRequired = apperror.New(apperror.KindBadRequest, "Username is required.")
	errPasswordRequired = apperror.New(apperror.KindBadRequest, "Password is required.")
)

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	switch {
	case n == 0:
		return errUsernameRequired
	case n < domain.MinUsernameLength:
		return apperror.New(apperror.KindBadRequest, fmt.Sprintf("Username must be at least %d characters.", domain.MinUsernameLength))
	case n > domain.MaxUsernameLength:
		return apperror.New(apperror.KindBadRequest, fmt.Sprintf("Username must be less than %d characters.", domain.MaxUsernameLength))
	}
	return nil
}

func validatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	switch {
	case n == 0:
		return errPasswordRequired
	case n < domain.MinPasswordLength:
		return apperror.New(apperror.KindBadRequest, fmt.Sprintf("Password must be at least %d characters.", domain.MinPasswordLength))
	case n > domain.MaxPasswordLength:
		return apperror.New(apperror.KindBadRequest, fmt.Sprintf("Password must be less than %d characters.", domain.MaxPasswordLength))
	case len(password) > domain.MaxPasswordBytes:
		return apperror.New(apperror.KindBadRequest, fmt.Sprintf("Password must be at most %d bytes.", domain.MaxPasswordBytes))
	}
	return nil
}
