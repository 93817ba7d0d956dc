package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"recipebox/internal/auth"
	"recipebox/internal/domain"
	"recipebox/internal/repository"
)

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, username, password string) (*domain.User, string, error)
	Login(ctx context.Context, username, password string) (*domain.User, string, error)
	CreateAdmin(ctx context.Context, username, password string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	IsAdmin(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	SetAdmin(ctx context.Context, username string, admin bool) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

// TokenSigner issues access tokens for user ids.
type TokenSigner interface {
	Sign(userID string) (string, error)
}

type userService struct {
	users  repository.UserRepository
	hasher *auth.Hasher
	creds  *auth.Authenticator
	ids    *auth.IDGenerator
	tokens TokenSigner
	now    func() time.Time
}

func NewUserService(users repository.UserRepository, hasher *auth.Hasher, tokens TokenSigner) (UserService, error) {
	creds, err := auth.NewAuthenticator(users, hasher)
	if err != nil {
		return nil, err
	}
	return &userService{
		users:  users,
		hasher: hasher,
		creds:  creds,
		ids:    auth.NewIDGenerator(users),
		tokens: tokens,
		now:    time.Now,
	}, nil
}

// Register creates a regular user and signs a token for it.
func (s *userService) Register(ctx context.Context, username, password string) (*domain.User, string, error) {
	user, err := s.create(ctx, username, password, false)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Sign(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and signs a token.
func (s *userService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, "", errUsernameRequired
	}
	if password == "" {
		return nil, "", errPasswordRequired
	}

	user, err := s.creds.Authenticate(ctx, username, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Sign(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// CreateAdmin bootstraps an administrator; only the operator CLI calls it.
func (s *userService) CreateAdmin(ctx context.Context, username, password string) (*domain.User, error) {
	return s.create(ctx, username, password, true)
}

func (s *userService) create(ctx context.Context, username, password string, admin bool) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	id, err := s.ids.Generate(ctx)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           id,
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      admin,
		CreatedAt:    strconv.FormatInt(s.now().UnixMilli(), 10),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user.Sanitized(), nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// IsAdmin fails with NotFound when the user no longer exists.
func (s *userService) IsAdmin(ctx context.Context, id string) (bool, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}

// Update applies an already authorized patch, hashing a new password first.
func (s *userService) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	if patch.Username != nil {
		trimmed := strings.TrimSpace(*patch.Username)
		patch.Username = &trimmed
	}
	if patch.Password != nil {
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, err
		}
		patch.Password = &hash
	}

	user, err := s.users.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

func (s *userService) SetAdmin(ctx context.Context, username string, admin bool) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username), false)
	if err != nil {
		return nil, fmt.Errorf("find %q: %w", username, err)
	}
	return s.Update(ctx, user.ID, domain.UserPatch{IsAdmin: &admin})
}

func (s *userService) Delete(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

var _ auth.RoleLookup = (UserService)(nil)
