package repository

import (
	"context"

	"recipebox/internal/domain"
)

// UserRepository defines persistence operations for User entities.
//
// Lookups of a missing user fail with apperror.ErrNotFound, and username
// collisions on Create or Update fail with apperror.ErrDuplicateUsername.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string, withPassword bool) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	ExistsByID(ctx context.Context, id string) (bool, error)
}
