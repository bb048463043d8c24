package repository

import (
	"context"
	"errors"

	"account-service/internal/domain"
)

var (
	// ErrNotFound is returned by lookups when no record matches.
	ErrNotFound = errors.New("user not found")
	// ErrUsernameExists is returned by Create when the username is taken.
	ErrUsernameExists = errors.New("username already exists")
	// ErrEmailExists is returned by Create when the email is taken.
	ErrEmailExists = errors.New("email already exists")
)

// UserRepository defines persistence operations for User records.
// Any error other than the sentinels above means the backing store failed
// and the caller must not assume the mutation was applied.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
}
