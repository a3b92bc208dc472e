package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/oksasatya/go-user-service/internal/domain/entity"
)

var (
	// ErrConflict is matched by every uniqueness violation raised by a store.
	ErrConflict = errors.New("user already exists")
	// ErrNotFound is returned by Update when the row disappeared.
	ErrNotFound = errors.New("user not found")
)

// ConflictError reports which unique field a write collided on.
type ConflictError struct {
	Field string // "name" or "email"
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// UserRepository defines the interface for user-related database operations.
//
// Create and Update fail with *ConflictError when name or email is already
// taken by another user. FindByID returns (nil, nil) for an unknown id and
// DeleteByID is a no-op for one.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	FindAll(ctx context.Context) ([]entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	ExistsByID(ctx context.Context, id int64) (bool, error)
	DeleteByID(ctx context.Context, id int64) error
}
