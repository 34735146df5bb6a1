package repository

import (
	"context"
	"errors"
	"time"

	"github.com/DarmokhvalViktor/test-task-cs/internal/domain/entity"
)

// ErrNotFound is returned when a lookup matches no user.
var ErrNotFound = errors.New("not found")

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// FindByBirthDateBetween returns users with from <= birth date <= to,
	// ordered by id so results are stable across calls.
	FindByBirthDateBetween(ctx context.Context, from, to time.Time) ([]*entity.User, error)
	Create(ctx context.Context, u *entity.User) error
	Update(ctx context.Context, u *entity.User) error
	DeleteByID(ctx context.Context, id int64) error
	// InTx runs fn against a repository bound to a single database
	// transaction. The transaction commits when fn returns nil and rolls
	// back otherwise.
	InTx(ctx context.Context, fn func(UserRepository) error) error
}
