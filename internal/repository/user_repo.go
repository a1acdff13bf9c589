// internal/repository/user_repo.go
package repository

import (
	"context"

	"github.com/google/uuid"

	"txledger/internal/domain"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// CreateUser inserts user. A duplicate email yields util.ErrConflict.
	CreateUser(ctx context.Context, q DBExecutor, user *domain.User) error
	// GetUserByID retrieves a user by id, or util.ErrNotFound.
	GetUserByID(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.User, error)
	// GetUserByEmail retrieves a user by normalized email, or util.ErrNotFound.
	GetUserByEmail(ctx context.Context, q DBExecutor, email string) (*domain.User, error)
	// EmailExists reports whether an account already uses email.
	EmailExists(ctx context.Context, q DBExecutor, email string) (bool, error)
}
