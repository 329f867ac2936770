package repository

import (
	"context"

	"ridewallet/internal/domain"
)

// UserRepository defines the persistence operations for users.
type UserRepository interface {
	// Create adds a new user with a zero wallet balance.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
