package repository

import (
	"context"

	"ridewallet/internal/domain"
)

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// GetByIDForUpdate retrieves a ride and locks it for the rest of the unit of work.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Ride, error)

	// UpdateStatus moves a ride to status if the state machine allows it.
	// Returns ErrInvalidTransition without modifying the ride otherwise.
	UpdateStatus(ctx context.Context, id string, status domain.RideStatus) (*domain.Ride, error)

	// SetPaymentMethod records how a completed ride was paid.
	// Returns ErrInvalidTransition if the ride is not completed or already settled.
	SetPaymentMethod(ctx context.Context, id string, method domain.PaymentMethod) (*domain.Ride, error)

	// ListByUser returns a user's rides, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Ride, error)
}
