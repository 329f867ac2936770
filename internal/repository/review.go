package repository

import (
	"context"

	"ridewallet/internal/domain"
)

// ReviewRepository defines the persistence operations for ride reviews.
type ReviewRepository interface {
	// Create stores a review. Returns ErrAlreadyExists if the ride was already reviewed.
	Create(ctx context.Context, review *domain.Review) error

	// GetByRideID retrieves the review of a ride.
	GetByRideID(ctx context.Context, rideID string) (*domain.Review, error)
}
