package memory

import (
	"context"

	"ridewallet/internal/domain"
	"ridewallet/internal/repository"
)

// ReviewRepository implements repository.ReviewRepository in memory.
type ReviewRepository struct {
	access accessor
}

// Create stores a review, one per ride.
func (r *ReviewRepository) Create(_ context.Context, review *domain.Review) error {
	return r.access(func(st *state) error {
		if _, ok := st.rides[review.RideID]; !ok {
			return repository.ErrNotFound
		}
		if _, ok := st.reviews[review.RideID]; ok {
			return repository.ErrAlreadyExists
		}
		cp := *review
		st.reviews[cp.RideID] = &cp
		return nil
	})
}

// GetByRideID retrieves the review of a ride.
func (r *ReviewRepository) GetByRideID(_ context.Context, rideID string) (*domain.Review, error) {
	var out *domain.Review
	err := r.access(func(st *state) error {
		rv, ok := st.reviews[rideID]
		if !ok {
			return repository.ErrNotFound
		}
		cp := *rv
		out = &cp
		return nil
	})
	return out, err
}
