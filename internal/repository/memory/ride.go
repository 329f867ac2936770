package memory

import (
	"context"
	"fmt"
	"time"

	"ridewallet/internal/domain"
	"ridewallet/internal/repository"
)

// RideRepository implements repository.RideRepository in memory.
type RideRepository struct {
	access accessor
}

// Create persists a new ride.
func (r *RideRepository) Create(_ context.Context, ride *domain.Ride) error {
	return r.access(func(st *state) error {
		if _, ok := st.users[ride.UserID]; !ok {
			return fmt.Errorf("%w: user %s", repository.ErrNotFound, ride.UserID)
		}
		if _, ok := st.rides[ride.ID]; ok {
			return repository.ErrAlreadyExists
		}
		cp := *ride
		st.rides[cp.ID] = &cp
		st.rideOrder = append(st.rideOrder, cp.ID)
		return nil
	})
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(_ context.Context, id string) (*domain.Ride, error) {
	var out *domain.Ride
	err := r.access(func(st *state) error {
		ride, ok := st.rides[id]
		if !ok {
			return repository.ErrNotFound
		}
		cp := *ride
		out = &cp
		return nil
	})
	return out, err
}

// GetByIDForUpdate is GetByID; units of work already run exclusively.
func (r *RideRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ride, error) {
	return r.GetByID(ctx, id)
}

// UpdateStatus moves the ride to status if the state machine allows it.
func (r *RideRepository) UpdateStatus(_ context.Context, id string, status domain.RideStatus) (*domain.Ride, error) {
	var out *domain.Ride
	err := r.access(func(st *state) error {
		ride, ok := st.rides[id]
		if !ok {
			return repository.ErrNotFound
		}
		if !domain.CanTransition(ride.Status, status) {
			return fmt.Errorf("%w: ride %s is %s, allowed next: %s",
				repository.ErrInvalidTransition, id, ride.Status, domain.DescribeValidFrom(ride.Status))
		}
		ride.Status = status
		ride.UpdatedAt = time.Now().UTC()
		cp := *ride
		out = &cp
		return nil
	})
	return out, err
}

// SetPaymentMethod records the payment method of a completed, unsettled ride.
func (r *RideRepository) SetPaymentMethod(_ context.Context, id string, method domain.PaymentMethod) (*domain.Ride, error) {
	var out *domain.Ride
	err := r.access(func(st *state) error {
		ride, ok := st.rides[id]
		if !ok {
			return repository.ErrNotFound
		}
		if ride.IsSettled() {
			return fmt.Errorf("%w: ride %s already paid by %s", repository.ErrInvalidTransition, id, ride.PaymentMethod)
		}
		if ride.Status != domain.RideStatusCompleted {
			return fmt.Errorf("%w: ride %s is %s, not COMPLETED", repository.ErrInvalidTransition, id, ride.Status)
		}
		ride.PaymentMethod = method
		ride.UpdatedAt = time.Now().UTC()
		cp := *ride
		out = &cp
		return nil
	})
	return out, err
}

// ListByUser returns a user's rides, newest first.
func (r *RideRepository) ListByUser(_ context.Context, userID string, limit int) ([]*domain.Ride, error) {
	limit = repository.NormalizeLimit(limit)
	rides := make([]*domain.Ride, 0)
	err := r.access(func(st *state) error {
		for i := len(st.rideOrder) - 1; i >= 0 && len(rides) < limit; i-- {
			ride := st.rides[st.rideOrder[i]]
			if ride.UserID != userID {
				continue
			}
			cp := *ride
			rides = append(rides, &cp)
		}
		return nil
	})
	return rides, err
}
