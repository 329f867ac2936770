package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"ridewallet/internal/domain"
	"ridewallet/internal/repository"
)

const rideColumns = `id, user_id, pickup, dropoff, ride_type, fare, otp, status, payment_method, driver_name, driver_phone, created_at, updated_at`

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.UserID,
		ride.Pickup,
		ride.Dropoff,
		ride.Type,
		ride.Fare,
		ride.OTP,
		ride.Status,
		nullString(string(ride.PaymentMethod)),
		ride.DriverName,
		ride.DriverPhone,
		ride.CreatedAt,
		ride.UpdatedAt,
	)

	return mapError(err)
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`
	return scanRide(r.q.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate retrieves a ride and holds its row lock until the transaction ends.
func (r *RideRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1 FOR UPDATE`
	return scanRide(r.q.QueryRowContext(ctx, query, id))
}

// UpdateStatus moves the ride to status in a single conditional statement, so
// a concurrent transition cannot slip in between check and write.
func (r *RideRepository) UpdateStatus(ctx context.Context, id string, status domain.RideStatus) (*domain.Ride, error) {
	from := domain.PredecessorsOf(status)
	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}

	query := `
		UPDATE rides SET status = $1, updated_at = $2
		WHERE id = $3 AND status = ANY($4)
		RETURNING ` + rideColumns

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, status, time.Now().UTC(), id, pq.Array(allowed)))
	if !errors.Is(err, repository.ErrNotFound) {
		return ride, err
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: ride %s is %s, allowed next: %s",
		repository.ErrInvalidTransition, id, current.Status, domain.DescribeValidFrom(current.Status))
}

// SetPaymentMethod records the payment method of a completed, unsettled ride.
func (r *RideRepository) SetPaymentMethod(ctx context.Context, id string, method domain.PaymentMethod) (*domain.Ride, error) {
	query := `
		UPDATE rides SET payment_method = $1, updated_at = $2
		WHERE id = $3 AND status = $4 AND payment_method IS NULL
		RETURNING ` + rideColumns

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, method, time.Now().UTC(), id, domain.RideStatusCompleted))
	if !errors.Is(err, repository.ErrNotFound) {
		return ride, err
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.IsSettled() {
		return nil, fmt.Errorf("%w: ride %s already paid by %s", repository.ErrInvalidTransition, id, current.PaymentMethod)
	}
	return nil, fmt.Errorf("%w: ride %s is %s, not COMPLETED", repository.ErrInvalidTransition, id, current.Status)
}

// ListByUser returns a user's rides, newest first. Rides booked in the same
// instant come back in reverse insertion order.
func (r *RideRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE user_id = $1 ORDER BY created_at DESC, seq DESC LIMIT $2`

	rows, err := r.q.QueryContext(ctx, query, userID, repository.NormalizeLimit(limit))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	rides := make([]*domain.Ride, 0)
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var paymentMethod sql.NullString

	err := row.Scan(
		&ride.ID,
		&ride.UserID,
		&ride.Pickup,
		&ride.Dropoff,
		&ride.Type,
		&ride.Fare,
		&ride.OTP,
		&ride.Status,
		&paymentMethod,
		&ride.DriverName,
		&ride.DriverPhone,
		&ride.CreatedAt,
		&ride.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, mapError(err)
	}

	if paymentMethod.Valid {
		ride.PaymentMethod = domain.PaymentMethod(paymentMethod.String)
	}
	return &ride, nil
}
