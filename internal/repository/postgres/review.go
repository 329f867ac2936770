package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ridewallet/internal/domain"
	"ridewallet/internal/repository"
)

// ReviewRepository is a PostgreSQL implementation of repository.ReviewRepository.
type ReviewRepository struct {
	q Querier
}

// NewReviewRepository creates a new PostgreSQL review repository.
func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{q: db}
}

// NewReviewRepositoryWithTx creates a review repository using a transaction.
func NewReviewRepositoryWithTx(tx *sql.Tx) *ReviewRepository {
	return &ReviewRepository{q: tx}
}

// Create stores a review. The unique index on ride_id rejects a second one.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `INSERT INTO reviews (id, ride_id, rating, comment, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.ExecContext(ctx, query, review.ID, review.RideID, review.Rating, review.Comment, review.CreatedAt)
	return mapError(err)
}

// GetByRideID retrieves the review of a ride.
func (r *ReviewRepository) GetByRideID(ctx context.Context, rideID string) (*domain.Review, error) {
	query := `SELECT id, ride_id, rating, comment, created_at FROM reviews WHERE ride_id = $1`

	var review domain.Review
	err := r.q.QueryRowContext(ctx, query, rideID).Scan(
		&review.ID, &review.RideID, &review.Rating, &review.Comment, &review.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, mapError(err)
	}
	return &review, nil
}
