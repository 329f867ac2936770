package repository

import (
	"context"
	"errors"
)

const (
	// MaxAttempts bounds how often a unit of work is run when it keeps conflicting.
	MaxAttempts = 3

	// DefaultListLimit is used when a caller passes no limit.
	DefaultListLimit = 20

	// MaxListLimit caps list queries.
	MaxListLimit = 100
)

// Repositories groups the stores a unit of work can touch.
type Repositories struct {
	Users   UserRepository
	Rides   RideRepository
	Ledger  LedgerRepository
	Reviews ReviewRepository
}

// UnitOfWork runs fn atomically: everything fn writes through repos is
// committed together when fn returns nil and discarded otherwise.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// Store is the full persistence layer: direct repositories plus transactions.
type Store interface {
	UnitOfWork
	Repositories() Repositories
}

// RetryOnConflict calls attempt until it succeeds, fails with something other
// than ErrConflict, or MaxAttempts is reached.
func RetryOnConflict(ctx context.Context, attempt func() error) error {
	var err error
	for i := 0; i < MaxAttempts; i++ {
		if err = attempt(); !errors.Is(err, ErrConflict) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}

// NormalizeLimit applies the default and maximum list sizes.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
