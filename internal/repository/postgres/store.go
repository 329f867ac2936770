package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"ridewallet/internal/repository"
)

// Store is the PostgreSQL implementation of repository.Store.
type Store struct {
	db *sql.DB
}

var _ repository.Store = (*Store)(nil)

// NewStore creates a store backed by db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// NewRepositories returns repositories that run each call on its own connection.
func NewRepositories(db *sql.DB) repository.Repositories {
	return repository.Repositories{
		Users:   NewUserRepository(db),
		Rides:   NewRideRepository(db),
		Ledger:  NewLedgerRepository(db),
		Reviews: NewReviewRepository(db),
	}
}

// NewRepositoriesWithTx returns repositories bound to tx.
func NewRepositoriesWithTx(tx *sql.Tx) repository.Repositories {
	return repository.Repositories{
		Users:   NewUserRepositoryWithTx(tx),
		Rides:   NewRideRepositoryWithTx(tx),
		Ledger:  NewLedgerRepositoryWithTx(tx),
		Reviews: NewReviewRepositoryWithTx(tx),
	}
}

// Repositories returns repositories outside of any transaction.
func (s *Store) Repositories() repository.Repositories {
	return NewRepositories(s.db)
}

// Do runs fn inside a database transaction, retrying serialization failures.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return repository.RetryOnConflict(ctx, func() error {
		return runInTx(ctx, s.db, func(tx *sql.Tx) error {
			return fn(ctx, NewRepositoriesWithTx(tx))
		})
	})
}

// runInTx commits when fn succeeds and rolls back on error or panic.
func runInTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", mapError(err))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapError(err))
	}
	return nil
}
