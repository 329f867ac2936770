package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ridewallet/internal/domain"
	"ridewallet/internal/repository"
)

const transactionColumns = `id, user_id, ride_id, amount, type, description, balance_after, created_at`

// LedgerRepository is a PostgreSQL implementation of repository.LedgerRepository.
// Balances live on users.wallet_balance, entries in transactions.
type LedgerRepository struct {
	q  Querier
	db *sql.DB // nil when bound to a caller's transaction
}

// NewLedgerRepository creates a ledger repository that opens its own
// transaction for every balance change.
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{q: db, db: db}
}

// NewLedgerRepositoryWithTx creates a ledger repository using a transaction.
func NewLedgerRepositoryWithTx(tx *sql.Tx) *LedgerRepository {
	return &LedgerRepository{q: tx}
}

// GetBalance returns the current wallet balance of a user.
func (r *LedgerRepository) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.q.QueryRowContext(ctx, `SELECT wallet_balance FROM users WHERE id = $1`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, repository.ErrNotFound
		}
		return decimal.Zero, mapError(err)
	}
	return balance, nil
}

// Credit adds amount to the wallet and records a CREDIT entry.
func (r *LedgerRepository) Credit(ctx context.Context, userID string, amount decimal.Decimal, description, rideID string) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, repository.ErrInvalidAmount
	}

	query := `UPDATE users SET wallet_balance = wallet_balance + $1 WHERE id = $2 RETURNING wallet_balance`

	var txn *domain.Transaction
	err := r.atomically(ctx, func(q Querier) error {
		var balance decimal.Decimal
		if err := q.QueryRowContext(ctx, query, amount, userID).Scan(&balance); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return repository.ErrNotFound
			}
			return mapError(err)
		}

		var err error
		txn, err = appendEntry(ctx, q, userID, rideID, amount, domain.TransactionTypeCredit, description, balance)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Debit removes amount from the wallet and records a DEBIT entry. The balance
// check is part of the UPDATE, so the row lock it takes serialises concurrent debits.
func (r *LedgerRepository) Debit(ctx context.Context, userID string, amount decimal.Decimal, description, rideID string) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, repository.ErrInvalidAmount
	}

	query := `
		UPDATE users SET wallet_balance = wallet_balance - $1
		WHERE id = $2 AND wallet_balance >= $1
		RETURNING wallet_balance
	`

	var txn *domain.Transaction
	err := r.atomically(ctx, func(q Querier) error {
		var balance decimal.Decimal
		err := q.QueryRowContext(ctx, query, amount, userID).Scan(&balance)
		if errors.Is(err, sql.ErrNoRows) {
			return r.debitRejected(ctx, q, userID, amount)
		}
		if err != nil {
			return mapError(err)
		}

		txn, err = appendEntry(ctx, q, userID, rideID, amount, domain.TransactionTypeDebit, description, balance)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// debitRejected explains why the conditional debit matched no row.
func (r *LedgerRepository) debitRejected(ctx context.Context, q Querier, userID string, amount decimal.Decimal) error {
	var balance decimal.Decimal
	err := q.QueryRowContext(ctx, `SELECT wallet_balance FROM users WHERE id = $1`, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	if err != nil {
		return mapError(err)
	}
	return fmt.Errorf("%w: balance %s, need %s", repository.ErrInsufficientBalance, balance.StringFixed(2), amount.StringFixed(2))
}

// ListTransactions returns a user's ledger entries, newest first.
func (r *LedgerRepository) ListTransactions(ctx context.Context, userID string, limit int) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions WHERE user_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT $2
	`

	rows, err := r.q.QueryContext(ctx, query, userID, repository.NormalizeLimit(limit))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	txns := make([]*domain.Transaction, 0)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

// GetRideDebit returns the DEBIT that paid for a ride.
func (r *LedgerRepository) GetRideDebit(ctx context.Context, rideID string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions WHERE ride_id = $1 AND type = $2
		ORDER BY seq DESC
		LIMIT 1
	`
	return scanTransaction(r.q.QueryRowContext(ctx, query, rideID, domain.TransactionTypeDebit))
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var txn domain.Transaction
	var rideID sql.NullString
	err := row.Scan(
		&txn.ID,
		&txn.UserID,
		&rideID,
		&txn.Amount,
		&txn.Type,
		&txn.Description,
		&txn.BalanceAfter,
		&txn.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, mapError(err)
	}
	txn.RideID = rideID.String
	return &txn, nil
}

// atomically runs fn in the caller's transaction, or in a new one when the
// repository was built on a plain connection pool.
func (r *LedgerRepository) atomically(ctx context.Context, fn func(q Querier) error) error {
	if r.db == nil {
		return fn(r.q)
	}
	return runInTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(tx)
	})
}

func appendEntry(
	ctx context.Context,
	q Querier,
	userID, rideID string,
	amount decimal.Decimal,
	kind domain.TransactionType,
	description string,
	balanceAfter decimal.Decimal,
) (*domain.Transaction, error) {
	txn := &domain.Transaction{
		ID:           uuid.New().String(),
		UserID:       userID,
		RideID:       rideID,
		Amount:       amount,
		Type:         kind,
		Description:  description,
		BalanceAfter: balanceAfter,
		CreatedAt:    time.Now().UTC(),
	}

	query := `
		INSERT INTO transactions (id, user_id, ride_id, amount, type, description, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := q.ExecContext(ctx, query,
		txn.ID,
		txn.UserID,
		nullString(txn.RideID),
		txn.Amount,
		txn.Type,
		txn.Description,
		txn.BalanceAfter,
		txn.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return txn, nil
}
