package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"ridewallet/internal/domain"
)

// LedgerRepository owns wallet balances and their transaction history.
// Every balance change appends exactly one transaction in the same write.
type LedgerRepository interface {
	// GetBalance returns the current wallet balance of a user.
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)

	// Credit adds amount to the wallet and records a CREDIT transaction.
	Credit(ctx context.Context, userID string, amount decimal.Decimal, description, rideID string) (*domain.Transaction, error)

	// Debit removes amount from the wallet and records a DEBIT transaction.
	// Returns ErrInsufficientBalance and changes nothing if the balance is too low.
	Debit(ctx context.Context, userID string, amount decimal.Decimal, description, rideID string) (*domain.Transaction, error)

	// ListTransactions returns a user's transactions, newest first.
	ListTransactions(ctx context.Context, userID string, limit int) ([]*domain.Transaction, error)

	// GetRideDebit returns the DEBIT that paid for a ride, or ErrNotFound.
	GetRideDebit(ctx context.Context, rideID string) (*domain.Transaction, error)
}
