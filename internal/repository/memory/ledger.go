package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ridewallet/internal/domain"
	"ridewallet/internal/repository"
)

// LedgerRepository implements repository.LedgerRepository in memory.
type LedgerRepository struct {
	access accessor
}

// GetBalance returns the current wallet balance of a user.
func (r *LedgerRepository) GetBalance(_ context.Context, userID string) (decimal.Decimal, error) {
	balance := decimal.Zero
	err := r.access(func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return repository.ErrNotFound
		}
		balance = u.WalletBalance
		return nil
	})
	return balance, err
}

// Credit adds amount to the wallet and records a CREDIT entry.
func (r *LedgerRepository) Credit(_ context.Context, userID string, amount decimal.Decimal, description, rideID string) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, repository.ErrInvalidAmount
	}

	var txn *domain.Transaction
	err := r.access(func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return repository.ErrNotFound
		}
		u.WalletBalance = u.WalletBalance.Add(amount)
		txn = appendEntry(st, userID, rideID, amount, domain.TransactionTypeCredit, description, u.WalletBalance)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Debit removes amount from the wallet and records a DEBIT entry.
func (r *LedgerRepository) Debit(_ context.Context, userID string, amount decimal.Decimal, description, rideID string) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, repository.ErrInvalidAmount
	}

	var txn *domain.Transaction
	err := r.access(func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return repository.ErrNotFound
		}
		if u.WalletBalance.LessThan(amount) {
			return fmt.Errorf("%w: balance %s, need %s",
				repository.ErrInsufficientBalance, u.WalletBalance.StringFixed(2), amount.StringFixed(2))
		}
		u.WalletBalance = u.WalletBalance.Sub(amount)
		txn = appendEntry(st, userID, rideID, amount, domain.TransactionTypeDebit, description, u.WalletBalance)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// ListTransactions returns a user's ledger entries, newest first.
func (r *LedgerRepository) ListTransactions(_ context.Context, userID string, limit int) ([]*domain.Transaction, error) {
	limit = repository.NormalizeLimit(limit)
	txns := make([]*domain.Transaction, 0)
	err := r.access(func(st *state) error {
		for i := len(st.txns) - 1; i >= 0 && len(txns) < limit; i-- {
			if st.txns[i].UserID != userID {
				continue
			}
			cp := *st.txns[i]
			txns = append(txns, &cp)
		}
		return nil
	})
	return txns, err
}

// GetRideDebit returns the DEBIT that paid for a ride.
func (r *LedgerRepository) GetRideDebit(_ context.Context, rideID string) (*domain.Transaction, error) {
	var txn *domain.Transaction
	err := r.access(func(st *state) error {
		for i := len(st.txns) - 1; i >= 0; i-- {
			if st.txns[i].RideID == rideID && st.txns[i].Type == domain.TransactionTypeDebit {
				cp := *st.txns[i]
				txn = &cp
				return nil
			}
		}
		return repository.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func appendEntry(st *state, userID, rideID string, amount decimal.Decimal, kind domain.TransactionType, description string, balanceAfter decimal.Decimal) *domain.Transaction {
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
	st.txns = append(st.txns, txn)
	cp := *txn
	return &cp
}
