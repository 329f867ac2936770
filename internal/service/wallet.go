package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"ridewallet/internal/domain"
	"ridewallet/internal/repository"
)

const creditDescription = "Credits added to wallet"

// WalletService exposes balance, top-up and history for a user's wallet.
type WalletService struct {
	store               repository.Store
	notificationService *NotificationService
}

// NewWalletService creates a new WalletService.
func NewWalletService(store repository.Store, notificationService *NotificationService) *WalletService {
	return &WalletService{
		store:               store,
		notificationService: notificationService,
	}
}

// Balance returns the user's wallet balance.
func (s *WalletService) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	if strings.TrimSpace(userID) == "" {
		return decimal.Zero, ErrInvalidUserID
	}
	return s.store.Repositories().Ledger.GetBalance(ctx, userID)
}

// AddCredits tops up the wallet and returns the CREDIT transaction.
func (s *WalletService) AddCredits(ctx context.Context, userID string, amount decimal.Decimal) (*domain.Transaction, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUserID
	}
	if !amount.IsPositive() || !domain.IsMoney(amount) {
		return nil, ErrInvalidAmount
	}

	var txn *domain.Transaction
	err := s.store.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		txn, err = repos.Ledger.Credit(ctx, userID, amount, creditDescription, "")
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyCreditsAdded(ctx, userID, amount, txn.BalanceAfter)
	}
	return txn, nil
}

// Transactions returns the user's ledger entries, newest first.
func (s *WalletService) Transactions(ctx context.Context, userID string, limit int) ([]*domain.Transaction, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUserID
	}
	repos := s.store.Repositories()
	if _, err := repos.Users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return repos.Ledger.ListTransactions(ctx, userID, limit)
}
