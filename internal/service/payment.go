package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ridewallet/internal/domain"
	"ridewallet/internal/repository"
)

// PaymentService settles completed rides.
type PaymentService struct {
	store               repository.Store
	notificationService *NotificationService
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(store repository.Store, notificationService *NotificationService) *PaymentService {
	return &PaymentService{
		store:               store,
		notificationService: notificationService,
	}
}

// SettleRequest contains the parameters for paying a ride.
type SettleRequest struct {
	RideID string
	UserID string
	Method domain.PaymentMethod
}

// Settlement is the outcome of a successful Settle call.
type Settlement struct {
	Ride        *domain.Ride
	Transaction *domain.Transaction // nil for cash and for replays
	Replayed    bool                // the ride was already settled with the same method
}

// ValidatePaymentMethod parses a payment method.
func ValidatePaymentMethod(method string) (domain.PaymentMethod, error) {
	m := domain.PaymentMethod(strings.ToUpper(strings.TrimSpace(method)))
	if !m.Valid() {
		return "", ErrInvalidPaymentMethod
	}
	return m, nil
}

// Settle pays for a completed ride. Wallet payments debit the fare and record
// the payment method in one unit of work, so a ride is charged at most once.
func (s *PaymentService) Settle(ctx context.Context, req SettleRequest) (*Settlement, error) {
	if err := validateIDs(req.UserID, req.RideID); err != nil {
		return nil, err
	}
	if !req.Method.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	var result *Settlement
	err := s.store.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		result = nil

		ride, err := ownedRide(ctx, repos.Rides.GetByIDForUpdate, req.UserID, req.RideID)
		if err != nil {
			return err
		}

		if ride.IsSettled() {
			if ride.PaymentMethod == req.Method {
				result = &Settlement{Ride: ride, Replayed: true}
				return nil
			}
			return fmt.Errorf("%w: paid by %s", ErrAlreadySettled, ride.PaymentMethod)
		}

		if ride.Status != domain.RideStatusCompleted {
			return fmt.Errorf("%w: ride %s is %s, payment needs COMPLETED", ErrInvalidState, ride.ID, ride.Status)
		}

		var txn *domain.Transaction
		if req.Method == domain.PaymentMethodWallet && ride.Fare.IsPositive() {
			txn, err = repos.Ledger.Debit(ctx, ride.UserID, ride.Fare, "Ride payment for "+ride.ID, ride.ID)
			if err != nil {
				if errors.Is(err, repository.ErrInsufficientBalance) {
					return fmt.Errorf("%w: %w", ErrPaymentFailed, err)
				}
				return err
			}
		}

		settled, err := repos.Rides.SetPaymentMethod(ctx, ride.ID, req.Method)
		if err != nil {
			return err
		}

		result = &Settlement{Ride: settled, Transaction: txn}
		return nil
	})
	if err != nil {
		if s.notificationService != nil && errors.Is(err, ErrPaymentFailed) {
			_ = s.notificationService.NotifyPaymentFailed(ctx, req.UserID, req.RideID, req.Method, err)
		}
		return nil, err
	}

	if s.notificationService != nil && !result.Replayed {
		_ = s.notificationService.NotifyPaymentSuccess(ctx, result.Ride)
	}
	return result, nil
}
