package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"ridewallet/internal/domain"
	"ridewallet/internal/repository"
)

func seedUser(t *testing.T, s *Store, id string, balance int64) {
	t.Helper()
	ctx := context.Background()
	repos := s.Repositories()
	if err := repos.Users.Create(ctx, &domain.User{ID: id, Name: "Test", Email: id + "@example.com"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if balance > 0 {
		if _, err := repos.Ledger.Credit(ctx, id, decimal.NewFromInt(balance), "seed", ""); err != nil {
			t.Fatalf("seed balance: %v", err)
		}
	}
}

func seedRide(t *testing.T, s *Store, id, userID string, status domain.RideStatus) {
	t.Helper()
	now := time.Now()
	ride := &domain.Ride{
		ID: id, UserID: userID, Pickup: "A", Dropoff: "B", Type: domain.RideTypeBike,
		Fare: decimal.NewFromInt(80), OTP: "1234", Status: status, CreatedAt: now, UpdatedAt: now,
	}
	if err := s.Repositories().Rides.Create(context.Background(), ride); err != nil {
		t.Fatalf("create ride: %v", err)
	}
}

func TestUnitOfWorkRollsBackOnError(t *testing.T) {
	s := NewStore()
	seedUser(t, s, "u1", 100)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Ledger.Debit(ctx, "u1", decimal.NewFromInt(40), "x", ""); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	balance, _ := s.Repositories().Ledger.GetBalance(ctx, "u1")
	if !balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected balance 100 after rollback, got %s", balance)
	}
	txns, _ := s.Repositories().Ledger.ListTransactions(ctx, "u1", 0)
	if len(txns) != 1 {
		t.Errorf("expected only the seed transaction, got %d", len(txns))
	}
}

func TestUnitOfWorkCommits(t *testing.T) {
	s := NewStore()
	seedUser(t, s, "u1", 100)
	seedRide(t, s, "r1", "u1", domain.RideStatusPending)
	ctx := context.Background()

	err := s.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Rides.UpdateStatus(ctx, "r1", domain.RideStatusOngoing); err != nil {
			return err
		}
		_, err := repos.Rides.UpdateStatus(ctx, "r1", domain.RideStatusCompleted)
		return err
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ride, _ := s.Repositories().Rides.GetByID(ctx, "r1")
	if ride.Status != domain.RideStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", ride.Status)
	}
}

func TestDebitNeverOverdraws(t *testing.T) {
	s := NewStore()
	seedUser(t, s, "u1", 50)
	ctx := context.Background()
	ledger := s.Repositories().Ledger

	_, err := ledger.Debit(ctx, "u1", decimal.NewFromInt(80), "x", "")
	if !errors.Is(err, repository.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	balance, _ := ledger.GetBalance(ctx, "u1")
	if !balance.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected balance unchanged at 50, got %s", balance)
	}
}

func TestConcurrentDebits(t *testing.T) {
	s := NewStore()
	seedUser(t, s, "u1", 100)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
				_, err := repos.Ledger.Debit(ctx, "u1", decimal.NewFromInt(80), "x", "")
				return err
			})
		}(i)
	}
	wg.Wait()

	succeeded, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, repository.ErrInsufficientBalance):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || rejected != 1 {
		t.Fatalf("expected one success and one rejection, got %d/%d", succeeded, rejected)
	}
	balance, _ := s.Repositories().Ledger.GetBalance(ctx, "u1")
	if !balance.Equal(decimal.NewFromInt(20)) {
		t.Errorf("expected final balance 20, got %s", balance)
	}
}

func TestListOrdering(t *testing.T) {
	s := NewStore()
	seedUser(t, s, "u1", 0)
	seedUser(t, s, "u2", 0)
	ctx := context.Background()
	ledger := s.Repositories().Ledger

	for i := 1; i <= 3; i++ {
		if _, err := ledger.Credit(ctx, "u1", decimal.NewFromInt(int64(i)), "c", ""); err != nil {
			t.Fatalf("credit: %v", err)
		}
	}
	if _, err := ledger.Credit(ctx, "u2", decimal.NewFromInt(9), "c", ""); err != nil {
		t.Fatalf("credit: %v", err)
	}

	txns, err := ledger.ListTransactions(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txns) != 2 || !txns[0].Amount.Equal(decimal.NewFromInt(3)) || !txns[1].Amount.Equal(decimal.NewFromInt(2)) {
		t.Errorf("expected newest two entries, got %+v", txns)
	}

	seedRide(t, s, "r1", "u1", domain.RideStatusPending)
	seedRide(t, s, "r2", "u2", domain.RideStatusPending)
	seedRide(t, s, "r3", "u1", domain.RideStatusPending)
	rides, _ := s.Repositories().Rides.ListByUser(ctx, "u1", 0)
	if len(rides) != 2 || rides[0].ID != "r3" || rides[1].ID != "r1" {
		t.Errorf("unexpected ride order: %v, %v", rides[0].ID, rides[1].ID)
	}
}

func TestReturnedEntitiesAreCopies(t *testing.T) {
	s := NewStore()
	seedUser(t, s, "u1", 0)
	seedRide(t, s, "r1", "u1", domain.RideStatusPending)
	ctx := context.Background()

	ride, _ := s.Repositories().Rides.GetByID(ctx, "r1")
	ride.Fare = decimal.NewFromInt(1)
	ride.Status = domain.RideStatusCompleted

	again, _ := s.Repositories().Rides.GetByID(ctx, "r1")
	if !again.Fare.Equal(decimal.NewFromInt(80)) || again.Status != domain.RideStatusPending {
		t.Errorf("stored ride was mutated through a returned pointer: %+v", again)
	}
}

func TestReviewUniquePerRide(t *testing.T) {
	s := NewStore()
	seedUser(t, s, "u1", 0)
	seedRide(t, s, "r1", "u1", domain.RideStatusCompleted)
	reviews := s.Repositories().Reviews
	ctx := context.Background()

	if err := reviews.Create(ctx, &domain.Review{ID: "v1", RideID: "r1", Rating: 5}); err != nil {
		t.Fatalf("first review: %v", err)
	}
	if err := reviews.Create(ctx, &domain.Review{ID: "v2", RideID: "r1", Rating: 1}); !errors.Is(err, repository.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestConcurrentConflictingTransitions(t *testing.T) {
	s := NewStore()
	seedUser(t, s, "u1", 0)
	seedRide(t, s, "r1", "u1", domain.RideStatusOngoing)
	ctx := context.Background()

	targets := []domain.RideStatus{domain.RideStatusCompleted, domain.RideStatusCancelled}
	errs := make([]error, len(targets))

	var wg sync.WaitGroup
	for i, status := range targets {
		wg.Add(1)
		go func(i int, status domain.RideStatus) {
			defer wg.Done()
			_, errs[i] = s.Repositories().Rides.UpdateStatus(ctx, "r1", status)
		}(i, status)
	}
	wg.Wait()

	winners := 0
	var winner domain.RideStatus
	for i, err := range errs {
		switch {
		case err == nil:
			winners++
			winner = targets[i]
		case !errors.Is(err, repository.ErrInvalidTransition):
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winning transition, got %d", winners)
	}

	ride, err := s.Repositories().Rides.GetByID(ctx, "r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ride.Status != winner {
		t.Errorf("expected %s, got %s", winner, ride.Status)
	}
}
