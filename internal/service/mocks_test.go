package service_test

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"ridewallet/internal/domain"
	"ridewallet/internal/repository"
	"ridewallet/internal/repository/memory"
	"ridewallet/internal/service"
)

// ──────────────────────────────────────────────
// MOCK DRIVER ASSIGNER
// ──────────────────────────────────────────────

// MockDriverAssigner always hands out the same driver.
type MockDriverAssigner struct {
	Driver      domain.Driver
	AssignError error
	AssignCount int32
}

func (m *MockDriverAssigner) Assign(ctx context.Context, rideType domain.RideType) (domain.Driver, error) {
	atomic.AddInt32(&m.AssignCount, 1)
	if m.AssignError != nil {
		return domain.Driver{}, m.AssignError
	}
	return m.Driver, nil
}

// ──────────────────────────────────────────────
// MOCK OTP GENERATOR
// ──────────────────────────────────────────────

// SequenceOTPGenerator returns the configured codes in order, repeating the last one.
type SequenceOTPGenerator struct {
	mu    sync.Mutex
	codes []string
}

func NewSequenceOTPGenerator(codes ...string) *SequenceOTPGenerator {
	return &SequenceOTPGenerator{codes: codes}
}

func (g *SequenceOTPGenerator) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	code := g.codes[0]
	if len(g.codes) > 1 {
		g.codes = g.codes[1:]
	}
	return code, nil
}

// ──────────────────────────────────────────────
// FIXTURE
// ──────────────────────────────────────────────

type fixture struct {
	store    *memory.Store
	otps     *service.InMemoryOTPRegistry
	drivers  *MockDriverAssigner
	rides    *service.RideService
	payments *service.PaymentService
	wallet   *service.WalletService
	receipts *service.ReceiptService
	users    *service.UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	otps := service.NewInMemoryOTPRegistry()
	drivers := &MockDriverAssigner{Driver: domain.Driver{Name: "Rajesh Kumar", Phone: "+91 98765 43210", Rating: 4.8, DistanceKm: 0.5}}
	notifier := service.NewNotificationService()

	return &fixture{
		store:    store,
		otps:     otps,
		drivers:  drivers,
		rides:    service.NewRideService(store, drivers, nil, otps, notifier),
		payments: service.NewPaymentService(store, notifier),
		wallet:   service.NewWalletService(store, notifier),
		receipts: service.NewReceiptService(store, notifier),
		users:    service.NewUserService(store.Repositories().Users),
	}
}

func (f *fixture) user(t *testing.T, balance int64) string {
	t.Helper()
	ctx := context.Background()
	u, err := f.users.Register(ctx, service.RegisterRequest{Name: "Asha", Email: randomEmail()})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if balance > 0 {
		if _, err := f.wallet.AddCredits(ctx, u.ID, decimal.NewFromInt(balance)); err != nil {
			t.Fatalf("add credits: %v", err)
		}
	}
	return u.ID
}

func (f *fixture) book(t *testing.T, userID string, fare int64) *domain.Ride {
	t.Helper()
	ride, err := f.rides.BookRide(context.Background(), service.BookRideRequest{
		UserID:  userID,
		Pickup:  "MG Road",
		Dropoff: "Indiranagar",
		Type:    domain.RideTypeBike,
		Fare:    decimal.NewFromInt(fare),
	})
	if err != nil {
		t.Fatalf("book ride: %v", err)
	}
	return ride
}

// completed books a ride and drives it to COMPLETED.
func (f *fixture) completed(t *testing.T, userID string, fare int64) *domain.Ride {
	t.Helper()
	ctx := context.Background()
	ride := f.book(t, userID, fare)
	if _, err := f.rides.StartRide(ctx, userID, ride.ID); err != nil {
		t.Fatalf("start ride: %v", err)
	}
	done, err := f.rides.CompleteRide(ctx, userID, ride.ID)
	if err != nil {
		t.Fatalf("complete ride: %v", err)
	}
	return done
}

func (f *fixture) balance(t *testing.T, userID string) decimal.Decimal {
	t.Helper()
	b, err := f.wallet.Balance(context.Background(), userID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	return b
}

func (f *fixture) transactions(t *testing.T, userID string) []*domain.Transaction {
	t.Helper()
	txns, err := f.store.Repositories().Ledger.ListTransactions(context.Background(), userID, repository.MaxListLimit)
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	return txns
}

var emailSeq int64

func randomEmail() string {
	n := atomic.AddInt64(&emailSeq, 1)
	return "rider" + strconv.FormatInt(n, 10) + "@example.com"
}
