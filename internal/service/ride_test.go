package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"ridewallet/internal/domain"
	"ridewallet/internal/repository"
	"ridewallet/internal/service"
)

// ──────────────────────────────────────────────
// 1. BOOKING
// ──────────────────────────────────────────────

func TestBookRide_ValidInput_Succeeds(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := f.user(t, 100)

	ride, err := f.rides.BookRide(context.Background(), service.BookRideRequest{
		UserID:  userID,
		Pickup:  "  MG Road ",
		Dropoff: "Indiranagar",
		Type:    domain.RideTypeAuto,
		Fare:    decimal.RequireFromString("96.50"),
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if ride.Status != domain.RideStatusPending {
		t.Errorf("expected PENDING, got %s", ride.Status)
	}
	if ride.Pickup != "MG Road" {
		t.Errorf("expected trimmed pickup, got %q", ride.Pickup)
	}
	if len(ride.OTP) != 4 || ride.OTP < "1000" || ride.OTP > "9999" {
		t.Errorf("expected 4 digit otp, got %q", ride.OTP)
	}
	if ride.DriverName != "Rajesh Kumar" || ride.PaymentMethod != "" {
		t.Errorf("unexpected ride: %+v", ride)
	}
	if !f.balance(t, userID).Equal(decimal.NewFromInt(100)) {
		t.Error("booking must not touch the wallet")
	}
	if got := len(f.transactions(t, userID)); got != 1 {
		t.Errorf("expected only the top-up transaction, got %d", got)
	}
}

func TestBookRide_InvalidInput_Fails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := f.user(t, 0)

	testCases := []struct {
		name    string
		req     service.BookRideRequest
		wantErr error
	}{
		{"blank pickup", service.BookRideRequest{UserID: userID, Pickup: "  ", Dropoff: "B", Type: domain.RideTypeBike}, service.ErrEmptyPickup},
		{"blank dropoff", service.BookRideRequest{UserID: userID, Pickup: "A", Dropoff: "", Type: domain.RideTypeBike}, service.ErrEmptyDropoff},
		{"unknown type", service.BookRideRequest{UserID: userID, Pickup: "A", Dropoff: "B", Type: "CAR"}, service.ErrInvalidRideType},
		{"negative fare", service.BookRideRequest{UserID: userID, Pickup: "A", Dropoff: "B", Type: domain.RideTypeBike, Fare: decimal.NewFromInt(-1)}, service.ErrInvalidFare},
		{"sub-cent fare", service.BookRideRequest{UserID: userID, Pickup: "A", Dropoff: "B", Type: domain.RideTypeBike, Fare: decimal.RequireFromString("60.005")}, service.ErrInvalidFare},
		{"fare beyond column range", service.BookRideRequest{UserID: userID, Pickup: "A", Dropoff: "B", Type: domain.RideTypeBike, Fare: decimal.RequireFromString("10000000000")}, service.ErrInvalidFare},
		{"no user", service.BookRideRequest{Pickup: "A", Dropoff: "B", Type: domain.RideTypeBike}, service.ErrInvalidUserID},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.rides.BookRide(context.Background(), tc.req)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if !errors.Is(err, service.ErrInvalidInput) {
				t.Errorf("expected an invalid input error, got %v", err)
			}
		})
	}
}

func TestBookRide_UnknownUser_NotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.rides.BookRide(context.Background(), service.BookRideRequest{
		UserID: "ghost", Pickup: "A", Dropoff: "B", Type: domain.RideTypeBike,
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBookRide_SuppliedDriver_SkipsPool(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := f.user(t, 0)

	ride, err := f.rides.BookRide(context.Background(), service.BookRideRequest{
		UserID: userID, Pickup: "A", Dropoff: "B", Type: domain.RideTypeBikeLite,
		DriverName: "Priya Sharma", DriverPhone: "+91 98765 43212",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if ride.DriverName != "Priya Sharma" || f.drivers.AssignCount != 0 {
		t.Errorf("expected supplied driver to be kept, got %s (pool calls %d)", ride.DriverName, f.drivers.AssignCount)
	}
}

func TestBookRide_NoDriver_Fails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := f.user(t, 0)
	f.drivers.AssignError = service.ErrNoDriverAvailable

	_, err := f.rides.BookRide(context.Background(), service.BookRideRequest{
		UserID: userID, Pickup: "A", Dropoff: "B", Type: domain.RideTypeBike,
	})
	if !errors.Is(err, service.ErrNoDriverAvailable) {
		t.Fatalf("expected ErrNoDriverAvailable, got %v", err)
	}
}

func TestBookRide_OTPUniqueAmongActiveRides(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := f.user(t, 0)
	gen := NewSequenceOTPGenerator("4821", "4821", "7310")
	rides := service.NewRideService(f.store, f.drivers, gen, f.otps, nil)
	req := service.BookRideRequest{UserID: userID, Pickup: "A", Dropoff: "B", Type: domain.RideTypeBike}

	first, err := rides.BookRide(context.Background(), req)
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}
	second, err := rides.BookRide(context.Background(), req)
	if err != nil {
		t.Fatalf("second booking: %v", err)
	}
	if first.OTP != "4821" || second.OTP != "7310" {
		t.Errorf("expected distinct otps 4821/7310, got %s/%s", first.OTP, second.OTP)
	}
}

func TestBookRide_OTPExhausted_Fails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := f.user(t, 0)
	rides := service.NewRideService(f.store, f.drivers, NewSequenceOTPGenerator("1111"), f.otps, nil)
	req := service.BookRideRequest{UserID: userID, Pickup: "A", Dropoff: "B", Type: domain.RideTypeBike}

	if _, err := rides.BookRide(context.Background(), req); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := rides.BookRide(context.Background(), req); !errors.Is(err, service.ErrOTPExhausted) {
		t.Fatalf("expected ErrOTPExhausted, got %v", err)
	}
}

func TestBookRide_OTPReleasedWhenRideEnds(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := f.user(t, 0)
	rides := service.NewRideService(f.store, f.drivers, NewSequenceOTPGenerator("2222"), f.otps, nil)
	req := service.BookRideRequest{UserID: userID, Pickup: "A", Dropoff: "B", Type: domain.RideTypeBike}

	ride, err := rides.BookRide(context.Background(), req)
	if err != nil {
		t.Fatalf("booking: %v", err)
	}
	if _, err := rides.CancelRide(context.Background(), userID, ride.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	again, err := rides.BookRide(context.Background(), req)
	if err != nil {
		t.Fatalf("expected otp to be free after cancel, got %v", err)
	}
	if again.OTP != "2222" {
		t.Errorf("expected otp 2222, got %s", again.OTP)
	}
}

// ──────────────────────────────────────────────
// 2. STATE MACHINE
// ──────────────────────────────────────────────

func TestRideLifecycle_ConcurrentCancelAndComplete(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := f.user(t, 0)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		ride := f.book(t, userID, 80)
		if _, err := f.rides.StartRide(ctx, userID, ride.ID); err != nil {
			t.Fatalf("start: %v", err)
		}

		var (
			wg                     sync.WaitGroup
			cancelled, completed   *domain.Ride
			cancelErr, completeErr error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			cancelled, cancelErr = f.rides.CancelRide(ctx, userID, ride.ID)
		}()
		go func() {
			defer wg.Done()
			completed, completeErr = f.rides.CompleteRide(ctx, userID, ride.ID)
		}()
		wg.Wait()

		var want domain.RideStatus
		switch {
		case cancelErr == nil && errors.Is(completeErr, repository.ErrInvalidTransition):
			want = cancelled.Status
		case completeErr == nil && errors.Is(cancelErr, repository.ErrInvalidTransition):
			want = completed.Status
		default:
			t.Fatalf("expected exactly one winner, got cancel=%v complete=%v", cancelErr, completeErr)
		}

		final, err := f.rides.GetRide(ctx, userID, ride.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if final.Status != want {
			t.Fatalf("final status %s does not match winner %s", final.Status, want)
		}
	}
}

func TestRideLifecycle_StartAndComplete(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := f.user(t, 0)
	ride := f.book(t, userID, 80)
	ctx := context.Background()

	started, err := f.rides.StartRide(ctx, userID, ride.ID)
	if err != nil || started.Status != domain.RideStatusOngoing {
		t.Fatalf("start: status=%v err=%v", started, err)
	}
	done, err := f.rides.CompleteRide(ctx, userID, ride.ID)
	if err != nil || done.Status != domain.RideStatusCompleted {
		t.Fatalf("complete: status=%v err=%v", done, err)
	}
	if !done.Fare.Equal(ride.Fare) || done.OTP != ride.OTP || done.DriverName != ride.DriverName {
		t.Errorf("booking fields changed across transitions: %+v vs %+v", done, ride)
	}
}

func TestRideLifecycle_StartCompletedRide_Fails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := f.user(t, 0)
	ride := f.completed(t, userID, 80)

	_, err := f.rides.StartRide(context.Background(), userID, ride.ID)
	if !errors.Is(err, repository.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	got, _ := f.rides.GetRide(context.Background(), userID, ride.ID)
	if got.Status != domain.RideStatusCompleted {
		t.Errorf("expected status to stay COMPLETED, got %s", got.Status)
	}
}

func TestRideLifecycle_CancelThenStart_Fails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := f.user(t, 0)
	ride := f.book(t, userID, 80)
	ctx := context.Background()

	if _, err := f.rides.CancelRide(ctx, userID, ride.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.rides.StartRide(ctx, userID, ride.ID); !errors.Is(err, repository.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestRideLifecycle_IllegalTransitions(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := f.user(t, 0)
	ctx := context.Background()

	pending := f.book(t, userID, 50)
	if _, err := f.rides.CompleteRide(ctx, userID, pending.ID); !errors.Is(err, repository.ErrInvalidTransition) {
		t.Errorf("PENDING->COMPLETED: expected ErrInvalidTransition, got %v", err)
	}

	done := f.completed(t, userID, 50)
	if _, err := f.rides.CancelRide(ctx, userID, done.ID); !errors.Is(err, repository.ErrInvalidTransition) {
		t.Errorf("COMPLETED->CANCELLED: expected ErrInvalidTransition, got %v", err)
	}
}

func TestRideLifecycle_OtherUsersRide_NotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	owner := f.user(t, 0)
	other := f.user(t, 0)
	ride := f.book(t, owner, 80)
	ctx := context.Background()

	if _, err := f.rides.GetRide(ctx, other, ride.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("get: expected ErrNotFound, got %v", err)
	}
	if _, err := f.rides.StartRide(ctx, other, ride.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("start: expected ErrNotFound, got %v", err)
	}
	got, _ := f.rides.GetRide(ctx, owner, ride.ID)
	if got.Status != domain.RideStatusPending {
		t.Errorf("expected ride untouched, got %s", got.Status)
	}
}

func TestListRides_NewestFirst(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := f.user(t, 0)
	first := f.book(t, userID, 10)
	second := f.book(t, userID, 20)

	rides, err := f.rides.ListRides(context.Background(), userID, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rides) != 2 || rides[0].ID != second.ID || rides[1].ID != first.ID {
		t.Errorf("expected newest first, got %+v", rides)
	}
}

// ──────────────────────────────────────────────
// 3. REVIEWS
// ──────────────────────────────────────────────

func TestSubmitReview_Rules(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := f.user(t, 0)
	ctx := context.Background()
	ride := f.completed(t, userID, 80)

	_, err := f.rides.SubmitReview(ctx, service.SubmitReviewRequest{RideID: ride.ID, UserID: userID, Rating: 5})
	if !errors.Is(err, service.ErrInvalidState) {
		t.Fatalf("unpaid ride: expected ErrInvalidState, got %v", err)
	}

	if _, err := f.payments.Settle(ctx, service.SettleRequest{RideID: ride.ID, UserID: userID, Method: domain.PaymentMethodCash}); err != nil {
		t.Fatalf("settle: %v", err)
	}

	for _, rating := range []int{0, 6} {
		_, err := f.rides.SubmitReview(ctx, service.SubmitReviewRequest{RideID: ride.ID, UserID: userID, Rating: rating})
		if !errors.Is(err, service.ErrInvalidRating) {
			t.Errorf("rating %d: expected ErrInvalidRating, got %v", rating, err)
		}
	}

	review, err := f.rides.SubmitReview(ctx, service.SubmitReviewRequest{RideID: ride.ID, UserID: userID, Rating: 4, Comment: " smooth ride "})
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if review.Comment != "smooth ride" {
		t.Errorf("expected trimmed comment, got %q", review.Comment)
	}

	_, err = f.rides.SubmitReview(ctx, service.SubmitReviewRequest{RideID: ride.ID, UserID: userID, Rating: 1})
	if !errors.Is(err, service.ErrReviewExists) || !errors.Is(err, repository.ErrAlreadyExists) {
		t.Fatalf("second review: expected ErrReviewExists, got %v", err)
	}
}

func TestGetRideView_Stages(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := f.user(t, 100)
	ctx := context.Background()
	ride := f.book(t, userID, 80)

	stage := func() domain.Stage {
		t.Helper()
		view, err := f.rides.GetRideView(ctx, userID, ride.ID)
		if err != nil {
			t.Fatalf("view: %v", err)
		}
		return view.Stage
	}

	if s := stage(); s != domain.StageBooked {
		t.Errorf("expected BOOKED, got %s", s)
	}
	f.rides.StartRide(ctx, userID, ride.ID)
	if s := stage(); s != domain.StageRiding {
		t.Errorf("expected RIDING, got %s", s)
	}
	f.rides.CompleteRide(ctx, userID, ride.ID)
	if s := stage(); s != domain.StagePayment {
		t.Errorf("expected PAYMENT, got %s", s)
	}
	f.payments.Settle(ctx, service.SettleRequest{RideID: ride.ID, UserID: userID, Method: domain.PaymentMethodWallet})
	if s := stage(); s != domain.StageReview {
		t.Errorf("expected REVIEW, got %s", s)
	}
	f.rides.SubmitReview(ctx, service.SubmitReviewRequest{RideID: ride.ID, UserID: userID, Rating: 5})
	if s := stage(); s != domain.StageCompleted {
		t.Errorf("expected COMPLETED, got %s", s)
	}
}
