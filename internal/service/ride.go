package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ridewallet/internal/domain"
	"ridewallet/internal/repository"
)

// DriverAssigner picks a driver for a new ride.
type DriverAssigner interface {
	Assign(ctx context.Context, rideType domain.RideType) (domain.Driver, error)
}

// RideService drives rides through their lifecycle.
type RideService struct {
	store               repository.Store
	drivers             DriverAssigner
	otps                OTPGenerator
	otpRegistry         OTPRegistry
	notificationService *NotificationService
}

// NewRideService creates a new RideService.
func NewRideService(
	store repository.Store,
	drivers DriverAssigner,
	otps OTPGenerator,
	otpRegistry OTPRegistry,
	notificationService *NotificationService,
) *RideService {
	if otps == nil {
		otps = RandomOTPGenerator{}
	}
	if otpRegistry == nil {
		otpRegistry = NewInMemoryOTPRegistry()
	}
	return &RideService{
		store:               store,
		drivers:             drivers,
		otps:                otps,
		otpRegistry:         otpRegistry,
		notificationService: notificationService,
	}
}

// BookRideRequest contains the parameters for booking a ride.
type BookRideRequest struct {
	UserID      string
	Pickup      string
	Dropoff     string
	Type        domain.RideType
	Fare        decimal.Decimal
	DriverName  string // optional: assigned from the pool when empty
	DriverPhone string
}

// RideView is a ride together with its review and derived booking stage.
type RideView struct {
	Ride   *domain.Ride
	Review *domain.Review
	Stage  domain.Stage
}

// SubmitReviewRequest contains the parameters for reviewing a ride.
type SubmitReviewRequest struct {
	RideID  string
	UserID  string
	Rating  int
	Comment string
}

// BookRide creates a PENDING ride. The wallet is not touched until settlement.
func (s *RideService) BookRide(ctx context.Context, req BookRideRequest) (*domain.Ride, error) {
	req, err := s.validateBookRequest(req)
	if err != nil {
		return nil, err
	}

	repos := s.store.Repositories()
	if _, err := repos.Users.GetByID(ctx, req.UserID); err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if req.DriverName == "" {
		if s.drivers == nil {
			return nil, ErrNoDriverAvailable
		}
		driver, err := s.drivers.Assign(ctx, req.Type)
		if err != nil {
			return nil, err
		}
		req.DriverName, req.DriverPhone = driver.Name, driver.Phone
	}

	rideID := uuid.New().String()
	otp, err := s.reserveOTP(ctx, rideID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ride := &domain.Ride{
		ID:          rideID,
		UserID:      req.UserID,
		Pickup:      req.Pickup,
		Dropoff:     req.Dropoff,
		Type:        req.Type,
		Fare:        req.Fare,
		OTP:         otp,
		Status:      domain.RideStatusPending,
		DriverName:  req.DriverName,
		DriverPhone: req.DriverPhone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := repos.Rides.Create(ctx, ride); err != nil {
		s.releaseOTP(ctx, otp, rideID)
		return nil, fmt.Errorf("failed to create ride: %w", err)
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyRideBooked(ctx, ride)
	}

	return ride, nil
}

// StartRide moves a PENDING ride to ONGOING.
func (s *RideService) StartRide(ctx context.Context, userID, rideID string) (*domain.Ride, error) {
	ride, err := s.transition(ctx, userID, rideID, domain.RideStatusOngoing)
	if err != nil {
		return nil, err
	}
	if s.notificationService != nil {
		_ = s.notificationService.NotifyRideStarted(ctx, ride)
	}
	return ride, nil
}

// CompleteRide moves an ONGOING ride to COMPLETED. Payment follows separately.
func (s *RideService) CompleteRide(ctx context.Context, userID, rideID string) (*domain.Ride, error) {
	ride, err := s.transition(ctx, userID, rideID, domain.RideStatusCompleted)
	if err != nil {
		return nil, err
	}
	if s.notificationService != nil {
		_ = s.notificationService.NotifyRideCompleted(ctx, ride)
	}
	return ride, nil
}

// CancelRide cancels a PENDING or ONGOING ride.
func (s *RideService) CancelRide(ctx context.Context, userID, rideID string) (*domain.Ride, error) {
	ride, err := s.transition(ctx, userID, rideID, domain.RideStatusCancelled)
	if err != nil {
		return nil, err
	}
	if s.notificationService != nil {
		_ = s.notificationService.NotifyRideCancelled(ctx, ride)
	}
	return ride, nil
}

// GetRide returns a ride owned by userID.
func (s *RideService) GetRide(ctx context.Context, userID, rideID string) (*domain.Ride, error) {
	if err := validateIDs(userID, rideID); err != nil {
		return nil, err
	}
	return ownedRide(ctx, s.store.Repositories().Rides.GetByID, userID, rideID)
}

// GetRideView returns a ride with its review and booking stage.
func (s *RideService) GetRideView(ctx context.Context, userID, rideID string) (*RideView, error) {
	ride, err := s.GetRide(ctx, userID, rideID)
	if err != nil {
		return nil, err
	}

	review, err := s.store.Repositories().Reviews.GetByRideID(ctx, rideID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to load review: %w", err)
	}

	return &RideView{
		Ride:   ride,
		Review: review,
		Stage:  domain.StageOf(ride, review != nil),
	}, nil
}

// ListRides returns the user's rides, newest first.
func (s *RideService) ListRides(ctx context.Context, userID string, limit int) ([]*domain.Ride, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUserID
	}
	return s.store.Repositories().Rides.ListByUser(ctx, userID, limit)
}

// SubmitReview rates a completed and paid ride. Each ride takes one review.
func (s *RideService) SubmitReview(ctx context.Context, req SubmitReviewRequest) (*domain.Review, error) {
	if err := validateIDs(req.UserID, req.RideID); err != nil {
		return nil, err
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}

	review := &domain.Review{
		ID:        uuid.New().String(),
		RideID:    req.RideID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
		CreatedAt: time.Now().UTC(),
	}

	err := s.store.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		ride, err := ownedRide(ctx, repos.Rides.GetByIDForUpdate, req.UserID, req.RideID)
		if err != nil {
			return err
		}
		if ride.Status != domain.RideStatusCompleted || !ride.IsSettled() {
			return fmt.Errorf("%w: ride %s must be completed and paid before review", ErrInvalidState, ride.ID)
		}
		if err := repos.Reviews.Create(ctx, review); err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				return ErrReviewExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

// transition applies one state machine step for the ride's owner.
func (s *RideService) transition(ctx context.Context, userID, rideID string, status domain.RideStatus) (*domain.Ride, error) {
	if err := validateIDs(userID, rideID); err != nil {
		return nil, err
	}

	repos := s.store.Repositories()
	if _, err := ownedRide(ctx, repos.Rides.GetByID, userID, rideID); err != nil {
		return nil, err
	}

	ride, err := repos.Rides.UpdateStatus(ctx, rideID, status)
	if err != nil {
		return nil, err
	}

	if domain.IsTerminal(ride.Status) {
		s.releaseOTP(ctx, ride.OTP, ride.ID)
	}
	return ride, nil
}

func (s *RideService) reserveOTP(ctx context.Context, rideID string) (string, error) {
	for i := 0; i < otpAttempts; i++ {
		otp, err := s.otps.Generate()
		if err != nil {
			return "", err
		}
		ok, err := s.otpRegistry.Reserve(ctx, otp, rideID)
		if err != nil {
			return "", fmt.Errorf("failed to reserve otp: %w", err)
		}
		if ok {
			return otp, nil
		}
	}
	return "", ErrOTPExhausted
}

func (s *RideService) releaseOTP(ctx context.Context, otp, rideID string) {
	if err := s.otpRegistry.Release(ctx, otp, rideID); err != nil {
		log.Printf("failed to release otp %s: %v", otp, err)
	}
}

func (s *RideService) validateBookRequest(req BookRideRequest) (BookRideRequest, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.Pickup = strings.TrimSpace(req.Pickup)
	req.Dropoff = strings.TrimSpace(req.Dropoff)
	req.DriverName = strings.TrimSpace(req.DriverName)
	req.DriverPhone = strings.TrimSpace(req.DriverPhone)

	switch {
	case req.UserID == "":
		return req, ErrInvalidUserID
	case req.Pickup == "":
		return req, ErrEmptyPickup
	case req.Dropoff == "":
		return req, ErrEmptyDropoff
	case !req.Type.Valid():
		return req, ErrInvalidRideType
	case req.Fare.IsNegative(), !domain.IsMoney(req.Fare):
		return req, ErrInvalidFare
	}
	return req, nil
}

func validateIDs(userID, rideID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidUserID
	}
	if strings.TrimSpace(rideID) == "" {
		return ErrInvalidRideID
	}
	return nil
}

// ownedRide loads a ride and hides rides of other users behind ErrNotFound.
func ownedRide(
	ctx context.Context,
	get func(ctx context.Context, id string) (*domain.Ride, error),
	userID, rideID string,
) (*domain.Ride, error) {
	ride, err := get(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.UserID != userID {
		return nil, fmt.Errorf("%w: ride %s", repository.ErrNotFound, rideID)
	}
	return ride, nil
}
