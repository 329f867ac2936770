package service

import (
	"errors"
	"fmt"

	"ridewallet/internal/repository"
)

var (
	// ErrInvalidInput is the kind shared by all request validation errors.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidUserID is returned when user ID is empty.
	ErrInvalidUserID = fmt.Errorf("%w: invalid user id", ErrInvalidInput)

	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = fmt.Errorf("%w: invalid ride id", ErrInvalidInput)

	// ErrEmptyPickup is returned when the pickup location is blank.
	ErrEmptyPickup = fmt.Errorf("%w: pickup location is required", ErrInvalidInput)

	// ErrEmptyDropoff is returned when the dropoff location is blank.
	ErrEmptyDropoff = fmt.Errorf("%w: dropoff location is required", ErrInvalidInput)

	// ErrInvalidRideType is returned for an unknown ride type.
	ErrInvalidRideType = fmt.Errorf("%w: invalid ride type", ErrInvalidInput)

	// ErrInvalidFare is returned when the fare is negative, has sub-cent digits or is too large.
	ErrInvalidFare = fmt.Errorf("%w: fare must be a non-negative amount in whole cents", ErrInvalidInput)

	// ErrInvalidRating is returned when a rating is outside 1-5.
	ErrInvalidRating = fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)

	// ErrInvalidPaymentMethod is returned when payment method is invalid.
	ErrInvalidPaymentMethod = fmt.Errorf("%w: invalid payment method", ErrInvalidInput)

	// ErrInvalidAmount is returned when a wallet amount is not positive or has more than two decimals.
	ErrInvalidAmount = fmt.Errorf("%w: amount must be positive with at most two decimals", ErrInvalidInput)

	// ErrInvalidName is returned when a user name is blank.
	ErrInvalidName = fmt.Errorf("%w: name is required", ErrInvalidInput)

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = fmt.Errorf("%w: invalid email", ErrInvalidInput)

	// ErrInvalidState is returned when the ride is not in the stage an operation needs.
	ErrInvalidState = errors.New("ride is not in the required state")

	// ErrPaymentFailed is returned when a ride could not be charged.
	ErrPaymentFailed = errors.New("payment failed")

	// ErrAlreadySettled is returned when a settled ride is paid again with another method.
	ErrAlreadySettled = fmt.Errorf("%w: ride already settled", repository.ErrInvalidTransition)

	// ErrReviewExists is returned when a ride is reviewed twice.
	ErrReviewExists = fmt.Errorf("%w: ride already reviewed", repository.ErrAlreadyExists)

	// ErrEmailTaken is returned when registering an email that is already in use.
	ErrEmailTaken = fmt.Errorf("%w: email already registered", repository.ErrAlreadyExists)

	// ErrNoDriverAvailable is returned when no driver can be matched.
	ErrNoDriverAvailable = errors.New("no driver available")

	// ErrOTPExhausted is returned when no free OTP could be reserved.
	ErrOTPExhausted = errors.New("could not reserve a unique otp")
)
