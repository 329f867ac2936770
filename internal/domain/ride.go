package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusPending   RideStatus = "PENDING"
	RideStatusOngoing   RideStatus = "ONGOING"
	RideStatusCompleted RideStatus = "COMPLETED"
	RideStatusCancelled RideStatus = "CANCELLED"
)

// RideType is the vehicle class booked for a ride.
type RideType string

const (
	RideTypeBike     RideType = "BIKE"
	RideTypeBikeLite RideType = "BIKE_LITE"
	RideTypeAuto     RideType = "AUTO"
)

// RideTypes lists every bookable ride type.
var RideTypes = []RideType{RideTypeBike, RideTypeBikeLite, RideTypeAuto}

// Valid reports whether t is a known ride type.
func (t RideType) Valid() bool {
	switch t {
	case RideTypeBike, RideTypeBikeLite, RideTypeAuto:
		return true
	}
	return false
}

// PaymentMethod represents the payment method used to settle a ride.
// The zero value means the ride has not been settled.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodWallet PaymentMethod = "WALLET"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCash || m == PaymentMethodWallet
}

// Ride represents a booked trip.
type Ride struct {
	ID            string
	UserID        string
	Pickup        string
	Dropoff       string
	Type          RideType
	Fare          decimal.Decimal // fixed at booking
	OTP           string
	Status        RideStatus
	PaymentMethod PaymentMethod
	DriverName    string
	DriverPhone   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsSettled reports whether a payment method has been recorded.
func (r *Ride) IsSettled() bool {
	return r.PaymentMethod != ""
}

// IsActive reports whether the ride still holds its OTP.
func (r *Ride) IsActive() bool {
	return r.Status == RideStatusPending || r.Status == RideStatusOngoing
}
