package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt summarises a settled ride.
type Receipt struct {
	ID            string
	RideID        string
	UserID        string
	UserName      string
	Pickup        string
	Dropoff       string
	Type          RideType
	DriverName    string
	DriverPhone   string
	Fare          decimal.Decimal
	PaymentMethod PaymentMethod
	TransactionID string // set for wallet payments
	BookedAt      time.Time
	SettledAt     time.Time
	IssuedAt      time.Time
}
