package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a rider and their wallet.
type User struct {
	ID            string
	Name          string
	Email         string
	WalletBalance decimal.Decimal
	CreatedAt     time.Time
}
