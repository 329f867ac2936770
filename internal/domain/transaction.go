package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a wallet ledger entry.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "CREDIT"
	TransactionTypeDebit  TransactionType = "DEBIT"
)

// Transaction is an append-only wallet ledger entry.
type Transaction struct {
	ID           string
	UserID       string
	RideID       string // empty unless the entry pays for a ride
	Amount       decimal.Decimal
	Type         TransactionType
	Description  string
	BalanceAfter decimal.Decimal
	CreatedAt    time.Time
}

// MaxAmount is the largest value a NUMERIC(12,2) money column holds.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// IsMoney reports whether d fits a money column: whole cents, at most MaxAmount.
// The sign is left to the caller.
func IsMoney(d decimal.Decimal) bool {
	return d.Equal(d.Round(2)) && d.Abs().LessThanOrEqual(MaxAmount)
}
