package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidTransition is returned when a ride update is not allowed from its current state.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInsufficientBalance is returned when a debit exceeds the wallet balance.
	ErrInsufficientBalance = errors.New("insufficient wallet balance")

	// ErrInvalidAmount is returned for non-positive ledger amounts.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrAlreadyExists is returned when a unique constraint rejects a write.
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrConflict is returned when a concurrent transaction forced a rollback.
	// Units of work retry it before giving up.
	ErrConflict = errors.New("concurrent update conflict")
)
