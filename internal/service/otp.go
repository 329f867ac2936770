package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
)

const (
	otpMin = 1000
	otpMax = 9999

	// otpAttempts bounds how many codes booking tries before giving up.
	otpAttempts = 5
)

// OTPGenerator produces ride start codes.
type OTPGenerator interface {
	Generate() (string, error)
}

// RandomOTPGenerator draws 4-digit codes from crypto/rand.
type RandomOTPGenerator struct{}

// Generate returns a code between 1000 and 9999.
func (RandomOTPGenerator) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()+otpMin), nil
}

// OTPRegistry tracks which codes are held by active rides.
type OTPRegistry interface {
	// Reserve claims otp for rideID. It returns false if another ride holds it.
	Reserve(ctx context.Context, otp, rideID string) (bool, error)

	// Release frees otp if rideID still holds it.
	Release(ctx context.Context, otp, rideID string) error
}

// InMemoryOTPRegistry is a process-local OTPRegistry.
type InMemoryOTPRegistry struct {
	mu     sync.Mutex
	active map[string]string
}

// NewInMemoryOTPRegistry creates an empty registry.
func NewInMemoryOTPRegistry() *InMemoryOTPRegistry {
	return &InMemoryOTPRegistry{active: make(map[string]string)}
}

// Reserve claims otp for rideID.
func (r *InMemoryOTPRegistry) Reserve(_ context.Context, otp, rideID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.active[otp]; taken {
		return false, nil
	}
	r.active[otp] = rideID
	return true, nil
}

// Release frees otp if rideID still holds it.
func (r *InMemoryOTPRegistry) Release(_ context.Context, otp, rideID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active[otp] == rideID {
		delete(r.active, otp)
	}
	return nil
}
