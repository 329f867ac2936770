// Package dispatch provides the mock driver pool and fare estimator that
// stand in for real matching and routing.
package dispatch

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"

	"ridewallet/internal/domain"
)

// ErrEmptyPool is returned when the pool has no drivers.
var ErrEmptyPool = errors.New("driver pool is empty")

// DefaultDrivers is the pool offered to riders.
var DefaultDrivers = []domain.Driver{
	{Name: "Rajesh Kumar", Phone: "+91 98765 43210", Rating: 4.8, DistanceKm: 0.5},
	{Name: "Amit Singh", Phone: "+91 98765 43211", Rating: 4.6, DistanceKm: 0.8},
	{Name: "Priya Sharma", Phone: "+91 98765 43212", Rating: 4.9, DistanceKm: 1.2},
	{Name: "Vikram Patel", Phone: "+91 98765 43213", Rating: 4.7, DistanceKm: 1.5},
}

// DriverPool picks a random driver for each ride.
type DriverPool struct {
	mu      sync.Mutex
	rnd     *rand.Rand
	drivers []domain.Driver
}

// NewDriverPool creates a pool over drivers. A nil rnd uses a randomly seeded source.
func NewDriverPool(drivers []domain.Driver, rnd *rand.Rand) *DriverPool {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &DriverPool{
		rnd:     rnd,
		drivers: append([]domain.Driver(nil), drivers...),
	}
}

// List returns the drivers in the pool, nearest first.
func (p *DriverPool) List() []domain.Driver {
	out := append([]domain.Driver(nil), p.drivers...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].DistanceKm < out[j-1].DistanceKm; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// Assign picks a driver. Every ride type is served by the same pool.
func (p *DriverPool) Assign(ctx context.Context, _ domain.RideType) (domain.Driver, error) {
	if err := ctx.Err(); err != nil {
		return domain.Driver{}, err
	}
	if len(p.drivers) == 0 {
		return domain.Driver{}, ErrEmptyPool
	}

	p.mu.Lock()
	i := p.rnd.IntN(len(p.drivers))
	p.mu.Unlock()

	return p.drivers[i], nil
}
