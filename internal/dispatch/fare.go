package dispatch

import (
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/shopspring/decimal"

	"ridewallet/internal/domain"
)

// ErrUnknownRideType is returned when no rate is configured for a ride type.
var ErrUnknownRideType = errors.New("no rate for ride type")

// DefaultRates are the per-km rates in rupees.
var DefaultRates = map[domain.RideType]decimal.Decimal{
	domain.RideTypeBike:     decimal.NewFromInt(10),
	domain.RideTypeBikeLite: decimal.NewFromInt(8),
	domain.RideTypeAuto:     decimal.NewFromInt(15),
}

const (
	minDistanceKm = 2
	maxDistanceKm = 11
)

// Quote is a fare estimate for a ride type.
type Quote struct {
	Type       domain.RideType
	DistanceKm int
	RatePerKm  decimal.Decimal
	Fare       decimal.Decimal
}

// FareEstimator prices rides over a mock distance.
type FareEstimator struct {
	mu    sync.Mutex
	rnd   *rand.Rand
	rates map[domain.RideType]decimal.Decimal
}

// NewFareEstimator creates an estimator. A nil rnd uses a randomly seeded source.
func NewFareEstimator(rates map[domain.RideType]decimal.Decimal, rnd *rand.Rand) *FareEstimator {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &FareEstimator{rnd: rnd, rates: rates}
}

// Estimate draws a whole-km distance and prices it at the type's rate.
func (e *FareEstimator) Estimate(rideType domain.RideType) (Quote, error) {
	rate, ok := e.rates[rideType]
	if !ok {
		return Quote{}, ErrUnknownRideType
	}

	e.mu.Lock()
	distance := minDistanceKm + e.rnd.IntN(maxDistanceKm-minDistanceKm+1)
	e.mu.Unlock()

	return Quote{
		Type:       rideType,
		DistanceKm: distance,
		RatePerKm:  rate,
		Fare:       rate.Mul(decimal.NewFromInt(int64(distance))),
	}, nil
}

// EstimateAll quotes every known ride type over the same distance.
func (e *FareEstimator) EstimateAll() []Quote {
	e.mu.Lock()
	distance := minDistanceKm + e.rnd.IntN(maxDistanceKm-minDistanceKm+1)
	e.mu.Unlock()

	quotes := make([]Quote, 0, len(domain.RideTypes))
	for _, t := range domain.RideTypes {
		rate, ok := e.rates[t]
		if !ok {
			continue
		}
		quotes = append(quotes, Quote{
			Type:       t,
			DistanceKm: distance,
			RatePerKm:  rate,
			Fare:       rate.Mul(decimal.NewFromInt(int64(distance))),
		})
	}
	return quotes
}
