package domain

import "time"

// Review is a rider's rating of a settled ride.
type Review struct {
	ID        string
	RideID    string
	Rating    int
	Comment   string
	CreatedAt time.Time
}
