package domain

// Driver is a mock driver offered by the dispatch pool.
type Driver struct {
	Name       string
	Phone      string
	Rating     float64
	DistanceKm float64
}
