package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ridewallet/internal/dispatch"
	"ridewallet/internal/domain"
)

// DispatchHandler exposes the mock driver pool and fare estimates.
type DispatchHandler struct {
	pool  *dispatch.DriverPool
	fares *dispatch.FareEstimator
}

// NewDispatchHandler creates a new DispatchHandler.
func NewDispatchHandler(pool *dispatch.DriverPool, fares *dispatch.FareEstimator) *DispatchHandler {
	return &DispatchHandler{pool: pool, fares: fares}
}

// EstimateRequest is the HTTP request body for a fare estimate.
// An empty ride type quotes every type.
type EstimateRequest struct {
	RideType string `json:"ride_type,omitempty"`
}

// DriverResponse is the HTTP response for a pool driver.
type DriverResponse struct {
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	Rating     float64 `json:"rating"`
	DistanceKm float64 `json:"distance_km"`
}

// QuoteResponse is the HTTP response for a fare estimate.
type QuoteResponse struct {
	RideType   string `json:"ride_type"`
	DistanceKm int    `json:"distance_km"`
	RatePerKm  string `json:"rate_per_km"`
	Fare       string `json:"fare"`
}

// ListDrivers handles GET /v1/drivers
func (h *DispatchHandler) ListDrivers(c *gin.Context) {
	drivers := h.pool.List()

	response := make([]DriverResponse, 0, len(drivers))
	for _, d := range drivers {
		response = append(response, DriverResponse{
			Name:       d.Name,
			Phone:      d.Phone,
			Rating:     d.Rating,
			DistanceKm: d.DistanceKm,
		})
	}
	respondJSON(c, http.StatusOK, response)
}

// Estimate handles POST /v1/fares/estimate
func (h *DispatchHandler) Estimate(c *gin.Context) {
	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	rideType := strings.ToUpper(strings.TrimSpace(req.RideType))
	if rideType == "" {
		quotes := h.fares.EstimateAll()
		response := make([]QuoteResponse, 0, len(quotes))
		for _, q := range quotes {
			response = append(response, toQuoteResponse(q))
		}
		respondJSON(c, http.StatusOK, response)
		return
	}

	quote, err := h.fares.Estimate(domain.RideType(rideType))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toQuoteResponse(quote))
}

func toQuoteResponse(q dispatch.Quote) QuoteResponse {
	return QuoteResponse{
		RideType:   string(q.Type),
		DistanceKm: q.DistanceKm,
		RatePerKm:  q.RatePerKm.StringFixed(2),
		Fare:       q.Fare.StringFixed(2),
	}
}
