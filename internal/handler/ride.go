package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"ridewallet/internal/dispatch"
	"ridewallet/internal/domain"
	"ridewallet/internal/middleware"
	"ridewallet/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService    *service.RideService
	paymentService *service.PaymentService
	receiptService *service.ReceiptService
	fares          *dispatch.FareEstimator
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(
	rideService *service.RideService,
	paymentService *service.PaymentService,
	receiptService *service.ReceiptService,
	fares *dispatch.FareEstimator,
) *RideHandler {
	return &RideHandler{
		rideService:    rideService,
		paymentService: paymentService,
		receiptService: receiptService,
		fares:          fares,
	}
}

// BookRideRequest is the HTTP request body for booking a ride.
type BookRideRequest struct {
	Pickup      string           `json:"pickup"`
	Dropoff     string           `json:"dropoff"`
	RideType    string           `json:"ride_type"`
	Fare        *decimal.Decimal `json:"fare,omitempty"` // estimated when omitted
	DriverName  string           `json:"driver_name,omitempty"`
	DriverPhone string           `json:"driver_phone,omitempty"`
}

// PaymentRequest is the HTTP request body for settling a ride.
type PaymentRequest struct {
	Method string `json:"method"`
}

// ReviewRequest is the HTTP request body for reviewing a ride.
type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// RideResponse is the HTTP response for a ride.
type RideResponse struct {
	ID            string    `json:"id"`
	Pickup        string    `json:"pickup"`
	Dropoff       string    `json:"dropoff"`
	RideType      string    `json:"ride_type"`
	Fare          string    `json:"fare"`
	OTP           string    `json:"otp"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	DriverName    string    `json:"driver_name"`
	DriverPhone   string    `json:"driver_phone"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ReviewResponse is the HTTP response for a review.
type ReviewResponse struct {
	ID        string    `json:"id"`
	RideID    string    `json:"ride_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RideViewResponse is a ride with its booking stage and review.
type RideViewResponse struct {
	RideResponse
	Stage  string          `json:"stage"`
	Review *ReviewResponse `json:"review,omitempty"`
}

// PaymentResponse is the HTTP response for a settled ride.
type PaymentResponse struct {
	Ride        RideResponse         `json:"ride"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
	Replayed    bool                 `json:"replayed"`
}

// ReceiptResponse is the JSON rendering of a receipt.
type ReceiptResponse struct {
	ID            string    `json:"id"`
	RideID        string    `json:"ride_id"`
	UserName      string    `json:"user_name"`
	Pickup        string    `json:"pickup"`
	Dropoff       string    `json:"dropoff"`
	RideType      string    `json:"ride_type"`
	DriverName    string    `json:"driver_name"`
	DriverPhone   string    `json:"driver_phone"`
	Fare          string    `json:"fare"`
	PaymentMethod string    `json:"payment_method"`
	TransactionID string    `json:"transaction_id,omitempty"`
	BookedAt      time.Time `json:"booked_at"`
	SettledAt     time.Time `json:"settled_at"`
	IssuedAt      time.Time `json:"issued_at"`
}

// BookRide handles POST /v1/rides
func (h *RideHandler) BookRide(c *gin.Context) {
	var req BookRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	rideType := domain.RideType(strings.ToUpper(strings.TrimSpace(req.RideType)))

	var fare decimal.Decimal
	if req.Fare != nil {
		fare = *req.Fare
	} else {
		if !rideType.Valid() {
			respondError(c, service.ErrInvalidRideType)
			return
		}
		quote, err := h.fares.Estimate(rideType)
		if err != nil {
			respondError(c, err)
			return
		}
		fare = quote.Fare
	}

	ride, err := h.rideService.BookRide(c.Request.Context(), service.BookRideRequest{
		UserID:      middleware.UserID(c),
		Pickup:      req.Pickup,
		Dropoff:     req.Dropoff,
		Type:        rideType,
		Fare:        fare,
		DriverName:  req.DriverName,
		DriverPhone: req.DriverPhone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toRideResponse(ride))
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	view, err := h.rideService.GetRideView(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := RideViewResponse{
		RideResponse: toRideResponse(view.Ride),
		Stage:        string(view.Stage),
	}
	if view.Review != nil {
		review := toReviewResponse(view.Review)
		response.Review = &review
	}

	respondJSON(c, http.StatusOK, response)
}

// ListRides handles GET /v1/rides
func (h *RideHandler) ListRides(c *gin.Context) {
	rides, err := h.rideService.ListRides(c.Request.Context(), middleware.UserID(c), queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideResponse, 0, len(rides))
	for _, ride := range rides {
		response = append(response, toRideResponse(ride))
	}
	respondJSON(c, http.StatusOK, response)
}

// StartRide handles POST /v1/rides/:id/start
func (h *RideHandler) StartRide(c *gin.Context) {
	h.transition(c, h.rideService.StartRide)
}

// CompleteRide handles POST /v1/rides/:id/complete
func (h *RideHandler) CompleteRide(c *gin.Context) {
	h.transition(c, h.rideService.CompleteRide)
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *RideHandler) CancelRide(c *gin.Context) {
	h.transition(c, h.rideService.CancelRide)
}

// PayRide handles POST /v1/rides/:id/payment
func (h *RideHandler) PayRide(c *gin.Context) {
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	method, err := service.ValidatePaymentMethod(req.Method)
	if err != nil {
		respondError(c, err)
		return
	}

	settlement, err := h.paymentService.Settle(c.Request.Context(), service.SettleRequest{
		RideID: c.Param("id"),
		UserID: middleware.UserID(c),
		Method: method,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response := PaymentResponse{
		Ride:     toRideResponse(settlement.Ride),
		Replayed: settlement.Replayed,
	}
	if settlement.Transaction != nil {
		txn := toTransactionResponse(settlement.Transaction)
		response.Transaction = &txn
	}

	respondJSON(c, http.StatusOK, response)
}

// SubmitReview handles POST /v1/rides/:id/review
func (h *RideHandler) SubmitReview(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	review, err := h.rideService.SubmitReview(c.Request.Context(), service.SubmitReviewRequest{
		RideID:  c.Param("id"),
		UserID:  middleware.UserID(c),
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toReviewResponse(review))
}

// Receipt handles GET /v1/rides/:id/receipt. The default rendering is a PDF;
// ?format=json returns the receipt fields instead.
func (h *RideHandler) Receipt(c *gin.Context) {
	receipt, err := h.receiptService.Generate(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("format") == "json" {
		respondJSON(c, http.StatusOK, toReceiptResponse(receipt))
		return
	}

	pdf, err := h.receiptService.RenderPDF(receipt)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="receipt-`+receipt.RideID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *RideHandler) transition(
	c *gin.Context,
	apply func(ctx context.Context, userID, rideID string) (*domain.Ride, error),
) {
	ride, err := apply(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

func toRideResponse(r *domain.Ride) RideResponse {
	return RideResponse{
		ID:            r.ID,
		Pickup:        r.Pickup,
		Dropoff:       r.Dropoff,
		RideType:      string(r.Type),
		Fare:          r.Fare.StringFixed(2),
		OTP:           r.OTP,
		Status:        string(r.Status),
		PaymentMethod: string(r.PaymentMethod),
		DriverName:    r.DriverName,
		DriverPhone:   r.DriverPhone,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toReviewResponse(r *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		RideID:    r.RideID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func toReceiptResponse(r *domain.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ID:            r.ID,
		RideID:        r.RideID,
		UserName:      r.UserName,
		Pickup:        r.Pickup,
		Dropoff:       r.Dropoff,
		RideType:      string(r.Type),
		DriverName:    r.DriverName,
		DriverPhone:   r.DriverPhone,
		Fare:          r.Fare.StringFixed(2),
		PaymentMethod: string(r.PaymentMethod),
		TransactionID: r.TransactionID,
		BookedAt:      r.BookedAt,
		SettledAt:     r.SettledAt,
		IssuedAt:      r.IssuedAt,
	}
}
