package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ridewallet/internal/dispatch"
	"ridewallet/internal/repository"
	"ridewallet/internal/service"
)

const paymentFailedMessage = "payment failed, check balance"

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)

	msg := err.Error()
	switch {
	case code == http.StatusPaymentRequired:
		msg = paymentFailedMessage
	case code >= http.StatusInternalServerError:
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		msg = http.StatusText(code)
	}

	_ = c.Error(err)
	c.JSON(code, ErrorResponse{Error: msg})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Payment errors first: they also match the ledger's insufficient balance.
	case errors.Is(err, service.ErrPaymentFailed),
		errors.Is(err, repository.ErrInsufficientBalance):
		return http.StatusPaymentRequired

	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, repository.ErrInvalidAmount),
		errors.Is(err, dispatch.ErrUnknownRideType):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, repository.ErrInvalidTransition),
		errors.Is(err, service.ErrInvalidState),
		errors.Is(err, repository.ErrConflict),
		errors.Is(err, repository.ErrAlreadyExists):
		return http.StatusConflict

	// Service unavailable
	case errors.Is(err, service.ErrNoDriverAvailable),
		errors.Is(err, dispatch.ErrEmptyPool),
		errors.Is(err, service.ErrOTPExhausted):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// queryLimit reads ?limit=, leaving defaults to the repositories.
func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return limit
}
