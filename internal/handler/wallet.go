package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"ridewallet/internal/domain"
	"ridewallet/internal/middleware"
	"ridewallet/internal/service"
)

// WalletHandler handles HTTP requests for the caller's wallet.
type WalletHandler struct {
	walletService *service.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletService *service.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// AddCreditsRequest is the HTTP request body for a wallet top-up.
type AddCreditsRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// BalanceResponse is the HTTP response for the wallet balance.
type BalanceResponse struct {
	Balance string `json:"balance"`
}

// TransactionResponse is the HTTP response for a ledger entry.
type TransactionResponse struct {
	ID           string    `json:"id"`
	RideID       string    `json:"ride_id,omitempty"`
	Type         string    `json:"type"`
	Amount       string    `json:"amount"`
	Description  string    `json:"description"`
	BalanceAfter string    `json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}

// Balance handles GET /v1/wallet/balance
func (h *WalletHandler) Balance(c *gin.Context) {
	balance, err := h.walletService.Balance(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, BalanceResponse{Balance: balance.StringFixed(2)})
}

// AddCredits handles POST /v1/wallet/credits
func (h *WalletHandler) AddCredits(c *gin.Context) {
	var req AddCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	txn, err := h.walletService.AddCredits(c.Request.Context(), middleware.UserID(c), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, toTransactionResponse(txn))
}

// Transactions handles GET /v1/wallet/transactions
func (h *WalletHandler) Transactions(c *gin.Context) {
	txns, err := h.walletService.Transactions(c.Request.Context(), middleware.UserID(c), queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TransactionResponse, 0, len(txns))
	for _, txn := range txns {
		response = append(response, toTransactionResponse(txn))
	}
	respondJSON(c, http.StatusOK, response)
}

func toTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:           t.ID,
		RideID:       t.RideID,
		Type:         string(t.Type),
		Amount:       t.Amount.StringFixed(2),
		Description:  t.Description,
		BalanceAfter: t.BalanceAfter.StringFixed(2),
		CreatedAt:    t.CreatedAt,
	}
}
