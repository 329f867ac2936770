package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ridewallet/internal/domain"
	"ridewallet/internal/middleware"
	"ridewallet/internal/service"
)

// TokenIssuer signs identity tokens for registered users.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	userService *service.UserService
	tokens      TokenIssuer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService, tokens TokenIssuer) *UserHandler {
	return &UserHandler{userService: userService, tokens: tokens}
}

// RegisterRequest is the HTTP request body for user registration.
type RegisterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserResponse is the HTTP response for user data.
type UserResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	WalletBalance string    `json:"wallet_balance"`
	CreatedAt     time.Time `json:"created_at"`
}

// RegisterResponse carries the new user and their bearer token.
type RegisterResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// Register handles POST /v1/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.userService.Register(c.Request.Context(), service.RegisterRequest{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, RegisterResponse{User: toUserResponse(user), Token: token})
}

// Me handles GET /v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toUserResponse(user))
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		WalletBalance: u.WalletBalance.StringFixed(2),
		CreatedAt:     u.CreatedAt,
	}
}
