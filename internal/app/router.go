package app

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"ridewallet/internal/handler"
	"ridewallet/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	UserHandler     *handler.UserHandler
	WalletHandler   *handler.WalletHandler
	RideHandler     *handler.RideHandler
	DispatchHandler *handler.DispatchHandler
	Tokens          middleware.TokenVerifier
	ResponseCache   middleware.ResponseCache  // nil disables Idempotency-Key replays
	RateLimiter     *middleware.IPRateLimiter // nil disables rate limiting
	NewRelicApp     *newrelic.Application
	CORSOrigins     []string
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	if len(deps.CORSOrigins) > 0 {
		router.Use(corsMiddleware(deps.CORSOrigins))
	}

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	if deps.RateLimiter != nil {
		router.Use(middleware.RateLimit(deps.RateLimiter))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		v1.POST("/users/register", deps.UserHandler.Register)
		v1.GET("/drivers", deps.DispatchHandler.ListDrivers)
		v1.POST("/fares/estimate", deps.DispatchHandler.Estimate)
	}

	authed := v1.Group("")
	authed.Use(middleware.Identity(deps.Tokens))
	if deps.ResponseCache != nil {
		authed.Use(middleware.IdempotencyMiddleware(deps.ResponseCache))
	}
	{
		authed.GET("/users/me", deps.UserHandler.Me)

		// Wallet routes.
		wallet := authed.Group("/wallet")
		{
			wallet.GET("/balance", deps.WalletHandler.Balance)
			wallet.POST("/credits", deps.WalletHandler.AddCredits)
			wallet.GET("/transactions", deps.WalletHandler.Transactions)
		}

		// Ride routes.
		rides := authed.Group("/rides")
		{
			rides.POST("", deps.RideHandler.BookRide)
			rides.GET("", deps.RideHandler.ListRides)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.POST("/:id/start", deps.RideHandler.StartRide)
			rides.POST("/:id/complete", deps.RideHandler.CompleteRide)
			rides.POST("/:id/cancel", deps.RideHandler.CancelRide)
			rides.POST("/:id/payment", deps.RideHandler.PayRide)
			rides.POST("/:id/review", deps.RideHandler.SubmitReview)
			rides.GET("/:id/receipt", deps.RideHandler.Receipt)
		}
	}

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{"Content-Disposition", "Idempotent-Replayed"},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
