package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"ridewallet/internal/app"
	"ridewallet/internal/auth"
	"ridewallet/internal/config"
	"ridewallet/internal/dispatch"
	"ridewallet/internal/handler"
	"ridewallet/internal/middleware"
	internalRedis "ridewallet/internal/redis"
	"ridewallet/internal/repository"
	"ridewallet/internal/repository/memory"
	"ridewallet/internal/repository/postgres"
	"ridewallet/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// New Relic goes first so the database driver can be instrumented.
	nrApp := newRelicApp(cfg.NewRelic)

	var store repository.Store
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		store = memory.NewStore()
		log.Println("Using in-memory store")
	default:
		db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Println("Connected to PostgreSQL")

		if cfg.Database.Migrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				log.Fatalf("failed to migrate database: %v", err)
			}
		}
		store = postgres.NewStore(db)
	}

	// Redis is optional with the memory store; Validate requires it for postgres.
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		var err error
		redisClient, err = app.NewRedisClient(ctx, cfg.Redis, nrApp)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Connected to Redis")
	}

	// Wire dependencies.
	server := wireServer(store, redisClient, nrApp, cfg)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// newRelicApp returns nil when New Relic is disabled or fails to start.
func newRelicApp(cfg config.NewRelicConfig) *newrelic.Application {
	if !cfg.Enabled || cfg.LicenseKey == "" {
		return nil
	}
	nrApp, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.AppName),
		newrelic.ConfigLicense(cfg.LicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(true),
	)
	if err != nil {
		log.Printf("failed to initialize New Relic: %v", err)
		return nil
	}
	log.Printf("New Relic enabled: app=%s", cfg.AppName)
	return nrApp
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(store repository.Store, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	// Redis-backed stores, when configured.
	var otpRegistry service.OTPRegistry
	var responseCache middleware.ResponseCache
	if redisClient != nil {
		otpRegistry = internalRedis.NewOTPStore(redisClient)
		responseCache = internalRedis.NewCacheStore(redisClient, "idempotency:")
	} else {
		log.Println("Redis not configured: OTPs are tracked in memory, Idempotency-Key is ignored")
	}

	// Mock dispatch.
	driverPool := dispatch.NewDriverPool(dispatch.DefaultDrivers, nil)
	fareEstimator := dispatch.NewFareEstimator(dispatch.DefaultRates, nil)

	// Initialize services.
	notificationService := service.NewNotificationService()
	userService := service.NewUserService(store.Repositories().Users)
	walletService := service.NewWalletService(store, notificationService)
	rideService := service.NewRideService(store, driverPool, nil, otpRegistry, notificationService)
	paymentService := service.NewPaymentService(store, notificationService)
	receiptService := service.NewReceiptService(store, notificationService)

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	var rateLimiter *middleware.IPRateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
	}

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		UserHandler:     handler.NewUserHandler(userService, tokens),
		WalletHandler:   handler.NewWalletHandler(walletService),
		RideHandler:     handler.NewRideHandler(rideService, paymentService, receiptService, fareEstimator),
		DispatchHandler: handler.NewDispatchHandler(driverPool, fareEstimator),
		Tokens:          tokens,
		ResponseCache:   responseCache,
		RateLimiter:     rateLimiter,
		NewRelicApp:     nrApp,
		CORSOrigins:     cfg.Server.CORSOrigins,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
