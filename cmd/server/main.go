package main

import (
	"context"                       // Context for startup and shutdown
	"errors"                        // Error inspection
	"net/http"                      // HTTP server
	"os"                            // Exit codes
	"os/signal"                     // Shutdown signals
	"syscall"                       // SIGTERM
	"time"                          // Shutdown timeout
	"turso_wallet/internal/api"     // Custom package for API handlers
	"turso_wallet/internal/config"  // Custom package for configuration
	"turso_wallet/internal/db"      // Connection and schema reconciler
	"turso_wallet/internal/logging" // Logger setup

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

const shutdownTimeout = 15 * time.Second

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration
	logging.Setup(cfg.LogLevel, cfg.IsProd)

	if err := run(cfg); err != nil {
		logrus.WithError(err).Error("Server stopped")
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	conn, err := db.Open(ctx, cfg.DatabaseURL, cfg.AuthToken)
	if err != nil {
		logrus.Error("Error initializing database. Check TURSO_DATABASE_URL, TURSO_AUTH_TOKEN and the Turso connection")
		return err
	}
	defer conn.Close()

	// The schema must be in place before the first request is served
	if err := db.Initialize(ctx, conn.SQL); err != nil {
		logrus.Error("Error running schema migration")
		return err
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return errors.Join(errors.New("failed to connect to Redis"), err)
		}
	} else {
		logrus.Warn("REDIS_ADDR not set, response caching disabled")
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := api.NewRouter(conn.ORM, redisClient, cfg.JWTSecret)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("port", cfg.AppPort).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-sigCtx.Done():
		logrus.Info("Shutting down")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
