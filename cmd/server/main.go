package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nichefood/backend/config"
	httpDelivery "github.com/nichefood/backend/internal/delivery/http"
	"github.com/nichefood/backend/internal/infrastructure/cache"
	"github.com/nichefood/backend/internal/infrastructure/openfoodfacts"
	"github.com/nichefood/backend/internal/logging"
	"github.com/nichefood/backend/internal/usecase"
)

const (
	serverTimeout       = 30 * time.Second
	shutdownWait        = 10 * time.Second
	cacheSweepInterval  = 10 * time.Minute
	serverMaxHeaderBits = 20
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Init(cfg.Logging.Format, logging.ParseLevel(cfg.Logging.Level))

	slog.Info("starting NicheFood backend",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"cache_type", cfg.Cache.Type,
		"cache_ttl", cfg.Cache.TTL)

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache(cacheSweepInterval)
	defer memoryCache.Close()

	offClient := openfoodfacts.NewClient(cfg.OpenFoodFacts.BaseURL, cfg.OpenFoodFacts.UserAgent)
	offClient.SetTimeout(cfg.OpenFoodFacts.Timeout)
	offClient.SetRateLimit(cfg.RateLimit.OpenFoodFacts)

	// Enable debug mode in development environment
	if cfg.IsDevelopment() {
		offClient.SetDebug(true)
		slog.Info("OpenFoodFacts client debug mode enabled")
	}

	slog.Info("OpenFoodFacts API configured",
		"base_url", cfg.OpenFoodFacts.BaseURL,
		"requests_per_minute", cfg.RateLimit.OpenFoodFacts)

	// Initialize usecase layer
	assessmentService := usecase.NewAssessmentService(
		memoryCache,
		offClient,
		usecase.AssessmentServiceConfig{
			CacheTTL:           cfg.Cache.TTL,
			BatchConcurrency:   cfg.Assessment.BatchConcurrency,
			MaxBatchSize:       cfg.Assessment.MaxBatchSize,
			EnableDebugLogging: cfg.IsDevelopment(),
		},
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(assessmentService)
	router := httpDelivery.SetupRouter(cfg, handler)

	s := &http.Server{
		Addr:           fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    serverTimeout,
		WriteTimeout:   serverTimeout,
		MaxHeaderBytes: 1 << serverMaxHeaderBits,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()
	slog.Info("server listening", "address", s.Addr)

	<-done

	ctx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		slog.Error("error shutting down server", "error", err)
	}
	slog.Info("server stopped")
}
