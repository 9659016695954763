package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/clearstream/connector/pkg/config"
	"github.com/clearstream/connector/pkg/health"
	"github.com/clearstream/connector/pkg/multiledger"
)

var (
	listenAddr      = flag.String("listen", ":4000", "Address for the health and metrics endpoints")
	testMode        = flag.Bool("test-mode", false, "Run with fixture credentials and relaxed validation")
	testCredentials = flag.String("test-credentials", "", "Path to YAML ledger credential fixtures (test mode only)")
	testPairs       = flag.String("test-pairs", "", "Path to YAML trading pair fixtures (test mode only)")
)

func main() {
	flag.Parse()

	env := config.NewEnvSource()

	logger, err := config.NewLogger(config.LoggingFromEnv(env))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting payment-routing connector")

	cfg, err := config.Assemble(env, config.Options{
		TestMode:            *testMode,
		TestCredentialsFile: *testCredentials,
		TestPairsFile:       *testPairs,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to resolve configuration", zap.Error(err))
	}

	registry := multiledger.New(cfg, logger)
	if err := registry.Build(); err != nil {
		logger.Fatal("Failed to build ledger plugins", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := registry.Connect(ctx); err != nil {
		logger.Fatal("Failed to connect ledger plugins", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := registry.Disconnect(shutdownCtx); err != nil {
			logger.Warn("Error disconnecting ledger plugins", zap.Error(err))
		}
	}()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Method(http.MethodGet, "/health", health.NewHandler(registry, logger))
	r.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         *listenAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("Health server listening", zap.String("addr", *listenAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Health server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Health server shutdown error", zap.Error(err))
	}
}
