package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/noise-dashboard/internal/adapter/boundary"
	httpadapter "github.com/couchcryptid/noise-dashboard/internal/adapter/http"
	"github.com/couchcryptid/noise-dashboard/internal/config"
	"github.com/couchcryptid/noise-dashboard/internal/observability"
	"github.com/couchcryptid/noise-dashboard/internal/pipeline"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; the environment alone can configure the service.
	if err := godotenv.Load(sharedcfg.EnvOrDefault("ENV_FILE", ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	gin.SetMode(cfg.GinMode)

	fetcher := boundary.New(boundary.Options{
		Timeout:         cfg.BoundaryFetchTimeout,
		MaxBytes:        cfg.BoundaryMaxBytes,
		Retries:         cfg.BoundaryRetries,
		RetryBackoff:    cfg.BoundaryRetryBackoff,
		AllowPrivate:    cfg.BoundaryAllowPrivate,
		CacheSize:       cfg.BoundaryCacheSize,
		CacheTTL:        cfg.BoundaryCacheTTL,
		BreakerFailures: cfg.BoundaryBreakerFailures,
		BreakerTimeout:  cfg.BoundaryBreakerTimeout,
	}, metrics, logger)
	logger.Info("boundary fetcher ready",
		"cache_size", cfg.BoundaryCacheSize,
		"cache_ttl", cfg.BoundaryCacheTTL,
		"timeout", cfg.BoundaryFetchTimeout,
		"retries", cfg.BoundaryRetries,
		"allow_private", cfg.BoundaryAllowPrivate,
	)

	if cfg.DatasetPath == "" {
		logger.Info("no city dataset configured")
	}

	p := pipeline.New(fetcher, logger, metrics, pipeline.Options{
		MaxRows:     cfg.MaxRows,
		DatasetPath: cfg.DatasetPath,
		AssetsDir:   cfg.AssetsDir,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger, metrics, httpadapter.Options{
		AssetsDir:      cfg.AssetsDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
