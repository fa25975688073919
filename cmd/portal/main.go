package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/dealer-portal/internal/adapter/api"
	"github.com/V4T54L/dealer-portal/internal/adapter/api/middleware"
	"github.com/V4T54L/dealer-portal/internal/adapter/metrics"
	"github.com/V4T54L/dealer-portal/internal/adapter/repository/postgres"
	redisrepo "github.com/V4T54L/dealer-portal/internal/adapter/repository/redis"
	s3sink "github.com/V4T54L/dealer-portal/internal/adapter/storage/s3"
	"github.com/V4T54L/dealer-portal/internal/domain"
	"github.com/V4T54L/dealer-portal/internal/pkg/config"
	"github.com/V4T54L/dealer-portal/internal/pkg/logger"
	"github.com/V4T54L/dealer-portal/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logger.New(cfg.LogLevel, cfg.PIIRedactionFields...)
	slog.SetDefault(logger)

	m := metrics.NewPortalMetrics(prometheus.DefaultRegisterer)

	// --- Start Metrics Server ---
	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())

	adminServer := &http.Server{
		Addr:    cfg.AdminAddr,
		Handler: adminMux,
	}

	go func() {
		logger.Info("starting metrics server", "addr", adminServer.Addr)
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Row Store ---
	db, err := postgres.Open(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}
	backend := postgres.NewRepository(db, logger)

	// --- Snapshot Mirror ---
	redisOpts, err := redis.ParseURL(cfg.RedisAddr)
	if err != nil {
		logger.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("could not connect to redis, snapshots will be held until it is back", "error", err)
	}

	mirror := redisrepo.NewSnapshotRepository(redisClient, logger, cfg.MirrorKey, cfg.MirrorTTL)
	go mirror.StartHealthCheck(ctx, 5*time.Second)

	// --- Snapshot Store ---
	s := store.New(backend, mirror, logger, m)
	if err := s.Refresh(ctx); err != nil {
		logger.Warn("initial snapshot load failed, serving mirror or empty state", "error", err)
	}
	go s.StartRefresher(ctx, cfg.RefreshInterval)

	// --- Export Storage ---
	var sink domain.ExportSink
	if bucketSink, err := s3sink.NewFromEnv(ctx, cfg.ExportBucket, cfg.AWSRegion); err != nil {
		logger.Warn("export storage unavailable, publishing disabled", "error", err)
	} else if bucketSink != nil {
		sink = bucketSink
		logger.Info("publishing exports to s3", "bucket", cfg.ExportBucket)
	}

	// --- Portal Server ---
	uc := api.NewUseCases(s, sink, logger)
	router := api.NewRouter(cfg, logger, s, uc, m)
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      middleware.Logging(logger, m)(router),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting portal server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("portal server failed", "error", err)
			stop() // Trigger shutdown on server error
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	logger.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown failed", "error", err)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("portal server shutdown failed", "error", err)
	}

	logger.Info("servers shut down gracefully")
}
