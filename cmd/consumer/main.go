package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BarkinBalci/marketing-insights-service/internal/config"
	"github.com/BarkinBalci/marketing-insights-service/internal/consumer"
	"github.com/BarkinBalci/marketing-insights-service/internal/idempotency"
	"github.com/BarkinBalci/marketing-insights-service/internal/logger"
	"github.com/BarkinBalci/marketing-insights-service/internal/observability"
	"github.com/BarkinBalci/marketing-insights-service/internal/queue/sqs"
	"github.com/BarkinBalci/marketing-insights-service/internal/repository/clickhouse"
)

const serviceName = "marketing-insights-consumer"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewWithFile(cfg.Service.Environment, cfg.LogFileOptions())
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		err := log.Sync()
		if err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting consumer service",
		zap.String("environment", cfg.Service.Environment))

	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.TracingOptions(serviceName), log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Error("Failed to shut down tracing", zap.Error(err))
		}
	}()

	// Initialize ClickHouse client
	chClient, err := clickhouse.NewClient(ctx, &cfg.ClickHouse, log)
	if err != nil {
		log.Fatal("Failed to create ClickHouse client", zap.Error(err))
	}

	// Initialize repository
	repo := clickhouse.NewRepository(chClient, log)
	defer func() {
		if err := repo.Close(); err != nil {
			log.Error("Failed to close ClickHouse client", zap.Error(err))
		}
	}()

	// Initialize schema (create tables if not exist)
	if err := repo.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize schema", zap.Error(err))
	}
	log.Info("Database schema initialized")

	// Initialize SQS client
	sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log)
	if err != nil {
		log.Fatal("Failed to create SQS client", zap.Error(err))
	}

	dedup, closeDedup := newDeduplicator(ctx, cfg, log)
	defer closeDedup()

	c := consumer.NewConsumer(cfg, sqsClient, repo, dedup, log)

	healthSrv := newHealthServer(":"+cfg.Consumer.HealthCheckPort, repo)
	go func() {
		log.Info("Health check server starting", zap.String("address", healthSrv.Addr))
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Health check server error", zap.Error(err))
		}
	}()

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Consumer starting")
	if err := c.Start(runCtx); err != nil {
		log.Error("Consumer error", zap.Error(err))
	}
	log.Info("Consumer drained, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shut down health check server", zap.Error(err))
	}
}

// newDeduplicator connects the idempotency store when enabled. With fail-open set an
// unreachable Valkey disables deduplication instead of stopping the consumer.
func newDeduplicator(ctx context.Context, cfg *config.Config, log *zap.Logger) (consumer.Deduplicator, func()) {
	noop := func() {}
	if !cfg.Valkey.IdempotencyEnabled {
		log.Info("Idempotency check disabled")
		return nil, noop
	}

	store, err := idempotency.NewStore(ctx, cfg.Valkey, log)
	if err != nil {
		if !cfg.Valkey.IdempotencyFailOpen {
			log.Fatal("Failed to connect to Valkey", zap.Error(err))
		}
		log.Warn("Valkey unavailable, continuing without idempotency", zap.Error(err))
		return nil, noop
	}

	return store, func() {
		if err := store.Close(); err != nil {
			log.Error("Failed to close Valkey client", zap.Error(err))
		}
	}
}

// newHealthServer serves liveness against the columnar store and the Prometheus registry
func newHealthServer(addr string, store interface{ Ping(context.Context) error }) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			http.Error(w, "clickhouse unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/internal/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
