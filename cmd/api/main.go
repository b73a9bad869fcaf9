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

	"go.uber.org/zap"

	"github.com/BarkinBalci/marketing-insights-service/docs"
	"github.com/BarkinBalci/marketing-insights-service/internal/config"
	"github.com/BarkinBalci/marketing-insights-service/internal/handler"
	"github.com/BarkinBalci/marketing-insights-service/internal/insights"
	"github.com/BarkinBalci/marketing-insights-service/internal/journey"
	"github.com/BarkinBalci/marketing-insights-service/internal/logger"
	"github.com/BarkinBalci/marketing-insights-service/internal/observability"
	"github.com/BarkinBalci/marketing-insights-service/internal/queue/sqs"
	"github.com/BarkinBalci/marketing-insights-service/internal/repository/clickhouse"
	"github.com/BarkinBalci/marketing-insights-service/internal/repository/postgres"
	"github.com/BarkinBalci/marketing-insights-service/internal/service"
)

const serviceName = "marketing-insights-api"

// @title Marketing Insights Service API
// @version 1.0
// @description API for ingesting marketing events, detecting performance anomalies and building customer journeys
// @host localhost:8080
// @BasePath /
// @schemes http https
func main() {
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

	log.Info("Starting API service",
		zap.String("environment", cfg.Service.Environment),
		zap.String("port", cfg.Service.APIPort))

	// Configure Swagger host dynamically
	docs.SwaggerInfo.Host = cfg.Service.Host

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

	// Initialize SQS client
	sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log)
	if err != nil {
		log.Fatal("Failed to create SQS client", zap.Error(err))
	}

	// Initialize ClickHouse client
	clickhouseClient, err := clickhouse.NewClient(ctx, &cfg.ClickHouse, log)
	if err != nil {
		log.Fatal("Failed to create ClickHouse client", zap.Error(err))
	}
	repo := clickhouse.NewRepository(clickhouseClient, log)
	defer func() {
		if err := repo.Close(); err != nil {
			log.Error("Failed to close ClickHouse client", zap.Error(err))
		}
	}()

	// Initialize Postgres journey store
	pool, err := postgres.NewPool(ctx, cfg.Postgres, log)
	if err != nil {
		log.Fatal("Failed to create Postgres pool", zap.Error(err))
	}
	journeyRepo := postgres.NewJourneyRepository(pool, log)
	defer func() {
		if err := journeyRepo.Close(); err != nil {
			log.Error("Failed to close Postgres pool", zap.Error(err))
		}
	}()

	insightsCfg := cfg.InsightsConfig()
	if err := insightsCfg.Validate(); err != nil {
		log.Fatal("Invalid insights configuration", zap.Error(err))
	}

	detector := insights.NewDetector(repo, insightsCfg, log)
	builder := journey.NewBuilder(repo, journeyRepo, cfg.JourneyConfig(), log)

	eventService := service.NewEventService(sqsClient, repo, repo, log)
	journeyService := service.NewJourneyService(builder, journeyRepo, log)

	h := handler.NewHandler(eventService, detector, journeyService, log,
		handler.WithTracing(serviceName),
		handler.WithHealthCheck("clickhouse", repo),
		handler.WithHealthCheck("postgres", journeyRepo),
	)

	addr := fmt.Sprintf(":%s", cfg.Service.APIPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("API server starting", zap.String("address", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start API server", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down API server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shut down API server", zap.Error(err))
	}
}
