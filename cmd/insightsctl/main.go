package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BarkinBalci/marketing-insights-service/internal/config"
	"github.com/BarkinBalci/marketing-insights-service/internal/logger"
	"github.com/BarkinBalci/marketing-insights-service/internal/repository/clickhouse"
	"github.com/BarkinBalci/marketing-insights-service/internal/repository/postgres"
)

var (
	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "insightsctl",
	Short: "Operator tooling for the marketing insights service",
	Long:  "Initializes schemas, runs anomaly detection and builds customer journeys outside the HTTP API.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c

		l, err := logger.NewWithFile(cfg.Service.Environment, cfg.LogFileOptions())
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		log = l

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openClickHouse connects to the raw event and metrics store
func openClickHouse(ctx context.Context) (*clickhouse.Repository, error) {
	client, err := clickhouse.NewClient(ctx, &cfg.ClickHouse, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create ClickHouse client: %w", err)
	}
	return clickhouse.NewRepository(client, log), nil
}

// openJourneyStore connects to the Postgres journey store
func openJourneyStore(ctx context.Context) (*postgres.JourneyRepository, error) {
	pool, err := postgres.NewPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, err
	}
	return postgres.NewJourneyRepository(pool, log), nil
}

func closeWithLog(name string, closer interface{ Close() error }) {
	if err := closer.Close(); err != nil {
		log.Error("Failed to close "+name, zap.Error(err))
	}
}

// printJSON writes v to stdout as indented JSON
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
