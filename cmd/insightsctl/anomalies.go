package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/BarkinBalci/marketing-insights-service/internal/insights"
)

var anomaliesCmd = &cobra.Command{
	Use:   "anomalies <user-id>",
	Short: "Run anomaly detection for a tenant",
	Long:  "Runs every enabled detector against metrics_daily and prints the report as JSON. Exits non-zero when every detector failed.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		insightsCfg := cfg.InsightsConfig()
		if parallel, _ := cmd.Flags().GetBool("parallel"); parallel {
			insightsCfg.Parallel = true
		}
		if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
			insightsCfg.Limit = limit
		}
		if err := insightsCfg.Validate(); err != nil {
			return err
		}

		repo, err := openClickHouse(ctx)
		if err != nil {
			return err
		}
		defer closeWithLog("ClickHouse client", repo)

		report := insights.NewDetector(repo, insightsCfg, log).DetectAnomalies(ctx, args[0])
		if err := printJSON(cmd, report); err != nil {
			return err
		}

		if report.Unavailable() {
			return fmt.Errorf("anomaly detection unavailable: every detector failed")
		}
		return nil
	},
}

func init() {
	anomaliesCmd.Flags().Bool("parallel", false, "Run detectors concurrently")
	anomaliesCmd.Flags().Int("limit", 0, "Maximum anomalies per detector (0 uses config)")
	rootCmd.AddCommand(anomaliesCmd)
}
