package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/BarkinBalci/marketing-insights-service/internal/journey"
	"github.com/BarkinBalci/marketing-insights-service/internal/repository"
)

var journeysCmd = &cobra.Command{
	Use:   "journeys",
	Short: "Build and inspect customer journeys",
}

var journeysProcessCmd = &cobra.Command{
	Use:   "process <user-id>",
	Short: "Build journeys for every purchase of a tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		events, err := openClickHouse(ctx)
		if err != nil {
			return err
		}
		defer closeWithLog("ClickHouse client", events)

		journeys, err := openJourneyStore(ctx)
		if err != nil {
			return err
		}
		defer closeWithLog("Postgres pool", journeys)

		journeyCfg := cfg.JourneyConfig()
		if days, _ := cmd.Flags().GetInt("window-days"); days > 0 {
			journeyCfg.WindowDays = days
		}

		result, err := journey.NewBuilder(events, journeys, journeyCfg, log).ProcessCustomerJourneys(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	},
}

var journeysListCmd = &cobra.Command{
	Use:   "list <user-id>",
	Short: "List stored journeys, newest purchase first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		filter, err := journeyFilterFromFlags(cmd, args[0])
		if err != nil {
			return err
		}

		journeys, err := openJourneyStore(ctx)
		if err != nil {
			return err
		}
		defer closeWithLog("Postgres pool", journeys)

		list, err := journeys.ListJourneys(ctx, filter)
		if err != nil {
			return err
		}
		return printJSON(cmd, list)
	},
}

var journeysAttributionCmd = &cobra.Command{
	Use:   "attribution <user-id>",
	Short: "Summarize stored journeys with an attribution model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		filter, err := journeyFilterFromFlags(cmd, args[0])
		if err != nil {
			return err
		}
		model, _ := cmd.Flags().GetString("model")

		journeys, err := openJourneyStore(ctx)
		if err != nil {
			return err
		}
		defer closeWithLog("Postgres pool", journeys)

		list, err := journeys.ListJourneys(ctx, filter)
		if err != nil {
			return err
		}

		summary, err := journey.Attribute(journey.Model(model), list)
		if err != nil {
			return err
		}
		return printJSON(cmd, summary)
	},
}

// journeyFilterFromFlags reads --since, --until and --limit. Dates are YYYY-MM-DD in UTC.
func journeyFilterFromFlags(cmd *cobra.Command, userID string) (repository.JourneyFilter, error) {
	filter := repository.JourneyFilter{UserID: userID}
	filter.Limit, _ = cmd.Flags().GetInt("limit")

	if since, _ := cmd.Flags().GetString("since"); since != "" {
		t, err := time.Parse(time.DateOnly, since)
		if err != nil {
			return filter, err
		}
		filter.From = &t
	}
	if until, _ := cmd.Flags().GetString("until"); until != "" {
		t, err := time.Parse(time.DateOnly, until)
		if err != nil {
			return filter, err
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}
	return filter, nil
}

func init() {
	journeysProcessCmd.Flags().Int("window-days", 0, "Lookback window before each purchase (0 uses config)")

	for _, c := range []*cobra.Command{journeysListCmd, journeysAttributionCmd} {
		c.Flags().String("since", "", "Only purchases on or after this date (YYYY-MM-DD)")
		c.Flags().String("until", "", "Only purchases on or before this date (YYYY-MM-DD)")
	}
	journeysListCmd.Flags().Int("limit", 100, "Maximum journeys returned")
	journeysAttributionCmd.Flags().Int("limit", 10000, "Maximum journeys summarized")
	journeysAttributionCmd.Flags().String("model", string(journey.ModelLastClick), "Attribution model: last_click, first_click or linear")

	journeysCmd.AddCommand(journeysProcessCmd, journeysListCmd, journeysAttributionCmd)
	rootCmd.AddCommand(journeysCmd)
}
