package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Manage store schemas",
}

var schemaInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create ClickHouse and Postgres tables if they don't exist",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		repo, err := openClickHouse(ctx)
		if err != nil {
			return err
		}
		defer closeWithLog("ClickHouse client", repo)

		if err := repo.InitSchema(ctx); err != nil {
			return err
		}

		journeys, err := openJourneyStore(ctx)
		if err != nil {
			return err
		}
		defer closeWithLog("Postgres pool", journeys)

		if err := journeys.InitSchema(ctx); err != nil {
			return err
		}

		cmd.Println("schemas initialized")
		return nil
	},
}

func init() {
	schemaCmd.AddCommand(schemaInitCmd)
	rootCmd.AddCommand(schemaCmd)
}
