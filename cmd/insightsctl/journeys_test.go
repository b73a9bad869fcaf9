package main

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("since", "", "")
	cmd.Flags().String("until", "", "")
	cmd.Flags().Int("limit", 100, "")
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func TestJourneyFilterFromFlags(t *testing.T) {
	cmd := filterCommand(t, "--since", "2026-10-01", "--until", "2026-10-14", "--limit", "5")

	filter, err := journeyFilterFromFlags(cmd, "tenant-1")

	require.NoError(t, err)
	assert.Equal(t, "tenant-1", filter.UserID)
	assert.Equal(t, 5, filter.Limit)
	require.NotNil(t, filter.From)
	require.NotNil(t, filter.To)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), *filter.From)
	assert.Equal(t, time.Date(2026, 10, 14, 23, 59, 59, 999999999, time.UTC), *filter.To)
}

func TestJourneyFilterFromFlags_NoDates(t *testing.T) {
	filter, err := journeyFilterFromFlags(filterCommand(t), "tenant-1")

	require.NoError(t, err)
	assert.Nil(t, filter.From)
	assert.Nil(t, filter.To)
	assert.Equal(t, 100, filter.Limit)
}

func TestJourneyFilterFromFlags_BadDate(t *testing.T) {
	_, err := journeyFilterFromFlags(filterCommand(t, "--since", "10/01/2026"), "tenant-1")

	assert.Error(t, err)
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	assert.True(t, names["schema"])
	assert.True(t, names["anomalies"])
	assert.True(t, names["journeys"])
}
