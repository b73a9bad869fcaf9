package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/BarkinBalci/marketing-insights-service/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.Limit)
	assert.Equal(t, 30*time.Second, cfg.QueryTimeout)
	assert.False(t, cfg.CVRDrop.Enabled)
	assert.Equal(t, 14, cfg.LowROAS.LookbackDays)
	assert.Equal(t, 1.5, cfg.LowROAS.ChangeThreshold)
	assert.Equal(t, 1.0, cfg.LowROAS.HighPriorityThreshold)
	assert.Equal(t, int64(1000), cfg.CTRDrop.MinImpressions)
	assert.Equal(t, int64(50), cfg.CPCSpike.MinClicks)
	assert.Equal(t, 50.0, cfg.ZeroConversions.MinSpendUSD)
}

func TestConfig_Detector(t *testing.T) {
	cfg := DefaultConfig()

	for _, typ := range detectorOrder {
		_, ok := cfg.Detector(typ)
		assert.True(t, ok, typ)
	}

	_, ok := cfg.Detector(domain.AnomalyType("bounce_spike"))
	assert.False(t, ok)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "zero limit",
			mutate: func(c *Config) { c.Limit = 0 },
			errMsg: "limit must be positive",
		},
		{
			name:   "zero timeout",
			mutate: func(c *Config) { c.QueryTimeout = 0 },
			errMsg: "query timeout must be positive",
		},
		{
			name:   "zero lookback",
			mutate: func(c *Config) { c.CostSpike.LookbackDays = 0 },
			errMsg: "cost_spike lookback must be positive",
		},
		{
			name:   "negative threshold",
			mutate: func(c *Config) { c.CTRDrop.ChangeThreshold = -5 },
			errMsg: "ctr_drop thresholds must not be negative",
		},
		{
			name:   "high below change",
			mutate: func(c *Config) { c.CPCSpike.HighPriorityThreshold = 10 },
			errMsg: "cpc_spike high priority threshold",
		},
		{
			name:   "roas high above firing",
			mutate: func(c *Config) { c.LowROAS.HighPriorityThreshold = 2 },
			errMsg: "low_roas high priority ROAS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()

			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_ValidateSkipsDisabledDetectors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CVRDrop.LookbackDays = 0

	assert.NoError(t, cfg.Validate())
}
