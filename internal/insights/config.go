package insights

import (
	"errors"
	"fmt"
	"time"

	"github.com/BarkinBalci/marketing-insights-service/internal/domain"
)

// ErrInvalidConfig is returned by Config.Validate
var ErrInvalidConfig = errors.New("invalid insights config")

// DetectorConfig holds the tunables of a single detector.
// For low_roas the thresholds are absolute ROAS values, not percentages.
type DetectorConfig struct {
	Enabled               bool
	LookbackDays          int
	ChangeThreshold       float64
	HighPriorityThreshold float64
	MinImpressions        int64
	MinClicks             int64
	MinSpendUSD           float64
}

// Config is passed to NewDetector; per-tenant overrides use a different Config
type Config struct {
	Limit        int
	QueryTimeout time.Duration
	Parallel     bool

	CostSpike       DetectorConfig
	CTRDrop         DetectorConfig
	LowROAS         DetectorConfig
	ZeroConversions DetectorConfig
	CVRDrop         DetectorConfig
	CPCSpike        DetectorConfig
	ImpressionDrop  DetectorConfig
}

// DefaultConfig returns the production defaults
func DefaultConfig() Config {
	return Config{
		Limit:        10,
		QueryTimeout: 30 * time.Second,
		CostSpike: DetectorConfig{
			Enabled:               true,
			LookbackDays:          7,
			ChangeThreshold:       50,
			HighPriorityThreshold: 100,
		},
		CTRDrop: DetectorConfig{
			Enabled:               true,
			LookbackDays:          7,
			ChangeThreshold:       30,
			HighPriorityThreshold: 50,
			MinImpressions:        1000,
		},
		LowROAS: DetectorConfig{
			Enabled:               true,
			LookbackDays:          14,
			ChangeThreshold:       1.5,
			HighPriorityThreshold: 1.0,
			MinSpendUSD:           100,
		},
		ZeroConversions: DetectorConfig{
			Enabled:      true,
			LookbackDays: 7,
			MinSpendUSD:  50,
		},
		CVRDrop: DetectorConfig{
			Enabled:               false,
			LookbackDays:          7,
			ChangeThreshold:       30,
			HighPriorityThreshold: 50,
			MinClicks:             100,
		},
		CPCSpike: DetectorConfig{
			Enabled:               true,
			LookbackDays:          7,
			ChangeThreshold:       40,
			HighPriorityThreshold: 80,
			MinClicks:             50,
		},
		ImpressionDrop: DetectorConfig{
			Enabled:               true,
			LookbackDays:          7,
			ChangeThreshold:       40,
			HighPriorityThreshold: 70,
			MinImpressions:        1000,
		},
	}
}

// Detector returns the config of the given detector type
func (c Config) Detector(t domain.AnomalyType) (DetectorConfig, bool) {
	switch t {
	case domain.AnomalyCostSpike:
		return c.CostSpike, true
	case domain.AnomalyCTRDrop:
		return c.CTRDrop, true
	case domain.AnomalyLowROAS:
		return c.LowROAS, true
	case domain.AnomalyZeroConversions:
		return c.ZeroConversions, true
	case domain.AnomalyCVRDrop:
		return c.CVRDrop, true
	case domain.AnomalyCPCSpike:
		return c.CPCSpike, true
	case domain.AnomalyImpressionDrop:
		return c.ImpressionDrop, true
	default:
		return DetectorConfig{}, false
	}
}

// Validate rejects configurations that would make a detector meaningless
func (c Config) Validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidConfig, c.Limit)
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("%w: query timeout must be positive, got %s", ErrInvalidConfig, c.QueryTimeout)
	}

	for _, t := range detectorOrder {
		dc, _ := c.Detector(t)
		if !dc.Enabled {
			continue
		}
		if dc.LookbackDays <= 0 {
			return fmt.Errorf("%w: %s lookback must be positive, got %d", ErrInvalidConfig, t, dc.LookbackDays)
		}
		if dc.ChangeThreshold < 0 || dc.HighPriorityThreshold < 0 {
			return fmt.Errorf("%w: %s thresholds must not be negative", ErrInvalidConfig, t)
		}
		if dc.MinImpressions < 0 || dc.MinClicks < 0 || dc.MinSpendUSD < 0 {
			return fmt.Errorf("%w: %s volume minimums must not be negative", ErrInvalidConfig, t)
		}

		switch t {
		case domain.AnomalyZeroConversions:
		case domain.AnomalyLowROAS:
			// lower ROAS is worse, so the high bar sits below the firing bar
			if dc.HighPriorityThreshold > dc.ChangeThreshold {
				return fmt.Errorf("%w: %s high priority ROAS %.2f above firing ROAS %.2f",
					ErrInvalidConfig, t, dc.HighPriorityThreshold, dc.ChangeThreshold)
			}
		default:
			if dc.HighPriorityThreshold < dc.ChangeThreshold {
				return fmt.Errorf("%w: %s high priority threshold %.2f below change threshold %.2f",
					ErrInvalidConfig, t, dc.HighPriorityThreshold, dc.ChangeThreshold)
			}
		}
	}

	return nil
}

// Option customizes a Detector
type Option func(*Detector)

// WithClock overrides the time source used to compute comparison windows
func WithClock(now func() time.Time) Option {
	return func(d *Detector) {
		d.now = now
	}
}
