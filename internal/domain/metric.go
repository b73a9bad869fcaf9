package domain

import "time"

// MicrosPerUnit scales integer currency amounts
const MicrosPerUnit = 1_000_000

// MetricRecord is one daily fact row per (user, source, account, date)
type MetricRecord struct {
	UserID        string    `ch:"user_id" json:"user_id"`
	Source        string    `ch:"source" json:"source"`
	AccountID     string    `ch:"account_id" json:"account_id"`
	Date          time.Time `ch:"date" json:"date"`
	CostMicros    int64     `ch:"cost_micros" json:"cost_micros"`
	RevenueMicros int64     `ch:"revenue_micros" json:"revenue_micros"`
	Clicks        int64     `ch:"clicks" json:"clicks"`
	Impressions   int64     `ch:"impressions" json:"impressions"`
	Transactions  int64     `ch:"transactions" json:"transactions"`
	CreatedAt     time.Time `ch:"created_at" json:"created_at"`
}

// MicrosToUnits converts a micros amount into currency units
func MicrosToUnits(micros int64) float64 {
	return float64(micros) / MicrosPerUnit
}

// UnitsToMicros converts a currency amount into micros, rounding to the nearest micro
func UnitsToMicros(units float64) int64 {
	if units >= 0 {
		return int64(units*MicrosPerUnit + 0.5)
	}
	return int64(units*MicrosPerUnit - 0.5)
}
