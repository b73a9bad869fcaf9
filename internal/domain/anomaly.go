package domain

// AnomalyType identifies the detector that produced an anomaly
type AnomalyType string

const (
	AnomalyCostSpike       AnomalyType = "cost_spike"
	AnomalyCTRDrop         AnomalyType = "ctr_drop"
	AnomalyLowROAS         AnomalyType = "low_roas"
	AnomalyZeroConversions AnomalyType = "zero_conversions"
	AnomalyCVRDrop         AnomalyType = "cvr_drop"
	AnomalyCPCSpike        AnomalyType = "cpc_spike"
	AnomalyImpressionDrop  AnomalyType = "impression_drop"
)

// Priority grades the severity of an anomaly
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities, higher is more severe
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Anomaly is produced fresh on every detection pass and never persisted
type Anomaly struct {
	Type            AnomalyType `json:"type"`
	Priority        Priority    `json:"priority"`
	Source          string      `json:"source"`
	AccountID       string      `json:"account_id"`
	Metric          string      `json:"metric"`
	CurrentValue    float64     `json:"current_value"`
	PreviousValue   *float64    `json:"previous_value,omitempty"`
	ChangePct       float64     `json:"change_pct"`
	Threshold       float64     `json:"threshold"`
	CurrentSpendUSD float64     `json:"current_spend_usd"`
	Message         string      `json:"message"`
}
