package dto

// PublishEventRequest represents a raw marketing event ingestion request
type PublishEventRequest struct {
	UserID         string   `json:"user_id" binding:"required" example:"tenant_123"`
	CustomerID     string   `json:"customer_id" example:"cust_456"`
	EventType      string   `json:"event_type" binding:"required" example:"click"`
	Platform       string   `json:"platform" binding:"required" example:"google"`
	CampaignID     string   `json:"campaign_id" example:"cmp_987"`
	CampaignName   string   `json:"campaign_name" example:"Brand Search"`
	AdGroupID      string   `json:"ad_group_id" example:"adg_12"`
	AdID           string   `json:"ad_id" example:"ad_34"`
	PageURL        string   `json:"page_url" example:"https://shop.example.com/p/1"`
	Referrer       string   `json:"referrer" example:"https://www.google.com/"`
	Revenue        *float64 `json:"revenue" example:"129.99"`
	EventTimestamp int64    `json:"event_timestamp" binding:"required" example:"1760000000"`
}

// PublishEventsBulkRequest represents a publish bulk event request
type PublishEventsBulkRequest struct {
	Events []PublishEventRequest `json:"events" binding:"required,min=1,max=1000,dive"`
}

// GetMetricsRequest represents an event count query request
type GetMetricsRequest struct {
	UserID    string `form:"user_id" binding:"required" example:"tenant_123"`
	EventType string `form:"event_type" binding:"required" example:"click"`
	From      int64  `form:"from" binding:"required" example:"1759395200"`
	To        int64  `form:"to" binding:"required" example:"1760000000"`
	GroupBy   string `form:"group_by" example:"platform"`
}

// DailyMetricRequest is one daily metrics row pushed by a platform sync job
type DailyMetricRequest struct {
	UserID       string  `json:"user_id" binding:"required" example:"tenant_123"`
	Source       string  `json:"source" binding:"required" example:"google"`
	AccountID    string  `json:"account_id" binding:"required" example:"123-456-7890"`
	Date         string  `json:"date" binding:"required" example:"2026-10-14"`
	CostUSD      float64 `json:"cost_usd" binding:"min=0" example:"1200.50"`
	RevenueUSD   float64 `json:"revenue_usd" binding:"min=0" example:"3400"`
	Clicks       int64   `json:"clicks" binding:"min=0" example:"420"`
	Impressions  int64   `json:"impressions" binding:"min=0" example:"18000"`
	Transactions int64   `json:"transactions" binding:"min=0" example:"12"`
}

// UpsertDailyMetricsRequest represents a batch of daily metric rows
type UpsertDailyMetricsRequest struct {
	Metrics []DailyMetricRequest `json:"metrics" binding:"required,min=1,max=5000,dive"`
}

// AnomaliesRequest selects the tenant to run anomaly detection for
type AnomaliesRequest struct {
	UserID string `form:"user_id" binding:"required" example:"tenant_123"`
}

// ProcessJourneysRequest selects the tenant to build journeys for
type ProcessJourneysRequest struct {
	UserID string `form:"user_id" binding:"required" example:"tenant_123"`
}

// ListJourneysRequest filters stored journeys
type ListJourneysRequest struct {
	UserID string `form:"user_id" binding:"required" example:"tenant_123"`
	From   int64  `form:"from" example:"1759395200"`
	To     int64  `form:"to" example:"1760000000"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=1000" example:"100"`
}

// AttributionRequest selects the journeys and model for an attribution summary
type AttributionRequest struct {
	UserID string `form:"user_id" binding:"required" example:"tenant_123"`
	Model  string `form:"model" binding:"required,oneof=last_click first_click linear" example:"last_click"`
	From   int64  `form:"from" example:"1759395200"`
	To     int64  `form:"to" example:"1760000000"`
}
