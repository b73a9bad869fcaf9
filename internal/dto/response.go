package dto

import (
	"github.com/BarkinBalci/marketing-insights-service/internal/domain"
	"github.com/BarkinBalci/marketing-insights-service/internal/insights"
	"github.com/BarkinBalci/marketing-insights-service/internal/journey"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"validation_error"`
	Message string `json:"message,omitempty" example:"user_id is required"`
}

// PublishEventResponse represents a successful event ingestion response
type PublishEventResponse struct {
	EventID string `json:"event_id" example:"5f2b0c6e9a..."`
	Status  string `json:"status" example:"accepted"`
}

// PublishBulkEventsResponse represents a bulk event ingestion response
type PublishBulkEventsResponse struct {
	Accepted int      `json:"accepted" example:"5"`
	Rejected int      `json:"rejected" example:"0"`
	EventIDs []string `json:"event_ids,omitempty"`
	Errors   []string `json:"errors,omitempty" example:"event 3: timestamp cannot be in the future"`
}

// MetricsGroupData represents an event count for a specific group
type MetricsGroupData struct {
	GroupValue string `json:"group_value" example:"google"`
	TotalCount uint64 `json:"total_count" example:"1500"`
}

// GetMetricsResponse represents the event count query response
type GetMetricsResponse struct {
	UserID         string             `json:"user_id" example:"tenant_123"`
	EventType      string             `json:"event_type" example:"click"`
	From           int64              `json:"from" example:"1759395200"`
	To             int64              `json:"to" example:"1760000000"`
	TotalCount     uint64             `json:"total_count" example:"5000"`
	UniqueCustomer uint64             `json:"unique_customers" example:"2500"`
	GroupBy        string             `json:"group_by,omitempty" example:"platform"`
	Groups         []MetricsGroupData `json:"groups,omitempty"`
}

// UpsertDailyMetricsResponse reports how many daily rows were written
type UpsertDailyMetricsResponse struct {
	Written int `json:"written" example:"42"`
}

// AnomaliesResponse wraps an anomaly detection report
type AnomaliesResponse struct {
	Degraded bool `json:"degraded" example:"false"`
	*insights.Report
}

// ListJourneysResponse represents stored customer journeys
type ListJourneysResponse struct {
	UserID   string                    `json:"user_id" example:"tenant_123"`
	Count    int                       `json:"count" example:"1"`
	Journeys []*domain.CustomerJourney `json:"journeys"`
}

// ProcessJourneysResponse is the outcome of a journey construction run
type ProcessJourneysResponse = journey.ProcessResult

// AttributionResponse is an attribution model summary
type AttributionResponse = journey.Summary
