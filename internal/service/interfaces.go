package service

import (
	"context"

	"github.com/BarkinBalci/marketing-insights-service/internal/domain"
	"github.com/BarkinBalci/marketing-insights-service/internal/dto"
	"github.com/BarkinBalci/marketing-insights-service/internal/insights"
	"github.com/BarkinBalci/marketing-insights-service/internal/journey"
)

// EventServicer defines the interface for event service operations
type EventServicer interface {
	IngestEvent(ctx context.Context, event *dto.PublishEventRequest) (string, error)
	IngestBulk(ctx context.Context, events []dto.PublishEventRequest) ([]string, []string, error)
	GetMetrics(ctx context.Context, req *dto.GetMetricsRequest) (*dto.GetMetricsResponse, error)
	UpsertDailyMetrics(ctx context.Context, req *dto.UpsertDailyMetricsRequest) (int, error)
}

// AnomalyDetector runs the configured anomaly detectors for a tenant
type AnomalyDetector interface {
	DetectAnomalies(ctx context.Context, userID string) *insights.Report
}

// JourneyProcessor builds customer journeys from raw events
type JourneyProcessor interface {
	ProcessCustomerJourneys(ctx context.Context, userID string) (*journey.ProcessResult, error)
}

// JourneyServicer defines the interface for journey service operations
type JourneyServicer interface {
	ProcessJourneys(ctx context.Context, userID string) (*journey.ProcessResult, error)
	ListJourneys(ctx context.Context, req *dto.ListJourneysRequest) ([]*domain.CustomerJourney, error)
	Attribution(ctx context.Context, req *dto.AttributionRequest) (*journey.Summary, error)
}
