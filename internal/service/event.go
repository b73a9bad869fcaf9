package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/marketing-insights-service/internal/domain"
	"github.com/BarkinBalci/marketing-insights-service/internal/dto"
	"github.com/BarkinBalci/marketing-insights-service/internal/observability"
	"github.com/BarkinBalci/marketing-insights-service/internal/queue"
	"github.com/BarkinBalci/marketing-insights-service/internal/repository"
)

const (
	// maxClockSkew is how far ahead of the server clock an event may be stamped
	maxClockSkew = time.Second

	maxHourlyRange = 90 * 24 * time.Hour

	dateLayout = "2006-01-02"
)

var validGroupBy = map[string]bool{"platform": true, "hour": true, "day": true}

// EventService represents event service
type EventService struct {
	publisher queue.QueuePublisher
	events    repository.EventRepository
	metrics   repository.MetricsRepository
	now       func() time.Time
	log       *zap.Logger
}

// NewEventService creates a new event service
func NewEventService(publisher queue.QueuePublisher, events repository.EventRepository, metrics repository.MetricsRepository, log *zap.Logger) *EventService {
	return &EventService{
		publisher: publisher,
		events:    events,
		metrics:   metrics,
		now:       time.Now,
		log:       log,
	}
}

// computeEventID generates a deterministic event ID based on event content.
// Uses SHA-256 of user_id|customer_id|event_type|platform|event_timestamp|campaign_id|ad_group_id|ad_id
func computeEventID(event *dto.PublishEventRequest) string {
	data := fmt.Sprintf("%s|%s|%s|%s|%d|%s|%s|%s",
		event.UserID,
		event.CustomerID,
		event.EventType,
		event.Platform,
		event.EventTimestamp,
		event.CampaignID,
		event.AdGroupID,
		event.AdID,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// IngestEvent validates a single event and publishes it to the queue
func (s *EventService) IngestEvent(ctx context.Context, event *dto.PublishEventRequest) (string, error) {
	current := s.now()
	if time.Unix(event.EventTimestamp, 0).After(current.Add(maxClockSkew)) {
		s.log.Warn("Timestamp validation failed: future timestamp",
			zap.Int64("event_timestamp", event.EventTimestamp),
			zap.Int64("current_time", current.Unix()),
			zap.String("event_type", event.EventType))
		return "", fmt.Errorf("%w: %d > %d", ErrFutureTimestamp, event.EventTimestamp, current.Unix())
	}

	eventID := computeEventID(event)

	msg := &queue.EventMessage{
		EventID:        eventID,
		UserID:         event.UserID,
		CustomerID:     event.CustomerID,
		EventType:      event.EventType,
		Platform:       event.Platform,
		CampaignID:     event.CampaignID,
		CampaignName:   event.CampaignName,
		AdGroupID:      event.AdGroupID,
		AdID:           event.AdID,
		PageURL:        event.PageURL,
		Referrer:       event.Referrer,
		Revenue:        event.Revenue,
		EventTimestamp: event.EventTimestamp,
	}

	if err := s.publisher.PublishEvent(ctx, msg); err != nil {
		observability.EventsPublishedTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to publish event to queue: %w", err)
	}
	observability.EventsPublishedTotal.WithLabelValues("success").Inc()

	return eventID, nil
}

// IngestBulk validates and publishes multiple events, reporting per-event failures
func (s *EventService) IngestBulk(ctx context.Context, events []dto.PublishEventRequest) ([]string, []string, error) {
	var eventIDs []string
	var failures []string

	for i := range events {
		eventID, err := s.IngestEvent(ctx, &events[i])
		if err != nil {
			failures = append(failures, fmt.Sprintf("event %d: %s", i, err.Error()))
			s.log.Warn("Failed to process event in bulk",
				zap.Int("index", i),
				zap.Error(err),
				zap.String("event_type", events[i].EventType))
			continue
		}
		eventIDs = append(eventIDs, eventID)
	}

	return eventIDs, failures, nil
}

// GetMetrics retrieves aggregated event counts from the repository
func (s *EventService) GetMetrics(ctx context.Context, req *dto.GetMetricsRequest) (*dto.GetMetricsResponse, error) {
	if req.From > req.To {
		s.log.Warn("Invalid time range for metrics",
			zap.Int64("from", req.From),
			zap.Int64("to", req.To),
			zap.String("event_type", req.EventType))
		return nil, fmt.Errorf("%w: from timestamp must be less than or equal to to timestamp", ErrInvalidRequest)
	}

	if req.GroupBy != "" {
		if !validGroupBy[req.GroupBy] {
			s.log.Warn("Invalid group_by value", zap.String("group_by", req.GroupBy))
			return nil, fmt.Errorf("%w: invalid group_by value: %s (supported: platform, hour, day)", ErrInvalidRequest, req.GroupBy)
		}

		rangeSeconds := req.To - req.From
		if req.GroupBy == "hour" && time.Duration(rangeSeconds)*time.Second > maxHourlyRange {
			s.log.Warn("Large time range for hourly grouping",
				zap.Int64("range_days", rangeSeconds/(24*3600)))
			return nil, fmt.Errorf("%w: time range too large for hourly grouping (max 90 days, got %d days)",
				ErrInvalidRequest, rangeSeconds/(24*3600))
		}
	}

	query := repository.MetricsQuery{
		UserID:    req.UserID,
		EventType: req.EventType,
		From:      req.From,
		To:        req.To,
		GroupBy:   req.GroupBy,
	}

	s.log.Info("Querying metrics",
		zap.String("user_id", req.UserID),
		zap.String("event_type", req.EventType),
		zap.Int64("from", req.From),
		zap.Int64("to", req.To),
		zap.String("group_by", req.GroupBy))

	result, err := s.events.GetMetrics(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics from repository: %w", err)
	}

	response := &dto.GetMetricsResponse{
		UserID:         req.UserID,
		EventType:      req.EventType,
		From:           req.From,
		To:             req.To,
		TotalCount:     result.TotalCount,
		UniqueCustomer: result.UniqueCustomer,
		GroupBy:        req.GroupBy,
		Groups:         make([]dto.MetricsGroupData, 0, len(result.Groups)),
	}

	for _, group := range result.Groups {
		response.Groups = append(response.Groups, dto.MetricsGroupData{
			GroupValue: group.GroupValue,
			TotalCount: group.TotalCount,
		})
	}

	return response, nil
}

// UpsertDailyMetrics converts daily rows into micros and writes them to the metrics store.
// The whole batch is rejected when any row is invalid.
func (s *EventService) UpsertDailyMetrics(ctx context.Context, req *dto.UpsertDailyMetricsRequest) (int, error) {
	createdAt := s.now().UTC()
	records := make([]*domain.MetricRecord, 0, len(req.Metrics))

	for i, m := range req.Metrics {
		date, err := time.Parse(dateLayout, m.Date)
		if err != nil {
			return 0, fmt.Errorf("%w: metric %d: date must be YYYY-MM-DD: %q", ErrInvalidRequest, i, m.Date)
		}
		if m.CostUSD < 0 || m.RevenueUSD < 0 || m.Clicks < 0 || m.Impressions < 0 || m.Transactions < 0 {
			return 0, fmt.Errorf("%w: metric %d: values must be non-negative", ErrInvalidRequest, i)
		}

		records = append(records, &domain.MetricRecord{
			UserID:        m.UserID,
			Source:        m.Source,
			AccountID:     m.AccountID,
			Date:          date,
			CostMicros:    domain.UnitsToMicros(m.CostUSD),
			RevenueMicros: domain.UnitsToMicros(m.RevenueUSD),
			Clicks:        m.Clicks,
			Impressions:   m.Impressions,
			Transactions:  m.Transactions,
			CreatedAt:     createdAt,
		})
	}

	written, err := s.metrics.UpsertMetrics(ctx, records)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert daily metrics: %w", err)
	}

	s.log.Info("Daily metrics upserted", zap.Int("written", written))
	return written, nil
}
