package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/marketing-insights-service/internal/domain"
	"github.com/BarkinBalci/marketing-insights-service/internal/dto"
	"github.com/BarkinBalci/marketing-insights-service/internal/journey"
	"github.com/BarkinBalci/marketing-insights-service/internal/repository"
)

// attributionLimit caps how many journeys feed one attribution summary
const attributionLimit = 10000

// JourneyService exposes journey construction, listing and attribution
type JourneyService struct {
	processor JourneyProcessor
	journeys  repository.JourneyRepository
	log       *zap.Logger
}

// NewJourneyService creates a new journey service
func NewJourneyService(processor JourneyProcessor, journeys repository.JourneyRepository, log *zap.Logger) *JourneyService {
	return &JourneyService{
		processor: processor,
		journeys:  journeys,
		log:       log,
	}
}

// ProcessJourneys builds and stores journeys for every purchase of the tenant
func (s *JourneyService) ProcessJourneys(ctx context.Context, userID string) (*journey.ProcessResult, error) {
	result, err := s.processor.ProcessCustomerJourneys(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to process customer journeys: %w", err)
	}
	return result, nil
}

// ListJourneys returns stored journeys within the optional unix time range
func (s *JourneyService) ListJourneys(ctx context.Context, req *dto.ListJourneysRequest) ([]*domain.CustomerJourney, error) {
	filter, err := journeyFilter(req.UserID, req.From, req.To, req.Limit)
	if err != nil {
		return nil, err
	}

	journeys, err := s.journeys.ListJourneys(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list journeys: %w", err)
	}
	return journeys, nil
}

// Attribution applies the requested model to the tenant's stored journeys
func (s *JourneyService) Attribution(ctx context.Context, req *dto.AttributionRequest) (*journey.Summary, error) {
	filter, err := journeyFilter(req.UserID, req.From, req.To, attributionLimit)
	if err != nil {
		return nil, err
	}

	journeys, err := s.journeys.ListJourneys(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list journeys: %w", err)
	}

	summary, err := journey.Attribute(journey.Model(req.Model), journeys)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	s.log.Info("Attribution computed",
		zap.String("user_id", req.UserID),
		zap.String("model", req.Model),
		zap.Int("journey_count", summary.JourneyCount))

	return summary, nil
}

func journeyFilter(userID string, from, to int64, limit int) (repository.JourneyFilter, error) {
	if from > 0 && to > 0 && from > to {
		return repository.JourneyFilter{}, fmt.Errorf("%w: from timestamp must be less than or equal to to timestamp", ErrInvalidRequest)
	}

	filter := repository.JourneyFilter{UserID: userID, Limit: limit}
	if from > 0 {
		t := time.Unix(from, 0).UTC()
		filter.From = &t
	}
	if to > 0 {
		t := time.Unix(to, 0).UTC()
		filter.To = &t
	}
	return filter, nil
}
