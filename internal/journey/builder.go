package journey

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BarkinBalci/marketing-insights-service/internal/domain"
	"github.com/BarkinBalci/marketing-insights-service/internal/observability"
	"github.com/BarkinBalci/marketing-insights-service/internal/repository"
)

// Config controls journey construction
type Config struct {
	WindowDays int
}

// DefaultConfig returns a 30 day lookback window
func DefaultConfig() Config {
	return Config{WindowDays: 30}
}

// PurchaseError records a purchase that could not be turned into a journey
type PurchaseError struct {
	OrderID string `json:"order_id"`
	Error   string `json:"error"`
}

// ProcessResult summarizes one journey construction run
type ProcessResult struct {
	UserID    string          `json:"user_id"`
	Purchases int             `json:"purchases"`
	Created   int             `json:"created"`
	Skipped   int             `json:"skipped"`
	Ignored   int             `json:"ignored"`
	Failed    int             `json:"failed"`
	Errors    []PurchaseError `json:"errors,omitempty"`
}

// Builder turns a tenant's raw events into persisted purchase journeys
type Builder struct {
	events   repository.EventRepository
	journeys repository.JourneyRepository
	cfg      Config
	log      *zap.Logger
	tracer   trace.Tracer
}

// NewBuilder creates a new journey builder
func NewBuilder(events repository.EventRepository, journeys repository.JourneyRepository, cfg Config, log *zap.Logger) *Builder {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = DefaultConfig().WindowDays
	}
	return &Builder{
		events:   events,
		journeys: journeys,
		cfg:      cfg,
		log:      log,
		tracer:   otel.Tracer(observability.TracerName),
	}
}

type outcome int

const (
	outcomeCreated outcome = iota
	outcomeSkipped
	outcomeIgnored
)

// ProcessCustomerJourneys builds a journey for every purchase of the tenant that does
// not have one yet. A failing purchase is recorded in the result and the run continues;
// only failing to list purchases aborts the run.
func (b *Builder) ProcessCustomerJourneys(ctx context.Context, userID string) (*ProcessResult, error) {
	ctx, span := b.tracer.Start(ctx, "journey.ProcessCustomerJourneys",
		trace.WithAttributes(attribute.String("user_id", userID)))
	defer span.End()

	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	purchases, err := b.events.PurchaseEvents(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list purchase events: %w", err)
	}

	result := &ProcessResult{UserID: userID, Purchases: len(purchases)}

	b.log.Info("Processing customer journeys",
		zap.String("user_id", userID),
		zap.Int("purchases", len(purchases)))

	for _, purchase := range purchases {
		o, err := b.processPurchase(ctx, userID, purchase)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, PurchaseError{OrderID: purchase.EventID, Error: err.Error()})
			observability.JourneyPurchasesTotal.WithLabelValues(observability.OutcomeFailed).Inc()
			b.log.Error("Failed to process purchase",
				zap.String("user_id", userID),
				zap.String("order_id", purchase.EventID),
				zap.Error(err))
			continue
		}

		switch o {
		case outcomeCreated:
			result.Created++
			observability.JourneyPurchasesTotal.WithLabelValues(observability.OutcomeCreated).Inc()
		case outcomeSkipped:
			result.Skipped++
			observability.JourneyPurchasesTotal.WithLabelValues(observability.OutcomeSkipped).Inc()
		case outcomeIgnored:
			result.Ignored++
			observability.JourneyPurchasesTotal.WithLabelValues(observability.OutcomeIgnored).Inc()
		}
	}

	span.SetAttributes(
		attribute.Int("created", result.Created),
		attribute.Int("failed", result.Failed),
	)

	b.log.Info("Customer journeys processed",
		zap.String("user_id", userID),
		zap.Int("purchases", result.Purchases),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("ignored", result.Ignored),
		zap.Int("failed", result.Failed))

	return result, nil
}

func (b *Builder) processPurchase(ctx context.Context, userID string, purchase *domain.RawEvent) (o outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing purchase: %v", r)
		}
	}()

	if !purchase.HasCustomer() {
		b.log.Debug("Purchase has no customer, skipping",
			zap.String("order_id", purchase.EventID))
		return outcomeIgnored, nil
	}
	customerID := *purchase.CustomerID
	orderID := purchase.EventID

	exists, err := b.journeys.JourneyExists(ctx, userID, orderID)
	if err != nil {
		return 0, fmt.Errorf("failed to check existing journey: %w", err)
	}
	if exists {
		return outcomeSkipped, nil
	}

	to := purchase.EventTimestamp
	from := to.AddDate(0, 0, -b.cfg.WindowDays)

	events, err := b.events.EventsForCustomer(ctx, userID, customerID, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch customer events: %w", err)
	}

	journey, ok := BuildJourney(userID, purchase, events)
	if !ok {
		b.log.Warn("No touchpoints in journey window",
			zap.String("order_id", orderID),
			zap.String("customer_id", customerID))
		return outcomeIgnored, nil
	}

	inserted, err := b.journeys.InsertJourney(ctx, journey)
	if err != nil {
		return 0, fmt.Errorf("failed to persist journey: %w", err)
	}
	if !inserted {
		b.log.Debug("Journey written concurrently, skipping",
			zap.String("order_id", orderID))
		return outcomeSkipped, nil
	}

	b.log.Debug("Journey created",
		zap.String("order_id", orderID),
		zap.String("customer_id", customerID),
		zap.Int("touchpoints", journey.TouchpointCount))

	return outcomeCreated, nil
}

// BuildJourney derives the journey ending at purchase from the customer's events
// in the lookback window, which must already be ordered by timestamp ascending.
// The purchase is always the terminal touchpoint. Other events stamped at or after
// the purchase second are dropped, so ties never depend on event id order. It
// reports false when there is nothing to build.
func BuildJourney(userID string, purchase *domain.RawEvent, events []*domain.RawEvent) (*domain.CustomerJourney, bool) {
	if len(events) == 0 {
		return nil, false
	}

	touchpoints := make([]domain.Touchpoint, 0, len(events))
	var terminal *domain.RawEvent
	for _, e := range events {
		if e.EventID != "" && e.EventID == purchase.EventID {
			terminal = e
			continue
		}
		if !e.EventTimestamp.Before(purchase.EventTimestamp) {
			continue
		}
		touchpoints = append(touchpoints, toTouchpoint(e))
	}
	if terminal != nil {
		touchpoints = append(touchpoints, toTouchpoint(terminal))
	}
	if len(touchpoints) == 0 {
		return nil, false
	}

	first := touchpoints[0]
	last := touchpoints[len(touchpoints)-1]

	var orderValue float64
	if purchase.Revenue != nil {
		orderValue = *purchase.Revenue
	}

	var customerID string
	if purchase.CustomerID != nil {
		customerID = *purchase.CustomerID
	}

	return &domain.CustomerJourney{
		UserID:               userID,
		CustomerID:           customerID,
		OrderID:              purchase.EventID,
		OrderValue:           orderValue,
		Touchpoints:          touchpoints,
		FirstTouchChannel:    first.Platform,
		LastTouchChannel:     last.Platform,
		JourneyDurationHours: durationHours(first.Timestamp, purchase.EventTimestamp),
		TouchpointCount:      len(touchpoints),
		PurchasedAt:          purchase.EventTimestamp.UTC(),
	}, true
}

func toTouchpoint(e *domain.RawEvent) domain.Touchpoint {
	return domain.Touchpoint{
		Platform:     e.Platform,
		CampaignName: e.CampaignName,
		EventType:    e.EventType,
		Timestamp:    e.EventTimestamp.UTC(),
		Revenue:      e.Revenue,
	}
}

func durationHours(from, to time.Time) int {
	h := math.Round(to.Sub(from).Hours())
	if h < 0 {
		return 0
	}
	return int(h)
}
