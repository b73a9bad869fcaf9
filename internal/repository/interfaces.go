package repository

import (
	"context"
	"time"

	"github.com/BarkinBalci/marketing-insights-service/internal/domain"
)

// MetricsQuery represents event count query parameters
type MetricsQuery struct {
	UserID    string
	EventType string
	From      int64
	To        int64
	GroupBy   string
}

// MetricsGroupResult represents aggregated event counts for a specific group
type MetricsGroupResult struct {
	GroupValue string
	TotalCount uint64
}

// MetricsResult represents the result of an event count query
type MetricsResult struct {
	TotalCount     uint64
	UniqueCustomer uint64
	Groups         []MetricsGroupResult
}

// DateRange is an inclusive range of calendar days
type DateRange struct {
	From time.Time
	To   time.Time
}

// VolumeColumn names the counter a volume guard filters on
type VolumeColumn string

const (
	VolumeNone        VolumeColumn = ""
	VolumeImpressions VolumeColumn = "impressions"
	VolumeClicks      VolumeColumn = "clicks"
	VolumeCostMicros  VolumeColumn = "cost_micros"
)

// VolumeGuard keeps only groups whose summed Column is strictly greater than Min
type VolumeGuard struct {
	Column VolumeColumn
	Min    int64
}

// AggregateQuery sums metrics_daily per (source, account) over a date range
type AggregateQuery struct {
	UserID string
	Range  DateRange
	Guard  VolumeGuard
}

// AccountTotals is one aggregated (source, account) row
type AccountTotals struct {
	Source        string
	AccountID     string
	CostMicros    int64
	RevenueMicros int64
	Clicks        int64
	Impressions   int64
	Transactions  int64
}

// JourneyFilter narrows a journey listing
type JourneyFilter struct {
	UserID string
	From   *time.Time
	To     *time.Time
	Limit  int
}

// EventRepository defines the interface for raw event storage operations
type EventRepository interface {
	// InsertBatch inserts a batch of events into the storage
	InsertBatch(ctx context.Context, events []*domain.RawEvent) (int, error)

	// PurchaseEvents returns the tenant's purchase events, newest first
	PurchaseEvents(ctx context.Context, userID string) ([]*domain.RawEvent, error)

	// EventsForCustomer returns a customer's events within [from, to], oldest first
	EventsForCustomer(ctx context.Context, userID, customerID string, from, to time.Time) ([]*domain.RawEvent, error)

	// GetMetrics retrieves aggregated event counts based on the query
	GetMetrics(ctx context.Context, query MetricsQuery) (*MetricsResult, error)

	// InitSchema initializes the database schema (creates tables if they don't exist)
	InitSchema(ctx context.Context) error

	// Ping checks if the database connection is alive
	Ping(ctx context.Context) error

	// Close closes the repository and releases resources
	Close() error
}

// MetricsRepository defines the interface for the daily metrics fact table
type MetricsRepository interface {
	// AggregateByAccount sums metrics per (source, account) over the query range
	AggregateByAccount(ctx context.Context, query AggregateQuery) ([]AccountTotals, error)

	// UpsertMetrics writes daily rows; the latest created_at wins per key
	UpsertMetrics(ctx context.Context, records []*domain.MetricRecord) (int, error)
}

// JourneyRepository defines the interface for persisted customer journeys
type JourneyRepository interface {
	// JourneyExists reports whether a journey was already stored for the order
	JourneyExists(ctx context.Context, userID, orderID string) (bool, error)

	// InsertJourney stores the journey unless one exists for (user, order).
	// It reports whether a row was written.
	InsertJourney(ctx context.Context, journey *domain.CustomerJourney) (bool, error)

	// ListJourneys returns stored journeys, newest purchase first
	ListJourneys(ctx context.Context, filter JourneyFilter) ([]*domain.CustomerJourney, error)

	// InitSchema creates tables and constraints if they don't exist
	InitSchema(ctx context.Context) error

	// Ping checks if the database connection is alive
	Ping(ctx context.Context) error

	// Close closes the repository and releases resources
	Close() error
}
