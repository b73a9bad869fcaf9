package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/BarkinBalci/marketing-insights-service/internal/domain"
	"github.com/BarkinBalci/marketing-insights-service/internal/repository"
)

const rawEventColumns = `event_id, user_id, customer_id, event_type, platform, campaign_id, campaign_name,
	ad_group_id, ad_id, page_url, referrer, revenue, event_timestamp, processed_at, version`

// Repository implements EventRepository and MetricsRepository for ClickHouse
type Repository struct {
	client *Client
	log    *zap.Logger
}

// NewRepository creates a new ClickHouse repository
func NewRepository(client *Client, log *zap.Logger) *Repository {
	return &Repository{
		client: client,
		log:    log,
	}
}

var schemaStatements = []struct {
	table string
	ddl   string
}{
	{
		table: "raw_events",
		ddl: `
		CREATE TABLE IF NOT EXISTS raw_events (
			event_id String,
			user_id String,
			customer_id Nullable(String),
			event_type LowCardinality(String),
			platform LowCardinality(String),
			campaign_id String,
			campaign_name String,
			ad_group_id String,
			ad_id String,
			page_url String,
			referrer String,
			revenue Nullable(Float64),
			event_timestamp DateTime64(3, 'UTC'),
			processed_at DateTime64(3) DEFAULT now64(3),
			version UInt64
		) ENGINE = ReplacingMergeTree(version)
		PARTITION BY toYYYYMM(event_timestamp)
		ORDER BY (user_id, event_type, event_timestamp, event_id)
		SETTINGS index_granularity = 8192
		`,
	},
	{
		table: "metrics_daily",
		ddl: `
		CREATE TABLE IF NOT EXISTS metrics_daily (
			user_id String,
			source LowCardinality(String),
			account_id String,
			date Date,
			cost_micros Int64,
			revenue_micros Int64,
			clicks Int64,
			impressions Int64,
			transactions Int64,
			created_at DateTime64(3) DEFAULT now64(3)
		) ENGINE = ReplacingMergeTree(created_at)
		PARTITION BY toYYYYMM(date)
		ORDER BY (user_id, source, account_id, date)
		SETTINGS index_granularity = 8192
		`,
	},
}

// InitSchema creates the raw event and daily metric tables
func (r *Repository) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if err := r.client.Conn().Exec(ctx, stmt.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", stmt.table, err)
		}
	}

	r.log.Info("ClickHouse schema initialized successfully")
	return nil
}

// InsertBatch inserts a batch of raw events into ClickHouse
func (r *Repository) InsertBatch(ctx context.Context, events []*domain.RawEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	batch, err := r.client.Conn().PrepareBatch(ctx, "INSERT INTO raw_events ("+rawEventColumns+")")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare batch: %w", err)
	}

	insertedCount := 0
	for _, event := range events {
		if event.Version == 0 {
			event.Version = uint64(time.Now().UnixNano())
		}
		if event.ProcessedAt.IsZero() {
			event.ProcessedAt = time.Now().UTC()
		}

		err := batch.Append(
			event.EventID,
			event.UserID,
			event.CustomerID,
			event.EventType,
			event.Platform,
			event.CampaignID,
			event.CampaignName,
			event.AdGroupID,
			event.AdID,
			event.PageURL,
			event.Referrer,
			event.Revenue,
			event.EventTimestamp.UTC(),
			event.ProcessedAt,
			event.Version,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to append event to batch: %w", err)
		}
		insertedCount++
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send batch: %w", err)
	}

	return insertedCount, nil
}

// PurchaseEvents returns all purchase events of a tenant, newest first
func (r *Repository) PurchaseEvents(ctx context.Context, userID string) ([]*domain.RawEvent, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM raw_events FINAL
		WHERE user_id = ? AND event_type = ?
		ORDER BY event_timestamp DESC
	`, rawEventColumns)

	var rows []domain.RawEvent
	if err := r.client.Conn().Select(ctx, &rows, query, userID, domain.EventTypePurchase); err != nil {
		return nil, fmt.Errorf("failed to query purchase events: %w", err)
	}

	return toPointers(rows), nil
}

// EventsForCustomer returns a customer's events within the inclusive range, oldest first
func (r *Repository) EventsForCustomer(ctx context.Context, userID, customerID string, from, to time.Time) ([]*domain.RawEvent, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM raw_events FINAL
		WHERE user_id = ? AND customer_id = ?
			AND event_timestamp >= ? AND event_timestamp <= ?
		ORDER BY event_timestamp ASC, event_id ASC
	`, rawEventColumns)

	var rows []domain.RawEvent
	if err := r.client.Conn().Select(ctx, &rows, query, userID, customerID, from.UTC(), to.UTC()); err != nil {
		return nil, fmt.Errorf("failed to query customer events: %w", err)
	}

	return toPointers(rows), nil
}

// Ping checks if the ClickHouse connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}

// Close closes the ClickHouse connection
func (r *Repository) Close() error {
	return r.client.Close()
}

// GetMetrics retrieves event counts from ClickHouse
func (r *Repository) GetMetrics(ctx context.Context, query repository.MetricsQuery) (*repository.MetricsResult, error) {
	result := &repository.MetricsResult{
		Groups: []repository.MetricsGroupResult{},
	}

	whereClause, args := eventMetricsWhere(query)

	overallQuery := fmt.Sprintf(`
		SELECT
			count() AS total_count,
			uniq(customer_id) AS unique_customers
		FROM raw_events FINAL
		%s
	`, whereClause)

	row := r.client.Conn().QueryRow(ctx, overallQuery, args...)
	if err := row.Scan(&result.TotalCount, &result.UniqueCustomer); err != nil {
		return nil, fmt.Errorf("failed to query overall metrics: %w", err)
	}

	if query.GroupBy == "" {
		return result, nil
	}

	groupedQuery, err := groupedEventMetricsQuery(query.GroupBy, whereClause)
	if err != nil {
		return nil, err
	}

	rows, err := r.client.Conn().Query(ctx, groupedQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query grouped metrics: %w", err)
	}
	defer func(rows driver.Rows) {
		if err := rows.Close(); err != nil {
			r.log.Error("Failed to close grouped metrics rows", zap.Error(err))
		}
	}(rows)

	for rows.Next() {
		var group repository.MetricsGroupResult
		if err := rows.Scan(&group.GroupValue, &group.TotalCount); err != nil {
			return nil, fmt.Errorf("failed to scan grouped metrics row: %w", err)
		}
		result.Groups = append(result.Groups, group)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating grouped metrics rows: %w", err)
	}

	return result, nil
}

func eventMetricsWhere(query repository.MetricsQuery) (string, []any) {
	where := "WHERE user_id = ? AND event_timestamp >= toDateTime(?) AND event_timestamp <= toDateTime(?)"
	args := []any{query.UserID, query.From, query.To}
	if query.EventType != "" {
		where += " AND event_type = ?"
		args = append(args, query.EventType)
	}
	return where, args
}

func groupedEventMetricsQuery(groupBy, whereClause string) (string, error) {
	var selectField, groupByClause, orderBy string

	switch groupBy {
	case "platform":
		selectField = "toString(platform)"
		groupByClause = "GROUP BY platform"
		orderBy = "ORDER BY total_count DESC"
	case "hour":
		selectField = "formatDateTime(toStartOfHour(event_timestamp), '%Y-%m-%d %H:00:00')"
		groupByClause = "GROUP BY toStartOfHour(event_timestamp)"
		orderBy = "ORDER BY group_value ASC"
	case "day":
		selectField = "formatDateTime(toStartOfDay(event_timestamp), '%Y-%m-%d')"
		groupByClause = "GROUP BY toStartOfDay(event_timestamp)"
		orderBy = "ORDER BY group_value ASC"
	default:
		return "", fmt.Errorf("unsupported group_by value: %s (supported: platform, hour, day)", groupBy)
	}

	return fmt.Sprintf(`
		SELECT
			%s AS group_value,
			count() AS total_count
		FROM raw_events FINAL
		%s
		%s
		%s
	`, selectField, whereClause, groupByClause, orderBy), nil
}

func toPointers(rows []domain.RawEvent) []*domain.RawEvent {
	out := make([]*domain.RawEvent, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out
}
