package clickhouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/BarkinBalci/marketing-insights-service/internal/domain"
	"github.com/BarkinBalci/marketing-insights-service/internal/repository"
)

const dateLayout = "2006-01-02"

// AggregateByAccount sums metrics_daily per (source, account) over the query range,
// keeping only groups that pass the volume guard
func (r *Repository) AggregateByAccount(ctx context.Context, query repository.AggregateQuery) ([]repository.AccountTotals, error) {
	sql, args, err := buildAggregateQuery(query)
	if err != nil {
		return nil, err
	}

	rows, err := r.client.Conn().Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query account aggregates: %w", err)
	}
	defer func(rows driver.Rows) {
		if err := rows.Close(); err != nil {
			r.log.Error("Failed to close aggregate rows", zap.Error(err))
		}
	}(rows)

	var totals []repository.AccountTotals
	for rows.Next() {
		var t repository.AccountTotals
		if err := rows.Scan(&t.Source, &t.AccountID, &t.CostMicros, &t.RevenueMicros, &t.Clicks, &t.Impressions, &t.Transactions); err != nil {
			return nil, fmt.Errorf("failed to scan aggregate row: %w", err)
		}
		totals = append(totals, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating aggregate rows: %w", err)
	}

	return totals, nil
}

// UpsertMetrics appends daily rows; ReplacingMergeTree keeps the latest created_at per key
func (r *Repository) UpsertMetrics(ctx context.Context, records []*domain.MetricRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	batch, err := r.client.Conn().PrepareBatch(ctx,
		"INSERT INTO metrics_daily (user_id, source, account_id, date, cost_micros, revenue_micros, clicks, impressions, transactions, created_at)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare metrics batch: %w", err)
	}

	for _, rec := range records {
		createdAt := rec.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}

		err := batch.Append(
			rec.UserID,
			rec.Source,
			rec.AccountID,
			truncateToDay(rec.Date),
			rec.CostMicros,
			rec.RevenueMicros,
			rec.Clicks,
			rec.Impressions,
			rec.Transactions,
			createdAt,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to append metric record to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send metrics batch: %w", err)
	}

	return len(records), nil
}

// buildAggregateQuery renders the single parameterised aggregate every detector runs
func buildAggregateQuery(query repository.AggregateQuery) (string, []any, error) {
	if query.UserID == "" {
		return "", nil, fmt.Errorf("user id is required")
	}
	if query.Range.To.Before(query.Range.From) {
		return "", nil, fmt.Errorf("invalid date range: %s > %s",
			query.Range.From.Format(dateLayout), query.Range.To.Format(dateLayout))
	}

	var sb strings.Builder
	// sums are aliased apart from their source columns: ClickHouse resolves a HAVING
	// identifier to a same-named alias first, which would nest the aggregate
	sb.WriteString(`SELECT
			toString(source) AS source_name,
			account_id,
			sum(cost_micros) AS total_cost_micros,
			sum(revenue_micros) AS total_revenue_micros,
			sum(clicks) AS total_clicks,
			sum(impressions) AS total_impressions,
			sum(transactions) AS total_transactions
		FROM metrics_daily FINAL
		WHERE user_id = ? AND date >= toDate(?) AND date <= toDate(?)
		GROUP BY source, account_id`)

	args := []any{
		query.UserID,
		query.Range.From.Format(dateLayout),
		query.Range.To.Format(dateLayout),
	}

	switch query.Guard.Column {
	case repository.VolumeNone:
	case repository.VolumeImpressions, repository.VolumeClicks, repository.VolumeCostMicros:
		sb.WriteString(fmt.Sprintf("\n\t\tHAVING sum(%s) > ?", query.Guard.Column))
		args = append(args, query.Guard.Min)
	default:
		return "", nil, fmt.Errorf("unsupported volume guard column: %s", query.Guard.Column)
	}

	return sb.String(), args, nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
