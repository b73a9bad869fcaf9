package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BarkinBalci/marketing-insights-service/internal/domain"
	"github.com/BarkinBalci/marketing-insights-service/internal/repository"
)

const defaultListLimit = 500

const journeySchema = `
CREATE TABLE IF NOT EXISTS customer_journeys (
	id                     UUID PRIMARY KEY,
	user_id                TEXT NOT NULL,
	customer_id            TEXT NOT NULL,
	order_id               TEXT NOT NULL,
	order_value            DOUBLE PRECISION NOT NULL DEFAULT 0,
	touchpoints            JSONB NOT NULL,
	first_touch_channel    TEXT NOT NULL,
	last_touch_channel     TEXT NOT NULL,
	journey_duration_hours INTEGER NOT NULL CHECK (journey_duration_hours >= 0),
	touchpoint_count       INTEGER NOT NULL,
	purchased_at           TIMESTAMPTZ NOT NULL,
	created_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT customer_journeys_user_order_key UNIQUE (user_id, order_id)
);

CREATE INDEX IF NOT EXISTS customer_journeys_user_purchased_idx
	ON customer_journeys (user_id, purchased_at DESC);
`

const journeyColumns = `id, user_id, customer_id, order_id, order_value, touchpoints, first_touch_channel,
	last_touch_channel, journey_duration_hours, touchpoint_count, purchased_at, created_at`

// JourneyRepository implements repository.JourneyRepository on Postgres
type JourneyRepository struct {
	pool Pool
	log  *zap.Logger
}

// NewJourneyRepository creates a journey store over the given pool
func NewJourneyRepository(pool Pool, log *zap.Logger) *JourneyRepository {
	return &JourneyRepository{pool: pool, log: log}
}

// InitSchema creates the journeys table and its unique (user_id, order_id) constraint
func (r *JourneyRepository) InitSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, journeySchema); err != nil {
		return fmt.Errorf("failed to create customer_journeys table: %w", err)
	}
	r.log.Info("Postgres schema initialized successfully")
	return nil
}

// JourneyExists reports whether a journey is stored for (userID, orderID)
func (r *JourneyRepository) JourneyExists(ctx context.Context, userID, orderID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM customer_journeys WHERE user_id = $1 AND order_id = $2)`,
		userID, orderID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check journey existence: %w", err)
	}
	return exists, nil
}

// InsertJourney writes the journey in a single conditional statement; a concurrent
// writer for the same order makes this a no-op that reports false
func (r *JourneyRepository) InsertJourney(ctx context.Context, journey *domain.CustomerJourney) (bool, error) {
	if journey.ID == "" {
		journey.ID = uuid.NewString()
	}
	if journey.CreatedAt.IsZero() {
		journey.CreatedAt = time.Now().UTC()
	}

	// pgx's jsonb codec marshals the slice
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO customer_journeys (`+journeyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id, order_id) DO NOTHING`,
		journey.ID,
		journey.UserID,
		journey.CustomerID,
		journey.OrderID,
		journey.OrderValue,
		journey.Touchpoints,
		journey.FirstTouchChannel,
		journey.LastTouchChannel,
		journey.JourneyDurationHours,
		journey.TouchpointCount,
		journey.PurchasedAt.UTC(),
		journey.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert journey: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// ListJourneys returns a tenant's journeys ordered by purchase time, newest first
func (r *JourneyRepository) ListJourneys(ctx context.Context, filter repository.JourneyFilter) ([]*domain.CustomerJourney, error) {
	query, args := buildListQuery(filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journeys: %w", err)
	}
	defer rows.Close()

	var journeys []*domain.CustomerJourney
	for rows.Next() {
		var j domain.CustomerJourney
		if err := rows.Scan(
			&j.ID,
			&j.UserID,
			&j.CustomerID,
			&j.OrderID,
			&j.OrderValue,
			&j.Touchpoints,
			&j.FirstTouchChannel,
			&j.LastTouchChannel,
			&j.JourneyDurationHours,
			&j.TouchpointCount,
			&j.PurchasedAt,
			&j.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan journey row: %w", err)
		}
		journeys = append(journeys, &j)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journey rows: %w", err)
	}

	return journeys, nil
}

// Ping checks if the Postgres connection is alive
func (r *JourneyRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close releases the pool
func (r *JourneyRepository) Close() error {
	r.pool.Close()
	return nil
}

func buildListQuery(filter repository.JourneyFilter) (string, []any) {
	conditions := []string{"user_id = $1"}
	args := []any{filter.UserID}

	if filter.From != nil {
		args = append(args, filter.From.UTC())
		conditions = append(conditions, fmt.Sprintf("purchased_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, filter.To.UTC())
		conditions = append(conditions, fmt.Sprintf("purchased_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	args = append(args, limit)

	query := fmt.Sprintf(`SELECT id::text, %s FROM customer_journeys WHERE %s ORDER BY purchased_at DESC LIMIT $%d`,
		strings.TrimPrefix(journeyColumns, "id, "), strings.Join(conditions, " AND "), len(args))

	return query, args
}
