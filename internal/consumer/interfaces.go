package consumer

import (
	"context"

	"github.com/BarkinBalci/marketing-insights-service/internal/domain"
)

// MessageParser defines the interface for parsing raw message bytes into events
type MessageParser interface {
	Parse(body []byte) (*domain.RawEvent, error)
}

// Deduplicator tracks event IDs that were already written to the store
type Deduplicator interface {
	Seen(ctx context.Context, ids []string) (map[string]bool, error)
	MarkProcessed(ctx context.Context, ids []string) error
}
