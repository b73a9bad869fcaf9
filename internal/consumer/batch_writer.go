package consumer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/marketing-insights-service/internal/domain"
	"github.com/BarkinBalci/marketing-insights-service/internal/observability"
	"github.com/BarkinBalci/marketing-insights-service/internal/repository"
)

// BatchWriterConfig configures the batch writer
type BatchWriterConfig struct {
	MaxBatchSize int
	FlushTimeout time.Duration
	// FailOpen writes the whole batch when the deduplicator is unreachable
	FailOpen bool
}

// BatchWriter handles batching and writing events to the repository
type BatchWriter struct {
	repository repository.EventRepository
	dedup      Deduplicator
	config     BatchWriterConfig
	log        *zap.Logger
}

// NewBatchWriter creates a new batch writer. dedup may be nil to disable the
// idempotency check.
func NewBatchWriter(repo repository.EventRepository, dedup Deduplicator, config BatchWriterConfig, log *zap.Logger) *BatchWriter {
	return &BatchWriter{
		repository: repo,
		dedup:      dedup,
		config:     config,
		log:        log,
	}
}

// Start begins processing envelopes, batching, and writing to the repository
func (w *BatchWriter) Start(ctx context.Context, in <-chan *Envelope) {
	ticker := time.NewTicker(w.config.FlushTimeout)
	defer ticker.Stop()

	batch := make([]*Envelope, 0, w.config.MaxBatchSize)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Batch writer shutting down")
			if len(batch) > 0 {
				w.log.Info("Flushing final batch", zap.Int("envelope_count", len(batch)))
				w.processBatch(context.WithoutCancel(ctx), batch)
			}
			return

		case envelope, ok := <-in:
			if !ok {
				w.log.Info("Batch writer input channel closed")
				if len(batch) > 0 {
					w.log.Info("Flushing final batch", zap.Int("envelope_count", len(batch)))
					w.processBatch(ctx, batch)
				}
				return
			}

			batch = append(batch, envelope)

			if len(batch) >= w.config.MaxBatchSize {
				w.log.Debug("Batch size threshold reached", zap.Int("batch_size", len(batch)))
				w.processBatch(ctx, batch)
				batch = make([]*Envelope, 0, w.config.MaxBatchSize)
				ticker.Reset(w.config.FlushTimeout)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				w.log.Debug("Batch timeout reached", zap.Int("envelope_count", len(batch)))
				w.processBatch(ctx, batch)
				batch = make([]*Envelope, 0, w.config.MaxBatchSize)
			}
		}
	}
}

// processBatch drops already-written events, inserts the rest, then acks or nacks
func (w *BatchWriter) processBatch(ctx context.Context, envelopes []*Envelope) {
	if len(envelopes) == 0 {
		return
	}

	pending, duplicates, err := w.filterDuplicates(ctx, envelopes)
	if err != nil {
		w.log.Error("Idempotency check failed, leaving batch for retry",
			zap.Error(err),
			zap.Int("event_count", len(envelopes)))
		w.nackAll(ctx, envelopes)
		return
	}

	if len(duplicates) > 0 {
		w.log.Info("Dropping already written events", zap.Int("count", len(duplicates)))
		observability.EventsDeduplicatedTotal.Add(float64(len(duplicates)))
		w.ackAll(ctx, duplicates)
	}
	if len(pending) == 0 {
		return
	}

	events := make([]*domain.RawEvent, len(pending))
	ids := make([]string, len(pending))
	for i, env := range pending {
		events[i] = env.Event
		ids[i] = env.Event.EventID
	}

	insertedCount, err := w.repository.InsertBatch(ctx, events)
	if err != nil {
		w.log.Error("Failed to insert batch",
			zap.Error(err),
			zap.Int("event_count", len(events)))
		w.nackAll(ctx, pending)
		return
	}

	if insertedCount != len(events) {
		w.log.Warn("Partial insert success",
			zap.Int("inserted", insertedCount),
			zap.Int("expected", len(events)))
		w.nackAll(ctx, pending)
		return
	}

	observability.EventsWrittenTotal.Add(float64(insertedCount))
	w.log.Info("Successfully inserted events",
		zap.Int("count", insertedCount))

	if w.dedup != nil {
		if err := w.dedup.MarkProcessed(ctx, ids); err != nil {
			w.log.Warn("Failed to record processed events", zap.Error(err))
		}
	}

	w.ackAll(ctx, pending)
}

// filterDuplicates splits envelopes into pending and already written ones.
// When the deduplicator is unreachable and FailOpen is set, everything is pending;
// ReplacingMergeTree collapses any resulting duplicates.
func (w *BatchWriter) filterDuplicates(ctx context.Context, envelopes []*Envelope) (pending, duplicates []*Envelope, err error) {
	if w.dedup == nil {
		return envelopes, nil, nil
	}

	ids := make([]string, len(envelopes))
	for i, env := range envelopes {
		ids[i] = env.Event.EventID
	}

	seen, err := w.dedup.Seen(ctx, ids)
	if err != nil {
		if w.config.FailOpen {
			w.log.Warn("Idempotency check unavailable, writing batch anyway", zap.Error(err))
			return envelopes, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to check processed events: %w", err)
	}

	inBatch := make(map[string]bool, len(envelopes))
	for _, env := range envelopes {
		id := env.Event.EventID
		if seen[id] || inBatch[id] {
			duplicates = append(duplicates, env)
			continue
		}
		inBatch[id] = true
		pending = append(pending, env)
	}
	return pending, duplicates, nil
}

// ackAll acknowledges all envelopes (deletes from SQS)
func (w *BatchWriter) ackAll(ctx context.Context, envelopes []*Envelope) {
	for _, env := range envelopes {
		if err := env.Ack(ctx); err != nil {
			w.log.Error("Failed to ack envelope", zap.Error(err))
		}
	}
}

// nackAll negatively acknowledges all envelopes (leaves in SQS for retry)
func (w *BatchWriter) nackAll(ctx context.Context, envelopes []*Envelope) {
	for _, env := range envelopes {
		if env.Attempt > 1 {
			w.log.Warn("Returning redelivered event to queue",
				zap.String("event_id", env.Event.EventID),
				zap.String("message_id", env.MessageID),
				zap.Int("attempt", env.Attempt))
		}
		if err := env.Nack(ctx); err != nil {
			w.log.Error("Failed to nack envelope", zap.Error(err))
		}
	}
}
