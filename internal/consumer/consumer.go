package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/BarkinBalci/marketing-insights-service/internal/config"
	"github.com/BarkinBalci/marketing-insights-service/internal/queue"
	"github.com/BarkinBalci/marketing-insights-service/internal/repository"
)

// Consumer runs the receive, decode and write stages as one pipeline
type Consumer struct {
	receiver    *Receiver
	parser      *ParserStage
	batchWriter *BatchWriter
	log         *zap.Logger
}

// NewConsumer wires the pipeline from configuration. dedup may be nil.
func NewConsumer(cfg *config.Config, queueConsumer queue.QueueConsumer, repo repository.EventRepository, dedup Deduplicator, log *zap.Logger) *Consumer {
	return &Consumer{
		receiver: NewReceiver(queueConsumer, ReceiverConfig{
			MaxMessages:       cfg.Consumer.ReceiveMaxMessages,
			WaitTimeSeconds:   cfg.Consumer.ReceiveWaitTimeSec,
			VisibilityTimeout: cfg.Consumer.VisibilityTimeoutSec,
			BufferSize:        cfg.Consumer.BufferSize,
		}, log),
		parser: NewParserStage(queueConsumer, NewJSONEventParser(), log),
		batchWriter: NewBatchWriter(repo, dedup, BatchWriterConfig{
			MaxBatchSize: cfg.Consumer.BatchSizeMax,
			FlushTimeout: time.Duration(cfg.Consumer.BatchTimeoutSec) * time.Second,
			FailOpen:     cfg.Valkey.IdempotencyFailOpen,
		}, log),
		log: log,
	}
}

// Start blocks until ctx is done and every stage has drained. Each stage closes its
// output on exit, so the writer flushes whatever the parser already emitted.
func (c *Consumer) Start(ctx context.Context) error {
	buffer := c.receiver.config.BufferSize
	messages := make(chan types.Message, buffer)
	envelopes := make(chan *Envelope, buffer)

	var wg sync.WaitGroup
	run := func(stage func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stage()
		}()
	}

	run(func() { c.receiver.Start(ctx, messages) })
	run(func() { c.parser.Start(ctx, messages, envelopes) })
	run(func() { c.batchWriter.Start(ctx, envelopes) })

	wg.Wait()
	c.log.Info("Consumer pipeline stopped")
	return nil
}
