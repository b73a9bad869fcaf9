package consumer

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/BarkinBalci/marketing-insights-service/internal/config"
	"github.com/BarkinBalci/marketing-insights-service/internal/domain"
)

func testConsumerConfig() *config.Config {
	return &config.Config{
		Consumer: config.Consumer{
			BatchSizeMax:         10,
			BatchTimeoutSec:      1,
			ReceiveMaxMessages:   10,
			ReceiveWaitTimeSec:   20,
			VisibilityTimeoutSec: 60,
			BufferSize:           10,
		},
	}
}

// newTestConsumer assembles a pipeline around a mock parser so bodies need not be real JSON
func newTestConsumer(qc *MockQueueConsumer, parser MessageParser, repo *MockEventRepository, dedup Deduplicator, maxBatch int) *Consumer {
	log := zap.NewNop()
	return &Consumer{
		receiver: NewReceiver(qc, testReceiverConfig(), log),
		parser:   NewParserStage(qc, parser, log),
		batchWriter: NewBatchWriter(repo, dedup, BatchWriterConfig{
			MaxBatchSize: maxBatch,
			FlushTimeout: time.Second,
		}, log),
		log: log,
	}
}

func TestConsumer_Start_WritesReceivedEvents(t *testing.T) {
	qc := new(MockQueueConsumer)
	repo := new(MockEventRepository)
	parser := new(MockMessageParser)

	expectReceive(qc, []types.Message{queueMessage("msg-1", `{"event_id": "1"}`)}, nil)
	qc.On("DeleteMessage", mock.Anything, mock.AnythingOfType("*sqs.DeleteMessageInput")).
		Return(&sqs.DeleteMessageOutput{}, nil)

	parser.On("Parse", []byte(`{"event_id": "1"}`)).Return(&domain.RawEvent{
		EventID:        "1",
		UserID:         "tenant-1",
		EventType:      "click",
		Platform:       "google",
		EventTimestamp: time.Unix(testTimestamp, 0).UTC(),
	}, nil)

	repo.On("InsertBatch", mock.Anything, mock.MatchedBy(func(events []*domain.RawEvent) bool {
		return len(events) == 1 && events[0].EventID == "1"
	})).Return(1, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	assert.NoError(t, newTestConsumer(qc, parser, repo, nil, 10).Start(ctx))

	repo.AssertExpectations(t)
	qc.AssertCalled(t, "DeleteMessage", mock.Anything, mock.AnythingOfType("*sqs.DeleteMessageInput"))
}

func TestConsumer_Start_GracefulShutdown(t *testing.T) {
	qc := new(MockQueueConsumer)
	expectReceive(qc, nil, nil)

	c := NewConsumer(testConsumerConfig(), qc, new(MockEventRepository), nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("graceful shutdown took too long")
	}
}

func TestNewConsumer_AppliesConfig(t *testing.T) {
	cfg := testConsumerConfig()
	cfg.Consumer.VisibilityTimeoutSec = 45
	cfg.Consumer.BufferSize = 64
	cfg.Consumer.BatchSizeMax = 100
	cfg.Valkey.IdempotencyFailOpen = true

	c := NewConsumer(cfg, new(MockQueueConsumer), new(MockEventRepository), nil, zap.NewNop())

	assert.NotNil(t, c.parser)
	assert.Equal(t, int32(45), c.receiver.config.VisibilityTimeout)
	assert.Equal(t, 64, c.receiver.config.BufferSize)
	assert.Equal(t, defaultErrorBackoff, c.receiver.config.ErrorBackoff)
	assert.Equal(t, 100, c.batchWriter.config.MaxBatchSize)
	assert.True(t, c.batchWriter.config.FailOpen)
}

func TestConsumer_Start_EmptyQueue(t *testing.T) {
	qc := new(MockQueueConsumer)
	repo := new(MockEventRepository)
	expectReceive(qc, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	assert.NoError(t, NewConsumer(testConsumerConfig(), qc, repo, nil, zap.NewNop()).Start(ctx))

	repo.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
}

func TestConsumer_Start_SkipsAlreadyProcessedEvents(t *testing.T) {
	qc := new(MockQueueConsumer)
	repo := new(MockEventRepository)
	parser := new(MockMessageParser)
	dedup := new(MockDeduplicator)

	expectReceive(qc, []types.Message{queueMessage("msg-1", `{"event_id": "1"}`)}, nil)
	qc.On("DeleteMessage", mock.Anything, mock.AnythingOfType("*sqs.DeleteMessageInput")).
		Return(&sqs.DeleteMessageOutput{}, nil)

	parser.On("Parse", []byte(`{"event_id": "1"}`)).Return(&domain.RawEvent{EventID: "1"}, nil)
	dedup.On("Seen", mock.Anything, []string{"1"}).Return(map[string]bool{"1": true}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	assert.NoError(t, newTestConsumer(qc, parser, repo, dedup, 1).Start(ctx))

	repo.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
	qc.AssertCalled(t, "DeleteMessage", mock.Anything, mock.AnythingOfType("*sqs.DeleteMessageInput"))
}
