package consumer

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/BarkinBalci/marketing-insights-service/internal/observability"
	"github.com/BarkinBalci/marketing-insights-service/internal/queue"
)

const (
	defaultErrorBackoff    = 500 * time.Millisecond
	defaultMaxErrorBackoff = 30 * time.Second
)

// ReceiverConfig configures the queue receiver
type ReceiverConfig struct {
	MaxMessages       int32
	WaitTimeSeconds   int32
	VisibilityTimeout int32
	BufferSize        int
	// ErrorBackoff is the first pause after a failed receive; it doubles per
	// consecutive failure up to MaxErrorBackoff and resets on success
	ErrorBackoff    time.Duration
	MaxErrorBackoff time.Duration
}

// Receiver long-polls the ingestion queue and feeds raw messages to the parser stage
type Receiver struct {
	consumer queue.QueueConsumer
	config   ReceiverConfig
	log      *zap.Logger
}

// NewReceiver creates a new queue receiver
func NewReceiver(consumer queue.QueueConsumer, config ReceiverConfig, log *zap.Logger) *Receiver {
	if config.ErrorBackoff <= 0 {
		config.ErrorBackoff = defaultErrorBackoff
	}
	if config.MaxErrorBackoff < config.ErrorBackoff {
		config.MaxErrorBackoff = defaultMaxErrorBackoff
	}
	return &Receiver{
		consumer: consumer,
		config:   config,
		log:      log,
	}
}

// Start polls until ctx is done and closes out on return
func (r *Receiver) Start(ctx context.Context, out chan<- types.Message) {
	defer close(out)

	failures := 0
	for ctx.Err() == nil {
		result, err := r.consumer.ReceiveMessages(ctx, r.receiveInput())
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			failures++
			observability.QueueReceiveErrorsTotal.Inc()

			wait := r.backoff(failures)
			r.log.Error("Error receiving messages from queue",
				zap.Error(err),
				zap.Int("consecutive_failures", failures),
				zap.Duration("retry_in", wait))

			if !sleepCtx(ctx, wait) {
				break
			}
			continue
		}
		failures = 0

		if len(result.Messages) == 0 {
			continue
		}

		observability.MessagesReceivedTotal.Add(float64(len(result.Messages)))
		r.log.Debug("Received messages from queue", zap.Int("message_count", len(result.Messages)))

		for _, msg := range result.Messages {
			select {
			case <-ctx.Done():
				r.log.Info("Receiver shutting down with undelivered messages",
					zap.Int("in_flight", len(result.Messages)))
				return
			case out <- msg:
			}
		}
	}

	r.log.Info("Receiver shutting down")
}

func (r *Receiver) receiveInput() *awssqs.ReceiveMessageInput {
	return &awssqs.ReceiveMessageInput{
		QueueUrl:              aws.String(r.consumer.QueueURL()),
		MaxNumberOfMessages:   r.config.MaxMessages,
		WaitTimeSeconds:       r.config.WaitTimeSeconds,
		VisibilityTimeout:     r.config.VisibilityTimeout,
		MessageAttributeNames: []string{"All"},
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{
			types.MessageSystemAttributeNameApproximateReceiveCount,
		},
	}
}

// backoff returns the pause after the given number of consecutive failures
func (r *Receiver) backoff(failures int) time.Duration {
	wait := r.config.ErrorBackoff
	for i := 1; i < failures; i++ {
		wait *= 2
		if wait >= r.config.MaxErrorBackoff {
			return r.config.MaxErrorBackoff
		}
	}
	return wait
}

// sleepCtx waits for d and reports false if ctx ended first
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
