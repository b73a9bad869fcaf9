package consumer

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/BarkinBalci/marketing-insights-service/internal/observability"
	"github.com/BarkinBalci/marketing-insights-service/internal/queue"
)

// ParserStage decodes queue messages into envelopes. Messages whose body cannot be
// decoded are deleted so they do not cycle through the queue forever.
type ParserStage struct {
	settler queue.MessageSettler
	parser  MessageParser
	log     *zap.Logger
}

// NewParserStage creates a new parser stage
func NewParserStage(settler queue.MessageSettler, parser MessageParser, log *zap.Logger) *ParserStage {
	return &ParserStage{
		settler: settler,
		parser:  parser,
		log:     log,
	}
}

// Start decodes messages from in until it closes or ctx is done, then closes out
func (p *ParserStage) Start(ctx context.Context, in <-chan types.Message, out chan<- *Envelope) {
	defer close(out)

	for {
		var msg types.Message
		select {
		case <-ctx.Done():
			p.log.Info("Parser stage shutting down")
			return
		case m, ok := <-in:
			if !ok {
				p.log.Info("Parser stage input channel closed")
				return
			}
			msg = m
		}

		envelope, err := p.decode(msg)
		if err != nil {
			p.reject(ctx, msg, err)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case out <- envelope:
		}
	}
}

// decode parses the message body and binds the settle callbacks to its receipt handle
func (p *ParserStage) decode(msg types.Message) (*Envelope, error) {
	event, err := p.parser.Parse([]byte(aws.ToString(msg.Body)))
	if err != nil {
		return nil, err
	}

	envelope := NewEnvelope(event,
		func(ctx context.Context) error { return p.delete(ctx, msg) },
		func(ctx context.Context) error { return p.release(ctx, msg) })
	envelope.MessageID = aws.ToString(msg.MessageId)
	envelope.Attempt = receiveCount(msg)

	return envelope, nil
}

func (p *ParserStage) reject(ctx context.Context, msg types.Message, cause error) {
	observability.MessagesRejectedTotal.Inc()
	p.log.Warn("Dropping undecodable message",
		zap.String("message_id", aws.ToString(msg.MessageId)),
		zap.Error(cause))

	if err := p.delete(ctx, msg); err != nil {
		p.log.Error("Failed to delete undecodable message",
			zap.String("message_id", aws.ToString(msg.MessageId)),
			zap.Error(err))
	}
}

func (p *ParserStage) delete(ctx context.Context, msg types.Message) error {
	_, err := p.settler.DeleteMessage(ctx, &awssqs.DeleteMessageInput{
		QueueUrl:      aws.String(p.settler.QueueURL()),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message %s: %w", aws.ToString(msg.MessageId), err)
	}
	return nil
}

// release makes the message visible again so it is redelivered immediately
func (p *ParserStage) release(ctx context.Context, msg types.Message) error {
	_, err := p.settler.ChangeMessageVisibility(ctx, &awssqs.ChangeMessageVisibilityInput{
		QueueUrl:          aws.String(p.settler.QueueURL()),
		ReceiptHandle:     msg.ReceiptHandle,
		VisibilityTimeout: 0,
	})
	if err != nil {
		return fmt.Errorf("failed to release message %s: %w", aws.ToString(msg.MessageId), err)
	}
	return nil
}

// receiveCount reads ApproximateReceiveCount, defaulting to 1 when absent
func receiveCount(msg types.Message) int {
	raw, ok := msg.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)]
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
