package sqs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/BarkinBalci/marketing-insights-service/internal/config"
	"github.com/BarkinBalci/marketing-insights-service/internal/queue"
)

// Client publishes raw events to the ingestion queue and serves the consumer side of it
type Client struct {
	client   *sqs.Client
	queueURL string
	fifo     bool
	log      *zap.Logger
}

// NewClient builds an SQS client. A configured endpoint targets a local emulator
// (ElasticMQ, LocalStack) with static dummy credentials.
func NewClient(ctx context.Context, cfg config.SQS, log *zap.Logger) (*Client, error) {
	loadOpts, clientOpts := clientOptions(cfg)
	if cfg.Endpoint != "" {
		log.Info("Using local SQS endpoint", zap.String("endpoint", cfg.Endpoint))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	c := &Client{
		client:   sqs.NewFromConfig(awsCfg, clientOpts...),
		queueURL: cfg.QueueURL,
		fifo:     isFIFO(cfg.QueueURL),
		log:      log,
	}

	log.Info("SQS client created",
		zap.String("region", cfg.Region),
		zap.String("queue_url", cfg.QueueURL),
		zap.Bool("fifo", c.fifo))

	return c, nil
}

func clientOptions(cfg config.SQS) ([]func(*awsconfig.LoadOptions) error, []func(*sqs.Options)) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	var clientOpts []func(*sqs.Options)

	if cfg.Endpoint != "" {
		loadOpts = append(loadOpts,
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("dummy", "dummy", "")))
		endpoint := cfg.Endpoint
		clientOpts = append(clientOpts, func(o *sqs.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	return loadOpts, clientOpts
}

func isFIFO(queueURL string) bool {
	return strings.HasSuffix(queueURL, ".fifo")
}

// ReceiveMessages long-polls the queue
func (c *Client) ReceiveMessages(ctx context.Context, input *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error) {
	return c.client.ReceiveMessage(ctx, input)
}

// DeleteMessage removes a processed message
func (c *Client) DeleteMessage(ctx context.Context, input *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error) {
	return c.client.DeleteMessage(ctx, input)
}

// ChangeMessageVisibility changes the visibility timeout of a received message
func (c *Client) ChangeMessageVisibility(ctx context.Context, input *sqs.ChangeMessageVisibilityInput) (*sqs.ChangeMessageVisibilityOutput, error) {
	return c.client.ChangeMessageVisibility(ctx, input)
}

// QueueURL returns the configured queue URL
func (c *Client) QueueURL() string {
	return c.queueURL
}

// PublishEvent sends one raw event. On FIFO queues the event id doubles as the
// deduplication id, so a client retry inside the dedup window is dropped by SQS.
func (c *Client) PublishEvent(ctx context.Context, msg *queue.EventMessage) error {
	input, err := sendInput(c.queueURL, c.fifo, msg)
	if err != nil {
		return err
	}

	if _, err := c.client.SendMessage(ctx, input); err != nil {
		c.log.Error("Failed to send message to SQS",
			zap.String("event_id", msg.EventID),
			zap.String("user_id", msg.UserID),
			zap.Error(err))
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	c.log.Debug("Event published to SQS",
		zap.String("event_id", msg.EventID),
		zap.String("event_type", msg.EventType))

	return nil
}

func sendInput(queueURL string, fifo bool, msg *queue.EventMessage) (*sqs.SendMessageInput, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event %s: %w", msg.EventID, err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"EventType": stringAttribute(msg.EventType),
			"Platform":  stringAttribute(msg.Platform),
			"UserID":    stringAttribute(msg.UserID),
		},
	}

	if fifo {
		// per-tenant ordering; tenants do not block each other
		input.MessageGroupId = aws.String(msg.UserID)
		input.MessageDeduplicationId = aws.String(msg.EventID)
	}

	return input, nil
}

func stringAttribute(value string) types.MessageAttributeValue {
	return types.MessageAttributeValue{
		DataType:    aws.String("String"),
		StringValue: aws.String(value),
	}
}
