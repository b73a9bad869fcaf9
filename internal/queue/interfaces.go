package queue

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// QueuePublisher sends raw events to the ingestion queue
type QueuePublisher interface {
	PublishEvent(ctx context.Context, msg *EventMessage) error
}

// MessageSettler removes or releases messages that were already received
type MessageSettler interface {
	DeleteMessage(ctx context.Context, input *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error)
	ChangeMessageVisibility(ctx context.Context, input *sqs.ChangeMessageVisibilityInput) (*sqs.ChangeMessageVisibilityOutput, error)
	QueueURL() string
}

// QueueConsumer long-polls the ingestion queue and settles what it receives
type QueueConsumer interface {
	MessageSettler
	ReceiveMessages(ctx context.Context, input *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error)
}
