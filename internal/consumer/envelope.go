package consumer

import (
	"context"
	"sync/atomic"

	"github.com/BarkinBalci/marketing-insights-service/internal/domain"
)

// Envelope carries a decoded event and the callbacks that settle its queue message.
// It settles at most once: after the first Ack or Nack further calls are no-ops.
type Envelope struct {
	Event     *domain.RawEvent
	MessageID string
	// Attempt is the queue's approximate receive count, 1 on first delivery
	Attempt int

	ack     func(context.Context) error
	nack    func(context.Context) error
	settled atomic.Bool
}

// NewEnvelope wraps event with its settle callbacks; either may be nil
func NewEnvelope(event *domain.RawEvent, ack, nack func(context.Context) error) *Envelope {
	return &Envelope{
		Event:   event,
		Attempt: 1,
		ack:     ack,
		nack:    nack,
	}
}

// Ack removes the message from the queue
func (e *Envelope) Ack(ctx context.Context) error {
	return e.settle(ctx, e.ack)
}

// Nack returns the message to the queue for redelivery
func (e *Envelope) Nack(ctx context.Context) error {
	return e.settle(ctx, e.nack)
}

// Settled reports whether Ack or Nack has been called
func (e *Envelope) Settled() bool {
	return e.settled.Load()
}

func (e *Envelope) settle(ctx context.Context, fn func(context.Context) error) error {
	if !e.settled.CompareAndSwap(false, true) || fn == nil {
		return nil
	}
	return fn(ctx)
}
