package consumer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockQueueConsumer is a mock implementation of queue.QueueConsumer
type MockQueueConsumer struct {
	mock.Mock
}

func (m *MockQueueConsumer) ReceiveMessages(ctx context.Context, input *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.ReceiveMessageOutput), args.Error(1)
}

func (m *MockQueueConsumer) DeleteMessage(ctx context.Context, input *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.DeleteMessageOutput), args.Error(1)
}

func (m *MockQueueConsumer) ChangeMessageVisibility(ctx context.Context, input *sqs.ChangeMessageVisibilityInput) (*sqs.ChangeMessageVisibilityOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.ChangeMessageVisibilityOutput), args.Error(1)
}

func (m *MockQueueConsumer) QueueURL() string {
	args := m.Called()
	return args.String(0)
}

// expectReceive queues one response, then an empty long poll for every later call
func expectReceive(qc *MockQueueConsumer, msgs []types.Message, err error) {
	qc.On("QueueURL").Return(testQueueURL).Maybe()
	if err != nil {
		qc.On("ReceiveMessages", mock.Anything, mock.AnythingOfType("*sqs.ReceiveMessageInput")).
			Return(nil, err).Once()
	} else if msgs != nil {
		qc.On("ReceiveMessages", mock.Anything, mock.AnythingOfType("*sqs.ReceiveMessageInput")).
			Return(&sqs.ReceiveMessageOutput{Messages: msgs}, nil).Once()
	}
	qc.On("ReceiveMessages", mock.Anything, mock.AnythingOfType("*sqs.ReceiveMessageInput")).
		Return(&sqs.ReceiveMessageOutput{}, nil).Maybe()
}

func testReceiverConfig() ReceiverConfig {
	return ReceiverConfig{
		MaxMessages:     10,
		WaitTimeSeconds: 20,
		BufferSize:      10,
		ErrorBackoff:    5 * time.Millisecond,
	}
}

// drain collects from out until it closes or the deadline passes
func drain(out <-chan types.Message, deadline time.Duration) []types.Message {
	var got []types.Message
	timeout := time.After(deadline)
	for {
		select {
		case msg, ok := <-out:
			if !ok {
				return got
			}
			got = append(got, msg)
		case <-timeout:
			return got
		}
	}
}

func TestReceiver_Start_ForwardsMessages(t *testing.T) {
	qc := new(MockQueueConsumer)
	expectReceive(qc, []types.Message{queueMessage("msg-1", `{}`), queueMessage("msg-2", `{}`)}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	out := make(chan types.Message, 10)
	go NewReceiver(qc, testReceiverConfig(), zap.NewNop()).Start(ctx, out)

	got := drain(out, 200*time.Millisecond)

	assert.Len(t, got, 2)
	assert.Equal(t, "msg-1", aws.ToString(got[0].MessageId))
	assert.Equal(t, "msg-2", aws.ToString(got[1].MessageId))
}

func TestReceiver_Start_RecoversAfterReceiveError(t *testing.T) {
	qc := new(MockQueueConsumer)
	qc.On("QueueURL").Return(testQueueURL)
	qc.On("ReceiveMessages", mock.Anything, mock.AnythingOfType("*sqs.ReceiveMessageInput")).
		Return(nil, errors.New("connection reset")).Once()
	qc.On("ReceiveMessages", mock.Anything, mock.AnythingOfType("*sqs.ReceiveMessageInput")).
		Return(&sqs.ReceiveMessageOutput{Messages: []types.Message{queueMessage("msg-1", `{}`)}}, nil).Once()
	qc.On("ReceiveMessages", mock.Anything, mock.AnythingOfType("*sqs.ReceiveMessageInput")).
		Return(&sqs.ReceiveMessageOutput{}, nil).Maybe()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	out := make(chan types.Message, 10)
	go NewReceiver(qc, testReceiverConfig(), zap.NewNop()).Start(ctx, out)

	got := drain(out, 200*time.Millisecond)

	assert.Len(t, got, 1)
}

func TestReceiver_Start_BackoffHonoursCancellation(t *testing.T) {
	qc := new(MockQueueConsumer)
	qc.On("QueueURL").Return(testQueueURL)
	qc.On("ReceiveMessages", mock.Anything, mock.AnythingOfType("*sqs.ReceiveMessageInput")).
		Return(nil, errors.New("throttled"))

	cfg := testReceiverConfig()
	cfg.ErrorBackoff = time.Minute
	cfg.MaxErrorBackoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		NewReceiver(qc, cfg, zap.NewNop()).Start(ctx, make(chan types.Message))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("receiver kept sleeping after cancellation")
	}

	qc.AssertNumberOfCalls(t, "ReceiveMessages", 1)
}

func TestReceiver_Start_CancelledBeforeFirstPoll(t *testing.T) {
	qc := new(MockQueueConsumer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := make(chan types.Message, 1)
	NewReceiver(qc, testReceiverConfig(), zap.NewNop()).Start(ctx, out)

	_, ok := <-out
	assert.False(t, ok, "output channel should be closed after cancellation")
	qc.AssertNotCalled(t, "ReceiveMessages", mock.Anything, mock.Anything)
}

func TestReceiver_Start_EmptyPollsSendNothing(t *testing.T) {
	qc := new(MockQueueConsumer)
	expectReceive(qc, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	out := make(chan types.Message, 10)
	go NewReceiver(qc, testReceiverConfig(), zap.NewNop()).Start(ctx, out)

	assert.Empty(t, drain(out, 150*time.Millisecond))
	qc.AssertCalled(t, "ReceiveMessages", mock.Anything, mock.AnythingOfType("*sqs.ReceiveMessageInput"))
}

func TestReceiver_Start_Backpressure(t *testing.T) {
	qc := new(MockQueueConsumer)

	msgs := make([]types.Message, 5)
	for i := range msgs {
		msgs[i] = queueMessage(fmt.Sprintf("msg-%d", i), `{}`)
	}
	expectReceive(qc, msgs, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	out := make(chan types.Message, 2)
	go NewReceiver(qc, testReceiverConfig(), zap.NewNop()).Start(ctx, out)

	var got []types.Message
	for range msgs {
		select {
		case msg := <-out:
			got = append(got, msg)
			time.Sleep(10 * time.Millisecond)
		case <-ctx.Done():
		}
	}

	assert.Len(t, got, 5, "a slow reader should still receive every message")
}

func TestReceiver_ReceiveInput(t *testing.T) {
	qc := new(MockQueueConsumer)
	qc.On("QueueURL").Return(testQueueURL)

	receiver := NewReceiver(qc, ReceiverConfig{
		MaxMessages:       5,
		WaitTimeSeconds:   10,
		VisibilityTimeout: 90,
	}, zap.NewNop())

	input := receiver.receiveInput()

	assert.Equal(t, testQueueURL, aws.ToString(input.QueueUrl))
	assert.Equal(t, int32(5), input.MaxNumberOfMessages)
	assert.Equal(t, int32(10), input.WaitTimeSeconds)
	assert.Equal(t, int32(90), input.VisibilityTimeout)
	assert.Contains(t, input.MessageSystemAttributeNames, types.MessageSystemAttributeNameApproximateReceiveCount)
}

func TestReceiver_Backoff(t *testing.T) {
	receiver := NewReceiver(new(MockQueueConsumer), ReceiverConfig{
		ErrorBackoff:    100 * time.Millisecond,
		MaxErrorBackoff: time.Second,
	}, zap.NewNop())

	assert.Equal(t, 100*time.Millisecond, receiver.backoff(1))
	assert.Equal(t, 200*time.Millisecond, receiver.backoff(2))
	assert.Equal(t, 800*time.Millisecond, receiver.backoff(4))
	assert.Equal(t, time.Second, receiver.backoff(5))
	assert.Equal(t, time.Second, receiver.backoff(50))
}

func TestNewReceiver_Defaults(t *testing.T) {
	receiver := NewReceiver(new(MockQueueConsumer), ReceiverConfig{}, zap.NewNop())

	assert.Equal(t, defaultErrorBackoff, receiver.config.ErrorBackoff)
	assert.Equal(t, defaultMaxErrorBackoff, receiver.config.MaxErrorBackoff)
}
