package infrastructure

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/ordermesh/order-system/shared/events"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// Metadata keys carrying SQS bookkeeping on inbound events.
	SQSMessageIDKey     = "sqs_message_id"
	SQSReceiptHandleKey = "sqs_receipt_handle"
)

type inflightMessage struct {
	message types.Message
	event   *events.Event
	err     error
}

// SQSSubscriber pulls saga events from a queue and hands them to a single
// handler (in practice an events.Router). Readers receive, workers dispatch,
// cleaners either delete handled messages or push back the visibility
// timeout so a failed invocation is redelivered later.
type SQSSubscriber struct {
	mux      sync.Mutex
	inbound  chan *inflightMessage
	outbound chan *inflightMessage
	cancel   context.CancelFunc
	running  atomic.Bool
	options  *sqsSubscriberOptions

	client   *sqs.Client
	queueURL string
	handler  events.Handler
	log      *zap.Logger
}

type sqsSubscriberOptions struct {
	workers                    int32
	readers                    int32
	cleaners                   int32
	maxNumberOfMessages        int32
	waitTimeSeconds            int32
	visibilityTimeout          int32
	sleepTimeAfterEmptyReceive time.Duration
	sleepTimeAfterError        time.Duration
	receiveCountRange          int32
	visibilityTimeoutOffset    int32
	maxVisibilityTimeout       int32
}

// SQSSubscriberOption configures an SQSSubscriber.
type SQSSubscriberOption func(*sqsSubscriberOptions)

// WithWorkers sets the number of concurrent handler invocations.
func WithWorkers(workers int32) SQSSubscriberOption {
	return func(o *sqsSubscriberOptions) {
		o.workers = workers
	}
}

// WithReaders sets the number of receive loops.
func WithReaders(readers int32) SQSSubscriberOption {
	return func(o *sqsSubscriberOptions) {
		o.readers = readers
	}
}

// WithVisibilityTimeout sets the base visibility timeout in seconds.
func WithVisibilityTimeout(timeout int32) SQSSubscriberOption {
	return func(o *sqsSubscriberOptions) {
		o.visibilityTimeout = timeout
	}
}

// NewSQSSubscriber creates a subscriber on a fresh AWS config.
func NewSQSSubscriber(ctx context.Context, queueURL string, handler events.Handler, log *zap.Logger, opts ...SQSSubscriberOption) (*SQSSubscriber, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}
	return NewSQSSubscriberWithClient(sqs.NewFromConfig(cfg), queueURL, handler, log, opts...), nil
}

// NewSQSSubscriberWithClient creates a subscriber over an existing client.
func NewSQSSubscriberWithClient(client *sqs.Client, queueURL string, handler events.Handler, log *zap.Logger, opts ...SQSSubscriberOption) *SQSSubscriber {
	options := &sqsSubscriberOptions{
		workers:                    30,
		readers:                    1,
		cleaners:                   2,
		maxNumberOfMessages:        5,
		waitTimeSeconds:            15,
		visibilityTimeout:          30,
		sleepTimeAfterEmptyReceive: 10 * time.Second,
		sleepTimeAfterError:        20 * time.Second,
		receiveCountRange:          3,
		visibilityTimeoutOffset:    30,
		maxVisibilityTimeout:       900,
	}
	for _, opt := range opts {
		opt(options)
	}

	return &SQSSubscriber{
		client:   client,
		queueURL: queueURL,
		handler:  handler,
		log:      log,
		options:  options,
	}
}

// Start launches the reader, worker and cleaner goroutines.
func (s *SQSSubscriber) Start(ctx context.Context) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	if s.running.Load() {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.inbound = make(chan *inflightMessage, 10)
	s.outbound = make(chan *inflightMessage, 10)

	for i := 0; i < int(s.options.workers); i++ {
		go s.runWorker(ctx)
	}
	for i := 0; i < int(s.options.readers); i++ {
		go s.runReader(ctx)
	}
	for i := 0; i < int(s.options.cleaners); i++ {
		go s.runCleaner(ctx)
	}

	s.running.Store(true)
	return nil
}

// Stop cancels all subscriber goroutines.
func (s *SQSSubscriber) Stop() error {
	s.mux.Lock()
	defer s.mux.Unlock()

	if !s.running.Load() {
		return nil
	}

	s.cancel()
	s.cancel = nil
	s.running.Store(false)
	return nil
}

func (s *SQSSubscriber) runWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.inbound:
			if msg == nil {
				continue
			}
			msg.err = s.handler.Handle(ctx, msg.event)
			if msg.err != nil {
				s.log.Error("event handler failed",
					zap.String("detail_type", msg.event.DetailType.String()),
					zap.Error(msg.err),
				)
			}
			select {
			case s.outbound <- msg:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *SQSSubscriber) runReader(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			if err := s.receive(ctx); err != nil {
				s.log.Error("receive failed", zap.Error(err))
				time.Sleep(s.options.sleepTimeAfterError)
			}
		}
	}
}

func (s *SQSSubscriber) runCleaner(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.outbound:
			if msg == nil {
				continue
			}
			if err := s.settle(ctx, msg); err != nil {
				s.log.Error("settle failed", zap.Error(err))
			}
		}
	}
}

func (s *SQSSubscriber) receive(ctx context.Context) error {
	output, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(s.queueURL),
		MaxNumberOfMessages: s.options.maxNumberOfMessages,
		WaitTimeSeconds:     s.options.waitTimeSeconds,
		VisibilityTimeout:   s.options.visibilityTimeout,
		AttributeNames: []types.QueueAttributeName{
			"ApproximateReceiveCount",
		},
		MessageAttributeNames: []string{"All"},
	})
	if err != nil {
		return errors.Wrap(err, "failed to receive from SQS")
	}

	if len(output.Messages) == 0 {
		time.Sleep(s.options.sleepTimeAfterEmptyReceive)
		return nil
	}

	for _, message := range output.Messages {
		event, err := events.FromJSON([]byte(aws.ToString(message.Body)))
		if err != nil {
			s.log.Warn("dropping malformed message",
				zap.String("message_id", aws.ToString(message.MessageId)),
				zap.Error(err),
			)
			continue
		}

		event.Metadata.Set(SQSMessageIDKey, aws.ToString(message.MessageId))
		if message.ReceiptHandle != nil {
			event.Metadata.Set(SQSReceiptHandleKey, *message.ReceiptHandle)
		}

		select {
		case s.inbound <- &inflightMessage{message: message, event: event}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// settle deletes a handled message, or extends the visibility timeout of a
// failed one so later redeliveries back off.
func (s *SQSSubscriber) settle(ctx context.Context, msg *inflightMessage) error {
	if msg.err != nil {
		receiveCount, err := strconv.Atoi(msg.message.Attributes["ApproximateReceiveCount"])
		if err != nil {
			receiveCount = 1
		}

		timeout := s.options.visibilityTimeout
		timeout += (int32(receiveCount) / s.options.receiveCountRange) * s.options.visibilityTimeoutOffset
		if timeout > s.options.maxVisibilityTimeout {
			timeout = s.options.maxVisibilityTimeout
		}

		_, err = s.client.ChangeMessageVisibility(ctx, &sqs.ChangeMessageVisibilityInput{
			QueueUrl:          &s.queueURL,
			ReceiptHandle:     msg.message.ReceiptHandle,
			VisibilityTimeout: timeout,
		})
		return errors.Wrap(err, "failed to extend visibility timeout")
	}

	_, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      &s.queueURL,
		ReceiptHandle: msg.message.ReceiptHandle,
	})
	return errors.Wrap(err, "failed to delete message")
}
