package infrastructure

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/ordermesh/order-system/shared/events"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var _ events.Publisher = (*SNSPublisher)(nil)

// SNS caps batch publishes at ten entries.
const maxPublishBatch = 10

// SNSPublisher publishes saga events to a single SNS topic. The full envelope
// travels as the message body; the detail type is mirrored as a message
// attribute so queues can filter without parsing bodies.
type SNSPublisher struct {
	client   *sns.Client
	topicArn string
}

// NewSNSPublisher creates an SNSPublisher on a fresh AWS config. Works
// against LocalStack when the endpoint env vars are set.
func NewSNSPublisher(ctx context.Context, topicArn string) (*SNSPublisher, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}
	return &SNSPublisher{
		client:   sns.NewFromConfig(cfg),
		topicArn: topicArn,
	}, nil
}

// NewSNSPublisherWithClient creates an SNSPublisher over an existing client.
func NewSNSPublisherWithClient(client *sns.Client, topicArn string) *SNSPublisher {
	return &SNSPublisher{client: client, topicArn: topicArn}
}

// Publish publishes events in batches, one goroutine per batch.
func (p *SNSPublisher) Publish(ctx context.Context, evts ...*events.Event) error {
	if len(evts) == 0 {
		return nil
	}

	gr, ctx := errgroup.WithContext(ctx)
	for _, batch := range splitToChunks(evts, maxPublishBatch) {
		batch := batch
		gr.Go(func() error {
			return p.publishBatch(ctx, batch)
		})
	}
	return gr.Wait()
}

func (p *SNSPublisher) publishBatch(ctx context.Context, evts []*events.Event) error {
	entries := make([]types.PublishBatchRequestEntry, len(evts))

	for i, event := range evts {
		// Transport bookkeeping from the inbound leg must not leak into
		// the outbound message.
		outbound := *event
		outbound.Metadata = nil

		body, err := json.Marshal(&outbound)
		if err != nil {
			return errors.Wrap(err, "failed to marshal event")
		}

		entries[i] = types.PublishBatchRequestEntry{
			Id:      aws.String(event.ID.String()),
			Message: aws.String(string(body)),
			MessageAttributes: map[string]types.MessageAttributeValue{
				"detailType": {
					DataType:    aws.String("String"),
					StringValue: aws.String(event.DetailType.String()),
				},
				"source": {
					DataType:    aws.String("String"),
					StringValue: aws.String(event.Source),
				},
			},
		}
	}

	res, err := p.client.PublishBatch(ctx, &sns.PublishBatchInput{
		TopicArn:                   &p.topicArn,
		PublishBatchRequestEntries: entries,
	})
	if err != nil {
		return errors.Wrap(err, "failed to publish batch to SNS")
	}

	if len(res.Failed) > 0 {
		return errors.Errorf("%d of %d events failed to publish", len(res.Failed), len(evts))
	}
	return nil
}

func splitToChunks[T any](slice []T, chunkSize int) [][]T {
	var chunks [][]T
	for i := 0; i < len(slice); i += chunkSize {
		end := i + chunkSize
		if end > len(slice) {
			end = len(slice)
		}
		chunks = append(chunks, slice[i:end])
	}
	return chunks
}
