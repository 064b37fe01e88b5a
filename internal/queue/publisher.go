// Package queue fans verified webhook alerts out to SQS for downstream
// consumers.
package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"

	"paddle/internal/types"
	"paddle/internal/webhook"
)

// SQSClient is the subset of *sqs.Client the publisher and its probe use.
type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	GetQueueAttributes(ctx context.Context, params *sqs.GetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error)
}

// SQSAlertPublisher sends one types.AlertMessage per verified alert.
type SQSAlertPublisher struct {
	client   SQSClient
	queueURL string
	logger   *slog.Logger
	now      func() time.Time
}

// NewSQSAlertPublisher returns a publisher for queueURL. A nil logger uses
// slog.Default().
func NewSQSAlertPublisher(client SQSClient, queueURL string, logger *slog.Logger) *SQSAlertPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQSAlertPublisher{
		client:   client,
		queueURL: queueURL,
		logger:   logger,
		now:      time.Now,
	}
}

// Publish enqueues the payload minus its signature. Failures are returned as
// upstream_queue_unavailable so the receiver answers 502 and the vendor
// redelivers.
func (p *SQSAlertPublisher) Publish(ctx context.Context, name webhook.AlertName, payload webhook.Payload) error {
	msg := types.AlertMessage{
		MessageID:  uuid.NewString(),
		AlertName:  string(name),
		AlertID:    payload.AlertID(),
		ReceivedAt: p.now().UTC(),
		RequestID:  types.GetRequestID(ctx),
		Fields:     payload.Unsigned(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalSerialization, "failed to encode alert message", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqsTypes.MessageAttributeValue{
			"alert_name": {
				DataType:    aws.String("String"),
				StringValue: aws.String(msg.AlertName),
			},
		},
	}

	out, err := p.client.SendMessage(ctx, input)
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamQueue, "failed to enqueue alert", err).
			WithDetails(map[string]any{"alert_name": msg.AlertName})
	}

	p.logger.InfoContext(ctx, "alert enqueued",
		"alert_name", msg.AlertName,
		"alert_id", msg.AlertID,
		"message_id", msg.MessageID,
		"sqs_message_id", aws.ToString(out.MessageId),
	)
	return nil
}

// QueueProbe reports the alert queue as unhealthy when its attributes cannot
// be read.
type QueueProbe struct {
	client   SQSClient
	queueURL string
}

// NewQueueProbe returns a health probe for queueURL.
func NewQueueProbe(client SQSClient, queueURL string) *QueueProbe {
	return &QueueProbe{client: client, queueURL: queueURL}
}

func (q *QueueProbe) Name() string { return "alert_queue" }

func (q *QueueProbe) Check(ctx context.Context) error {
	_, err := q.client.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl:       aws.String(q.queueURL),
		AttributeNames: []sqsTypes.QueueAttributeName{sqsTypes.QueueAttributeNameApproximateNumberOfMessages},
	})
	return err
}
