// Package metrics publishes receiver telemetry to CloudWatch.
package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"paddle/internal/types"
)

// putTimeout bounds RecordRequest, which has no caller context.
const putTimeout = 2 * time.Second

// CloudWatchClient abstracts PutMetricData for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchWebhookMetrics emits:
//   - WebhookReceived: Dims {AlertName, Result}, one per inbound webhook
//   - WebhookLatency: Dims {Result}, handling time in milliseconds
//   - RequestLatency: Dims {Method, Endpoint, Status}, per HTTP request
//
// Publishing failures are logged and never fail the request.
type CloudWatchWebhookMetrics struct {
	client    CloudWatchClient
	namespace string
	logger    *slog.Logger
}

// NewCloudWatchWebhookMetrics publishes to namespace, or to
// types.MetricNamespace when namespace is empty.
func NewCloudWatchWebhookMetrics(client CloudWatchClient, namespace string, logger *slog.Logger) *CloudWatchWebhookMetrics {
	if namespace == "" {
		namespace = types.MetricNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudWatchWebhookMetrics{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// RecordWebhook emits the received count and the latency in one call.
// alertName is empty when the payload did not name an alert.
func (m *CloudWatchWebhookMetrics) RecordWebhook(ctx context.Context, alertName string, result types.WebhookResult, latency time.Duration) {
	if alertName == "" {
		alertName = "none"
	}
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(types.MetricWebhookReceived),
				Value:      aws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{Name: aws.String(types.DimAlertName), Value: aws.String(alertName)},
					{Name: aws.String(types.DimResult), Value: aws.String(string(result))},
				},
			},
			{
				MetricName: aws.String(types.MetricWebhookLatency),
				Value:      aws.Float64(float64(latency.Milliseconds())),
				Unit:       cwtypes.StandardUnitMilliseconds,
				Dimensions: []cwtypes.Dimension{
					{Name: aws.String(types.DimResult), Value: aws.String(string(result))},
				},
			},
		},
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.WarnContext(ctx, "failed to record webhook metric",
			"error", err,
			"alert_name", alertName,
			"result", string(result),
		)
	}
}

// RecordRequest satisfies core.MetricsCollector.
func (m *CloudWatchWebhookMetrics) RecordRequest(method, endpoint, status string, duration time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), putTimeout)
	defer cancel()

	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(types.MetricRequestLatency),
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Unit:       cwtypes.StandardUnitMilliseconds,
				Dimensions: []cwtypes.Dimension{
					{Name: aws.String(types.DimMethod), Value: aws.String(method)},
					{Name: aws.String(types.DimEndpoint), Value: aws.String(endpoint)},
					{Name: aws.String(types.DimStatus), Value: aws.String(status)},
				},
			},
		},
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Warn("failed to record request metric",
			"error", err,
			"endpoint", endpoint,
			"status", status,
		)
	}
}

// NoopWebhookMetrics discards everything. Used locally and when metrics are
// disabled.
type NoopWebhookMetrics struct{}

func (NoopWebhookMetrics) RecordWebhook(context.Context, string, types.WebhookResult, time.Duration) {}

func (NoopWebhookMetrics) RecordRequest(string, string, string, time.Duration) {}
