package metrics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"paddle/internal/types"
)

type mockCloudWatchClient struct {
	mock.Mock
}

func (m *mockCloudWatchClient) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	args := m.Called(ctx, params)
	return &cloudwatch.PutMetricDataOutput{}, args.Error(0)
}

func dimensions(d cwtypes.MetricDatum) map[string]string {
	out := make(map[string]string, len(d.Dimensions))
	for _, dim := range d.Dimensions {
		out[aws.ToString(dim.Name)] = aws.ToString(dim.Value)
	}
	return out
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecordWebhook(t *testing.T) {
	cw := new(mockCloudWatchClient)
	var input *cloudwatch.PutMetricDataInput
	cw.On("PutMetricData", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { input = args.Get(1).(*cloudwatch.PutMetricDataInput) }).
		Return(nil)

	m := NewCloudWatchWebhookMetrics(cw, "Custom", quietLogger())
	m.RecordWebhook(context.Background(), "payment_succeeded", types.WebhookResultAccepted, 42*time.Millisecond)

	require.NotNil(t, input)
	assert.Equal(t, "Custom", aws.ToString(input.Namespace))
	require.Len(t, input.MetricData, 2)

	count := input.MetricData[0]
	assert.Equal(t, types.MetricWebhookReceived, aws.ToString(count.MetricName))
	assert.Equal(t, 1.0, aws.ToFloat64(count.Value))
	assert.Equal(t, cwtypes.StandardUnitCount, count.Unit)
	assert.Equal(t, map[string]string{
		types.DimAlertName: "payment_succeeded",
		types.DimResult:    "accepted",
	}, dimensions(count))

	latency := input.MetricData[1]
	assert.Equal(t, types.MetricWebhookLatency, aws.ToString(latency.MetricName))
	assert.Equal(t, 42.0, aws.ToFloat64(latency.Value))
	assert.Equal(t, cwtypes.StandardUnitMilliseconds, latency.Unit)
}

func TestRecordWebhook_MissingAlertName(t *testing.T) {
	cw := new(mockCloudWatchClient)
	cw.On("PutMetricData", mock.Anything, mock.MatchedBy(func(in *cloudwatch.PutMetricDataInput) bool {
		return dimensions(in.MetricData[0])[types.DimAlertName] == "none"
	})).Return(nil).Once()

	NewCloudWatchWebhookMetrics(cw, "", quietLogger()).
		RecordWebhook(context.Background(), "", types.WebhookResultRejected, time.Millisecond)

	cw.AssertExpectations(t)
}

func TestRecordWebhook_DefaultNamespace(t *testing.T) {
	cw := new(mockCloudWatchClient)
	cw.On("PutMetricData", mock.Anything, mock.MatchedBy(func(in *cloudwatch.PutMetricDataInput) bool {
		return aws.ToString(in.Namespace) == types.MetricNamespace
	})).Return(nil).Once()

	NewCloudWatchWebhookMetrics(cw, "", nil).
		RecordWebhook(context.Background(), "transfer_paid", types.WebhookResultAccepted, 0)

	cw.AssertExpectations(t)
}

func TestRecordWebhook_ErrorIsSwallowed(t *testing.T) {
	cw := new(mockCloudWatchClient)
	cw.On("PutMetricData", mock.Anything, mock.Anything).Return(errors.New("throttled"))

	assert.NotPanics(t, func() {
		NewCloudWatchWebhookMetrics(cw, "", quietLogger()).
			RecordWebhook(context.Background(), "transfer_paid", types.WebhookResultAccepted, 0)
	})
	cw.AssertNumberOfCalls(t, "PutMetricData", 1)
}

func TestRecordRequest(t *testing.T) {
	cw := new(mockCloudWatchClient)
	var input *cloudwatch.PutMetricDataInput
	cw.On("PutMetricData", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { input = args.Get(1).(*cloudwatch.PutMetricDataInput) }).
		Return(nil)

	NewCloudWatchWebhookMetrics(cw, "", quietLogger()).
		RecordRequest("POST", "/webhooks/paddle", "200", 15*time.Millisecond)

	require.NotNil(t, input)
	require.Len(t, input.MetricData, 1)
	d := input.MetricData[0]
	assert.Equal(t, types.MetricRequestLatency, aws.ToString(d.MetricName))
	assert.Equal(t, map[string]string{
		types.DimMethod:   "POST",
		types.DimEndpoint: "/webhooks/paddle",
		types.DimStatus:   "200",
	}, dimensions(d))
}

func TestNoopWebhookMetrics(t *testing.T) {
	var m NoopWebhookMetrics
	assert.NotPanics(t, func() {
		m.RecordWebhook(context.Background(), "x", types.WebhookResultAccepted, time.Second)
		m.RecordRequest("GET", "/health", "200", time.Second)
	})
}
