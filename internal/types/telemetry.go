package types

// Telemetry metric names for CloudWatch. All components use these constants.
const (
	// Metric Names
	MetricWebhookReceived = "WebhookReceived"
	MetricWebhookLatency  = "WebhookLatency"
	MetricRequestLatency  = "RequestLatency"

	// Dimension Keys
	DimAlertName = "AlertName"
	DimResult    = "Result"
	DimMethod    = "Method"
	DimEndpoint  = "Endpoint"
	DimStatus    = "Status"

	// Default namespace when METRIC_NAMESPACE is not set.
	MetricNamespace = "PaddleWebhooks"
)

// WebhookResult classifies the outcome of handling one inbound webhook.
type WebhookResult string

const (
	WebhookResultAccepted         WebhookResult = "accepted"
	WebhookResultInvalidSignature WebhookResult = "invalid_signature"
	WebhookResultRejected         WebhookResult = "rejected"
	WebhookResultUnknownAlert     WebhookResult = "unknown_alert"
	WebhookResultPublishFailed    WebhookResult = "publish_failed"
)
