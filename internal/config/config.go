// Package config defines the process configuration for the webhook receiver
// and the operator CLI. Configuration is loaded once at startup and is
// immutable thereafter.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> AWS SSM Parameter Store (Lowest)
//
// Fields every binary needs are validated by LoadConfig; binary-specific
// requirements (vendor credentials for the CLI, the public key for the
// receiver) are checked with the Require* methods.
package config

import (
	"time"

	"paddle/internal/types"
)

// SecretString is an alias for types.SecretString so secret fields redact in
// logs.
type SecretString = types.SecretString

// Config is the top-level configuration struct.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Paddle  PaddleConfig
	Server  ServerConfig
	AWS     AWSConfig
	Metrics MetricsConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo
}

// PaddleConfig holds vendor credentials and outbound client tuning.
type PaddleConfig struct {
	VendorID       int64        `envconfig:"PADDLE_VENDOR_ID" validate:"gte=0"`
	VendorAuthCode SecretString `envconfig:"PADDLE_VENDOR_AUTH_CODE"`
	// PEM, either PKIX or PKCS#1. Literal "\n" sequences are accepted.
	PublicKey      string        `envconfig:"PADDLE_PUBLIC_KEY"`
	ServerURL      string        `envconfig:"PADDLE_SERVER_URL" default:"https://vendors.paddle.com/api/2.0" validate:"required,url"`
	HTTPTimeout    time.Duration `envconfig:"PADDLE_HTTP_TIMEOUT" default:"20s" validate:"gt=0"`
	UserAgent      string        `envconfig:"PADDLE_USER_AGENT" default:"paddle-go/1.0"`
	CircuitBreaker bool          `envconfig:"PADDLE_CIRCUIT_BREAKER" default:"false"`
}

// ServerConfig holds HTTP listener settings for the receiver.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// AWSConfig holds AWS resource identifiers and regional configuration.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Alerts are fanned out here after verification. Empty disables publishing.
	AlertQueueURL string `envconfig:"ALERT_QUEUE_URL" validate:"omitempty,url"`

	// LocalStack Support (Empty in Prod)
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL" validate:"omitempty,url"`
}

// MetricsConfig holds CloudWatch settings for the receiver.
type MetricsConfig struct {
	Namespace string `envconfig:"METRIC_NAMESPACE" default:"PaddleWebhooks"`
	Enabled   bool   `envconfig:"ENABLE_METRICS" default:"false"`
}

// BuildInfo holds build-time metadata injected via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// IsLocal reports whether the process runs in local development mode.
func (c *Config) IsLocal() bool {
	return c.Environment == localEnv
}

// RequireVendorCredentials checks the settings needed to call the vendor API.
func (c *Config) RequireVendorCredentials() error {
	var missing []string
	if c.Paddle.VendorID <= 0 {
		missing = append(missing, "PADDLE_VENDOR_ID")
	}
	if c.Paddle.VendorAuthCode.IsZero() {
		missing = append(missing, "PADDLE_VENDOR_AUTH_CODE")
	}
	return missingEnvError(missing)
}

// RequirePublicKey checks the settings needed to verify webhooks.
func (c *Config) RequirePublicKey() error {
	if c.Paddle.PublicKey == "" {
		return missingEnvError([]string{"PADDLE_PUBLIC_KEY"})
	}
	return nil
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrMissingEnv indicates a required environment variable was not found.
	ErrMissingEnv ConfigErrorType = "MISSING_ENV"
	// ErrSSMResolution indicates a failure when fetching secrets from AWS SSM.
	ErrSSMResolution ConfigErrorType = "SSM_FAILURE"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
