// Package paddle is a typed client for the Paddle Classic vendor API. Each
// endpoint is one method on Client; all of them share a single request path
// that form-encodes parameters, appends vendor credentials, and unwraps the
// {success, response|error} envelope.
package paddle

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"paddle/internal/types"
	"paddle/internal/webhook"
)

// DefaultServerURL is the production vendor API root.
const DefaultServerURL = "https://vendors.paddle.com/api/2.0"

const (
	defaultTimeout   = 20 * time.Second
	defaultUserAgent = "paddle-go/1.0"
)

// Config holds the settings for creating a Client.
type Config struct {
	VendorID       int64
	VendorAuthCode types.SecretString
	// PublicKey is the PEM key used by VerifyWebhook. Optional.
	PublicKey string
	// ServerURL overrides DefaultServerURL, e.g. for the sandbox.
	ServerURL  string
	HTTPClient *http.Client
	UserAgent  string
	Logger     *slog.Logger
}

// Option configures optional Client behavior.
type Option func(*options)

type options struct {
	httpClient  *http.Client
	breakerName string
}

// WithHTTPClient overrides Config.HTTPClient.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithCircuitBreaker routes calls through a circuit breaker with the given
// name. When the breaker is open, calls fail with gobreaker.ErrOpenState.
func WithCircuitBreaker(name string) Option {
	return func(o *options) {
		o.breakerName = name
	}
}

// Client calls the vendor API. All fields are fixed at construction, so a
// Client is safe for concurrent use and several differently configured
// clients (sandbox and production, say) can coexist.
type Client struct {
	vendorID  int64
	authCode  types.SecretString
	serverURL string
	transport *transport
	verifier  *webhook.Verifier
	logger    *slog.Logger
}

// New creates a Client. It performs no network activity.
func New(cfg Config, opts ...Option) *Client {
	o := options{httpClient: cfg.HTTPClient}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: defaultTimeout}
	}

	serverURL := cfg.ServerURL
	if serverURL == "" {
		serverURL = DefaultServerURL
	}
	serverURL = strings.TrimSuffix(serverURL, "/")

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		vendorID:  cfg.VendorID,
		authCode:  cfg.VendorAuthCode,
		serverURL: serverURL,
		transport: newTransport(o.httpClient, userAgent, o.breakerName),
		verifier:  webhook.NewVerifier(cfg.PublicKey),
		logger:    logger,
	}
}

// ServerURL returns the normalized API root.
func (c *Client) ServerURL() string {
	return c.serverURL
}

// VerifyWebhook checks the p_signature of a received webhook against the
// configured public key. See webhook.Verifier.Verify for the error contract.
func (c *Client) VerifyWebhook(p webhook.Payload) (bool, error) {
	return c.verifier.Verify(p)
}

// VerifyWebhookDetailed is VerifyWebhook with the failure reason.
func (c *Client) VerifyWebhookDetailed(p webhook.Payload) (webhook.Result, error) {
	return c.verifier.VerifyDetailed(p)
}

// post is the common case: every vendor endpoint is a form POST.
func post[T any](ctx context.Context, c *Client, path string, params any) (T, error) {
	return request[T](ctx, c, http.MethodPost, path, params)
}

// postEmpty is post for endpoints whose response carries nothing of interest.
func postEmpty(ctx context.Context, c *Client, path string, params any) error {
	_, err := request[json.RawMessage](ctx, c, http.MethodPost, path, params)
	return err
}
