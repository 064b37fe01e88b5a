// Package main is the entry point for the Paddle webhook receiver.
//
// It loads configuration, builds the verifier, the optional SQS publisher and
// CloudWatch metrics, mounts the webhook handler on the core chassis, and then
// serves either:
//   - plain HTTP with graceful shutdown on SIGINT/SIGTERM, or
//   - API Gateway HTTP API events when running inside AWS Lambda.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"paddle/internal/api/handlers"
	"paddle/internal/config"
	"paddle/internal/core"
	"paddle/internal/metrics"
	"paddle/internal/queue"
	"paddle/internal/webhook"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var provider config.SecretProvider
	if os.Getenv("APP_ENV") != "local" {
		provider = config.NewSSMProvider(os.Getenv("AWS_REGION"))
	}
	cfg, err := config.LoadConfig(provider)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.RequirePublicKey(); err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("webhook receiver starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
	)

	srv, err := buildServer(context.Background(), cfg, logger)
	if err != nil {
		return err
	}

	if isLambdaEnvironment() {
		logger.Info("running in lambda mode")
		lambda.Start(newLambdaBridge(srv.Handler()).Handle)
		return nil
	}
	return runHTTPServer(srv, cfg, logger)
}

// buildServer wires the handler with the AWS-backed collaborators that the
// configuration enables.
func buildServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*core.Server, error) {
	if _, err := webhook.ParsePublicKey(cfg.Paddle.PublicKey); err != nil {
		return nil, fmt.Errorf("parsing PADDLE_PUBLIC_KEY: %w", err)
	}
	verifier := webhook.NewVerifier(cfg.Paddle.PublicKey)

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}

	var (
		publisher     handlers.AlertPublisher
		webhookMetric handlers.WebhookMetrics = metrics.NoopWebhookMetrics{}
	)

	if cfg.AWS.AlertQueueURL != "" || cfg.Metrics.Enabled {
		awsCfg, err := loadAWSConfig(ctx, cfg.AWS)
		if err != nil {
			return nil, err
		}

		if cfg.AWS.AlertQueueURL != "" {
			sqsClient := sqs.NewFromConfig(awsCfg)
			publisher = queue.NewSQSAlertPublisher(sqsClient, cfg.AWS.AlertQueueURL, logger)
			srv.HealthProbes = append(srv.HealthProbes, queue.NewQueueProbe(sqsClient, cfg.AWS.AlertQueueURL))
		}
		if cfg.Metrics.Enabled {
			cw := metrics.NewCloudWatchWebhookMetrics(cloudwatch.NewFromConfig(awsCfg), cfg.Metrics.Namespace, logger)
			webhookMetric = cw
			srv.Metrics = cw
		}
	}

	handler := handlers.NewPaddleWebhookHandler(verifier, publisher, webhookMetric, logger)
	srv.Registrars = append(srv.Registrars, handler.RegisterRoutes)
	srv.MountRoutes()

	logger.Info("webhook receiver configured",
		"publish_enabled", publisher != nil,
		"metrics_enabled", cfg.Metrics.Enabled,
		"metric_namespace", cfg.Metrics.Namespace,
	)
	return srv, nil
}

// loadAWSConfig honours AWS_ENDPOINT_URL for LocalStack.
func loadAWSConfig(ctx context.Context, c config.AWSConfig) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(c.Region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}
	if c.EndpointURL != "" {
		awsCfg.BaseEndpoint = aws.String(c.EndpointURL)
	}
	return awsCfg, nil
}

// isLambdaEnvironment reports whether the process runs inside AWS Lambda.
func isLambdaEnvironment() bool {
	_, hasRuntimeAPI := os.LookupEnv("AWS_LAMBDA_RUNTIME_API")
	_, hasServerPort := os.LookupEnv("_LAMBDA_SERVER_PORT")
	return hasRuntimeAPI || hasServerPort
}

func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger uses a text handler locally and JSON everywhere else.
func newLogger(cfg *config.Config) *slog.Logger {
	var lvl slog.Level
	switch cfg.LogLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if cfg.IsLocal() {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
