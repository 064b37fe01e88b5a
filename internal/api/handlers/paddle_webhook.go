// Package handlers contains the HTTP handlers mounted on the receiver's
// router.
//
// The Paddle webhook endpoint is unauthenticated; every request is proven
// authentic by the RSA signature in its p_signature field.
package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"paddle/internal/core"
	"paddle/internal/types"
	"paddle/internal/webhook"
)

// maxWebhookBodySize bounds the inbound payload (64 KB). Vendor alerts are a
// few KB at most.
const maxWebhookBodySize = 64 * 1024

// PaddleWebhookPath is where the vendor is configured to deliver alerts.
const PaddleWebhookPath = "/webhooks/paddle"

// SignatureVerifier is satisfied by *webhook.Verifier and *paddle.Client.
type SignatureVerifier interface {
	VerifyDetailed(p webhook.Payload) (webhook.Result, error)
}

// AlertPublisher hands a verified alert to downstream consumers.
type AlertPublisher interface {
	Publish(ctx context.Context, name webhook.AlertName, p webhook.Payload) error
}

// WebhookMetrics records the outcome of each delivery.
type WebhookMetrics interface {
	RecordWebhook(ctx context.Context, alertName string, result types.WebhookResult, latency time.Duration)
}

type webhookAck struct {
	Received bool `json:"received"`
}

// PaddleWebhookHandler verifies, decodes and forwards vendor alerts.
type PaddleWebhookHandler struct {
	verifier  SignatureVerifier
	publisher AlertPublisher
	metrics   WebhookMetrics
	logger    *slog.Logger
}

// NewPaddleWebhookHandler wires the handler. publisher and metrics may be
// nil: alerts are then acknowledged without being forwarded or counted.
func NewPaddleWebhookHandler(
	verifier SignatureVerifier,
	publisher AlertPublisher,
	metrics WebhookMetrics,
	logger *slog.Logger,
) *PaddleWebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaddleWebhookHandler{
		verifier:  verifier,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// RegisterRoutes mounts the webhook endpoint. It matches core.RouteRegistrar.
func (h *PaddleWebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post(PaddleWebhookPath, h.Handle)
}

// Handle processes one alert delivery:
//  1. Reads the body (form or JSON) under the size limit.
//  2. Verifies the signature. Missing fields are 400, a bad signature is 401.
//  3. Decodes the typed alert. Unknown alert names are acknowledged with 200
//     so the vendor stops redelivering them.
//  4. Publishes the verified payload. A publish failure is 502 so the vendor
//     retries.
//  5. Answers 200 {"received":true}.
func (h *PaddleWebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	logger := types.LoggerFromContext(ctx, h.logger)

	payload, err := readPayload(w, r)
	if err != nil {
		logger.WarnContext(ctx, "unreadable webhook body", "error", err)
		h.record(ctx, "", types.WebhookResultRejected, start)
		core.Error(w, r, err)
		return
	}

	name, _ := payload.AlertName()

	result, err := h.verifier.VerifyDetailed(payload)
	if err != nil {
		if errors.Is(err, webhook.ErrMissingPublicKey) {
			logger.ErrorContext(ctx, "webhook verifier has no public key configured")
		} else {
			logger.WarnContext(ctx, "webhook rejected before verification", "error", err)
		}
		h.record(ctx, string(name), types.WebhookResultRejected, start)
		core.Error(w, r, err)
		return
	}
	if !result.Valid {
		logger.WarnContext(ctx, "webhook signature verification failed",
			"alert_name", string(name),
			"reason", string(result.Reason),
		)
		h.record(ctx, string(name), types.WebhookResultInvalidSignature, start)
		core.Error(w, r, types.NewAppError(
			types.ErrCodeWebhookSignatureInvalid,
			"webhook signature verification failed",
			nil,
		))
		return
	}

	alert, err := webhook.ParseAlert(payload)
	switch {
	case errors.Is(err, webhook.ErrUnknownAlert):
		logger.WarnContext(ctx, "ignoring unknown webhook alert",
			"alert_name", string(name),
			"alert_id", payload.AlertID(),
		)
		h.record(ctx, string(name), types.WebhookResultUnknownAlert, start)
		core.JSON(w, r, http.StatusOK, webhookAck{Received: true})
		return
	case err != nil:
		// The payload is authentic, so it is still forwarded in raw form.
		logger.WarnContext(ctx, "webhook alert did not decode into its typed form",
			"alert_name", string(name),
			"error", err,
		)
	default:
		logger.InfoContext(ctx, "webhook alert received",
			"alert_name", string(alert.Name()),
			"alert_id", payload.AlertID(),
		)
	}

	if h.publisher != nil {
		if err := h.publisher.Publish(ctx, name, payload); err != nil {
			logger.ErrorContext(ctx, "failed to publish webhook alert",
				"alert_name", string(name),
				"error", err,
			)
			h.record(ctx, string(name), types.WebhookResultPublishFailed, start)
			core.Error(w, r, asUpstreamError(err))
			return
		}
	}

	h.record(ctx, string(name), types.WebhookResultAccepted, start)
	core.JSON(w, r, http.StatusOK, webhookAck{Received: true})
}

func (h *PaddleWebhookHandler) record(ctx context.Context, name string, result types.WebhookResult, start time.Time) {
	if h.metrics == nil {
		return
	}
	h.metrics.RecordWebhook(ctx, name, result, time.Since(start))
}

// readPayload reads the body and builds a Payload according to the
// Content-Type. A missing Content-Type is treated as a form post, which is
// what the vendor sends.
func readPayload(w http.ResponseWriter, r *http.Request) (webhook.Payload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, types.NewAppError(types.ErrCodeValidationInvalidBody, "webhook body exceeds 64KB", err)
		}
		return nil, types.NewAppError(types.ErrCodeValidationInvalidBody, "failed to read request body", err)
	}

	mediaType := "application/x-www-form-urlencoded"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err = mime.ParseMediaType(ct)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeValidationContentType, "malformed Content-Type header", err)
		}
	}

	switch mediaType {
	case "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeValidationInvalidBody, "webhook body is not valid form encoding", err)
		}
		return webhook.PayloadFromForm(values), nil
	case "application/json":
		return webhook.PayloadFromJSON(body)
	default:
		return nil, types.NewAppError(types.ErrCodeValidationContentType, "unsupported Content-Type", nil).
			WithDetails(map[string]any{"content_type": mediaType})
	}
}

// asUpstreamError keeps an AppError's own code and classifies anything else
// as a queue failure.
func asUpstreamError(err error) error {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return types.NewAppError(types.ErrCodeUpstreamQueue, "failed to forward alert", err)
}
