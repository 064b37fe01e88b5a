package handlers

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"paddle/internal/core"
	"paddle/internal/types"
	"paddle/internal/webhook"
)

var (
	keyOnce    sync.Once
	testKey    *rsa.PrivateKey
	testKeyPEM string
)

func signingKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	keyOnce.Do(func() {
		k, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		der, err := x509.MarshalPKIXPublicKey(&k.PublicKey)
		if err != nil {
			panic(err)
		}
		testKey = k
		testKeyPEM = string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
	})
	return testKey, testKeyPEM
}

// signedForm returns fields plus a valid p_signature, form encoded.
func signedForm(t *testing.T, fields map[string]string) url.Values {
	t.Helper()
	key, _ := signingKey(t)

	p := webhook.Payload{}
	values := url.Values{}
	for k, v := range fields {
		p[k] = v
		values.Set(k, v)
	}
	msg, err := webhook.CanonicalBytes(p)
	require.NoError(t, err)
	sum := sha1.Sum(msg)
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA1, sum[:])
	require.NoError(t, err)

	values.Set(webhook.FieldSignature, base64.StdEncoding.EncodeToString(sig))
	return values
}

func createdFields() map[string]string {
	return map[string]string{
		"alert_name":        "subscription_created",
		"alert_id":          "1842",
		"subscription_id":   "77",
		"status":            "active",
		"marketing_consent": "1",
		"email":             "buyer@example.com",
	}
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, name webhook.AlertName, p webhook.Payload) error {
	return m.Called(ctx, name, p).Error(0)
}

type mockMetrics struct {
	mock.Mock
}

func (m *mockMetrics) RecordWebhook(ctx context.Context, alertName string, result types.WebhookResult, latency time.Duration) {
	m.Called(ctx, alertName, result, latency)
}

type harness struct {
	router    *chi.Mux
	publisher *mockPublisher
	metrics   *mockMetrics
}

func newHarness(t *testing.T, publicKey string) *harness {
	t.Helper()
	h := &harness{publisher: new(mockPublisher), metrics: new(mockMetrics)}
	handler := NewPaddleWebhookHandler(
		webhook.NewVerifier(publicKey),
		h.publisher,
		h.metrics,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	h.router = chi.NewRouter()
	h.router.Use(core.RequestIDMiddleware)
	handler.RegisterRoutes(h.router)
	return h
}

func (h *harness) expectMetric(name string, result types.WebhookResult) {
	h.metrics.On("RecordWebhook", mock.Anything, name, result, mock.AnythingOfType("time.Duration")).Once()
}

func (h *harness) post(contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, PaddleWebhookPath, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *harness) postForm(values url.Values) *httptest.ResponseRecorder {
	return h.post("application/x-www-form-urlencoded", values.Encode())
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp core.APIErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error.Code
}

func TestPaddleWebhook_ValidAlertIsPublished(t *testing.T) {
	_, pub := signingKey(t)
	h := newHarness(t, pub)

	var published webhook.Payload
	h.publisher.On("Publish", mock.Anything, webhook.AlertSubscriptionCreated, mock.Anything).
		Run(func(args mock.Arguments) { published = args.Get(2).(webhook.Payload) }).
		Return(nil).Once()
	h.expectMetric("subscription_created", types.WebhookResultAccepted)

	rec := h.postForm(signedForm(t, createdFields()))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())
	h.publisher.AssertExpectations(t)
	h.metrics.AssertExpectations(t)
	assert.Equal(t, "77", published["subscription_id"])
}

func TestPaddleWebhook_NoContentTypeIsForm(t *testing.T) {
	_, pub := signingKey(t)
	h := newHarness(t, pub)
	h.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	h.expectMetric("subscription_created", types.WebhookResultAccepted)

	rec := h.post("", signedForm(t, createdFields()).Encode())
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPaddleWebhook_JSONBody(t *testing.T) {
	_, pub := signingKey(t)
	h := newHarness(t, pub)
	h.publisher.On("Publish", mock.Anything, webhook.AlertSubscriptionCreated, mock.Anything).Return(nil).Once()
	h.expectMetric("subscription_created", types.WebhookResultAccepted)

	values := signedForm(t, createdFields())
	flat := map[string]string{}
	for k := range values {
		flat[k] = values.Get(k)
	}
	body, err := json.Marshal(flat)
	require.NoError(t, err)

	rec := h.post("application/json; charset=utf-8", string(body))
	assert.Equal(t, http.StatusOK, rec.Code)
	h.publisher.AssertExpectations(t)
}

func TestPaddleWebhook_TamperedFieldIs401(t *testing.T) {
	_, pub := signingKey(t)
	h := newHarness(t, pub)
	h.expectMetric("subscription_created", types.WebhookResultInvalidSignature)

	values := signedForm(t, createdFields())
	values.Set("email", "attacker@example.com")
	rec := h.postForm(values)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, string(types.ErrCodeWebhookSignatureInvalid), errorCode(t, rec))
	h.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaddleWebhook_MissingSignatureIs400(t *testing.T) {
	_, pub := signingKey(t)
	h := newHarness(t, pub)
	h.expectMetric("subscription_created", types.WebhookResultRejected)

	values := url.Values{}
	for k, v := range createdFields() {
		values.Set(k, v)
	}
	rec := h.postForm(values)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(types.ErrCodeWebhookSignatureMissing), errorCode(t, rec))
}

func TestPaddleWebhook_MissingAlertNameIs400(t *testing.T) {
	_, pub := signingKey(t)
	h := newHarness(t, pub)
	h.expectMetric("", types.WebhookResultRejected)

	fields := createdFields()
	delete(fields, "alert_name")
	rec := h.postForm(signedForm(t, fields))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(types.ErrCodeWebhookAlertNameMissing), errorCode(t, rec))
}

func TestPaddleWebhook_MissingPublicKeyIs500(t *testing.T) {
	h := newHarness(t, "")
	h.expectMetric("subscription_created", types.WebhookResultRejected)

	rec := h.postForm(signedForm(t, createdFields()))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, string(types.ErrCodeWebhookPublicKeyMissing), errorCode(t, rec))
}

func TestPaddleWebhook_UnknownAlertIsAcknowledged(t *testing.T) {
	_, pub := signingKey(t)
	h := newHarness(t, pub)
	h.expectMetric("subscription_resumed", types.WebhookResultUnknownAlert)

	fields := createdFields()
	fields["alert_name"] = "subscription_resumed"
	rec := h.postForm(signedForm(t, fields))

	assert.Equal(t, http.StatusOK, rec.Code)
	h.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	h.metrics.AssertExpectations(t)
}

func TestPaddleWebhook_PublishFailureIs502(t *testing.T) {
	_, pub := signingKey(t)
	h := newHarness(t, pub)
	h.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("sqs down"))
	h.expectMetric("subscription_created", types.WebhookResultPublishFailed)

	rec := h.postForm(signedForm(t, createdFields()))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, string(types.ErrCodeUpstreamQueue), errorCode(t, rec))
	h.metrics.AssertExpectations(t)
}

func TestPaddleWebhook_NilPublisherAndMetrics(t *testing.T) {
	_, pub := signingKey(t)
	handler := NewPaddleWebhookHandler(webhook.NewVerifier(pub), nil, nil, nil)
	r := chi.NewRouter()
	handler.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, PaddleWebhookPath, strings.NewReader(signedForm(t, createdFields()).Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPaddleWebhook_BodyErrors(t *testing.T) {
	_, pub := signingKey(t)

	tests := []struct {
		name        string
		contentType string
		body        string
		code        types.ErrorCode
	}{
		{"oversized", "application/x-www-form-urlencoded", "a=" + strings.Repeat("x", maxWebhookBodySize), types.ErrCodeValidationInvalidBody},
		{"bad form", "application/x-www-form-urlencoded", "a=%zz", types.ErrCodeValidationInvalidBody},
		{"bad json", "application/json", "{", types.ErrCodeValidationInvalidBody},
		{"unsupported type", "text/plain", "hello", types.ErrCodeValidationContentType},
		{"malformed type", "application/json; =", "{}", types.ErrCodeValidationContentType},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, pub)
			h.expectMetric("", types.WebhookResultRejected)

			rec := h.post(tc.contentType, tc.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, string(tc.code), errorCode(t, rec))
		})
	}
}
