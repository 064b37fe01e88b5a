package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"paddle/internal/types"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var resp APIErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp.Error
}

func TestJSON_WritesStatusAndContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusCreated, map[string]bool{"received": true})

	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
	if got := rec.Body.String(); got != `{"received":true}` {
		t.Errorf("unexpected body %q", got)
	}
}

func TestJSON_MarshalFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(types.WithRequestID(req.Context(), "req-marshal"))

	JSON(rec, req, http.StatusOK, make(chan int))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	detail := decodeError(t, rec)
	if detail.Code != string(types.ErrCodeInternalSerialization) {
		t.Errorf("unexpected code %q", detail.Code)
	}
	if detail.RequestID != "req-marshal" {
		t.Errorf("unexpected request id %q", detail.RequestID)
	}
}

func TestError_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		code   types.ErrorCode
		status int
	}{
		{"validation", types.ErrCodeValidationInvalidBody, http.StatusBadRequest},
		{"missing signature", types.ErrCodeWebhookSignatureMissing, http.StatusBadRequest},
		{"missing alert name", types.ErrCodeWebhookAlertNameMissing, http.StatusBadRequest},
		{"invalid signature", types.ErrCodeWebhookSignatureInvalid, http.StatusUnauthorized},
		{"missing public key", types.ErrCodeWebhookPublicKeyMissing, http.StatusInternalServerError},
		{"queue", types.ErrCodeUpstreamQueue, http.StatusBadGateway},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			err := fmt.Errorf("wrapped: %w", types.NewAppError(tc.code, "msg", errors.New("inner secret")))
			Error(rec, httptest.NewRequest(http.MethodPost, "/", nil), err)

			if rec.Code != tc.status {
				t.Errorf("expected %d, got %d", tc.status, rec.Code)
			}
			detail := decodeError(t, rec)
			if detail.Code != string(tc.code) {
				t.Errorf("expected code %q, got %q", tc.code, detail.Code)
			}
			if detail.Message != "msg" {
				t.Errorf("inner error leaked into message: %q", detail.Message)
			}
		})
	}
}

func TestError_IncludesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := types.NewAppError(types.ErrCodeWebhookAlertUnknown, "unknown alert", nil).
		WithDetails(map[string]any{"alert_name": "mystery"})
	Error(rec, httptest.NewRequest(http.MethodPost, "/", nil), err)

	detail := decodeError(t, rec)
	if detail.Details["alert_name"] != "mystery" {
		t.Errorf("expected details to carry alert_name, got %v", detail.Details)
	}
}

func TestError_GenericErrorHidesMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("db password is hunter2"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	detail := decodeError(t, rec)
	if detail.Code != string(types.ErrCodeInternalUnexpected) {
		t.Errorf("unexpected code %q", detail.Code)
	}
	if detail.Message != "an unexpected error occurred" {
		t.Errorf("unexpected message %q", detail.Message)
	}
}
