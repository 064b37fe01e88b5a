package paddle

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"paddle/internal/types"
)

const maxResponseBytes = 10 << 20

// envelope is the wire shape of every vendor response. Success selects the
// populated branch.
type envelope[T any] struct {
	Success  bool      `json:"success"`
	Response T         `json:"response"`
	Error    *APIError `json:"error"`
}

// request issues one vendor call and unwraps the envelope.
//
// Credentials are set after the parameters so a parameter can never
// override them. GET requests carry the form in the query string; POST
// requests carry it as an application/x-www-form-urlencoded body.
//
// Errors from the transport are returned as-is. A failure envelope is an
// *APIError. A body that is not a JSON envelope is an AppError with code
// upstream_invalid_response.
func request[T any](ctx context.Context, c *Client, method, path string, params any) (T, error) {
	var zero T

	form, err := encodeForm(params)
	if err != nil {
		return zero, err
	}
	form.Set("vendor_id", strconv.FormatInt(c.vendorID, 10))
	form.Set("vendor_auth_code", c.authCode.Unmask())

	endpoint := c.serverURL + path
	var body io.Reader
	if method == http.MethodGet {
		endpoint += "?" + form.Encode()
	} else {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return zero, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")

	logger := types.LoggerFromContext(ctx, c.logger)
	start := time.Now()

	resp, err := c.transport.do(req)
	if err != nil {
		logger.DebugContext(ctx, "paddle request failed",
			"method", method,
			"path", path,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return zero, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return zero, err
	}

	var env envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.DebugContext(ctx, "paddle response not decodable",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return zero, types.NewAppError(
			types.ErrCodeUpstreamInvalidResponse,
			"vendor response is not a valid envelope",
			err,
		).WithDetails(map[string]any{"status": resp.StatusCode, "path": path})
	}

	if !env.Success {
		apiErr := env.Error
		if apiErr == nil {
			apiErr = &APIError{Message: "request failed without error details"}
		}
		logger.DebugContext(ctx, "paddle request rejected",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"error_code", apiErr.Code,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return zero, apiErr
	}

	logger.DebugContext(ctx, "paddle request succeeded",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return env.Response, nil
}
