package paddle

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"paddle/internal/types"
)

// errUpstreamStatus marks a 5xx response so the breaker can count it. The
// response itself is still handed back to the caller.
var errUpstreamStatus = errors.New("upstream returned server error")

// transport wraps an *http.Client with header injection and an optional
// circuit breaker. It never retries and never translates errors: whatever
// the http.Client or the breaker returns reaches the caller unchanged.
type transport struct {
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[*http.Response]
	userAgent string
}

func newTransport(client *http.Client, userAgent string, breakerName string) *transport {
	t := &transport{
		client:    client,
		userAgent: userAgent,
	}
	if breakerName != "" {
		t.breaker = newBreaker(breakerName)
	}
	return t
}

func newBreaker(name string) *gobreaker.CircuitBreaker[*http.Response] {
	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	})
}

// do sends req with:
//  1. Request ID propagation (X-Request-ID from context)
//  2. User-Agent header injection
//  3. Circuit breaker wrapping, when enabled
//
// The caller closes the response body.
func (t *transport) do(req *http.Request) (*http.Response, error) {
	if id := types.GetRequestID(req.Context()); id != "" {
		req.Header.Set("X-Request-ID", id)
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	if t.breaker == nil {
		return t.client.Do(req)
	}

	resp, err := t.breaker.Execute(func() (*http.Response, error) {
		r, doErr := t.client.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		if r.StatusCode >= 500 {
			return r, fmt.Errorf("%w: %d", errUpstreamStatus, r.StatusCode)
		}
		return r, nil
	})
	if errors.Is(err, errUpstreamStatus) {
		return resp, nil
	}
	return resp, err
}
