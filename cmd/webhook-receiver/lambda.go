package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"paddle/internal/core"
)

// lambdaBridge adapts API Gateway HTTP API (payload v2) events to the same
// http.Handler the HTTP server uses.
type lambdaBridge struct {
	handler http.Handler
}

func newLambdaBridge(h http.Handler) *lambdaBridge {
	return &lambdaBridge{handler: h}
}

// Handle is registered with lambda.Start.
func (b *lambdaBridge) Handle(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	req, err := toHTTPRequest(ctx, event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	rw := newBufferedResponse()
	b.handler.ServeHTTP(rw, req)

	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	headers := make(map[string]string, len(rw.header))
	for k, vs := range rw.header {
		headers[k] = strings.Join(vs, ",")
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: rw.status,
		Headers:    headers,
		Body:       rw.body.String(),
	}, nil
}

func toHTTPRequest(ctx context.Context, event events.APIGatewayV2HTTPRequest) (*http.Request, error) {
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return nil, fmt.Errorf("decoding base64 event body: %w", err)
		}
		body = decoded
	}

	target := event.RawPath
	if target == "" {
		target = "/"
	}
	if event.RawQueryString != "" {
		target += "?" + event.RawQueryString
	}

	req, err := http.NewRequestWithContext(ctx, event.RequestContext.HTTP.Method, target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request from event: %w", err)
	}
	for k, v := range event.Headers {
		req.Header.Set(k, v)
	}
	if len(event.Cookies) > 0 {
		req.Header.Set("Cookie", strings.Join(event.Cookies, "; "))
	}
	if req.Header.Get(core.HeaderRequestID) == "" && event.RequestContext.RequestID != "" {
		req.Header.Set(core.HeaderRequestID, event.RequestContext.RequestID)
	}
	req.RemoteAddr = event.RequestContext.HTTP.SourceIP
	req.Host = event.RequestContext.DomainName
	return req, nil
}

// bufferedResponse collects a handler's response in memory.
type bufferedResponse struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: http.Header{}}
}

func (r *bufferedResponse) Header() http.Header { return r.header }

func (r *bufferedResponse) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.body.Write(b)
}

func (r *bufferedResponse) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
}
