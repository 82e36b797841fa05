package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/invsync/backend/internal/domain/integration"
	"github.com/invsync/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// maxResponseSize is the maximum allowed response size from a storefront API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// maxErrorBodySize bounds how much of an error response is kept in the error message
const maxErrorBodySize = 512

// defaultTimeoutSeconds is the per-call timeout when a config does not set one
const defaultTimeoutSeconds = 30

// Option configures an adapter
type Option func(*adapterOptions)

type adapterOptions struct {
	httpClient  *http.Client
	logger      *zap.Logger
	imageStager ImageStager
}

// WithHTTPClient replaces the HTTP client used for platform calls
func WithHTTPClient(client *http.Client) Option {
	return func(o *adapterOptions) {
		o.httpClient = client
	}
}

// WithLogger sets the adapter logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *adapterOptions) {
		o.logger = logger
	}
}

// WithImageStager sets the stager used to turn inline images into fetchable URLs.
// Only adapters that upload images by URL use it.
func WithImageStager(stager ImageStager) Option {
	return func(o *adapterOptions) {
		o.imageStager = stager
	}
}

func buildOptions(opts []Option) adapterOptions {
	o := adapterOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{}
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// apiRequest describes one JSON call against a storefront API
type apiRequest struct {
	operation string
	method    string
	url       string
	headers   map[string]string
	body      any
	timeout   time.Duration
}

// restClient performs JSON requests with a per-call timeout and a client span per call
type restClient struct {
	platform   integration.PlatformCode
	httpClient *http.Client
}

// do sends the request and returns the response body. Transport failures wrap
// ErrPlatformUnavailable, HTTP status >= 400 wraps ErrPlatformRequestFailed.
func (c *restClient) do(ctx context.Context, r apiRequest) ([]byte, error) {
	ctx, span := telemetry.StartSpan(ctx, fmt.Sprintf("%s.%s", lowerPlatform(c.platform), r.operation),
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute(telemetry.SpanAttrPlatform, c.platform.String()),
		telemetry.WithAttribute("http.method", r.method),
	)
	defer span.End()

	timeout := r.timeout
	if timeout <= 0 {
		timeout = defaultTimeoutSeconds * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("%s: failed to encode request: %w", lowerPlatform(c.platform), err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, r.url, reader)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("%s: failed to create request: %w", lowerPlatform(c.platform), err)
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("%w: %v", integration.ErrPlatformUnavailable, err)
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer resp.Body.Close()

	telemetry.SetAttribute(span, "http.status_code", resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		err = fmt.Errorf("%w: failed to read response: %v", integration.ErrPlatformUnavailable, err)
		telemetry.RecordError(span, err)
		return nil, err
	}

	if resp.StatusCode >= 400 {
		err = statusError(resp.StatusCode, body)
		telemetry.RecordError(span, err)
		return nil, err
	}

	return body, nil
}

// doJSON sends the request and decodes the response into out
func (c *restClient) doJSON(ctx context.Context, r apiRequest, out any) error {
	body, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to parse response: %v", integration.ErrPlatformInvalidResponse, err)
	}
	return nil
}

// statusError maps an HTTP error status to the integration sentinels
func statusError(status int, body []byte) error {
	detail := string(body)
	if len(detail) > maxErrorBodySize {
		detail = detail[:maxErrorBodySize]
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w: HTTP %d: %s", integration.ErrPlatformRequestFailed, integration.ErrPlatformAuthFailed, status, detail)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w: HTTP %d", integration.ErrPlatformRequestFailed, integration.ErrRemoteProductNotFound, status)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w: HTTP %d", integration.ErrPlatformRequestFailed, integration.ErrPlatformRateLimited, status)
	default:
		return fmt.Errorf("%w: HTTP %d: %s", integration.ErrPlatformRequestFailed, status, detail)
	}
}

func lowerPlatform(code integration.PlatformCode) string {
	switch code {
	case integration.PlatformCodeShopify:
		return "shopify"
	case integration.PlatformCodeBigCommerce:
		return "bigcommerce"
	default:
		return string(code)
	}
}

func timeoutOf(seconds int) time.Duration {
	if seconds <= 0 {
		seconds = defaultTimeoutSeconds
	}
	return time.Duration(seconds) * time.Second
}
