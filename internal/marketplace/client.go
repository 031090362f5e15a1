// Package marketplace is the HTTP client for the marketplace backend's auth API.
// Backend rejections come back as envelopes; only transport failures are errors.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"portal/internal/platform/metrics"
	"portal/pkg/platform/circuit"
	"portal/pkg/requestcontext"
)

const (
	registerPath = "/api/auth/register"
	loginPath    = "/api/auth/login"

	opRegister = "register"
	opLogin    = "login"

	maxResponseBytes = 1 << 20
	requestIDHeader  = "X-Request-ID"
)

// Client talks to the marketplace backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	breaker    *circuit.Breaker
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(cl *Client) {
		cl.metrics = m
	}
}

// WithBreaker fails calls fast while the backend keeps failing.
func WithBreaker(b *circuit.Breaker) Option {
	return func(cl *Client) {
		cl.breaker = b
	}
}

// New constructs a Client rooted at baseURL with the given per-request timeout.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.Default(),
		tracer:     otel.Tracer("portal/internal/marketplace"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register submits a center registration for admin approval.
func (c *Client) Register(ctx context.Context, payload RegisterPayload) (*Envelope, error) {
	var env Envelope
	if err := c.post(ctx, opRegister, registerPath, payload, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// Login authenticates a user for the given backend role.
func (c *Client) Login(ctx context.Context, payload LoginPayload) (*LoginEnvelope, error) {
	var env LoginEnvelope
	if err := c.post(ctx, opLogin, loginPath, payload, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (c *Client) post(ctx context.Context, op, path string, in, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "marketplace."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if c.breaker != nil && !c.breaker.Allow() {
		span.SetStatus(codes.Error, "circuit open")
		return newClientError(ErrorOutage, op, 0, "circuit open", nil)
	}

	start := time.Now()
	status := 0
	defer func() {
		label := "error"
		if status != 0 {
			label = strconv.Itoa(status)
		}
		c.metrics.ObserveBackend(op, label, time.Since(start))
		c.recordHealth(ctx, err, status)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(GetCategory(err)))
		}
	}()

	body, err := json.Marshal(in)
	if err != nil {
		return newClientError(ErrorInternal, op, 0, "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return newClientError(ErrorInternal, op, 0, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		req.Header.Set(requestIDHeader, requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return newClientError(ErrorTimeout, op, 0, "request timed out", err)
		}
		return newClientError(ErrorOutage, op, 0, "request failed", err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode
	span.SetAttributes(attribute.Int("http.response.status_code", status))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if isTimeout(err) {
			return newClientError(ErrorTimeout, op, status, "reading response timed out", err)
		}
		return newClientError(ErrorOutage, op, status, "read response", err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		// Error pages from proxies land here as well as genuinely malformed bodies.
		if status >= http.StatusInternalServerError {
			return newClientError(ErrorOutage, op, status, "backend error without envelope", err)
		}
		return newClientError(ErrorBadData, op, status, "decode response", err)
	}

	c.logger.DebugContext(ctx, "marketplace call completed",
		"operation", op,
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// recordHealth feeds the breaker. Rejections with a decodable envelope are
// healthy responses; outages, timeouts and 5xx statuses are not.
func (c *Client) recordHealth(ctx context.Context, err error, status int) {
	if c.breaker == nil {
		return
	}
	category := GetCategory(err)
	failed := status >= http.StatusInternalServerError ||
		(err != nil && (category == ErrorOutage || category == ErrorTimeout))
	if !failed {
		if _, change := c.breaker.RecordSuccess(); change.Closed {
			c.logger.InfoContext(ctx, "marketplace circuit closed", "breaker", c.breaker.Name())
		}
		return
	}
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "marketplace circuit opened", "breaker", c.breaker.Name())
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
