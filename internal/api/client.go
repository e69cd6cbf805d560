// Package api is the client for the EduRider backend endpoints the guardian
// app consumes. Calls are single request/response exchanges with no retry.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"guardian/internal/platform/metrics"
	dErrors "guardian/pkg/domain-errors"
	"guardian/pkg/requestcontext"
)

const (
	googleLoginPath = "/api/auth/parent/google-login/"
	studentPathFmt  = "/api/students/%s/"

	maxBodyBytes = 1 << 20
)

// Client talks to the backend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	timeout time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every request. It applies to a copy of the HTTP client,
// so a client passed to WithHTTPClient is never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

// New builds a client for baseURL, e.g. https://edurider.radr.in.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  slog.Default(),
		tracer:  otel.Tracer("guardian/internal/api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

// GoogleLoginURL asks the backend where to send the guardian for Google sign in.
func (c *Client) GoogleLoginURL(ctx context.Context) (string, error) {
	var resp googleLoginResponse
	if err := c.getJSON(ctx, "google_login", googleLoginPath, "", &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.AuthURL) == "" {
		return "", dErrors.New(dErrors.CodeParse, "google login response has no auth_url")
	}
	return resp.AuthURL, nil
}

// Student fetches the student record with the guardian's bearer token.
func (c *Client) Student(ctx context.Context, accessToken, studentID string) (*Student, error) {
	if strings.TrimSpace(studentID) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "student id required")
	}
	if strings.TrimSpace(accessToken) == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "access token required")
	}
	var student Student
	path := fmt.Sprintf(studentPathFmt, url.PathEscape(studentID))
	if err := c.getJSON(ctx, "student", path, accessToken, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, path, bearer string, out any) (err error) {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "api."+endpoint, trace.WithSpanKind(trace.SpanKindClient))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if c.metrics != nil {
			c.metrics.ObserveAPIRequest(endpoint, start, err)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "build request")
	}
	requestID := requestcontext.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	span.SetAttributes(
		attribute.String("http.request.method", http.MethodGet),
		attribute.String("url.path", path),
		attribute.String("guardian.request_id", requestID),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "api request failed", "endpoint", endpoint, "request_id", requestID, "error", err)
		return dErrors.NewNetwork(0, endpoint+" request failed", err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return dErrors.NewNetwork(resp.StatusCode, "read "+endpoint+" response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WarnContext(ctx, "api request rejected",
			"endpoint", endpoint,
			"status", resp.StatusCode,
			"request_id", requestID,
		)
		return dErrors.NewNetwork(resp.StatusCode, fmt.Sprintf("%s request returned status %d", endpoint, resp.StatusCode), nil)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeParse, "decode "+endpoint+" response")
	}
	return nil
}
