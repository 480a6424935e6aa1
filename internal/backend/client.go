// Package backend is the HTTP wrapper every portal call to the
// project-management API goes through. It attaches the operator's bearer
// token and reports session invalidation to a single owner.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	dErrors "superadmin/pkg/domain-errors"
	"superadmin/pkg/requestcontext"
)

const (
	headerProjectID = "X-Project-ID"
	maxBodyBytes    = 10 << 20
)

// InvalidationHandler is told when a backend response revokes a token.
// Implementations must tolerate concurrent calls for the same token.
type InvalidationHandler interface {
	SessionInvalidated(ctx context.Context, token, reason string)
}

// Observer records call latency.
type Observer interface {
	ObserveBackend(method, status string, seconds float64)
}

// Request describes one backend call.
type Request struct {
	Method string
	// Path is relative to the base URL and is what auth endpoint matching sees.
	Path      string
	Query     url.Values
	Body      any
	Token     string
	ProjectID string
}

// Client calls the backend. It never retries.
type Client struct {
	baseURL      string
	http         *http.Client
	tracer       trace.Tracer
	logger       *slog.Logger
	observer     Observer
	invalidation InvalidationHandler
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithInvalidationHandler registers the owner of the forced-logout sequence.
func WithInvalidationHandler(h InvalidationHandler) Option {
	return func(c *Client) { c.invalidation = h }
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tracer:  otel.Tracer("superadmin/internal/backend"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetInvalidationHandler wires the handler after construction, for owners
// that themselves depend on the client.
func (c *Client) SetInvalidationHandler(h InvalidationHandler) {
	c.invalidation = h
}

// Do performs req and decodes a 2xx JSON body into out (if non-nil).
// Non-2xx responses return *APIError; transport failures return a coded
// domain error.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	_, body, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "unexpected backend response")
	}
	return nil
}

func (c *Client) do(ctx context.Context, req Request) (int, []byte, error) {
	ctx, span := c.tracer.Start(ctx, "backend "+req.Method+" "+req.Path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.Path),
		))
	defer span.End()

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.observe(req.Method, "error", start)
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		c.logger.WarnContext(ctx, "backend request failed",
			"method", req.Method,
			"path", req.Path,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return 0, nil, transportError(err)
	}
	defer resp.Body.Close()
	c.observe(req.Method, strconv.Itoa(resp.StatusCode), start)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		span.SetStatus(codes.Error, "read body")
		return 0, nil, transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseAPIError(resp.StatusCode, body)
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		c.checkInvalidation(ctx, req, apiErr)
		return resp.StatusCode, body, apiErr
	}
	return resp.StatusCode, body, nil
}

func (c *Client) Get(ctx context.Context, token, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query, Token: token}, out)
}

func (c *Client) Post(ctx context.Context, token, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body, Token: token}, out)
}

func (c *Client) Put(ctx context.Context, token, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body, Token: token}, out)
}

func (c *Client) Patch(ctx context.Context, token, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body, Token: token}, out)
}

func (c *Client) Delete(ctx context.Context, token, path string, out any) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path, Token: token}, out)
}

// Forward relays a raw JSON call for the browser proxy and returns the
// backend status and body untouched. Invalidation handling still applies,
// so callers must check IsSessionInvalidated on the returned error.
func (c *Client) Forward(ctx context.Context, req Request, body []byte) (int, []byte, error) {
	if len(bytes.TrimSpace(body)) > 0 {
		req.Body = json.RawMessage(body)
	}
	return c.do(ctx, req)
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "encode backend request")
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "build backend request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	if req.ProjectID != "" {
		httpReq.Header.Set(headerProjectID, req.ProjectID)
	}
	if id := requestcontext.RequestID(ctx); id != "" {
		httpReq.Header.Set("X-Request-ID", id)
	}
	return httpReq, nil
}

func (c *Client) checkInvalidation(ctx context.Context, req Request, apiErr *APIError) {
	if req.Token == "" || IsAuthEndpoint(req.Path) || !apiErr.invalidatesSession() {
		return
	}
	apiErr.Invalidated = true
	if c.invalidation == nil {
		return
	}
	reason := "unauthorized"
	if apiErr.Status == http.StatusForbidden {
		reason = "token_security_violation"
	}
	c.invalidation.SessionInvalidated(ctx, req.Token, reason)
}

func (c *Client) observe(method, status string, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveBackend(method, status, time.Since(start).Seconds())
	}
}

func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "backend request timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "backend unreachable")
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
