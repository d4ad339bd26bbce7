// Package graphql provides the HTTP transport to the WPGraphQL backend.
package graphql

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/alexwatever/wept/internal/domain/apperror"
	"github.com/alexwatever/wept/internal/port/outbound"
)

const (
	// DefaultSessionHeader is the header WooGraphQL uses for cart sessions.
	DefaultSessionHeader = "woocommerce-session"

	// sessionScheme prefixes the token in outgoing session headers.
	sessionScheme = "Session"

	// maxResponseBodySize is the maximum response body size from the backend.
	maxResponseBodySize = 10 * 1024 * 1024 // 10MB

	tracerName = "github.com/alexwatever/wept/internal/adapter/outbound/graphql"
)

// Operation types for metrics and spans.
const (
	opQuery    = "query"
	opMutation = "mutation"
)

// Client executes GraphQL operations over HTTP.
//
// Client is a value type: copying it yields an independent client sharing
// the same connection pool. Setting the session token on one copy never
// affects another.
type Client struct {
	endpoints     outbound.EndpointSource
	httpClient    *http.Client
	sessionHeader string
	sessionToken  string
	metrics       *Metrics
	tracer        trace.Tracer
	logger        *slog.Logger
}

// ClientOption is a functional option for configuring Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the request timeout for the HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if c.httpClient != nil && d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithSessionHeader overrides the session affinity header name.
func WithSessionHeader(name string) ClientOption {
	return func(c *Client) {
		if name != "" {
			c.sessionHeader = name
		}
	}
}

// WithMetrics records request counts and latencies.
func WithMetrics(m *Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTracerProvider sets the provider spans are created from.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) ClientOption {
	return func(c *Client) {
		c.tracer = tp.Tracer(tracerName)
	}
}

// WithLogger sets the logger for debug request logs.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client that resolves its endpoint from endpoints on
// every call.
func NewClient(endpoints outbound.EndpointSource, opts ...ClientOption) Client {
	c := Client{
		endpoints: endpoints,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		sessionHeader: DefaultSessionHeader,
		tracer:        otel.Tracer(tracerName),
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// SetSessionToken sets the token attached to subsequent requests made
// through this value. An empty token removes the header.
func (c *Client) SetSessionToken(token string) {
	c.sessionToken = token
}

// WithSessionToken returns a copy of c carrying token.
func (c Client) WithSessionToken(token string) Client {
	c.sessionToken = token
	return c
}

// SessionToken returns the token attached to requests, if any.
func (c Client) SessionToken() string {
	return c.sessionToken
}

// SessionHeader returns the session affinity header name.
func (c Client) SessionHeader() string {
	return c.sessionHeader
}

// Endpoint returns the URL the next request will be sent to.
func (c Client) Endpoint() string {
	return c.endpoints.Endpoint()
}

// ExecuteQuery runs a read-only operation and decodes its data into out.
func (c Client) ExecuteQuery(ctx context.Context, op outbound.Operation, vars map[string]any, out any) error {
	raw, err := c.execute(ctx, opQuery, op, vars)
	if err != nil {
		return err
	}
	return decodeData(op.Name, raw.Body, out)
}

// ExecuteMutation runs a state-changing operation and returns the response
// undecoded so the caller can inspect headers. On a non-2xx status the
// response is returned together with an API-kind error.
func (c Client) ExecuteMutation(ctx context.Context, op outbound.Operation, vars map[string]any) (*RawResponse, error) {
	return c.execute(ctx, opMutation, op, vars)
}

type requestBody struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

func (c Client) execute(ctx context.Context, opType string, op outbound.Operation, vars map[string]any) (raw *RawResponse, err error) {
	ctx, span := c.tracer.Start(ctx, opType+" "+op.Name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("graphql.operation.name", op.Name),
			attribute.String("graphql.operation.type", opType),
		),
	)
	start := time.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		c.metrics.observe(op.Name, opType, err, time.Since(start))
	}()

	body, err := json.Marshal(requestBody{Query: op.Query, Variables: vars, OperationName: op.Name})
	if err != nil {
		return nil, &Error{Kind: apperror.KindParse, Op: op.Name, Message: "encode request", Err: err}
	}

	endpoint := c.endpoints.Endpoint()
	span.SetAttributes(attribute.String("url.full", endpoint))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: apperror.KindAPI, Op: op.Name, Message: "create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.sessionToken != "" {
		req.Header.Set(c.sessionHeader, sessionScheme+" "+c.sessionToken)
	}

	c.logger.Debug("graphql request",
		"operation", op.Name,
		"type", opType,
		"endpoint", endpoint,
		"has_session", c.sessionToken != "",
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: apperror.KindAPI, Op: op.Name, Message: "http request", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, &Error{Kind: apperror.KindParse, Op: op.Name, Message: "read response", Err: err}
	}

	raw = &RawResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       respBody,
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return raw, &Error{
			Kind:    apperror.KindAPI,
			Op:      op.Name,
			Message: "unexpected status",
			Err:     fmt.Errorf("http status %d: %s", resp.StatusCode, truncate(string(respBody), 512)),
		}
	}

	if opType == opMutation && raw.Header.Get(c.sessionHeader) != "" {
		c.metrics.sessionIssued()
	}

	return raw, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ outbound.QueryExecutor = Client{}
