package servicenow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/viant/servicenow-mcp/servicenow"

	// DefaultMaxResponseBytes caps how much of a response body is read.
	DefaultMaxResponseBytes int64 = 64 << 20
)

// Client performs Table API requests for one instance and account. It holds
// no mutable state and is safe for concurrent use.
type Client struct {
	instance         Instance
	credentials      Credentials
	httpClient       *http.Client
	timeout          time.Duration
	maxResponseBytes int64
	logger           *slog.Logger

	tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets an overall per-request timeout. Zero keeps the transport
// default (no timeout).
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithMaxResponseBytes caps response bodies; values <= 0 restore the default.
func WithMaxResponseBytes(n int64) Option {
	return func(c *Client) {
		c.maxResponseBytes = n
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the given instance and credentials.
func NewClient(instance Instance, credentials Credentials, opts ...Option) *Client {
	c := &Client{
		instance:    instance,
		credentials: credentials,
		httpClient:  &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		httpClient := *c.httpClient
		httpClient.Timeout = c.timeout
		c.httpClient = &httpClient
	}
	if c.maxResponseBytes <= 0 {
		c.maxResponseBytes = DefaultMaxResponseBytes
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.initTelemetry()
	return c
}

func (c *Client) initTelemetry() {
	c.tracer = otel.Tracer(instrumentationName)
	meter := otel.Meter(instrumentationName)
	var err error
	if c.requests, err = meter.Int64Counter("servicenow.requests",
		metric.WithDescription("Table API requests by method and outcome")); err != nil {
		c.logger.Warn("servicenow: request counter unavailable", "error", err)
	}
	if c.duration, err = meter.Float64Histogram("servicenow.request.duration",
		metric.WithDescription("Table API request duration"),
		metric.WithUnit("s")); err != nil {
		c.logger.Warn("servicenow: duration histogram unavailable", "error", err)
	}
}

// Instance returns the configured instance.
func (c *Client) Instance() Instance { return c.instance }

// FetchRecords queries a table. limit may be empty, in which case the server
// default applies.
func (c *Client) FetchRecords(ctx context.Context, table string, query Query, limit string) *Result {
	resource := Resource{Table: table}
	target := c.instance.URL() + resource.Path() +
		"?sysparm_query=" + url.QueryEscape(query.String()) +
		"&sysparm_limit=" + url.QueryEscape(limit)
	return c.do(ctx, http.MethodGet, target, resource, nil)
}

// UpdateRecord patches the record identified by recordID with fields.
func (c *Client) UpdateRecord(ctx context.Context, table, recordID string, fields Fields) *Result {
	resource := Resource{Table: table, RecordID: recordID}
	return c.send(ctx, http.MethodPatch, resource, fields)
}

// CreateRecord inserts a new record into table.
func (c *Client) CreateRecord(ctx context.Context, table string, fields Fields) *Result {
	resource := Resource{Table: table}
	return c.send(ctx, http.MethodPost, resource, fields)
}

func (c *Client) send(ctx context.Context, method string, resource Resource, fields Fields) *Result {
	if fields == nil {
		fields = Fields{}
	}
	body, err := json.Marshal(fields)
	if err != nil {
		return errorResult(fmt.Sprintf("encode fields: %v", err))
	}
	return c.do(ctx, method, c.instance.URL()+resource.Path(), resource, body)
}

// do performs the request and normalises every failure into the Result.
func (c *Client) do(ctx context.Context, method, target string, resource Resource, body []byte) (result *Result) {
	started := time.Now()
	ctx, span := c.tracer.Start(ctx, "servicenow."+method, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("servicenow.table", resource.Table),
			attribute.String("http.request.method", method),
		))
	status := 0
	defer func() {
		c.observe(ctx, span, method, resource, status, started, result)
	}()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	request, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return errorResult(err.Error())
	}
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("Authorization", c.credentials.basicAuth())

	response, err := c.httpClient.Do(request)
	if err != nil {
		return errorResult(err.Error())
	}
	defer response.Body.Close()
	status = response.StatusCode

	if status < 200 || status >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(response.Body, c.maxResponseBytes))
		return statusError(status)
	}

	data, err := io.ReadAll(io.LimitReader(response.Body, c.maxResponseBytes))
	if err != nil {
		return errorResult(fmt.Sprintf("read response: %v", err))
	}
	envelope := &tableResponse{}
	if err := json.Unmarshal(data, envelope); err != nil {
		return errorResult(fmt.Sprintf("decode response: %v", err))
	}
	records, err := envelope.records()
	if err != nil {
		return errorResult(fmt.Sprintf("decode response: %v", err))
	}
	return &Result{Records: records, Collection: envelope.collection()}
}

func (c *Client) observe(ctx context.Context, span trace.Span, method string, resource Resource, status int, started time.Time, result *Result) {
	elapsed := time.Since(started)
	outcome := "ok"
	if result.Failed() {
		outcome = "error"
		span.SetStatus(codes.Error, result.Error)
	}
	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	span.End()

	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("outcome", outcome),
	)
	if c.requests != nil {
		c.requests.Add(ctx, 1, attrs)
	}
	if c.duration != nil {
		c.duration.Record(ctx, elapsed.Seconds(), attrs)
	}
	c.logger.Debug("servicenow request",
		"method", method,
		"table", resource.Table,
		"record", resource.RecordID,
		"status", status,
		"records", len(result.Records),
		"error", result.Error,
		"elapsed", elapsed)
}
