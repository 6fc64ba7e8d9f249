// Package upstream talks to the per-tenant conversion services.
package upstream

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"automatik/internal/conversion/metrics"
	dErrors "automatik/pkg/domain-errors"
	"automatik/pkg/platform/circuit"
)

const defaultContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Upload is a single file forwarded to a conversion service.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Body        io.Reader
}

// Response is an upstream reply relayed to the caller. The caller closes Body.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// Client calls one tenant's conversion service. Upstream replies of any
// status are returned as they are; only transport failures are errors.
type Client struct {
	tenant        string
	baseURL       string
	http          *http.Client
	timeout       time.Duration
	healthTimeout time.Duration
	breaker       *circuit.Breaker
	metrics       *metrics.Metrics
	logger        *slog.Logger
	tracer        trace.Tracer
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithHealthTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.healthTimeout = d
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) { c.breaker = b }
}

// WithTracer replaces the global tracer, e.g. with an in-memory recorder.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// WithTransport replaces the base transport. Calls are traced either way.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http.Transport = otelhttp.NewTransport(rt)
	}
}

// NewClient builds a client for the service at baseURL.
func NewClient(tenant, baseURL string, opts ...Option) *Client {
	c := &Client{
		tenant:        tenant,
		baseURL:       strings.TrimRight(baseURL, "/"),
		http:          &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		timeout:       60 * time.Second,
		healthTimeout: 10 * time.Second,
		breaker:       circuit.New("upstream-" + tenant),
		logger:        slog.Default(),
		tracer:        otel.Tracer("automatik/conversion"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Tenant() string  { return c.tenant }
func (c *Client) BaseURL() string { return c.baseURL }

// Process posts the upload as multipart form data to <base>/<operation>.
func (c *Client) Process(ctx context.Context, operation string, upload Upload) (*Response, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	field := cmp.Or(upload.Field, "excel")
	filename := cmp.Or(upload.Filename, "upload.xlsx")
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(field), quoteEscaper.Replace(filename)))
	header.Set("Content-Type", cmp.Or(upload.ContentType, defaultContentType))
	part, err := form.CreatePart(header)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build upload")
	}
	if _, err := io.Copy(part, upload.Body); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read upload")
	}
	if err := form.Close(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build upload")
	}

	endpoint := c.baseURL + "/" + strings.TrimLeft(operation, "/")
	return c.do(ctx, "process", c.timeout, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", form.FormDataContentType())
		req.ContentLength = int64(buf.Len())
		return req, nil
	})
}

// Result fetches a generated file. The body streams from the upstream.
func (c *Client) Result(ctx context.Context, filename string) (*Response, error) {
	endpoint := c.baseURL + "/results/" + url.PathEscape(filename)
	return c.do(ctx, "result", c.timeout, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
}

// Health queries the service's own health endpoint.
func (c *Client) Health(ctx context.Context) (*Response, error) {
	return c.do(ctx, "health", c.healthTimeout, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	})
}

// Ping reports whether the service answers its health endpoint with a 2xx.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.Health(ctx)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("upstream %s health returned %d", c.tenant, resp.StatusCode)
	}
	return nil
}

func (c *Client) do(ctx context.Context, operation string, timeout time.Duration, build func(context.Context) (*http.Request, error)) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "conversion."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("automatik.tenant", c.tenant),
			attribute.String("automatik.operation", operation),
		),
	)
	defer span.End()

	if !c.breaker.Allow() {
		c.observe(operation, "breaker_open", 0)
		err := dErrors.Upstream(http.StatusServiceUnavailable, "Upstream nicht erreichbar", nil)
		recordSpanError(span, err)
		return nil, err
	}

	// The deadline must outlive this call for streamed bodies, so it is
	// released when the body is closed.
	ctx, cancel := context.WithTimeout(ctx, timeout)
	req, err := build(ctx)
	if err != nil {
		cancel()
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build upstream request")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		cancel()
		c.recordFailure()
		c.observe(operation, "error", elapsed)
		c.logger.WarnContext(ctx, "upstream call failed",
			"tenant", c.tenant,
			"operation", operation,
			"error", err,
		)
		recordSpanError(span, err)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &dErrors.Error{Code: dErrors.CodeTimeout, Message: "Upstream timeout", Err: err}
		}
		return nil, dErrors.Upstream(0, upstreamMessage(transportDetail(err)), err)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, resp.Status)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		c.recordFailure()
	} else {
		c.recordSuccess()
	}
	c.observe(operation, statusClass(resp.StatusCode), elapsed)

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       &cancelOnClose{ReadCloser: resp.Body, cancel: cancel},
	}, nil
}

func (c *Client) recordFailure() {
	if change := c.breaker.RecordFailure(); change.Opened {
		c.logger.Warn("upstream circuit opened", "tenant", c.tenant)
		c.setBreakerOpen(true)
	}
}

func (c *Client) recordSuccess() {
	if change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.Info("upstream circuit closed", "tenant", c.tenant)
		c.setBreakerOpen(false)
	}
}

func (c *Client) setBreakerOpen(open bool) {
	if c.metrics != nil {
		c.metrics.SetBreakerOpen(c.tenant, open)
	}
}

func (c *Client) observe(operation, status string, seconds float64) {
	if c.metrics != nil {
		c.metrics.ObserveCall(c.tenant, operation, status, seconds)
	}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

func upstreamMessage(detail string) string {
	return "Upstream " + cmp.Or(detail, "Upstream-Fehler")
}

func transportDetail(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err.Error()
	}
	return err.Error()
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
