package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/time/rate"

	"github.com/torosent/formwire/internal/auth"
	"github.com/torosent/formwire/internal/config"
	"github.com/torosent/formwire/internal/formdata"
	"github.com/torosent/formwire/internal/httpclient"
	"github.com/torosent/formwire/internal/metrics"
	"github.com/torosent/formwire/internal/tracing"
)

const defaultRetryDelay = 500 * time.Millisecond

// Logger is the subset of the application logger the client uses.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Error(msg interface{}, keyvals ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(interface{}, ...interface{}) {}
func (nopLogger) Error(interface{}, ...interface{}) {}

type Client struct {
	baseURL    string
	apiVersion string
	http       *http.Client
	builder    *httpclient.RequestBuilder
	limiter    *rate.Limiter
	retry      RetryPolicy
	collector  *metrics.Collector
	tracer     trace.Tracer
	logger     Logger
}

type Option func(*Client)

// WithAPIVersion appends ?api-version=v to every request.
func WithAPIVersion(v string) Option {
	return func(c *Client) { c.apiVersion = strings.TrimSpace(v) }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithRequestBuilder(b *httpclient.RequestBuilder) Option {
	return func(c *Client) {
		if b != nil {
			c.builder = b
		}
	}
}

// WithRateLimit caps requests per second. Zero or less disables limiting.
func WithRateLimit(perSecond int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
	}
}

func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.retry = p }
}

func WithCollector(m *metrics.Collector) Option {
	return func(c *Client) { c.collector = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

func WithLogger(l Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("openai: base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("openai: base url %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	builder, err := httpclient.NewRequestBuilder(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: u.String(),
		http:    &http.Client{Timeout: 30 * time.Second},
		builder: builder,
		retry:   RetryPolicy{MaxAttempts: 1},
		tracer:  noop.NewTracerProvider().Tracer("openai"),
		logger:  nopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewFromConfig wires transport, auth, rate limiting and retries from cfg.
// opts are applied last.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	httpClient, err := httpclient.NewClient(cfg.Timeout, cfg.Proxy)
	if err != nil {
		return nil, err
	}
	builder, err := httpclient.NewRequestBuilder(cfg.Headers)
	if err != nil {
		return nil, err
	}
	if cfg.APIKey != "" {
		builder.WithAuth(auth.NewAPIKeyProvider(cfg.APIKey, cfg.Organization))
	}
	builder.WithTracePropagation(cfg.Tracing.ShouldPropagate())

	base := []Option{
		WithAPIVersion(cfg.APIVersion),
		WithHTTPClient(httpClient),
		WithRequestBuilder(builder),
		WithRateLimit(cfg.Rate),
		WithRetryPolicy(RetryPolicy{MaxAttempts: cfg.Retries + 1, Delay: defaultRetryDelay}),
	}
	return New(cfg.APIURL, append(base, opts...)...)
}

// URL resolves path against the base URL. Absolute URLs are used as given.
func (c *Client) URL(path string) (string, error) {
	raw := c.baseURL + strings.TrimPrefix(path, "/")
	if u, err := url.Parse(path); err == nil && u.Scheme != "" && u.Host != "" {
		raw = path
	}
	if c.apiVersion == "" {
		return raw, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("api-version", c.apiVersion)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Get sends a GET request, retrying per the client's policy.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	var out []byte
	err := c.retry.do(ctx, func(ctx context.Context) error {
		var err error
		out, err = c.Send(ctx, http.MethodGet, path, nil)
		return err
	})
	return out, err
}

// PostJSON encodes v and posts it, retrying per the client's policy.
func (c *Client) PostJSON(ctx context.Context, path string, v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &RequestError{Err: fmt.Errorf("encode json body: %w", err)}
	}
	var out []byte
	err = c.retry.do(ctx, func(ctx context.Context) error {
		var err error
		out, err = c.Send(ctx, http.MethodPost, path, httpclient.NewRawJSONBody(data))
		return err
	})
	return out, err
}

// PostForm drains form and uploads it once.
func (c *Client) PostForm(ctx context.Context, path string, form *formdata.Form) ([]byte, error) {
	body, err := form.Prepare()
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	return c.Send(ctx, http.MethodPost, path, body)
}

// Send performs a single request. body may be nil. If body is an io.Closer
// it is closed whether or not the request succeeds.
func (c *Client) Send(ctx context.Context, method, path string, body httpclient.Body) (resp []byte, err error) {
	if body == nil {
		body = httpclient.EmptyBody{}
	}
	counted := httpclient.NewCountingBody(body)

	target, err := c.URL(path)
	if err != nil {
		_ = counted.Close()
		return nil, &RequestError{Err: err}
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			_ = counted.Close()
			return nil, err
		}
	}

	ctx, span := tracing.StartRequestSpan(ctx, c.tracer, method, path)
	start := time.Now()
	status := 0
	defer func() {
		if c.collector != nil {
			c.collector.RecordRequest(time.Since(start), err, &metrics.RequestMetadata{
				Endpoint:   path,
				StatusCode: status,
				BytesSent:  counted.BytesRead(),
			})
		}
		length, known := counted.ContentLength()
		attrs := tracing.BodyAttributes(counted.ContentType(), length, known)
		if status > 0 {
			attrs = append(attrs, attribute.Int("http.response.status_code", status))
		}
		tracing.EndSpan(span, err, attrs...)
	}()

	req, err := c.builder.Build(ctx, method, target, counted)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	c.logger.Debug("sending request", "method", method, "url", target, "request_id", req.Header.Get(httpclient.RequestIDHeader))

	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("request failed", "path", path, "err", err)
		return nil, &RequestError{Err: err}
	}
	defer res.Body.Close()
	status = res.StatusCode

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &RequestError{Err: fmt.Errorf("read response: %w", err)}
	}
	if status < 200 || status > 299 {
		apiErr := newAPIError(status, data)
		c.logger.Error("api error", "path", path, "status", status, "message", apiErr.Message)
		return nil, apiErr
	}

	c.logger.Debug("request done", "path", path, "status", status, "bytes_sent", counted.BytesRead())
	return data, nil
}

func (c *Client) newForm() *formdata.Form {
	return formdata.NewForm(formdata.WithLogger(c.logger))
}

func decode(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("openai: decode response: %w", err)
	}
	return nil
}
