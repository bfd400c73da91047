package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/torosent/formwire/internal/tracing"
)

// RequestIDHeader carries a unique ID for every request the builder creates.
const RequestIDHeader = "X-Request-ID"

// AuthProvider injects credentials into HTTP requests.
type AuthProvider interface {
	InjectHeader(ctx context.Context, req *http.Request) error
}

type RequestBuilder struct {
	headers      http.Header
	authProvider AuthProvider
	propagate    bool
}

// NewRequestBuilder validates headers and returns a builder that applies them
// to every request.
func NewRequestBuilder(headers map[string]string) (*RequestBuilder, error) {
	canonical := http.Header{}
	for key, value := range headers {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" || strings.ContainsAny(trimmedKey, "\r\n") {
			return nil, fmt.Errorf("invalid header key %q", key)
		}
		canonicalKey := http.CanonicalHeaderKey(trimmedKey)

		if strings.ContainsAny(value, "\r\n") {
			return nil, fmt.Errorf("invalid header value for %s", canonicalKey)
		}

		canonical.Set(canonicalKey, value)
	}

	return &RequestBuilder{headers: canonical}, nil
}

// WithAuth sets the provider used to authenticate requests.
func (b *RequestBuilder) WithAuth(provider AuthProvider) *RequestBuilder {
	b.authProvider = provider
	return b
}

// WithTracePropagation enables W3C trace context headers.
func (b *RequestBuilder) WithTracePropagation(enabled bool) *RequestBuilder {
	b.propagate = enabled
	return b
}

// Build creates a request streaming body. An unknown body length leaves
// ContentLength at -1 so the transport uses chunked encoding. If body is an
// io.Closer the transport closes it once the request is written or fails.
func (b *RequestBuilder) Build(ctx context.Context, method, target string, body Body) (*http.Request, error) {
	if b == nil {
		return nil, errors.New("builder cannot be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if body == nil {
		body = EmptyBody{}
	}

	length, known := body.ContentLength()

	var reader io.Reader = body
	if known && length == 0 {
		reader = http.NoBody
		if c, ok := body.(io.Closer); ok {
			_ = c.Close()
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		if c, ok := body.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, err
	}

	req.Header = make(http.Header, len(b.headers)+3)
	for key, values := range b.headers {
		for _, val := range values {
			req.Header.Add(key, val)
		}
	}

	if ct := body.ContentType(); ct != "" && reader != http.NoBody {
		req.Header.Set("Content-Type", ct)
	}
	if known {
		req.ContentLength = length
	} else {
		req.ContentLength = -1
	}
	req.Header.Set(RequestIDHeader, ulid.Make().String())

	if b.propagate {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	if b.authProvider != nil {
		if err := b.authProvider.InjectHeader(ctx, req); err != nil {
			if req.Body != nil {
				_ = req.Body.Close()
			}
			return nil, fmt.Errorf("auth provider inject header: %w", err)
		}
	}

	return req, nil
}

// NewClient returns an HTTP client. An empty proxyURL uses the proxy from
// the environment.
func NewClient(timeout time.Duration, proxyURL string) (*http.Client, error) {
	if timeout < 0 {
		timeout = 0
	}

	proxy := http.ProxyFromEnvironment
	if proxyURL = strings.TrimSpace(proxyURL); proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("proxy url: %w", err)
		}
		proxy = http.ProxyURL(u)
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 proxy,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}
