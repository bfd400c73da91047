package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync/atomic"
)

// Body is a request body that knows its Content-Type and, when possible,
// its length. *formdata.Body satisfies it.
type Body interface {
	io.Reader
	ContentLength() (int64, bool)
	ContentType() string
}

// JSONBody is an encoded JSON request body.
type JSONBody struct {
	r *bytes.Reader
}

// NewJSONBody encodes v.
func NewJSONBody(v interface{}) (*JSONBody, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode json body: %w", err)
	}
	return NewRawJSONBody(data), nil
}

// NewRawJSONBody wraps already encoded JSON.
func NewRawJSONBody(data []byte) *JSONBody {
	return &JSONBody{r: bytes.NewReader(data)}
}

func (b *JSONBody) Read(p []byte) (int, error) {
	return b.r.Read(p)
}

func (b *JSONBody) ContentLength() (int64, bool) {
	return b.r.Size(), true
}

func (b *JSONBody) ContentType() string {
	return "application/json"
}

// EmptyBody is used for requests without a payload.
type EmptyBody struct{}

func (EmptyBody) Read([]byte) (int, error) {
	return 0, io.EOF
}

func (EmptyBody) ContentLength() (int64, bool) {
	return 0, true
}

func (EmptyBody) ContentType() string {
	return ""
}

// CountingBody counts the bytes read through it. It is safe to call
// BytesRead from another goroutine while the transport reads the body.
type CountingBody struct {
	Body
	n atomic.Int64
}

// NewCountingBody wraps body. A body that is already counting is returned
// unchanged.
func NewCountingBody(body Body) *CountingBody {
	if cb, ok := body.(*CountingBody); ok {
		return cb
	}
	return &CountingBody{Body: body}
}

func (c *CountingBody) Read(p []byte) (int, error) {
	n, err := c.Body.Read(p)
	c.n.Add(int64(n))
	return n, err
}

// Close closes the wrapped body if it is an io.Closer.
func (c *CountingBody) Close() error {
	if closer, ok := c.Body.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// BytesRead reports the number of bytes read so far.
func (c *CountingBody) BytesRead() int64 {
	return c.n.Load()
}
