package httpclient

import (
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestJSONBody(t *testing.T) {
	body, err := NewJSONBody(struct {
		Model string `json:"model"`
		N     int    `json:"n,omitempty"`
	}{Model: "text-embedding-ada-002"})
	if err != nil {
		t.Fatalf("NewJSONBody() error = %v", err)
	}

	const want = `{"model":"text-embedding-ada-002"}`
	if n, ok := body.ContentLength(); !ok || n != int64(len(want)) {
		t.Errorf("ContentLength() = %d, %v, want %d, true", n, ok, len(want))
	}
	if err := iotest.TestReader(body, []byte(want)); err != nil {
		t.Error(err)
	}
}

func TestJSONBodyEncodeError(t *testing.T) {
	if _, err := NewJSONBody(make(chan int)); err == nil {
		t.Fatal("NewJSONBody(chan) error = nil, want error")
	}
}

func TestEmptyBody(t *testing.T) {
	var body EmptyBody
	if n, ok := body.ContentLength(); n != 0 || !ok {
		t.Errorf("ContentLength() = %d, %v, want 0, true", n, ok)
	}
	if n, err := body.Read(make([]byte, 4)); n != 0 || err != io.EOF {
		t.Errorf("Read() = %d, %v, want 0, EOF", n, err)
	}
}

func TestCountingBody(t *testing.T) {
	inner := &sizedBody{Reader: strings.NewReader("hello world"), length: 11, known: true}
	counted := NewCountingBody(inner)

	if NewCountingBody(counted) != counted {
		t.Error("NewCountingBody() rewrapped a counting body")
	}

	buf := make([]byte, 4)
	if _, err := counted.Read(buf); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got := counted.BytesRead(); got != 4 {
		t.Errorf("BytesRead() = %d, want 4", got)
	}
	if _, err := io.Copy(io.Discard, counted); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if got := counted.BytesRead(); got != 11 {
		t.Errorf("BytesRead() = %d, want 11", got)
	}
	if n, ok := counted.ContentLength(); n != 11 || !ok {
		t.Errorf("ContentLength() = %d, %v, want 11, true", n, ok)
	}
	if err := counted.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !inner.closed {
		t.Error("Close() did not reach the wrapped body")
	}
}
