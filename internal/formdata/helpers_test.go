package formdata

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

type fixedBoundary string

func (b fixedBoundary) Boundary() string { return string(b) }

const testBoundary = "B0undaryT0ken123"

func newTestForm() *Form {
	return NewForm(WithBoundarySource(fixedBoundary(testBoundary)))
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func readAll(t *testing.T, body *Body) []byte {
	t.Helper()
	got, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	return got
}

// eventLog records reads and closes across several sources in order.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(ev string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// recordingSource serves data and logs the first read and the close.
type recordingSource struct {
	id       string
	data     []byte
	log      *eventLog
	started  bool
	closed   bool
	closeErr error
}

func (s *recordingSource) Read(p []byte) (int, error) {
	if s.closed {
		return 0, errors.New("read after close")
	}
	if !s.started {
		s.started = true
		s.log.add("read:" + s.id)
	}
	if len(s.data) == 0 {
		return 0, io.EOF
	}
	n := copy(p, s.data)
	s.data = s.data[n:]
	return n, nil
}

func (s *recordingSource) Close() error {
	s.closed = true
	s.log.add("close:" + s.id)
	return s.closeErr
}

// stutterSource returns (0, nil) before every chunk.
type stutterSource struct {
	data   []byte
	paused bool
}

func (s *stutterSource) Read(p []byte) (int, error) {
	if len(s.data) == 0 {
		return 0, io.EOF
	}
	if !s.paused {
		s.paused = true
		return 0, nil
	}
	s.paused = false
	n := copy(p, s.data[:min(len(s.data), 3)])
	s.data = s.data[n:]
	return n, nil
}
