package main

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/torosent/formwire/internal/config"
	"github.com/torosent/formwire/internal/logging"
)

var pngHeader = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"OPENAI_API_KEY", "OPENAI_API_URL", "OPENAI_ORGANIZATION", "OPENAI_API_VERSION", "OTEL_EXPORTER_OTLP_ENDPOINT"} {
		t.Setenv(key, "")
	}
}

type parsedPart struct {
	Name        string
	Filename    string
	ContentType string
	Data        string
}

func parseMultipart(t *testing.T, contentType string, body io.Reader) []parsedPart {
	t.Helper()
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatalf("ParseMediaType(%q) error = %v", contentType, err)
	}
	reader := multipart.NewReader(body, params["boundary"])
	var parts []parsedPart
	for {
		p, err := reader.NextPart()
		if err == io.EOF {
			return parts
		}
		if err != nil {
			t.Fatalf("NextPart() error = %v", err)
		}
		data, _ := io.ReadAll(p)
		parts = append(parts, parsedPart{
			Name:        p.FormName(),
			Filename:    p.FileName(),
			ContentType: p.Header.Get("Content-Type"),
			Data:        string(data),
		})
	}
}

func TestBuildForm(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("file body"), 0o644); err != nil {
		t.Fatal(err)
	}

	specs := []config.FieldSpec{
		{Name: "prompt", Value: "a cat"},
		{Name: "doc", File: path},
		{Name: "image", Stdin: true},
	}
	form, err := buildForm(specs, strings.NewReader(pngHeader+"rest"), logging.Discard())
	if err != nil {
		t.Fatalf("buildForm() error = %v", err)
	}
	if form.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", form.Len())
	}

	body, err := form.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	defer body.Close()

	got := parseMultipart(t, body.ContentType(), body)
	want := []parsedPart{
		{Name: "prompt", Data: "a cat"},
		{Name: "doc", Filename: "notes.txt", ContentType: "text/plain; charset=utf-8", Data: "file body"},
		{Name: "image", Filename: "stdin.png", ContentType: "image/png", Data: pngHeader + "rest"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parts mismatch (-want +got):\n%s", diff)
	}
}

func TestStdinStreamExplicitType(t *testing.T) {
	src, contentType, filename, err := stdinStream(strings.NewReader("raw"), config.FieldSpec{
		Name: "file", Stdin: true, ContentType: "application/jsonl", Filename: "train.jsonl",
	})
	if err != nil {
		t.Fatalf("stdinStream() error = %v", err)
	}
	if contentType != "application/jsonl" || filename != "train.jsonl" {
		t.Errorf("stdinStream() = %q, %q, want application/jsonl, train.jsonl", contentType, filename)
	}
	data, _ := io.ReadAll(src)
	if string(data) != "raw" {
		t.Errorf("stream data = %q, want raw", data)
	}
}

func TestStdinStreamUnavailable(t *testing.T) {
	if _, _, _, err := stdinStream(nil, config.FieldSpec{Name: "f", Stdin: true}); err == nil {
		t.Fatal("stdinStream(nil) error = nil, want error")
	}
}

func TestRunHelp(t *testing.T) {
	clearEnv(t)
	var stdout, stderr bytes.Buffer
	if err := run([]string{"--help"}, nil, &stdout, &stderr); err != nil {
		t.Fatalf("run(--help) error = %v", err)
	}
}

func TestRunDump(t *testing.T) {
	clearEnv(t)
	var stdout, stderr bytes.Buffer
	args := []string{"--dump", "-F", "prompt=hello", "-F", "image=@-;type=image/png;filename=blob"}
	if err := run(args, strings.NewReader("PNGDATA"), &stdout, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	out := stdout.String()
	if !strings.HasPrefix(out, "\r\n--") {
		t.Fatalf("dump does not start with a delimiter: %q", out)
	}
	boundary := strings.TrimPrefix(strings.SplitN(out, "\r\n", 3)[1], "--")
	got := parseMultipart(t, "multipart/form-data; boundary="+boundary, strings.NewReader(out))
	want := []parsedPart{
		{Name: "prompt", Data: "hello"},
		{Name: "image", Filename: "blob", ContentType: "image/png", Data: "PNGDATA"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("dump mismatch (-want +got):\n%s", diff)
	}
}

func TestRunValidationError(t *testing.T) {
	clearEnv(t)
	var stdout, stderr bytes.Buffer
	if err := run([]string{"-F", "a=b"}, nil, &stdout, &stderr); err == nil {
		t.Fatal("run() without target error = nil, want validation error")
	}
}

func TestRunUploadsForm(t *testing.T) {
	clearEnv(t)

	var gotParts []parsedPart
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotParts = parseMultipart(t, r.Header.Get("Content-Type"), r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"created":1,"data":[{"url":"https://example.com/otter.png"}]}`)
	}))
	defer server.Close()

	var stdout, stderr bytes.Buffer
	args := []string{
		"--api-url", server.URL + "/v1/",
		"--api-key", "sk-test",
		"--target", "images/edits",
		"-F", "prompt=otter",
		"-F", "image=@-;type=image/png;filename=blob",
		"--extract", "data.0.url",
		"--stats",
		"--progress",
	}
	if err := run(args, strings.NewReader(pngHeader), &stdout, &stderr); err != nil {
		t.Fatalf("run() error = %v (stderr: %s)", err, stderr.String())
	}

	if got := strings.TrimSpace(stdout.String()); got != "https://example.com/otter.png" {
		t.Errorf("stdout = %q, want extracted url", got)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q, want Bearer sk-test", gotAuth)
	}
	want := []parsedPart{
		{Name: "prompt", Data: "otter"},
		{Name: "image", Filename: "blob", ContentType: "image/png", Data: pngHeader},
	}
	if diff := cmp.Diff(want, gotParts); diff != "" {
		t.Errorf("uploaded parts mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(stderr.String(), "Total Requests:    1") {
		t.Errorf("stderr missing stats report:\n%s", stderr.String())
	}
	if !strings.Contains(stderr.String(), "Sent: ") {
		t.Errorf("stderr missing progress line:\n%s", stderr.String())
	}
}

func TestRunReportsAPIError(t *testing.T) {
	clearEnv(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"message":"Invalid image","type":"invalid_request_error"}}`)
	}))
	defer server.Close()

	var stdout, stderr bytes.Buffer
	err := run([]string{"--target", server.URL + "/upload", "-F", "a=b"}, nil, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "Invalid image") {
		t.Fatalf("run() error = %v, want api error message", err)
	}
}

func TestWriteResponse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		path    string
		want    string
		wantErr bool
	}{
		{"pretty json", `{"a":1}`, "", "{\n  \"a\": 1\n}\n", false},
		{"plain text", "ok", "", "ok\n", false},
		{"empty", "", "", "", false},
		{"extract", `{"data":[{"url":"u"}]}`, "data.0.url", "u\n", false},
		{"extract missing", `{"data":[]}`, "data.0.url", "", true},
		{"extract non json", "nope", "a", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := writeResponse(&buf, []byte(tt.body), tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("writeResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("writeResponse() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewRetryPolicy(t *testing.T) {
	p := newRetryPolicy(3)
	if p.MaxAttempts != 4 {
		t.Errorf("MaxAttempts = %d, want 4", p.MaxAttempts)
	}
	for attempt := 1; attempt <= 6; attempt++ {
		base := time.Duration(1<<uint(attempt-1)) * baseRetryDelay
		if base > maxRetryDelay {
			base = maxRetryDelay
		}
		got := p.DelayFunc(attempt, nil)
		if got < base || got > base+base/2 {
			t.Errorf("DelayFunc(%d) = %v, want within [%v, %v]", attempt, got, base, base+base/2)
		}
	}
}
