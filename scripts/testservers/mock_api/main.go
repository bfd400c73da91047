// Command mock_api serves a minimal OpenAI-compatible API for trying the CLI
// without credentials. Upload endpoints reply with a summary of every part
// they received.
package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/torosent/formwire/internal/logging"
)

type partSummary struct {
	Name        string `json:"name"`
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size"`
	SHA256      string `json:"sha256"`
	Value       string `json:"value,omitempty"`
}

const maxEchoedValue = 256

func main() {
	port := pflag.Int("port", 8080, "Listening port")
	level := pflag.String("log-level", "info", "Log level")
	pflag.Parse()

	logger, err := logging.New(os.Stderr, *level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("mock API listening", "addr", addr)
	if err := http.ListenAndServe(addr, newMux(logger)); err != nil {
		logger.Fatal("server stopped", "err", err)
	}
}

func newMux(logger *logging.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", handleModels)
	mux.HandleFunc("/v1/images/edits", handleUpload(logger))
	mux.HandleFunc("/v1/images/variations", handleUpload(logger))
	mux.HandleFunc("/v1/files", handleUpload(logger))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusNotFound, map[string]any{
			"error": map[string]any{"message": "unknown path " + r.URL.Path, "type": "invalid_request_error"},
		})
	})
	return mux
}

func handleModels(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"object": "list",
		"data": []map[string]any{
			{"id": "mock-image", "object": "model", "owned_by": "formwire", "permission": []any{}},
		},
	})
}

func handleUpload(logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondJSON(w, http.StatusMethodNotAllowed, map[string]any{
				"error": map[string]any{"message": "use POST", "type": "invalid_request_error"},
			})
			return
		}

		parts, err := summarize(r)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]any{
				"error": map[string]any{"message": err.Error(), "type": "invalid_request_error"},
			})
			return
		}
		logger.Info("upload received",
			"path", r.URL.Path,
			"parts", len(parts),
			"content_length", r.ContentLength,
			"chunked", len(r.TransferEncoding) > 0,
			"request_id", r.Header.Get("X-Request-ID"),
		)

		respondJSON(w, http.StatusOK, map[string]any{
			"created": time.Now().Unix(),
			"parts":   parts,
			"data":    []map[string]any{{"url": "https://example.invalid" + r.URL.Path}},
		})
	}
}

// summarize streams the body part by part without buffering file contents.
func summarize(r *http.Request) ([]partSummary, error) {
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		return nil, fmt.Errorf("expected multipart/form-data, got %q", r.Header.Get("Content-Type"))
	}

	reader := multipart.NewReader(r.Body, params["boundary"])
	var parts []partSummary
	for {
		p, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return parts, nil
		}
		if err != nil {
			return nil, err
		}

		hash := sha256.New()
		var head strings.Builder
		n, err := io.Copy(io.MultiWriter(hash, &limitedWriter{w: &head, n: maxEchoedValue}), p)
		if err != nil {
			return nil, err
		}

		summary := partSummary{
			Name:        p.FormName(),
			Filename:    p.FileName(),
			ContentType: p.Header.Get("Content-Type"),
			Size:        n,
			SHA256:      hex.EncodeToString(hash.Sum(nil)),
		}
		if summary.Filename == "" {
			summary.Value = head.String()
		}
		parts = append(parts, summary)
	}
}

type limitedWriter struct {
	w io.Writer
	n int
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	if l.n > 0 {
		keep := p
		if len(keep) > l.n {
			keep = keep[:l.n]
		}
		written, err := l.w.Write(keep)
		l.n -= written
		if err != nil {
			return written, err
		}
	}
	return len(p), nil
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
