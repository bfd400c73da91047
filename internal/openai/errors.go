package openai

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrPromptRequired is returned before sending an image request that
	// needs a prompt but has none.
	ErrPromptRequired = errors.New("openai: prompt is required")

	// ErrImageRequired is returned when an image upload has no image.
	ErrImageRequired = errors.New("openai: image is required")

	// ErrNoData is returned when a list response has no data array.
	ErrNoData = errors.New("openai: response has no data")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
	Type       string
	Body       []byte
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status, Body: body}
	if gjson.ValidBytes(body) {
		e.Message = gjson.GetBytes(body, "error.message").String()
		e.Type = gjson.GetBytes(body, "error.type").String()
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(string(body))
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("openai: api error (status %d, %s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("openai: api error (status %d): %s", e.StatusCode, e.Message)
}

// Temporary reports whether the request may succeed if retried.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// RequestError is a failure that happened before a response was received,
// including failures to encode the request body.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("openai: request failed: %v", e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
