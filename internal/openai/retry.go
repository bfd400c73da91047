package openai

import (
	"context"
	"errors"
	"time"

	"github.com/torosent/formwire/internal/formdata"
)

const maxRetryDelay = 10 * time.Second

// RetryPolicy configures retry behavior for requests whose body can be
// rebuilt. Multipart uploads are never retried.
type RetryPolicy struct {
	MaxAttempts int                                        // total attempts including initial try
	Delay       time.Duration                              // base delay between retries
	ShouldRetry func(error) bool                           // if nil, DefaultShouldRetry
	DelayFunc   func(attempt int, err error) time.Duration // attempt is 1-based; if nil, exponential from Delay
}

// DefaultShouldRetry retries transport failures, rate limiting and server
// errors. Body encoding failures and canceled contexts are final.
func DefaultShouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var fieldErr *formdata.FieldError
	if errors.As(err, &fieldErr) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	var reqErr *RequestError
	return errors.As(err, &reqErr)
}

func (p RetryPolicy) delay(attempt int, err error) time.Duration {
	if p.DelayFunc != nil {
		return p.DelayFunc(attempt, err)
	}
	if p.Delay <= 0 {
		return 0
	}
	d := p.Delay << (attempt - 1)
	if d <= 0 || d > maxRetryDelay {
		d = maxRetryDelay
	}
	return d
}

func (p RetryPolicy) do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	shouldRetry := p.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = DefaultShouldRetry
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		// Don't delay after the last attempt.
		if attempt == attempts || !shouldRetry(lastErr) {
			return lastErr
		}
		if delay := p.delay(attempt, lastErr); delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}
	return lastErr
}
