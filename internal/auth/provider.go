// Package auth injects API credentials into outgoing requests.
package auth

import (
	"context"
	"net/http"
)

// Provider defines the interface for authentication providers that can
// obtain tokens and inject them into HTTP requests.
type Provider interface {
	// Token returns the credential sent with each request.
	Token(ctx context.Context) (string, error)

	// InjectHeader sets the authentication headers on req.
	InjectHeader(ctx context.Context, req *http.Request) error

	// Close releases any resources held by the provider.
	Close() error
}
