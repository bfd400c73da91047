package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// OrganizationHeader carries the optional organization ID.
const OrganizationHeader = "OpenAI-Organization"

// ErrMissingAPIKey is returned when a request is authenticated without a key.
var ErrMissingAPIKey = errors.New("api key is empty")

// APIKeyProvider sends a static API key as a bearer token, plus the
// organization header when one is configured.
type APIKeyProvider struct {
	apiKey       string
	organization string
}

// NewAPIKeyProvider creates a provider for apiKey. organization may be empty.
func NewAPIKeyProvider(apiKey, organization string) *APIKeyProvider {
	return &APIKeyProvider{
		apiKey:       apiKey,
		organization: organization,
	}
}

// Token returns the API key.
func (p *APIKeyProvider) Token(ctx context.Context) (string, error) {
	if p.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	return p.apiKey, nil
}

// InjectHeader sets the Authorization and organization headers.
func (p *APIKeyProvider) InjectHeader(ctx context.Context, req *http.Request) error {
	token, err := p.Token(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	if p.organization != "" {
		req.Header.Set(OrganizationHeader, p.organization)
	}
	return nil
}

// Close is a no-op for API key providers.
func (p *APIKeyProvider) Close() error {
	return nil
}
