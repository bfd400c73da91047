package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
)

func TestAPIKeyProvider(t *testing.T) {
	provider := NewAPIKeyProvider("sk-test", "org-123")

	gotToken, err := provider.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if gotToken != "sk-test" {
		t.Errorf("Token() = %q, want %q", gotToken, "sk-test")
	}

	req := httptest.NewRequest("POST", "http://example.com/v1/images/edits", nil)
	if err := provider.InjectHeader(context.Background(), req); err != nil {
		t.Fatalf("InjectHeader() error = %v", err)
	}

	if got := req.Header.Get("Authorization"); got != "Bearer sk-test" {
		t.Errorf("Authorization header = %q, want %q", got, "Bearer sk-test")
	}
	if got := req.Header.Get(OrganizationHeader); got != "org-123" {
		t.Errorf("%s header = %q, want %q", OrganizationHeader, got, "org-123")
	}

	if err := provider.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestAPIKeyProviderWithoutOrganization(t *testing.T) {
	provider := NewAPIKeyProvider("sk-test", "")
	req := httptest.NewRequest("GET", "http://example.com/v1/models", nil)
	if err := provider.InjectHeader(context.Background(), req); err != nil {
		t.Fatalf("InjectHeader() error = %v", err)
	}
	if _, ok := req.Header[OrganizationHeader]; ok {
		t.Errorf("%s header set to %q, want absent", OrganizationHeader, req.Header.Get(OrganizationHeader))
	}
}

func TestAPIKeyProviderEmptyKey(t *testing.T) {
	provider := NewAPIKeyProvider("", "")
	req := httptest.NewRequest("GET", "http://example.com/v1/models", nil)
	if err := provider.InjectHeader(context.Background(), req); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("InjectHeader() error = %v, want ErrMissingAPIKey", err)
	}
}
