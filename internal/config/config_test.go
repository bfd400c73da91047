package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		APIKey:  "sk-test",
		APIURL:  DefaultAPIURL,
		Target:  "images/edits",
		Method:  "POST",
		Timeout: 30 * time.Second,
		Form: []FieldSpec{
			{Name: "prompt", Value: "otter"},
			{Name: "image", File: "otter.png"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantIssue string
	}{
		{"valid", func(*Config) {}, ""},
		{"dump needs no target or key", func(c *Config) { c.Dump = true; c.Target = ""; c.APIKey = "" }, ""},
		{"absolute target needs no key", func(c *Config) { c.Target = "http://localhost:8080/upload"; c.APIKey = "" }, ""},
		{"missing target", func(c *Config) { c.Target = "" }, "target is required"},
		{"missing key", func(c *Config) { c.APIKey = "" }, "api key is required"},
		{"negative rate", func(c *Config) { c.Rate = -1 }, "rate must be >= 0"},
		{"negative retries", func(c *Config) { c.Retries = -1 }, "retries must be >= 0"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout must be >= 0"},
		{"dump and progress", func(c *Config) { c.Dump = true; c.Progress = true }, "mutually exclusive"},
		{"unnamed field", func(c *Config) { c.Form = append(c.Form, FieldSpec{Value: "x"}) }, "name is required"},
		{"two stdin fields", func(c *Config) {
			c.Form = append(c.Form, FieldSpec{Name: "a", Stdin: true}, FieldSpec{Name: "b", Stdin: true})
		}, "only one field can read from stdin"},
		{"file with type override", func(c *Config) {
			c.Form = append(c.Form, FieldSpec{Name: "a", File: "x.png", ContentType: "image/png"})
		}, "only apply to stdin fields"},
		{"file and stdin", func(c *Config) {
			c.Form = append(c.Form, FieldSpec{Name: "a", File: "x.png", Stdin: true})
		}, "mutually exclusive"},
		{"bad tracing protocol", func(c *Config) { c.Tracing.Protocol = "udp" }, "tracing protocol"},
		{"bad sample rate", func(c *Config) { c.Tracing.SampleRate = 2 }, "sample_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()

			if tt.wantIssue == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			found := false
			for _, issue := range verr.Issues() {
				if strings.Contains(issue, tt.wantIssue) {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() issues = %v, want one containing %q", verr.Issues(), tt.wantIssue)
			}
		})
	}
}

func TestTracingConfig(t *testing.T) {
	off := false
	tests := []struct {
		name          string
		cfg           TracingConfig
		wantEnabled   bool
		wantPropagate bool
	}{
		{"disabled", TracingConfig{}, false, false},
		{"enabled", TracingConfig{Endpoint: "localhost:4317"}, true, true},
		{"propagation off", TracingConfig{Endpoint: "localhost:4317", Propagate: &off}, true, false},
	}
	for _, tt := range tests {
		if got := tt.cfg.Enabled(); got != tt.wantEnabled {
			t.Errorf("%s: Enabled() = %v, want %v", tt.name, got, tt.wantEnabled)
		}
		if got := tt.cfg.ShouldPropagate(); got != tt.wantPropagate {
			t.Errorf("%s: ShouldPropagate() = %v, want %v", tt.name, got, tt.wantPropagate)
		}
	}
}
