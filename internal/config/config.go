package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DefaultAPIURL is used when neither the config file, the environment nor a
// flag sets the API base URL.
const DefaultAPIURL = "https://api.openai.com/v1/"

type Config struct {
	APIKey       string            `mapstructure:"api_key"`
	APIURL       string            `mapstructure:"api_url"`
	Organization string            `mapstructure:"organization"`
	APIVersion   string            `mapstructure:"api_version"`
	Target       string            `mapstructure:"target"`
	Method       string            `mapstructure:"method"`
	Headers      map[string]string `mapstructure:"headers"`
	Form         []FieldSpec       `mapstructure:"form"`
	FieldsFile   string            `mapstructure:"fields_file"`
	Timeout      time.Duration     `mapstructure:"timeout"`
	Proxy        string            `mapstructure:"proxy"`
	Rate         int               `mapstructure:"rate"`
	Retries      int               `mapstructure:"retries"`
	Dump         bool              `mapstructure:"dump"`
	JSONOutput   bool              `mapstructure:"json_output"`
	Extract      string            `mapstructure:"extract"`
	Stats        bool              `mapstructure:"stats"`
	Progress     bool              `mapstructure:"progress"`
	LogLevel     string            `mapstructure:"log_level"`
	ConfigFile   string            `mapstructure:"-"`
	Tracing      TracingConfig     `mapstructure:"tracing"`
}

type FieldKind string

const (
	FieldKindText  FieldKind = "text"
	FieldKindFile  FieldKind = "file"
	FieldKindStdin FieldKind = "stdin"
)

// FieldSpec describes one form field before it is added to a form.
type FieldSpec struct {
	Name        string `mapstructure:"name" yaml:"name"`
	Value       string `mapstructure:"value" yaml:"value"`
	File        string `mapstructure:"file" yaml:"file"`
	Stdin       bool   `mapstructure:"stdin" yaml:"stdin"`
	Filename    string `mapstructure:"filename" yaml:"filename"`
	ContentType string `mapstructure:"content_type" yaml:"content_type"`
}

// Kind reports which source the field reads from.
func (f FieldSpec) Kind() FieldKind {
	switch {
	case f.Stdin:
		return FieldKindStdin
	case f.File != "":
		return FieldKindFile
	default:
		return FieldKindText
	}
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Insecure    bool    `mapstructure:"insecure"`
	Propagate   *bool   `mapstructure:"propagate"`
}

// Enabled reports whether spans should be exported.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

// ShouldPropagate reports whether trace context headers are sent.
// Defaults to true when tracing is enabled.
func (t TracingConfig) ShouldPropagate() bool {
	if t.Propagate != nil {
		return *t.Propagate
	}
	return t.Enabled()
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	if !c.Dump {
		if strings.TrimSpace(c.Target) == "" {
			issues = append(issues, "target is required unless --dump is set (use --help for usage information)")
		}
		if strings.TrimSpace(c.APIKey) == "" && !isAbsoluteURL(c.Target) {
			issues = append(issues, "api key is required (set OPENAI_API_KEY or --api-key)")
		}
		if _, err := url.Parse(c.APIURL); err != nil || strings.TrimSpace(c.APIURL) == "" {
			issues = append(issues, fmt.Sprintf("api url %q is invalid", c.APIURL))
		}
	}

	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}
	if c.Retries < 0 {
		issues = append(issues, "retries must be >= 0")
	}
	if c.Dump && c.Progress {
		issues = append(issues, "dump and progress are mutually exclusive")
	}

	issues = append(issues, validateFields(c.Form)...)
	issues = append(issues, validateTracing(c.Tracing)...)

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

func validateFields(fields []FieldSpec) []string {
	var issues []string
	stdin := 0
	for idx, f := range fields {
		if strings.TrimSpace(f.Name) == "" {
			issues = append(issues, fmt.Sprintf("form[%d]: name is required", idx))
		}
		if f.Stdin && f.File != "" {
			issues = append(issues, fmt.Sprintf("form[%d]: file and stdin are mutually exclusive", idx))
		}
		if f.Value != "" && f.Kind() != FieldKindText {
			issues = append(issues, fmt.Sprintf("form[%d]: value is only valid for text fields", idx))
		}
		if (f.Filename != "" || f.ContentType != "") && f.Kind() != FieldKindStdin {
			issues = append(issues, fmt.Sprintf("form[%d]: filename and content_type only apply to stdin fields", idx))
		}
		if f.Kind() == FieldKindStdin {
			stdin++
		}
	}
	if stdin > 1 {
		issues = append(issues, "only one field can read from stdin")
	}
	return issues
}

func validateTracing(t TracingConfig) []string {
	var issues []string
	switch strings.ToLower(t.Protocol) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing protocol %q is not supported", t.Protocol))
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		issues = append(issues, "tracing sample_rate must be between 0.0 and 1.0")
	}
	return issues
}

func isAbsoluteURL(target string) bool {
	u, err := url.Parse(strings.TrimSpace(target))
	return err == nil && u.Scheme != "" && u.Host != ""
}
