package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "formwire [flags]",
		Short:         "Stream multipart/form-data uploads to OpenAI-compatible APIs",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Request flags
	flags.String("target", "", "API path relative to --api-url (e.g. images/edits) or an absolute URL")
	flags.StringP("method", "X", http.MethodPost, "HTTP method to use")
	flags.StringSliceP("header", "H", nil, "Additional request header in key=value form")
	flags.StringArrayP("form", "F", nil, "Form field: name=value, name=@path or name=@- (repeatable)")
	flags.String("fields-file", "", "YAML file listing form fields")

	// API flags
	flags.String("api-key", "", "API key (defaults to $OPENAI_API_KEY)")
	flags.String("api-url", "", "API base URL (defaults to $OPENAI_API_URL or "+DefaultAPIURL+")")
	flags.String("organization", "", "Organization header value (defaults to $OPENAI_ORGANIZATION)")
	flags.String("api-version", "", "Azure OpenAI api-version query parameter")
	flags.Duration("timeout", 30*time.Second, "Request timeout")
	flags.String("proxy", "", "Proxy URL (defaults to the http_proxy/https_proxy environment)")
	flags.IntP("rate", "r", 0, "Requests per second limit (0 means unlimited)")
	flags.Int("retries", 0, "Number of retries for JSON requests")

	// Output flags
	flags.Bool("dump", false, "Write the encoded body to stdout instead of sending it")
	flags.Bool("json-output", false, "Emit the stats report as JSON")
	flags.String("extract", "", "gjson path to extract from the response (e.g. data.0.url)")
	flags.Bool("stats", false, "Print request statistics after the upload")
	flags.Bool("progress", false, "Print upload progress to stderr")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing flags
	flags.String("tracing-endpoint", "", "OTLP endpoint for trace export")
	flags.String("tracing-protocol", "grpc", "OTLP protocol: 'grpc' or 'http'")
	flags.String("tracing-service-name", "", "Service name reported in traces")
	flags.Float64("tracing-sample-rate", 1.0, "Trace sampling ratio between 0.0 and 1.0")
	flags.Bool("tracing-insecure", false, "Disable TLS for the OTLP exporter")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\n%s\n\nFlags:\n", cmd.UseLine(), cmd.Short)
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file and environment.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	stringFlags := []struct {
		name string
		dst  *string
	}{
		{"target", &cfg.Target},
		{"method", &cfg.Method},
		{"fields-file", &cfg.FieldsFile},
		{"api-key", &cfg.APIKey},
		{"api-url", &cfg.APIURL},
		{"organization", &cfg.Organization},
		{"api-version", &cfg.APIVersion},
		{"proxy", &cfg.Proxy},
		{"extract", &cfg.Extract},
		{"log-level", &cfg.LogLevel},
		{"tracing-endpoint", &cfg.Tracing.Endpoint},
		{"tracing-protocol", &cfg.Tracing.Protocol},
		{"tracing-service-name", &cfg.Tracing.ServiceName},
	}
	for _, f := range stringFlags {
		if !fs.Changed(f.name) {
			continue
		}
		val, err := fs.GetString(f.name)
		if err != nil {
			return err
		}
		*f.dst = strings.TrimSpace(val)
	}

	boolFlags := []struct {
		name string
		dst  *bool
	}{
		{"dump", &cfg.Dump},
		{"json-output", &cfg.JSONOutput},
		{"stats", &cfg.Stats},
		{"progress", &cfg.Progress},
		{"tracing-insecure", &cfg.Tracing.Insecure},
	}
	for _, f := range boolFlags {
		if !fs.Changed(f.name) {
			continue
		}
		val, err := fs.GetBool(f.name)
		if err != nil {
			return err
		}
		*f.dst = val
	}

	if fs.Changed("rate") {
		val, err := fs.GetInt("rate")
		if err != nil {
			return err
		}
		cfg.Rate = val
	}
	if fs.Changed("retries") {
		val, err := fs.GetInt("retries")
		if err != nil {
			return err
		}
		cfg.Retries = val
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("tracing-sample-rate") {
		val, err := fs.GetFloat64("tracing-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}

	vals, err := fs.GetStringSlice("header")
	if err != nil {
		return err
	}
	for _, entry := range vals {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("header must be in key=value format: %s", entry)
		}
		key := http.CanonicalHeaderKey(strings.TrimSpace(parts[0]))
		if key == "" {
			return fmt.Errorf("header key cannot be empty")
		}
		cfg.Headers[key] = strings.TrimSpace(parts[1])
	}

	if fs.Changed("form") {
		entries, err := fs.GetStringArray("form")
		if err != nil {
			return err
		}
		fields := make([]FieldSpec, 0, len(entries))
		for _, entry := range entries {
			spec, err := ParseFieldSpec(entry)
			if err != nil {
				return err
			}
			fields = append(fields, spec)
		}
		cfg.Form = append(cfg.Form, fields...)
	}

	return nil
}
