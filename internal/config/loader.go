package config

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files, the environment and
// command-line arguments, in that order of precedence (flags win).
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// envBindings maps config keys to the environment variables that set them.
var envBindings = []struct {
	key string
	env string
}{
	{"api_key", "OPENAI_API_KEY"},
	{"api_url", "OPENAI_API_URL"},
	{"organization", "OPENAI_ORGANIZATION"},
	{"api_version", "OPENAI_API_VERSION"},
}

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and configuration files to produce a Config.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}

	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		APIURL:     DefaultAPIURL,
		Method:     http.MethodPost,
		Headers:    map[string]string{},
		Timeout:    30 * time.Second,
		ConfigFile: configPath,
		Tracing:    TracingConfig{SampleRate: 1.0},
	}

	if err := applyConfigSettings(cfg, cfgViper.AllSettings()); err != nil {
		return nil, err
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.Method = strings.ToUpper(strings.TrimSpace(cfg.Method))
	cfg.Target = strings.TrimSpace(cfg.Target)
	cfg.APIURL = strings.TrimSpace(cfg.APIURL)
	cfg.FieldsFile = strings.TrimSpace(cfg.FieldsFile)
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}

	if cfg.FieldsFile != "" {
		fromFile, err := LoadFieldsFile(cfg.FieldsFile)
		if err != nil {
			return nil, err
		}
		cfg.Form = append(fromFile, cfg.Form...)
	}

	return cfg, nil
}

// applyEnv overlays the OPENAI_* environment variables.
func applyEnv(cfg *Config) error {
	env := viper.New()
	for _, b := range envBindings {
		if err := env.BindEnv(b.key, b.env); err != nil {
			return err
		}
	}

	if env.IsSet("api_key") {
		cfg.APIKey = env.GetString("api_key")
	}
	if env.IsSet("api_url") {
		cfg.APIURL = env.GetString("api_url")
	}
	if env.IsSet("organization") {
		cfg.Organization = env.GetString("organization")
	}
	if env.IsSet("api_version") {
		cfg.APIVersion = env.GetString("api_version")
	}
	return nil
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	stringFields := []struct {
		keys []string
		dst  *string
	}{
		{[]string{"api_key", "apikey", "api-key"}, &cfg.APIKey},
		{[]string{"api_url", "apiurl", "api-url"}, &cfg.APIURL},
		{[]string{"organization", "org"}, &cfg.Organization},
		{[]string{"api_version", "apiversion", "api-version"}, &cfg.APIVersion},
		{[]string{"target"}, &cfg.Target},
		{[]string{"fields_file", "fieldsfile", "fields-file"}, &cfg.FieldsFile},
		{[]string{"proxy"}, &cfg.Proxy},
		{[]string{"extract"}, &cfg.Extract},
		{[]string{"log_level", "loglevel", "log-level"}, &cfg.LogLevel},
	}
	for _, f := range stringFields {
		raw, ok := lookupSetting(settings, f.keys...)
		if !ok {
			continue
		}
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", f.keys[0], err)
		}
		*f.dst = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "method"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("method: %w", err)
		}
		if val != "" {
			cfg.Method = val
		}
	}

	if raw, ok := lookupSetting(settings, "headers"); ok {
		hdrs, err := asStringMap(raw)
		if err != nil {
			return fmt.Errorf("headers: %w", err)
		}
		for k, v := range hdrs {
			cfg.Headers[http.CanonicalHeaderKey(k)] = v
		}
	}

	if raw, ok := lookupSetting(settings, "form", "fields"); ok {
		fields, err := parseFields(raw)
		if err != nil {
			return fmt.Errorf("form: %w", err)
		}
		cfg.Form = fields
	}

	if raw, ok := lookupSetting(settings, "timeout"); ok {
		val, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = val
	}

	intFields := []struct {
		key string
		dst *int
	}{
		{"rate", &cfg.Rate},
		{"retries", &cfg.Retries},
	}
	for _, f := range intFields {
		raw, ok := lookupSetting(settings, f.key)
		if !ok {
			continue
		}
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = val
	}

	boolFields := []struct {
		keys []string
		dst  *bool
	}{
		{[]string{"dump"}, &cfg.Dump},
		{[]string{"json_output", "jsonoutput", "json-output"}, &cfg.JSONOutput},
		{[]string{"stats"}, &cfg.Stats},
		{[]string{"progress"}, &cfg.Progress},
	}
	for _, f := range boolFields {
		raw, ok := lookupSetting(settings, f.keys...)
		if !ok {
			continue
		}
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", f.keys[0], err)
		}
		*f.dst = val
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		tracing, err := parseTracing(raw)
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		cfg.Tracing = tracing
	}

	return nil
}

// parseFields accepts a list whose entries are either curl-style strings or
// maps with name/value/file/stdin/filename/content_type keys.
func parseFields(value interface{}) ([]FieldSpec, error) {
	if s, ok := value.([]string); ok {
		items := make([]interface{}, len(s))
		for i := range s {
			items[i] = s[i]
		}
		value = items
	}

	items, err := toInterfaceSlice(value)
	if err != nil {
		return nil, err
	}

	fields := make([]FieldSpec, 0, len(items))
	for idx, item := range items {
		if s, ok := item.(string); ok {
			spec, err := ParseFieldSpec(s)
			if err != nil {
				return nil, fmt.Errorf("form[%d]: %w", idx, err)
			}
			fields = append(fields, spec)
			continue
		}

		settings, err := toStringKeyMap(item)
		if err != nil {
			return nil, fmt.Errorf("form[%d]: %w", idx, err)
		}
		spec, err := buildFieldSpec(settings)
		if err != nil {
			return nil, fmt.Errorf("form[%d]: %w", idx, err)
		}
		fields = append(fields, spec)
	}
	return fields, nil
}

func buildFieldSpec(settings map[string]interface{}) (FieldSpec, error) {
	var spec FieldSpec

	stringFields := []struct {
		keys []string
		dst  *string
	}{
		{[]string{"name"}, &spec.Name},
		{[]string{"value"}, &spec.Value},
		{[]string{"file", "path"}, &spec.File},
		{[]string{"filename"}, &spec.Filename},
		{[]string{"content_type", "contenttype", "content-type", "type"}, &spec.ContentType},
	}
	for _, f := range stringFields {
		raw, ok := lookupSetting(settings, f.keys...)
		if !ok {
			continue
		}
		val, err := asString(raw)
		if err != nil {
			return FieldSpec{}, fmt.Errorf("%s: %w", f.keys[0], err)
		}
		*f.dst = val
	}
	spec.Name = strings.TrimSpace(spec.Name)
	spec.File = strings.TrimSpace(spec.File)

	if raw, ok := lookupSetting(settings, "stdin"); ok {
		val, err := asBool(raw)
		if err != nil {
			return FieldSpec{}, fmt.Errorf("stdin: %w", err)
		}
		spec.Stdin = val
	}
	return spec, nil
}

func parseTracing(value interface{}) (TracingConfig, error) {
	settings, err := toStringKeyMap(value)
	if err != nil {
		return TracingConfig{}, err
	}

	tc := TracingConfig{SampleRate: 1.0}
	if raw, ok := lookupSetting(settings, "endpoint"); ok {
		if tc.Endpoint, err = asString(raw); err != nil {
			return TracingConfig{}, fmt.Errorf("endpoint: %w", err)
		}
	}
	if raw, ok := lookupSetting(settings, "protocol"); ok {
		if tc.Protocol, err = asString(raw); err != nil {
			return TracingConfig{}, fmt.Errorf("protocol: %w", err)
		}
	}
	if raw, ok := lookupSetting(settings, "service_name", "servicename"); ok {
		if tc.ServiceName, err = asString(raw); err != nil {
			return TracingConfig{}, fmt.Errorf("service_name: %w", err)
		}
	}
	if raw, ok := lookupSetting(settings, "sample_rate", "samplerate"); ok {
		if tc.SampleRate, err = asFloat64(raw); err != nil {
			return TracingConfig{}, fmt.Errorf("sample_rate: %w", err)
		}
	}
	if raw, ok := lookupSetting(settings, "insecure"); ok {
		if tc.Insecure, err = asBool(raw); err != nil {
			return TracingConfig{}, fmt.Errorf("insecure: %w", err)
		}
	}
	if raw, ok := lookupSetting(settings, "propagate"); ok {
		val, err := asBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("propagate: %w", err)
		}
		tc.Propagate = &val
	}
	return tc, nil
}
