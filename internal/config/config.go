// Package config loads csvguess CLI settings.
//
// Values resolve in viper's usual order: bound flags, CSVGUESS_* environment
// variables, the optional config file, then the defaults below. The config
// file may carry a "parser" section holding the already-decided parser
// settings the guess starts from.
package config

import (
	"fmt"
	"strings"

	"csvguess/internal/sample"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, with dots in keys
// replaced by underscores (CSVGUESS_SAMPLE_BYTES).
const EnvPrefix = "CSVGUESS"

// Keys.
const (
	KeyConfig           = "config"
	KeySampleBytes      = "sample.bytes"
	KeySampleLines      = "sample.lines"
	KeySampleCharset    = "sample.charset"
	KeyOutputFormat     = "output.format"
	KeyVerify           = "verify"
	KeyMetricsBackend   = "metrics.backend"
	KeyMetricsJob       = "metrics.job"
	KeyMetricsTags      = "metrics.tags"
	KeyLogLevel         = "log.level"
	KeyLogFormat        = "log.format"
	KeyAllowInsecureTLS = "allow_insecure_tls"
	KeyParser           = "parser"
)

// Config is the resolved CLI configuration.
type Config struct {
	Sample           sample.Options
	OutputFormat     string
	Verify           bool
	MetricsBackend   string
	MetricsJob       string
	MetricsTags      string
	LogLevel         string
	LogFormat        string
	AllowInsecureTLS bool

	// Parser is the "parser" section of the config file, or nil.
	Parser map[string]any
}

// New returns a viper instance with defaults and environment lookup set up.
// Callers bind their flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeySampleBytes, sample.DefaultMaxBytes)
	v.SetDefault(KeySampleLines, sample.DefaultMaxLines)
	v.SetDefault(KeySampleCharset, sample.DefaultCharset)
	v.SetDefault(KeyOutputFormat, "yaml")
	v.SetDefault(KeyVerify, false)
	v.SetDefault(KeyMetricsBackend, "none")
	v.SetDefault(KeyMetricsJob, "csvguess")
	v.SetDefault(KeyMetricsTags, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyAllowInsecureTLS, false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file named by the "config" key, if any, and resolves
// every setting.
func Load(v *viper.Viper) (Config, error) {
	if file := v.GetString(KeyConfig); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := Config{
		Sample: sample.Options{
			MaxBytes: v.GetInt(KeySampleBytes),
			MaxLines: v.GetInt(KeySampleLines),
			Charset:  v.GetString(KeySampleCharset),
		},
		OutputFormat:     strings.ToLower(strings.TrimSpace(v.GetString(KeyOutputFormat))),
		Verify:           v.GetBool(KeyVerify),
		MetricsBackend:   strings.ToLower(strings.TrimSpace(v.GetString(KeyMetricsBackend))),
		MetricsJob:       v.GetString(KeyMetricsJob),
		MetricsTags:      v.GetString(KeyMetricsTags),
		LogLevel:         v.GetString(KeyLogLevel),
		LogFormat:        v.GetString(KeyLogFormat),
		AllowInsecureTLS: v.GetBool(KeyAllowInsecureTLS),
	}
	cfg.Sample.AllowInsecureTLS = cfg.AllowInsecureTLS

	if v.IsSet(KeyParser) {
		raw := v.Get(KeyParser)
		m, ok := raw.(map[string]any)
		if !ok {
			return Config{}, fmt.Errorf("%s must be a mapping, got %T", KeyParser, raw)
		}
		cfg.Parser = m
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated and bounded settings.
func (c Config) Validate() error {
	if c.Sample.MaxBytes <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeySampleBytes, c.Sample.MaxBytes)
	}
	if c.Sample.MaxLines <= 0 {
		return fmt.Errorf("%s must be positive, got %d", KeySampleLines, c.Sample.MaxLines)
	}
	switch c.OutputFormat {
	case "yaml", "json":
	default:
		return fmt.Errorf("unsupported %s: %q (want yaml or json)", KeyOutputFormat, c.OutputFormat)
	}
	switch c.MetricsBackend {
	case "none", "datadog":
	default:
		return fmt.Errorf("unsupported %s: %q (want none or datadog)", KeyMetricsBackend, c.MetricsBackend)
	}
	return nil
}

// GuessInput wraps the parser section into the mapping guess.GuessLines
// expects.
func (c Config) GuessInput() map[string]any {
	if c.Parser == nil {
		return map[string]any{}
	}
	return map[string]any{KeyParser: c.Parser}
}
