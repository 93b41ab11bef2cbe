package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, 32768, cfg.Sample.MaxBytes)
	assert.Equal(t, 100, cfg.Sample.MaxLines)
	assert.Equal(t, "utf-8", cfg.Sample.Charset)
	assert.Equal(t, "yaml", cfg.OutputFormat)
	assert.Equal(t, "none", cfg.MetricsBackend)
	assert.Equal(t, "csvguess", cfg.MetricsJob)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.Verify)
	assert.Nil(t, cfg.Parser)
	assert.Equal(t, map[string]any{}, cfg.GuessInput())
}

func TestLoadYAMLFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "csvguess.yml", `
sample:
  bytes: 4096
  charset: windows-1252
output:
  format: json
verify: true
allow_insecure_tls: true
parser:
  type: csv
  delimiter: ";"
  skip_header_lines: 1
  columns:
    - {name: id, type: long}
`)

	v := New()
	v.Set(KeyConfig, path)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 4096, cfg.Sample.MaxBytes)
	assert.Equal(t, 100, cfg.Sample.MaxLines)
	assert.Equal(t, "windows-1252", cfg.Sample.Charset)
	assert.True(t, cfg.Sample.AllowInsecureTLS)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.True(t, cfg.Verify)

	require.NotNil(t, cfg.Parser)
	assert.Equal(t, ";", cfg.Parser["delimiter"])
	assert.Equal(t, 1, cfg.Parser["skip_header_lines"])
	assert.Equal(t, cfg.Parser, cfg.GuessInput()["parser"])
}

func TestLoadJSONFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "csvguess.json", `{"log": {"level": "debug"}, "parser": {"quote": null}}`)

	v := New()
	v.Set(KeyConfig, path)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Contains(t, cfg.Parser, "quote")
	assert.Nil(t, cfg.Parser["quote"])
}

// Not parallel: t.Setenv.
func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "csvguess.yml", "sample:\n  lines: 5\nmetrics:\n  backend: none\n")
	t.Setenv("CSVGUESS_SAMPLE_LINES", "7")
	t.Setenv("CSVGUESS_METRICS_BACKEND", "datadog")
	t.Setenv("CSVGUESS_METRICS_TAGS", "env:test,team:ingest")

	v := New()
	v.Set(KeyConfig, path)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Sample.MaxLines)
	assert.Equal(t, "datadog", cfg.MetricsBackend)
	assert.Equal(t, "env:test,team:ingest", cfg.MetricsTags)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad output format", "output:\n  format: xml\n", "output.format"},
		{"bad metrics backend", "metrics:\n  backend: statsd\n", "metrics.backend"},
		{"zero bytes", "sample:\n  bytes: 0\n", "sample.bytes"},
		{"negative lines", "sample:\n  lines: -1\n", "sample.lines"},
		{"parser not a mapping", "parser: csv\n", "parser must be a mapping"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := New()
			v.Set(KeyConfig, writeConfig(t, "c.yml", tt.body))
			_, err := Load(v)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	v := New()
	v.Set(KeyConfig, filepath.Join(t.TempDir(), "nope.yml"))
	_, err := Load(v)
	assert.ErrorContains(t, err, "failed to read config file")
}
