// Command csvguess infers a CSV parser configuration from the head of a
// delimited-text source.
//
// It reads a bounded prefix of the input (default 32KB, at most 100 lines),
// guesses the dialect, header and column types, and prints the resulting
// parser configuration as YAML or JSON on stdout. Logs go to stderr.
//
// Usage:
//
//	csvguess guess [flags] <url-or-path>
//
// Sources may be bare paths, file:// URLs or http(s):// URLs; gzip and xz
// compressed inputs are decompressed transparently.
//
// # Partial configuration
//
// A config file (--config) may carry a "parser" section with settings that
// are already known. Those settings are kept as given and only the missing
// ones are inferred:
//
//	parser:
//	  delimiter: ";"
//	  skip_header_lines: 1
//
// Every flag also resolves from CSVGUESS_* environment variables and from the
// config file, e.g. CSVGUESS_OUTPUT_FORMAT=json or "output: {format: json}".
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"csvguess/internal/config"
	"csvguess/internal/guess"
	"csvguess/internal/logging"
	"csvguess/internal/metrics"
	"csvguess/internal/metrics/datadog"
	"csvguess/internal/sample"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree around its own viper instance so tests
// can construct independent copies.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	v := config.New()

	root := &cobra.Command{
		Use:           "csvguess",
		Short:         "Infer CSV dialect and column schema from a sample",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.String("config", "", "Config file (YAML or JSON) with an optional parser section")
	pf.String("log-level", "info", "Logging level (debug, info, warn, error)")
	pf.String("log-format", logging.FormatText, "Log format (text, json)")

	_ = v.BindPFlag(config.KeyConfig, pf.Lookup("config"))
	_ = v.BindPFlag(config.KeyLogLevel, pf.Lookup("log-level"))
	_ = v.BindPFlag(config.KeyLogFormat, pf.Lookup("log-format"))

	root.AddCommand(newGuessCmd(v, stdout, stderr))
	return root
}

func newGuessCmd(v *viper.Viper, stdout, stderr io.Writer) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "guess <url-or-path>",
		Short: "Sample a source and print the inferred parser configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runGuess(cmd.Context(), v, args[0], timeout, stdout, stderr)
			if err != nil {
				fmt.Fprintf(stderr, "csvguess: %v\n", err)
			}
			return err
		},
	}

	f := cmd.Flags()
	f.Int("bytes", sample.DefaultMaxBytes, "Maximum number of bytes to sample")
	f.Int("lines", sample.DefaultMaxLines, "Maximum number of lines to sample")
	f.String("charset", sample.DefaultCharset, "Character encoding of the source")
	f.StringP("format", "o", "yaml", "Output format (yaml, json)")
	f.Bool("verify", false, "Cross-check the guess with the encoding/csv tokenizer and log differences")
	f.String("metrics-backend", "none", "Metrics backend (none, datadog)")
	f.String("metrics-job", "csvguess", "Job tag for metrics")
	f.String("metrics-tags", "", "Comma-separated extra metric tags (e.g. env:prod,team:ingest)")
	f.Bool("allow-insecure-tls", false, "Skip TLS certificate verification for https sources")
	f.DurationVar(&timeout, "timeout", 60*time.Second, "Overall time limit for sampling")

	_ = v.BindPFlag(config.KeySampleBytes, f.Lookup("bytes"))
	_ = v.BindPFlag(config.KeySampleLines, f.Lookup("lines"))
	_ = v.BindPFlag(config.KeySampleCharset, f.Lookup("charset"))
	_ = v.BindPFlag(config.KeyOutputFormat, f.Lookup("format"))
	_ = v.BindPFlag(config.KeyVerify, f.Lookup("verify"))
	_ = v.BindPFlag(config.KeyMetricsBackend, f.Lookup("metrics-backend"))
	_ = v.BindPFlag(config.KeyMetricsJob, f.Lookup("metrics-job"))
	_ = v.BindPFlag(config.KeyMetricsTags, f.Lookup("metrics-tags"))
	_ = v.BindPFlag(config.KeyAllowInsecureTLS, f.Lookup("allow-insecure-tls"))

	return cmd
}

func runGuess(ctx context.Context, v *viper.Viper, src string, timeout time.Duration, stdout, stderr io.Writer) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, stderr)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	backend, closeMetrics, err := newMetrics(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeMetrics(); err != nil {
			log.WithError(err).Warn("metrics flush failed")
		}
	}()

	opts := cfg.Sample
	opts.Logger = log
	s, err := sample.Load(ctx, src, opts)
	if err != nil {
		if errors.Is(err, sample.ErrEmptySample) {
			backend.IncCounter(metrics.GuessTotal, 1, metrics.Labels{"status": "empty"})
		}
		return fmt.Errorf("sample: %w", err)
	}

	gopts := guess.Options{Logger: log, Metrics: backend}
	if cfg.Verify {
		gopts.Verifier = guess.CrossCheck{Logger: log}
	}

	out, err := guess.New(gopts).GuessLines(cfg.GuessInput(), s.Lines)
	if err != nil {
		return fmt.Errorf("guess: %w", err)
	}
	if len(out) == 0 {
		log.WithFields(logrus.Fields{"source": src, "lines": len(s.Lines)}).
			Warn("no csv configuration could be inferred")
	}

	b, err := render(out, cfg.OutputFormat)
	if err != nil {
		return fmt.Errorf("render %s: %w", cfg.OutputFormat, err)
	}
	_, err = stdout.Write(b)
	return err
}

func newMetrics(ctx context.Context, cfg config.Config) (metrics.Backend, func() error, error) {
	if cfg.MetricsBackend != "datadog" {
		return metrics.Nop{}, func() error { return nil }, nil
	}
	b, err := datadog.NewBackend(ctx, datadog.Options{
		JobName: cfg.MetricsJob,
		Tags:    datadog.ParseTagsCSV(cfg.MetricsTags),
	})
	if err != nil {
		return nil, nil, err
	}
	return b, b.Close, nil
}

func render(out map[string]any, format string) ([]byte, error) {
	switch format {
	case "json":
		b, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	default:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}
