// Package metrics defines the small metrics surface used by the guess
// pipeline and the CLI.
//
// The core inference code depends only on Backend. Concrete backends live in
// subpackages (see internal/metrics/datadog) so vendor SDKs never leak into
// the pipeline itself.
package metrics

import "time"

// Labels are metric dimensions. Keys must come from a small fixed set to keep
// cardinality bounded.
type Labels map[string]string

// Backend receives counter increments and histogram observations.
//
// Implementations must be safe for concurrent use. Unknown metric names
// should be ignored rather than rejected.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
}

// Metric names emitted by the guess pipeline.
const (
	// StageTotal counts stage decisions, labeled by stage and status.
	StageTotal = "csvguess_stage_total"
	// GuessTotal counts whole guesses, labeled by status (ok, empty, skipped).
	GuessTotal = "csvguess_guess_total"
	// TokenizerFallbackTotal counts passes that fell back to a naive split.
	TokenizerFallbackTotal = "csvguess_tokenizer_fallback_total"
	// MalformedLinesTotal counts records the tokenizer rejected and skipped.
	MalformedLinesTotal = "csvguess_malformed_lines_total"
	// GuessDurationSeconds observes wall time of one guess.
	GuessDurationSeconds = "csvguess_guess_duration_seconds"
)

// Stage statuses.
const (
	StatusExplicit = "explicit"
	StatusGuessed  = "guessed"
	StatusDefault  = "default"
	StatusNone     = "none"
)

// Nop is a Backend that drops everything.
type Nop struct{}

// IncCounter implements Backend.
func (Nop) IncCounter(string, float64, Labels) {}

// ObserveHistogram implements Backend.
func (Nop) ObserveHistogram(string, float64, Labels) {}

var _ Backend = Nop{}

// RecordStage is a convenience for StageTotal increments.
func RecordStage(b Backend, stage, status string) {
	if b == nil {
		return
	}
	b.IncCounter(StageTotal, 1, Labels{"stage": stage, "status": status})
}

// ObserveSince records the seconds elapsed since start under name.
func ObserveSince(b Backend, name string, start time.Time, labels Labels) {
	if b == nil {
		return
	}
	b.ObserveHistogram(name, time.Since(start).Seconds(), labels)
}
