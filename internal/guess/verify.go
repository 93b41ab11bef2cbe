package guess

import (
	"bytes"
	"sort"

	"csvguess/internal/metrics"
	"csvguess/internal/tokenizer"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

// Verifier inspects a finished guess. It runs after the result is final and
// has no way to change it; panics are recovered by the Guesser.
type Verifier interface {
	Verify(in DialectConfig, lines []string, got DialectConfig, ok bool)
}

// CrossCheck re-runs the guess with the encoding/csv based tokenizer and logs
// any difference at error level. Dialects encoding/csv cannot express are
// skipped.
type CrossCheck struct {
	Logger     logrus.FieldLogger
	Classifier TypeClassifier
}

var _ Verifier = CrossCheck{}

// Verify implements Verifier.
func (c CrossCheck) Verify(in DialectConfig, lines []string, got DialectConfig, ok bool) {
	log := c.Logger
	if log == nil {
		log = discardLogger()
	}
	log = log.WithField("check", "cross")

	if ok && !tokenizer.StdlibSupports(tokenizerConfig(got, true)) {
		log.Debug("dialect not expressible with encoding/csv; skipping cross-check")
		return
	}

	alt := New(Options{
		Logger:       log,
		Metrics:      metrics.Nop{},
		NewTokenizer: StdlibTokenizer,
		Classifier:   c.Classifier,
	})
	want, wantOK := alt.Guess(in, lines)

	primary := resultMap(got, ok)
	alternate := resultMap(want, wantOK)
	keys := diffKeys(primary, alternate)
	if len(keys) == 0 {
		log.Debug("cross-check agrees")
		return
	}

	pj, _ := json.Marshal(primary)
	aj, _ := json.Marshal(alternate)
	log.WithFields(logrus.Fields{
		"keys":      keys,
		"primary":   string(pj),
		"alternate": string(aj),
	}).Error("cross-check: guessed parser config differs between tokenizers")
}

// StdlibTokenizer uses tokenizer.NewStdlib where it can express cfg and the
// default tokenizer otherwise.
func StdlibTokenizer(cfg tokenizer.Config, lines []string) (RecordReader, error) {
	if !tokenizer.StdlibSupports(cfg) {
		return DefaultTokenizer(cfg, lines)
	}
	r, err := tokenizer.NewStdlib(cfg, lines)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func resultMap(d DialectConfig, ok bool) map[string]any {
	if !ok {
		return map[string]any{}
	}
	return d.ToMap()
}

// diffKeys lists keys whose JSON encodings differ, sorted.
func diffKeys(a, b map[string]any) []string {
	seen := map[string]struct{}{}
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}

	var out []string
	for k := range seen {
		av, aok := a[k]
		bv, bok := b[k]
		if aok != bok {
			out = append(out, k)
			continue
		}
		aj, aerr := json.Marshal(av)
		bj, berr := json.Marshal(bv)
		if aerr != nil || berr != nil || !bytes.Equal(aj, bj) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
