package guess

import (
	"io"
	"slices"
	"time"

	"csvguess/internal/metrics"
	"csvguess/internal/schema"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Options configures a Guesser. Every field is optional.
type Options struct {
	// Logger receives stage decisions at debug level and skipped lines at
	// warn level. Defaults to a discarding logger.
	Logger logrus.FieldLogger
	// Metrics defaults to metrics.Nop.
	Metrics metrics.Backend
	// NewTokenizer defaults to DefaultTokenizer.
	NewTokenizer TokenizerFunc
	// Classifier defaults to schema.Classifier.
	Classifier TypeClassifier
	// Verifier, when set, sees every finished guess. It cannot change the
	// result.
	Verifier Verifier
}

// Guesser infers a CSV dialect and column schema from sample lines. A Guesser
// holds no per-guess state and is safe for concurrent use.
type Guesser struct {
	log          logrus.FieldLogger
	metrics      metrics.Backend
	newTokenizer TokenizerFunc
	classifier   TypeClassifier
	verifier     Verifier
}

// New returns a Guesser with defaults filled in.
func New(opts Options) *Guesser {
	g := &Guesser{
		log:          opts.Logger,
		metrics:      opts.Metrics,
		newTokenizer: opts.NewTokenizer,
		classifier:   opts.Classifier,
		verifier:     opts.Verifier,
	}
	if g.log == nil {
		g.log = discardLogger()
	}
	if g.metrics == nil {
		g.metrics = metrics.Nop{}
	}
	if g.newTokenizer == nil {
		g.newTokenizer = DefaultTokenizer
	}
	if g.classifier == nil {
		g.classifier = schema.Classifier{}
	}
	return g
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Guess resolves every unset setting of in from lines. Settings already set
// in in are kept as they are. It returns false when nothing usable can be
// inferred: no records survive tokenization, or no column can be typed.
func (g *Guesser) Guess(in DialectConfig, lines []string) (DialectConfig, bool) {
	start := time.Now()
	log := g.log.WithField("guess_id", uuid.NewString())

	out, ok := g.guess(in, lines, log)

	status := "ok"
	if !ok {
		status = "empty"
		out = DialectConfig{}
	}
	g.metrics.IncCounter(metrics.GuessTotal, 1, metrics.Labels{"status": status})
	metrics.ObserveSince(g.metrics, metrics.GuessDurationSeconds, start, nil)
	log.WithField("status", status).Debug("guess finished")

	if g.verifier != nil {
		g.runVerifier(log, in, lines, out, ok)
	}
	return out, ok
}

func (g *Guesser) runVerifier(log logrus.FieldLogger, in DialectConfig, lines []string, out DialectConfig, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("verifier panicked")
		}
	}()
	g.verifier.Verify(in.clone(), slices.Clone(lines), out.clone(), ok)
}

func (g *Guesser) stage(log logrus.FieldLogger, name, status string, value any) {
	metrics.RecordStage(g.metrics, name, status)
	log.WithFields(logrus.Fields{
		"stage":  name,
		"status": status,
		"value":  value,
	}).Debug("stage decided")
}

func (g *Guesser) guess(in DialectConfig, lines []string, log logrus.FieldLogger) (DialectConfig, bool) {
	d := in.clone()
	sp := splitter{newTokenizer: g.newTokenizer, log: log, metrics: g.metrics}

	// Delimiter.
	if d.Delimiter.IsSet() {
		g.stage(log, "delimiter", metrics.StatusExplicit, d.Delimiter.Or(defaultDelimiter))
	} else if v, ok := GuessDelimiter(lines); ok {
		d.Delimiter.Fill(Guessed(v))
		g.stage(log, "delimiter", metrics.StatusGuessed, v)
	} else {
		d.Delimiter.Fill(Guessed(defaultDelimiter))
		g.stage(log, "delimiter", metrics.StatusDefault, defaultDelimiter)
	}
	delim := d.Delimiter.Or(defaultDelimiter)

	// Quote.
	switch {
	case d.Quote.IsSet():
		if q, ok := d.Quote.Get(); ok && q == "" {
			d.Quote = replaceValue(d.Quote, rfcQuote)
		}
		g.stage(log, "quote", metrics.StatusExplicit, d.Quote.Or(""))
	default:
		if q, ok := GuessQuote(lines, delim); ok {
			d.Quote.Fill(Guessed(q))
			g.stage(log, "quote", metrics.StatusGuessed, q)
		} else if !ForceNoQuote(lines, delim, rfcQuote) {
			d.Quote.Fill(Guessed(rfcQuote))
			g.stage(log, "quote", metrics.StatusDefault, rfcQuote)
		} else {
			d.Quote.Fill(GuessedNull[string]())
			g.stage(log, "quote", metrics.StatusNone, nil)
		}
	}
	quote, quoted := d.Quote.Get()

	// Escape only means something with quoting enabled.
	switch {
	case d.Escape.IsSet():
		g.stage(log, "escape", metrics.StatusExplicit, d.Escape.Or(""))
	case !quoted:
		g.stage(log, "escape", metrics.StatusNone, nil)
	default:
		if e, ok := GuessEscape(lines, delim, quote); ok {
			d.Escape.Fill(Guessed(e))
			g.stage(log, "escape", metrics.StatusGuessed, e)
		} else if quote == rfcQuote {
			d.Escape.Fill(Guessed(rfcQuote))
			g.stage(log, "escape", metrics.StatusDefault, rfcQuote)
		} else {
			d.Escape.Fill(GuessedNull[string]())
			g.stage(log, "escape", metrics.StatusNone, nil)
		}
	}

	// Null string.
	if d.NullString.IsSet() {
		g.stage(log, "null_string", metrics.StatusExplicit, d.NullString.Or(""))
	} else if s, ok := GuessNullString(lines, delim); ok {
		d.NullString.Fill(Guessed(s))
		g.stage(log, "null_string", metrics.StatusGuessed, s)
	} else {
		g.stage(log, "null_string", metrics.StatusNone, nil)
	}
	nullString, _ := d.NullString.Get()

	// Preamble. Must run before comment detection: the downstream parser skips
	// header lines before it looks at comments, and it does not skip blank
	// lines there.
	explicitSkip := d.SkipHeaderLines.IsSet()
	var preamble int
	if explicitSkip {
		preamble = min(d.SkipHeaderLines.Or(0), len(lines))
		g.stage(log, "skip_header_lines", metrics.StatusExplicit, d.SkipHeaderLines.Or(0))
	} else {
		records := sp.split(d, lines, false, "preamble")
		counts := make([]int, len(records))
		for i, r := range records {
			counts[i] = len(r)
		}
		preamble = min(GuessSkipHeaderLines(counts), len(lines))
		g.stage(log, "skip_header_lines", metrics.StatusGuessed, preamble)
	}
	lines = lines[preamble:]

	// Comment lines.
	if marker, ok := d.CommentLineMarker.Get(); ok && marker != "" {
		lines = dropComments(lines, marker, nil)
		g.stage(log, "comment_line_marker", metrics.StatusExplicit, marker)
	} else if d.CommentLineMarker.IsSet() {
		g.stage(log, "comment_line_marker", metrics.StatusExplicit, nil)
	} else {
		q := ""
		if quoted {
			q = quote
		}
		if m, rest, ok := GuessCommentLineMarker(lines, delim, q, nullString); ok {
			d.CommentLineMarker.Fill(Guessed(m))
			lines = rest
			g.stage(log, "comment_line_marker", metrics.StatusGuessed, m)
		} else {
			g.stage(log, "comment_line_marker", metrics.StatusNone, nil)
		}
	}

	records := sp.split(d, lines, true, "final")
	if len(records) == 0 {
		log.Info("no records left after tokenization; cannot guess")
		return DialectConfig{}, false
	}

	trimUnset := !d.TrimIfNotQuoted.IsSet()
	if !trimUnset {
		g.stage(log, "trim_if_not_quoted", metrics.StatusExplicit, d.TrimIfNotQuoted.Or(false))
	}
	trimmedRecords := func() [][]*string {
		t := d
		t.TrimIfNotQuoted = Guessed(true)
		return sp.split(t, lines, true, "trim")
	}

	var (
		header bool
		types  []schema.ColumnType
	)
	if explicitSkip || len(lines) == 1 {
		// No header detection: either the caller fixed the skip count or
		// a single line remains.
		types = g.classifier.Classify(records)
		if trimUnset {
			trimmed := g.classifier.Classify(trimmedRecords())
			types = g.decideTrim(log, &d, types, trimmed)
		}
	} else {
		firstTypes := g.classifier.Classify(records[:1])
		otherTypes := g.classifier.Classify(records[1:])
		if trimUnset {
			var trimmed []schema.ColumnType
			if tr := trimmedRecords(); len(tr) > 1 {
				trimmed = g.classifier.Classify(tr[1:])
			} else {
				trimmed = g.classifier.Classify(nil)
			}
			otherTypes = g.decideTrim(log, &d, otherTypes, trimmed)
		}
		header = DetectHeader(records, firstTypes, otherTypes)
		types = otherTypes
	}
	if !explicitSkip {
		g.stage(log, "header_line", metrics.StatusGuessed, header)
	}

	if len(types) == 0 {
		log.Info("no column types inferred; cannot guess")
		return DialectConfig{}, false
	}

	skip := preamble
	if header {
		skip++
	}
	d.SkipHeaderLines.Fill(Guessed(skip))
	d.AllowExtraColumns.Fill(Guessed(false))
	d.AllowOptionalColumns.Fill(Guessed(false))

	if !d.Columns.IsSet() {
		var names []*string
		if header {
			names = records[0]
		}
		cols := AssembleColumns(names, types)
		if len(cols) == 0 {
			log.Info("no columns assembled; cannot guess")
			return DialectConfig{}, false
		}
		d.Columns.Fill(Guessed(cols))
	}
	return d, true
}

// decideTrim adopts trim_if_not_quoted when trimming changes the column types
// and returns the types to keep.
func (g *Guesser) decideTrim(log logrus.FieldLogger, d *DialectConfig, plain, trimmed []schema.ColumnType) []schema.ColumnType {
	if !slices.Equal(plain, trimmed) {
		d.TrimIfNotQuoted.Fill(Guessed(true))
		g.stage(log, "trim_if_not_quoted", metrics.StatusGuessed, true)
		return trimmed
	}
	d.TrimIfNotQuoted.Fill(Guessed(false))
	g.stage(log, "trim_if_not_quoted", metrics.StatusGuessed, false)
	return plain
}

// replaceValue keeps the state of s and swaps its value.
func replaceValue[T any](s Setting[T], v T) Setting[T] {
	if s.IsExplicit() {
		return Explicit(v)
	}
	return Guessed(v)
}
