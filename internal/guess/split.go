package guess

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"csvguess/internal/metrics"
	"csvguess/internal/tokenizer"

	"github.com/sirupsen/logrus"
)

// RecordReader yields tokenized records. *tokenizer.Tokenizer and
// *tokenizer.StdlibReader both satisfy it.
type RecordReader interface {
	Next() (tokenizer.Record, error)
}

// TokenizerFunc builds a RecordReader for one pass over lines. An error means
// the configuration is unusable and the pass falls back to a naive split.
type TokenizerFunc func(cfg tokenizer.Config, lines []string) (RecordReader, error)

// DefaultTokenizer wraps tokenizer.New.
func DefaultTokenizer(cfg tokenizer.Config, lines []string) (RecordReader, error) {
	t, err := tokenizer.New(cfg, lines)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// tokenizerConfig maps the resolved dialect onto the tokenizer's config.
func tokenizerConfig(d DialectConfig, skipEmpty bool) tokenizer.Config {
	return tokenizer.Config{
		Delimiter:         d.Delimiter.Or(defaultDelimiter),
		Quote:             d.Quote.Or(""),
		Escape:            d.Escape.Or(""),
		TrimIfNotQuoted:   d.TrimIfNotQuoted.Or(false),
		CommentLineMarker: d.CommentLineMarker.Or(""),
		SkipEmptyLines:    skipEmpty,
	}
}

// splitter runs tokenization passes for one guess.
type splitter struct {
	newTokenizer TokenizerFunc
	log          logrus.FieldLogger
	metrics      metrics.Backend
}

// split tokenizes lines with the dialect in d. Unquoted values equal to the
// null string become nil. Malformed records are logged and skipped. When no
// tokenizer can be built, or it fails in an unexpected way, the pass falls
// back to splitting each line on the delimiter.
func (s splitter) split(d DialectConfig, lines []string, skipEmpty bool, pass string) [][]*string {
	cfg := tokenizerConfig(d, skipEmpty)
	nullString, hasNull := d.NullString.Get()
	log := s.log.WithField("pass", pass)

	rows, err := s.tokenize(cfg, lines, func(f tokenizer.Field) *string {
		if hasNull && !f.Quoted && f.Value == nullString {
			return nil
		}
		v := f.Value
		return &v
	}, log)
	if err != nil {
		log.WithError(err).Debug("tokenizer unusable; splitting on delimiter")
		s.metrics.IncCounter(metrics.TokenizerFallbackTotal, 1, metrics.Labels{"pass": pass})
		return naiveSplit(lines, cfg.Delimiter, skipEmpty)
	}
	return rows
}

func (s splitter) tokenize(cfg tokenizer.Config, lines []string, value func(tokenizer.Field) *string, log logrus.FieldLogger) (rows [][]*string, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("tokenizer panic: %v", r)
		}
	}()

	rr, err := s.newTokenizer(cfg, lines)
	if err != nil {
		return nil, err
	}
	for {
		rec, err := rr.Next()
		if err == io.EOF {
			return rows, nil
		}
		var inv *tokenizer.InvalidValueError
		if errors.As(err, &inv) {
			log.WithField("line", inv.Line).Warnf("skipping malformed line: %s", inv.Msg)
			s.metrics.IncCounter(metrics.MalformedLinesTotal, 1, nil)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("tokenize: %w", err)
		}
		row := make([]*string, len(rec.Fields))
		for i, f := range rec.Fields {
			row[i] = value(f)
		}
		rows = append(rows, row)
	}
}

func naiveSplit(lines []string, delim string, skipEmpty bool) [][]*string {
	out := make([][]*string, 0, len(lines))
	for _, l := range lines {
		if skipEmpty && l == "" {
			continue
		}
		parts := strings.Split(l, delim)
		row := make([]*string, len(parts))
		for i := range parts {
			row[i] = &parts[i]
		}
		out = append(out, row)
	}
	return out
}
