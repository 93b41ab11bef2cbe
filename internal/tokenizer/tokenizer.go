// Package tokenizer splits sample lines into records of fields for a concrete
// CSV dialect.
//
// The tokenizer never aborts a pass because of one bad record. Next returns
// an *InvalidValueError for a malformed record; callers log it and keep
// calling Next, which resumes at the line after the rejected record's first
// line. io.EOF marks the end of input.
package tokenizer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// DefaultMaxQuotedSize bounds a single quoted value (bytes) so an unbalanced
// quote cannot swallow the whole sample.
const DefaultMaxQuotedSize = 128 * 1024

// ErrUnusableConfig is returned by New when no tokenizer can be built for the
// configuration.
var ErrUnusableConfig = errors.New("tokenizer: unusable config")

// Config is the dialect a Tokenizer parses.
type Config struct {
	// Delimiter separates fields. Required.
	Delimiter string
	// Quote is a single character enclosing values, or "" to disable quoting.
	Quote string
	// Escape is a single character escaping the quote inside quoted values,
	// or "" for none. Escape == Quote means RFC-style doubled quotes.
	Escape string
	// TrimIfNotQuoted strips spaces around unquoted values and before an
	// opening quote.
	TrimIfNotQuoted bool
	// CommentLineMarker, when set, drops lines that start with it.
	CommentLineMarker string
	// SkipEmptyLines drops zero-length lines instead of emitting a record
	// with a single empty field.
	SkipEmptyLines bool
	// MaxQuotedSize overrides DefaultMaxQuotedSize when > 0.
	MaxQuotedSize int
}

// Field is one tokenized value.
type Field struct {
	Value string
	// Quoted reports whether the value was enclosed in quotes. Null-token
	// matching only applies to unquoted values.
	Quoted bool
}

// Record is one tokenized row. Line is the 1-based sample line it starts on.
type Record struct {
	Line   int
	Fields []Field
}

// InvalidValueError reports a malformed record.
type InvalidValueError struct {
	Line int
	Msg  string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Tokenizer reads records from an in-memory sequence of lines.
type Tokenizer struct {
	cfg    Config
	quote  rune
	escape rune
	lines  []string
	pos    int
}

// New validates cfg and returns a Tokenizer over lines.
//
// Errors (all wrap ErrUnusableConfig):
//   - empty delimiter
//   - quote or escape longer than one character
//   - quote or escape equal to the delimiter
func New(cfg Config, lines []string) (*Tokenizer, error) {
	if cfg.Delimiter == "" {
		return nil, fmt.Errorf("%w: empty delimiter", ErrUnusableConfig)
	}
	quote, err := singleRune("quote", cfg.Quote)
	if err != nil {
		return nil, err
	}
	escape, err := singleRune("escape", cfg.Escape)
	if err != nil {
		return nil, err
	}
	if cfg.Quote != "" && cfg.Quote == cfg.Delimiter {
		return nil, fmt.Errorf("%w: quote %q equals delimiter", ErrUnusableConfig, cfg.Quote)
	}
	if cfg.Escape != "" && cfg.Escape == cfg.Delimiter {
		return nil, fmt.Errorf("%w: escape %q equals delimiter", ErrUnusableConfig, cfg.Escape)
	}
	if cfg.MaxQuotedSize <= 0 {
		cfg.MaxQuotedSize = DefaultMaxQuotedSize
	}
	return &Tokenizer{cfg: cfg, quote: quote, escape: escape, lines: lines}, nil
}

func singleRune(name, s string) (rune, error) {
	if s == "" {
		return 0, nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%w: %s must be a single character, got %q", ErrUnusableConfig, name, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// Next returns the next record, an *InvalidValueError for a malformed one, or
// io.EOF when the input is exhausted.
func (t *Tokenizer) Next() (Record, error) {
	for t.pos < len(t.lines) {
		line := t.lines[t.pos]
		if t.cfg.CommentLineMarker != "" && strings.HasPrefix(line, t.cfg.CommentLineMarker) {
			t.pos++
			continue
		}
		if t.cfg.SkipEmptyLines && line == "" {
			t.pos++
			continue
		}

		start := t.pos
		fields, end, err := t.parseRecord(start)
		if err != nil {
			// Resume right after the first line of the rejected record.
			t.pos = start + 1
			return Record{}, &InvalidValueError{Line: start + 1, Msg: err.Error()}
		}
		t.pos = end + 1
		return Record{Line: start + 1, Fields: fields}, nil
	}
	return Record{}, io.EOF
}

// All drains the tokenizer. Malformed records are reported through onErr
// (which may be nil) and skipped.
func (t *Tokenizer) All(onErr func(err *InvalidValueError)) []Record {
	var out []Record
	for {
		rec, err := t.Next()
		if err == io.EOF {
			return out
		}
		var inv *InvalidValueError
		if errors.As(err, &inv) {
			if onErr != nil {
				onErr(inv)
			}
			continue
		}
		out = append(out, rec)
	}
}

// parseRecord tokenizes the record starting at lines[p]. It returns the fields
// and the index of the last line the record consumed.
func (t *Tokenizer) parseRecord(p int) ([]Field, int, error) {
	line := t.lines[p]
	delim := t.cfg.Delimiter
	i := 0
	var fields []Field

	for {
		k := i
		if t.cfg.TrimIfNotQuoted {
			k = skipSpaces(line, k)
		}

		if t.quote != 0 && k < len(line) && strings.HasPrefix(line[k:], t.cfg.Quote) {
			v, np, npos, err := t.parseQuoted(p, k+len(t.cfg.Quote))
			if err != nil {
				return nil, p, err
			}
			fields = append(fields, Field{Value: v, Quoted: true})
			p, line = np, t.lines[np]

			npos = skipSpaces(line, npos)
			switch {
			case npos == len(line):
				return fields, p, nil
			case strings.HasPrefix(line[npos:], delim):
				i = npos + len(delim)
				continue
			default:
				r, _ := utf8.DecodeRuneInString(line[npos:])
				return nil, p, fmt.Errorf("unexpected extra character %q after a value quoted by %q", r, t.cfg.Quote)
			}
		}

		d := strings.Index(line[i:], delim)
		var v string
		if d < 0 {
			v = line[i:]
		} else {
			v = line[i : i+d]
		}
		if t.cfg.TrimIfNotQuoted {
			v = strings.Trim(v, " \t")
		}
		fields = append(fields, Field{Value: v})
		if d < 0 {
			return fields, p, nil
		}
		i += d + len(delim)
	}
}

// parseQuoted reads a quoted value whose content starts at lines[p][pos]. It
// returns the value plus the line index and byte offset just past the closing
// quote. A value may continue on following lines.
func (t *Tokenizer) parseQuoted(p, pos int) (string, int, int, error) {
	var b strings.Builder
	line := t.lines[p]

	for {
		if pos >= len(line) {
			if p+1 >= len(t.lines) {
				return "", p, pos, fmt.Errorf("unexpected end of input during parsing a quoted value")
			}
			b.WriteByte('\n')
			p++
			line = t.lines[p]
			pos = 0
			continue
		}
		if b.Len() > t.cfg.MaxQuotedSize {
			return "", p, pos, fmt.Errorf("quoted value exceeds %d bytes", t.cfg.MaxQuotedSize)
		}

		c, size := utf8.DecodeRuneInString(line[pos:])

		if t.escape != 0 && t.escape != t.quote && c == t.escape {
			if pos+size < len(line) {
				next, nsize := utf8.DecodeRuneInString(line[pos+size:])
				if next == t.quote || next == t.escape {
					b.WriteRune(next)
					pos += size + nsize
					continue
				}
			}
			b.WriteRune(c)
			pos += size
			continue
		}

		if c == t.quote {
			if t.escape == t.quote && pos+size < len(line) {
				next, nsize := utf8.DecodeRuneInString(line[pos+size:])
				if next == t.quote {
					b.WriteRune(next)
					pos += size + nsize
					continue
				}
			}
			return b.String(), p, pos + size, nil
		}

		b.WriteRune(c)
		pos += size
	}
}

// skipSpaces skips ASCII spaces only; a tab may be the delimiter.
func skipSpaces(s string, i int) int {
	for i < len(s) && s[i] == ' ' {
		i++
	}
	return i
}
