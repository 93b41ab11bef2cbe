package tokenizer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// StdlibReader is an alternate tokenizer backed by encoding/csv. It exists to
// cross-check the primary Tokenizer and only covers dialects encoding/csv can
// express (see StdlibSupports).
//
// Known differences from Tokenizer:
//   - blank lines are always skipped
//   - Field.Quoted is always false (encoding/csv does not report it)
type StdlibReader struct {
	r *csv.Reader
}

// StdlibSupports reports whether encoding/csv can parse cfg.
func StdlibSupports(cfg Config) bool {
	if utf8.RuneCountInString(cfg.Delimiter) != 1 || strings.ContainsAny(cfg.Delimiter, "\"\r\n") {
		return false
	}
	if cfg.CommentLineMarker == cfg.Delimiter {
		return false
	}
	if cfg.Quote != `"` {
		return false
	}
	if cfg.Escape != "" && cfg.Escape != `"` {
		return false
	}
	if cfg.CommentLineMarker != "" && utf8.RuneCountInString(cfg.CommentLineMarker) != 1 {
		return false
	}
	return true
}

// NewStdlib returns a StdlibReader over lines.
func NewStdlib(cfg Config, lines []string) (*StdlibReader, error) {
	if !StdlibSupports(cfg) {
		return nil, fmt.Errorf("%w: encoding/csv cannot express delimiter=%q quote=%q escape=%q comment=%q",
			ErrUnusableConfig, cfg.Delimiter, cfg.Quote, cfg.Escape, cfg.CommentLineMarker)
	}

	comma, _ := utf8.DecodeRuneInString(cfg.Delimiter)
	r := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	r.Comma = comma
	r.FieldsPerRecord = -1 // we validate manually
	r.TrimLeadingSpace = cfg.TrimIfNotQuoted
	if cfg.CommentLineMarker != "" {
		r.Comment, _ = utf8.DecodeRuneInString(cfg.CommentLineMarker)
	}
	return &StdlibReader{r: r}, nil
}

// Next mirrors Tokenizer.Next.
func (s *StdlibReader) Next() (Record, error) {
	rec, err := s.r.Read()
	if err == io.EOF {
		return Record{}, io.EOF
	}
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return Record{}, &InvalidValueError{Line: pe.StartLine, Msg: pe.Err.Error()}
		}
		return Record{}, &InvalidValueError{Msg: err.Error()}
	}

	line, _ := s.r.FieldPos(0)
	fields := make([]Field, len(rec))
	for i, v := range rec {
		fields[i] = Field{Value: v}
	}
	return Record{Line: line, Fields: fields}, nil
}
