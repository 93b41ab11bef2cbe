package guess

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig wraps every ConfigFromMap failure.
var ErrInvalidConfig = errors.New("invalid parser config")

// ColumnSpec is one column of the guessed schema. Format is only set for
// timestamp columns.
type ColumnSpec struct {
	Name   string
	Type   string
	Format string
}

// DialectConfig is the parser configuration being resolved. Every field
// tracks whether it was set by the caller, filled by a guesser, or is still
// unset.
type DialectConfig struct {
	Delimiter            Setting[string]
	Quote                Setting[string]
	Escape               Setting[string]
	NullString           Setting[string]
	CommentLineMarker    Setting[string]
	SkipHeaderLines      Setting[int]
	TrimIfNotQuoted      Setting[bool]
	AllowExtraColumns    Setting[bool]
	AllowOptionalColumns Setting[bool]
	Columns              Setting[[]ColumnSpec]

	// Extra holds parser keys this package does not interpret (charset,
	// newline, ...). They are passed through to ToMap untouched.
	Extra map[string]any
}

// Recognized parser keys.
const (
	keyType                 = "type"
	keyDelimiter            = "delimiter"
	keyQuote                = "quote"
	keyEscape               = "escape"
	keyNullString           = "null_string"
	keyCommentLineMarker    = "comment_line_marker"
	keySkipHeaderLines      = "skip_header_lines"
	keyTrimIfNotQuoted      = "trim_if_not_quoted"
	keyAllowExtraColumns    = "allow_extra_columns"
	keyAllowOptionalColumns = "allow_optional_columns"
	keyColumns              = "columns"
)

// Pin returns a copy with every guessed setting turned explicit. Feeding the
// pinned config back into Guess reproduces it.
func (d DialectConfig) Pin() DialectConfig {
	out := d.clone()
	out.Delimiter = out.Delimiter.Pin()
	out.Quote = out.Quote.Pin()
	out.Escape = out.Escape.Pin()
	out.NullString = out.NullString.Pin()
	out.CommentLineMarker = out.CommentLineMarker.Pin()
	out.SkipHeaderLines = out.SkipHeaderLines.Pin()
	out.TrimIfNotQuoted = out.TrimIfNotQuoted.Pin()
	out.AllowExtraColumns = out.AllowExtraColumns.Pin()
	out.AllowOptionalColumns = out.AllowOptionalColumns.Pin()
	out.Columns = out.Columns.Pin()
	return out
}

func (d DialectConfig) clone() DialectConfig {
	out := d
	if d.Extra != nil {
		out.Extra = make(map[string]any, len(d.Extra))
		for k, v := range d.Extra {
			out.Extra[k] = v
		}
	}
	if cols, ok := d.Columns.Get(); ok {
		cp := append([]ColumnSpec(nil), cols...)
		if d.Columns.IsExplicit() {
			out.Columns = Explicit(cp)
		} else {
			out.Columns = Guessed(cp)
		}
	}
	return out
}

// ConfigFromMap reads a parser section (the value under "parser") into a
// DialectConfig. Every recognized key that is present becomes explicit; a
// null value becomes an explicit null. Unknown keys land in Extra.
//
// The legacy quote value "" is normalized to a double quote, and a null
// delimiter is treated as absent.
func ConfigFromMap(m map[string]any) (DialectConfig, error) {
	var d DialectConfig
	var err error

	for k, v := range m {
		switch k {
		case keyType:
			// Decided by the caller; ToMap always writes csv.
		case keyDelimiter:
			if v == nil {
				// Same as absent: the delimiter is guessed.
				continue
			}
			d.Delimiter, err = stringSetting(k, v)
			if err == nil {
				if s, ok := d.Delimiter.Get(); !ok || s == "" {
					err = fmt.Errorf("%w: %s must be a non-empty string", ErrInvalidConfig, k)
				}
			}
		case keyQuote:
			d.Quote, err = stringSetting(k, v)
			if s, ok := d.Quote.Get(); ok && s == "" {
				d.Quote = Explicit(`"`)
			}
		case keyEscape:
			d.Escape, err = stringSetting(k, v)
		case keyNullString:
			d.NullString, err = stringSetting(k, v)
		case keyCommentLineMarker:
			d.CommentLineMarker, err = stringSetting(k, v)
		case keySkipHeaderLines:
			d.SkipHeaderLines, err = intSetting(k, v)
		case keyTrimIfNotQuoted:
			d.TrimIfNotQuoted, err = boolSetting(k, v)
		case keyAllowExtraColumns:
			d.AllowExtraColumns, err = boolSetting(k, v)
		case keyAllowOptionalColumns:
			d.AllowOptionalColumns, err = boolSetting(k, v)
		case keyColumns:
			d.Columns, err = columnsSetting(k, v)
		default:
			if d.Extra == nil {
				d.Extra = map[string]any{}
			}
			d.Extra[k] = v
		}
		if err != nil {
			return DialectConfig{}, err
		}
	}
	return d, nil
}

// ToMap renders the config as a parser section. Unset settings are omitted,
// null settings render as nil.
func (d DialectConfig) ToMap() map[string]any {
	out := make(map[string]any, len(d.Extra)+11)
	for k, v := range d.Extra {
		out[k] = v
	}
	out[keyType] = "csv"

	putSetting(out, keyDelimiter, d.Delimiter)
	putSetting(out, keyQuote, d.Quote)
	putSetting(out, keyEscape, d.Escape)
	putSetting(out, keyNullString, d.NullString)
	putSetting(out, keyCommentLineMarker, d.CommentLineMarker)
	putSetting(out, keySkipHeaderLines, d.SkipHeaderLines)
	putSetting(out, keyTrimIfNotQuoted, d.TrimIfNotQuoted)
	putSetting(out, keyAllowExtraColumns, d.AllowExtraColumns)
	putSetting(out, keyAllowOptionalColumns, d.AllowOptionalColumns)

	if d.Columns.IsNull() {
		out[keyColumns] = nil
	} else if cols, ok := d.Columns.Get(); ok {
		list := make([]any, 0, len(cols))
		for _, c := range cols {
			col := map[string]any{"name": c.Name, "type": c.Type}
			if c.Format != "" {
				col["format"] = c.Format
			}
			list = append(list, col)
		}
		out[keyColumns] = list
	}
	return out
}

func putSetting[T any](out map[string]any, key string, s Setting[T]) {
	if !s.IsSet() {
		return
	}
	if v, ok := s.Get(); ok {
		out[key] = v
		return
	}
	out[key] = nil
}

func stringSetting(key string, v any) (Setting[string], error) {
	switch t := v.(type) {
	case nil:
		return ExplicitNull[string](), nil
	case string:
		return Explicit(t), nil
	default:
		return Setting[string]{}, fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidConfig, key, v)
	}
}

func boolSetting(key string, v any) (Setting[bool], error) {
	switch t := v.(type) {
	case nil:
		return ExplicitNull[bool](), nil
	case bool:
		return Explicit(t), nil
	default:
		return Setting[bool]{}, fmt.Errorf("%w: %s must be a boolean, got %T", ErrInvalidConfig, key, v)
	}
}

func intSetting(key string, v any) (Setting[int], error) {
	var n int64
	switch t := v.(type) {
	case int:
		n = int64(t)
	case int32:
		n = int64(t)
	case int64:
		n = t
	case uint:
		n = int64(t)
	case uint64:
		n = int64(t)
	case float64:
		if t != math.Trunc(t) {
			return Setting[int]{}, fmt.Errorf("%w: %s must be an integer, got %v", ErrInvalidConfig, key, t)
		}
		n = int64(t)
	default:
		return Setting[int]{}, fmt.Errorf("%w: %s must be an integer, got %T", ErrInvalidConfig, key, v)
	}
	if n < 0 {
		return Setting[int]{}, fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, key)
	}
	return Explicit(int(n)), nil
}

func columnsSetting(key string, v any) (Setting[[]ColumnSpec], error) {
	var items []map[string]any
	switch t := v.(type) {
	case nil:
		return ExplicitNull[[]ColumnSpec](), nil
	case []map[string]any:
		items = t
	case []any:
		for i, it := range t {
			m, ok := it.(map[string]any)
			if !ok {
				return Setting[[]ColumnSpec]{}, fmt.Errorf("%w: %s[%d] must be a mapping, got %T", ErrInvalidConfig, key, i, it)
			}
			items = append(items, m)
		}
	default:
		return Setting[[]ColumnSpec]{}, fmt.Errorf("%w: %s must be a list, got %T", ErrInvalidConfig, key, v)
	}

	cols := make([]ColumnSpec, 0, len(items))
	for i, m := range items {
		var c ColumnSpec
		for _, f := range []struct {
			name string
			dst  *string
		}{{"name", &c.Name}, {"type", &c.Type}, {"format", &c.Format}} {
			raw, ok := m[f.name]
			if !ok || raw == nil {
				continue
			}
			s, ok := raw.(string)
			if !ok {
				return Setting[[]ColumnSpec]{}, fmt.Errorf("%w: %s[%d].%s must be a string, got %T", ErrInvalidConfig, key, i, f.name, raw)
			}
			*f.dst = s
		}
		cols = append(cols, c)
	}
	return Explicit(cols), nil
}
