package tokenizer

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values(recs []Record) [][]string {
	out := make([][]string, 0, len(recs))
	for _, r := range recs {
		row := make([]string, 0, len(r.Fields))
		for _, f := range r.Fields {
			row = append(row, f.Value)
		}
		out = append(out, row)
	}
	return out
}

func rfc() Config {
	return Config{Delimiter: ",", Quote: `"`, Escape: `"`}
}

func TestNewRejectsUnusableConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
	}{
		{"empty delimiter", Config{}},
		{"multi-char quote", Config{Delimiter: ",", Quote: `""`}},
		{"multi-char escape", Config{Delimiter: ",", Quote: `"`, Escape: `\\`}},
		{"quote equals delimiter", Config{Delimiter: ",", Quote: ","}},
		{"escape equals delimiter", Config{Delimiter: ";", Quote: `"`, Escape: ";"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tt.cfg, []string{"a"})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnusableConfig)
		})
	}
}

func TestTokenizeRecords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cfg   Config
		lines []string
		want  [][]string
	}{
		{
			name:  "plain",
			cfg:   rfc(),
			lines: []string{"a,b,c", "d,e,f"},
			want:  [][]string{{"a", "b", "c"}, {"d", "e", "f"}},
		},
		{
			name:  "trailing delimiter yields empty field",
			cfg:   rfc(),
			lines: []string{"a,b,"},
			want:  [][]string{{"a", "b", ""}},
		},
		{
			name:  "quoted with delimiter inside",
			cfg:   rfc(),
			lines: []string{`"a,b",c`},
			want:  [][]string{{"a,b", "c"}},
		},
		{
			name:  "doubled quote escape",
			cfg:   rfc(),
			lines: []string{`"say ""hi""",x`},
			want:  [][]string{{`say "hi"`, "x"}},
		},
		{
			name:  "backslash escape",
			cfg:   Config{Delimiter: ",", Quote: `"`, Escape: `\`},
			lines: []string{`"a\"b",c`},
			want:  [][]string{{`a"b`, "c"}},
		},
		{
			name:  "backslash before ordinary char is literal",
			cfg:   Config{Delimiter: ",", Quote: `"`, Escape: `\`},
			lines: []string{`"C:\temp",c`},
			want:  [][]string{{`C:\temp`, "c"}},
		},
		{
			name:  "quote inside unquoted value is literal",
			cfg:   rfc(),
			lines: []string{`5" screen,x`},
			want:  [][]string{{`5" screen`, "x"}},
		},
		{
			name:  "quoting disabled",
			cfg:   Config{Delimiter: ","},
			lines: []string{`"a","b"`},
			want:  [][]string{{`"a"`, `"b"`}},
		},
		{
			name:  "tab delimiter with quotes",
			cfg:   Config{Delimiter: "\t", Quote: `"`, Escape: `"`},
			lines: []string{"\"a\"\t\"b\""},
			want:  [][]string{{"a", "b"}},
		},
		{
			name:  "trim if not quoted",
			cfg:   Config{Delimiter: ",", Quote: `"`, Escape: `"`, TrimIfNotQuoted: true},
			lines: []string{` 1 ,  "  x  " , 2`},
			want:  [][]string{{"1", "  x  ", "2"}},
		},
		{
			name:  "no trim keeps spaces and leading space prevents quoting",
			cfg:   rfc(),
			lines: []string{` 1, "x"`},
			want:  [][]string{{" 1", ` "x"`}},
		},
		{
			name:  "multi-line quoted value",
			cfg:   rfc(),
			lines: []string{`1,"first`, `second",2`, "3,4"},
			want:  [][]string{{"1", "first\nsecond", "2"}, {"3", "4"}},
		},
		{
			name:  "comment lines skipped",
			cfg:   Config{Delimiter: ",", Quote: `"`, CommentLineMarker: "//"},
			lines: []string{"// header comment", "a,b"},
			want:  [][]string{{"a", "b"}},
		},
		{
			name:  "empty lines kept",
			cfg:   rfc(),
			lines: []string{"a,b", "", "c,d"},
			want:  [][]string{{"a", "b"}, {""}, {"c", "d"}},
		},
		{
			name:  "empty lines skipped",
			cfg:   Config{Delimiter: ",", Quote: `"`, SkipEmptyLines: true},
			lines: []string{"a,b", "", "c,d"},
			want:  [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:  "multi-character delimiter",
			cfg:   Config{Delimiter: "::"},
			lines: []string{"a::b::c"},
			want:  [][]string{{"a", "b", "c"}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tk, err := New(tt.cfg, tt.lines)
			require.NoError(t, err)
			var bad []*InvalidValueError
			got := tk.All(func(e *InvalidValueError) { bad = append(bad, e) })
			assert.Empty(t, bad)
			assert.Equal(t, tt.want, values(got))
		})
	}
}

func TestQuotedFlag(t *testing.T) {
	t.Parallel()

	tk, err := New(rfc(), []string{`null,"null"`})
	require.NoError(t, err)
	rec, err := tk.Next()
	require.NoError(t, err)
	require.Len(t, rec.Fields, 2)
	assert.False(t, rec.Fields[0].Quoted)
	assert.True(t, rec.Fields[1].Quoted)
}

func TestMalformedRecordIsSkippedAndScanResumes(t *testing.T) {
	t.Parallel()

	tk, err := New(rfc(), []string{"a,b", `"x"y,z`, "c,d"})
	require.NoError(t, err)

	rec, err := tk.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Line)

	_, err = tk.Next()
	var inv *InvalidValueError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, 2, inv.Line)
	assert.Contains(t, inv.Error(), "line 2")

	rec, err = tk.Next()
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Line)
	assert.Equal(t, [][]string{{"c", "d"}}, values([]Record{rec}))

	_, err = tk.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestUnterminatedQuoteSkipsOnlyStartingLine(t *testing.T) {
	t.Parallel()

	tk, err := New(rfc(), []string{"a,b", `c,"open`, "e,f"})
	require.NoError(t, err)

	var bad []*InvalidValueError
	got := tk.All(func(e *InvalidValueError) { bad = append(bad, e) })

	require.Len(t, bad, 1)
	assert.Equal(t, 2, bad[0].Line)
	assert.Equal(t, [][]string{{"a", "b"}, {"e", "f"}}, values(got))
}

func TestMaxQuotedSize(t *testing.T) {
	t.Parallel()

	cfg := rfc()
	cfg.MaxQuotedSize = 4
	tk, err := New(cfg, []string{`"abcdefgh",x`, "ok"})
	require.NoError(t, err)

	var bad []*InvalidValueError
	got := tk.All(func(e *InvalidValueError) { bad = append(bad, e) })
	require.Len(t, bad, 1)
	assert.Equal(t, [][]string{{"ok"}}, values(got))
}

func TestStdlibReader(t *testing.T) {
	t.Parallel()

	t.Run("supports rfc dialect", func(t *testing.T) {
		t.Parallel()
		r, err := NewStdlib(rfc(), []string{`"a,b",c`, "d,e"})
		require.NoError(t, err)

		rec, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, 1, rec.Line)
		assert.Equal(t, [][]string{{"a,b", "c"}}, values([]Record{rec}))

		rec, err = r.Next()
		require.NoError(t, err)
		assert.Equal(t, 2, rec.Line)

		_, err = r.Next()
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("bare quote is invalid", func(t *testing.T) {
		t.Parallel()
		r, err := NewStdlib(rfc(), []string{`a"b,c`})
		require.NoError(t, err)
		_, err = r.Next()
		var inv *InvalidValueError
		assert.True(t, errors.As(err, &inv))
	})

	t.Run("rejects unsupported dialects", func(t *testing.T) {
		t.Parallel()
		for _, cfg := range []Config{
			{Delimiter: ",", Quote: "'"},
			{Delimiter: ",", Quote: `"`, Escape: `\`},
			{Delimiter: "::", Quote: `"`},
			{Delimiter: `"`, Quote: `"`},
			{Delimiter: ",", Quote: `"`, CommentLineMarker: "//"},
		} {
			assert.False(t, StdlibSupports(cfg), "%+v", cfg)
			_, err := NewStdlib(cfg, nil)
			assert.ErrorIs(t, err, ErrUnusableConfig)
		}
	})
}
