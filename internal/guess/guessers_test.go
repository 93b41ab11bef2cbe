package guess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuessDelimiter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		lines  []string
		want   string
		wantOK bool
	}{
		{"comma", []string{"a,b,c", "d,e,f", "g,h,i"}, ",", true},
		{"tab", []string{"a\tb", "c\td"}, "\t", true},
		{"semicolon beats stray commas", []string{"a;b,x;c", "d;e;f", "g;h;i,j,k"}, ";", true},
		{"tie goes to the later candidate", []string{"a,b|c", "d,e|f"}, "|", true},
		{"no candidate at all", []string{"abc", "def"}, "", false},
		{"empty sample", nil, "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := GuessDelimiter(tt.lines)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGuessQuote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		lines  []string
		want   string
		wantOK bool
	}{
		{"double quoted fields", []string{`"a","b"`, `"c","d"`}, `"`, true},
		{"single quoted fields", []string{`'a','b'`, `'c','d'`}, "'", true},
		{"quoted with spaces", []string{` "a" , "b"`}, `"`, true},
		{"no quotes", []string{"a,b", "c,d"}, "", false},
		{"inch marks only", []string{`5" screen,x`}, "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := GuessQuote(tt.lines, ",")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestForceNoQuote(t *testing.T) {
	t.Parallel()

	assert.False(t, ForceNoQuote([]string{"a,b", "c,d"}, ",", `"`))
	assert.False(t, ForceNoQuote([]string{`"a","b"`}, ",", `"`))
	assert.True(t, ForceNoQuote([]string{"a,b", `5" screen,x`}, ",", `"`))
	assert.True(t, ForceNoQuote([]string{`a|b 2" wide`}, "|", `"`))
}

func TestGuessEscape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		lines  []string
		quote  string
		want   string
		wantOK bool
	}{
		{"doubled quotes", []string{`"a""b","c"`}, `"`, `"`, true},
		{"backslash wins the tie", []string{`"a\"b","c"`}, `"`, `\`, true},
		{"backslash before delimiter", []string{`'a\,b\,c',d`}, "'", `\`, true},
		{"no signal", []string{"a,b"}, `"`, "", false},
		{"doubled single quotes are not an escape", []string{`'it''s','x'`, `'a','b'`}, "'", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := GuessEscape(tt.lines, ",", tt.quote)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGuessNullString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		lines  []string
		delim  string
		want   string
		wantOK bool
	}{
		{"null with semicolons", []string{"a;null;c", "d;e;null"}, ";", "null", true},
		{"mysql style", []string{`1,\N`, `\N,2`}, ",", `\N`, true},
		{"most frequent wins", []string{"NULL,x,NULL", "null,y"}, ",", "NULL", true},
		{"first wins ties", []string{"NULL,null"}, ",", "null", true},
		{"embedded text does not count", []string{"nullable,annulled"}, ",", "", false},
		{"none", []string{"a,b"}, ",", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := GuessNullString(tt.lines, tt.delim)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGuessSkipHeaderLines(t *testing.T) {
	t.Parallel()

	threes := func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = 3
		}
		return out
	}

	tests := []struct {
		name   string
		counts []int
		want   int
	}{
		{"empty", nil, 0},
		{"single record", []int{3}, 0},
		{"stable from the start", []int{3, 3, 3}, 0},
		{"one preamble line", append([]int{1}, threes(4)...), 1},
		// The record just before the boundary must already be as wide as the
		// data, so three narrow records give a skip of 3. The minimal-stddev
		// window search yields 3 here, not the 2 a looser reading suggests.
		{"three narrow lines then data", append([]int{1, 1, 1}, threes(10)...), 3},
		{"two narrow lines then data", append([]int{1, 1}, threes(11)...), 2},
		{"narrowing rows are fine", []int{4, 3, 2, 1}, 0},
		{"widening rows never settle", []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, GuessSkipHeaderLines(tt.counts))
		})
	}
}

func TestGuessCommentLineMarker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		lines    []string
		quote    string
		null     string
		want     string
		wantOK   bool
		wantRest []string
	}{
		{
			name:     "hash",
			lines:    []string{"# exported", "a,b", "c,d"},
			quote:    `"`,
			want:     "#",
			wantOK:   true,
			wantRest: []string{"a,b", "c,d"},
		},
		{
			name:     "most frequent marker",
			lines:    []string{"// x", "// y", "# z", "a"},
			want:     "//",
			wantOK:   true,
			wantRest: []string{"# z", "a"},
		},
		{
			name:     "first wins ties",
			lines:    []string{"# x", "// y", "a"},
			want:     "#",
			wantOK:   true,
			wantRest: []string{"// y", "a"},
		},
		{
			name:     "null token lines are data",
			lines:    []string{"#N/A,1", "#N/A", "#note", "#N/Ax,2"},
			null:     "#N/A",
			want:     "#",
			wantOK:   true,
			wantRest: []string{"#N/A,1", "#N/A"},
		},
		{
			name:     "quoted first field is data",
			lines:    []string{"#a", "#b,c"},
			quote:    "#",
			wantRest: []string{"#a", "#b,c"},
		},
		{
			name:     "none",
			lines:    []string{"a,b", "c,d"},
			wantRest: []string{"a,b", "c,d"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, rest, ok := GuessCommentLineMarker(tt.lines, ",", tt.quote, tt.null)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}
