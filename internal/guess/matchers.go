package guess

import (
	"fmt"
	"regexp"
	"strings"
)

// Matchers are compiled per guess from the resolved characters, so every
// literal goes through regexp.QuoteMeta or notAny.

// notAny is a character class matching any rune not in s. A multi-character
// delimiter is approximated by excluding each of its runes.
func notAny(s string) string {
	var b strings.Builder
	b.WriteString("[^")
	for _, r := range s {
		fmt.Fprintf(&b, `\x{%x}`, r)
	}
	b.WriteString("]")
	return b.String()
}

// fieldStart matches the start of a line or a delimiter.
func fieldStart(delim string) string {
	return `(?:^|` + regexp.QuoteMeta(delim) + `)`
}

// fieldEnd matches a delimiter or the end of a line.
func fieldEnd(delim string) string {
	return `(?:$|` + regexp.QuoteMeta(delim) + `)`
}

type quoteMatchers struct {
	quote string
	// pair: a quoted run bounded by field edges with no quote inside.
	pair *regexp.Regexp
	// field: a quoted run bounded by field edges with no delimiter inside.
	field *regexp.Regexp
}

func newQuoteMatchers(delim, quote string) quoteMatchers {
	q := regexp.QuoteMeta(quote)
	start, end := fieldStart(delim), fieldEnd(delim)
	return quoteMatchers{
		quote: quote,
		pair:  regexp.MustCompile(start + `\s*` + q + notAny(quote) + `*\s*` + q + end),
		field: regexp.MustCompile(start + `\s*` + q + notAny(delim) + `*\s*` + q + end),
	}
}

// score is the quote weight of one line, or false when the line has no quote.
func (m quoteMatchers) score(line string) (float64, bool) {
	n := strings.Count(line, m.quote)
	if n == 0 {
		return 0, false
	}
	s := n +
		quotePairWeight*len(m.pair.FindAllStringIndex(line, -1)) +
		quoteFieldWeight*len(m.field.FindAllStringIndex(line, -1))
	return float64(s), true
}

// midValueQuote matches a quote that appears inside an unquoted value.
func midValueQuote(delim, quote string) *regexp.Regexp {
	return regexp.MustCompile(fieldStart(delim) + `\s*` + notAny(quote) + `+` + regexp.QuoteMeta(quote))
}

// escapeMatcher matches the escape candidate followed by a delimiter or quote.
func escapeMatcher(delim, quote, escape string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(escape) + `(?:` + regexp.QuoteMeta(delim) + `|` + regexp.QuoteMeta(quote) + `)`)
}

// fieldBounded matches s as a whole field.
func fieldBounded(delim, s string) *regexp.Regexp {
	return regexp.MustCompile(fieldStart(delim) + regexp.QuoteMeta(s) + fieldEnd(delim))
}

// countMatches sums non-overlapping matches of re over lines.
func countMatches(re *regexp.Regexp, lines []string) int {
	n := 0
	for _, l := range lines {
		n += len(re.FindAllStringIndex(l, -1))
	}
	return n
}
