package guess

// GuessEscape counts each escape candidate directly followed by the delimiter
// or the quote. The highest nonzero count wins; on ties the earlier candidate
// wins, unlike the delimiter and quote guessers.
func GuessEscape(lines []string, delim, quote string) (string, bool) {
	best, bestN := "", 0
	for _, c := range EscapeCandidates {
		n := countMatches(escapeMatcher(delim, quote, c), lines)
		if n > bestN {
			best, bestN = c, n
		}
	}
	return best, bestN > 0
}
