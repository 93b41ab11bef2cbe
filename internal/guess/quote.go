package guess

// GuessQuote scores each quote candidate by its raw count plus bonuses for
// quoted runs sitting on field boundaries, averaged over the lines that
// contain the candidate. The best average wins, the later candidate on ties,
// and must reach 10.
func GuessQuote(lines []string, delim string) (string, bool) {
	best, bestScore := "", 0.0
	for i, q := range QuoteCandidates {
		m := newQuoteMatchers(delim, q)
		var scores []float64
		for _, l := range lines {
			if s, ok := m.score(l); ok {
				scores = append(scores, s)
			}
		}
		avg := Mean(scores)
		if i == 0 || avg >= bestScore {
			best, bestScore = q, avg
		}
	}
	if bestScore < quoteMinScore {
		return "", false
	}
	return best, true
}

// ForceNoQuote reports whether quote shows up in the middle of an unquoted
// value on any line. Such data must not be parsed with quote enabled.
func ForceNoQuote(lines []string, delim, quote string) bool {
	re := midValueQuote(delim, quote)
	for _, l := range lines {
		if re.MatchString(l) {
			return true
		}
	}
	return false
}
