package guess

// GuessNullString returns the null token that appears most often as a whole
// field, first candidate on ties. There is no default: a missing guess keeps
// "null" and the empty string distinct.
func GuessNullString(lines []string, delim string) (string, bool) {
	best, bestN := "", 0
	for _, s := range NullStringCandidates {
		n := countMatches(fieldBounded(delim, s), lines)
		if n > bestN {
			best, bestN = s, n
		}
	}
	return best, bestN > 0
}
