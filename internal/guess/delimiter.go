package guess

import "strings"

// GuessDelimiter picks the candidate whose per-line count is most consistent
// relative to its total. Ties go to the later candidate. It returns false when
// no candidate weighs more than 1, which usually means single-column data.
func GuessDelimiter(lines []string) (string, bool) {
	best, bestWeight := "", 0.0
	found := false
	counts := make([]int, len(lines))
	for _, d := range DelimiterCandidates {
		for i, l := range lines {
			counts[i] = strings.Count(l, d)
		}
		total := Sum(counts)
		if total == 0 {
			continue
		}
		sd := StdDev(counts)
		if sd == 0 {
			sd = stddevEpsilon
		}
		w := float64(total) / sd
		if !found || w >= bestWeight {
			best, bestWeight, found = d, w, true
		}
	}
	if !found || bestWeight <= delimiterMinWeight {
		return "", false
	}
	return best, true
}
