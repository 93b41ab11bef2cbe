package guess

import "strings"

// GuessCommentLineMarker finds the candidate prefix that starts the most
// lines, first candidate on ties. Lines starting with the quote, or with the
// null token as a whole first field, never count as comments. On a hit it
// returns the marker and the lines that remain once comments are removed;
// otherwise lines come back unchanged.
func GuessCommentLineMarker(lines []string, delim, quote, nullString string) (string, []string, bool) {
	excluded := func(l string) bool {
		if quote != "" && strings.HasPrefix(l, quote) {
			return true
		}
		if nullString != "" && strings.HasPrefix(l, nullString) {
			rest := l[len(nullString):]
			if rest == "" || strings.HasPrefix(rest, delim) {
				return true
			}
		}
		return false
	}

	best, bestN := "", 0
	for _, c := range CommentLineMarkerCandidates {
		n := 0
		for _, l := range lines {
			if !excluded(l) && strings.HasPrefix(l, c) {
				n++
			}
		}
		if n > bestN {
			best, bestN = c, n
		}
	}
	if bestN == 0 {
		return "", lines, false
	}
	return best, dropComments(lines, best, excluded), true
}

// dropComments removes lines starting with marker unless keep says otherwise.
func dropComments(lines []string, marker string, keep func(string) bool) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.HasPrefix(l, marker) && (keep == nil || !keep(l)) {
			continue
		}
		out = append(out, l)
	}
	return out
}
