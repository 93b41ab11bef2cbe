package guess

// GuessSkipHeaderLines returns how many leading records are preamble, given
// the field count of each record. It returns i-1 for the first i in
// 1..min(MaxSkipLines, len-1) where none of the next NoSkipDetectLines
// records is wider than record i-1.
func GuessSkipHeaderLines(counts []int) int {
	limit := min(MaxSkipLines, len(counts)-1)
	for i := 1; i <= limit; i++ {
		check := counts[i-1]
		end := min(i+NoSkipDetectLines, len(counts))
		ok := true
		for _, c := range counts[i:end] {
			if c > check {
				ok = false
				break
			}
		}
		if ok {
			return i - 1
		}
	}
	return 0
}
