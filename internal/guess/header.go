package guess

import (
	"math"
	"slices"
	"unicode/utf8"

	"csvguess/internal/schema"
)

// TypeClassifier assigns one type per column of the given rows.
type TypeClassifier interface {
	Classify(rows [][]*string) []schema.ColumnType
}

// headerCandidateTypes reports whether every type could be a column label.
func headerCandidateTypes(types []schema.ColumnType) bool {
	for _, t := range types {
		if t.Type != schema.String && t.Type != schema.Boolean {
			return false
		}
	}
	return true
}

// DetectHeader reports whether records[0] is a row of column names: its types
// differ from the remaining rows and are all string or boolean, or
// IsStringHeaderLine fires.
func DetectHeader(records [][]*string, firstTypes, otherTypes []schema.ColumnType) bool {
	if !slices.Equal(firstTypes, otherTypes) && headerCandidateTypes(firstTypes) {
		return true
	}
	return IsStringHeaderLine(records)
}

// IsStringHeaderLine looks for a column whose data values have nearly constant
// length (variance <= 0.2 over at least two values) while the first row's
// value diverges from that length by more than 70%. Lengths are counted in
// characters; nil values are ignored.
func IsStringHeaderLine(records [][]*string) bool {
	if len(records) == 0 {
		return false
	}
	for col, first := range records[0] {
		if first == nil {
			continue
		}
		var lengths []int
		for _, r := range records[1:] {
			if col < len(r) && r[col] != nil {
				lengths = append(lengths, utf8.RuneCountInString(*r[col]))
			}
		}
		if len(lengths) < 2 || Variance(lengths) > headerLengthVariance {
			continue
		}
		avg := Mean(lengths)
		firstLen := float64(utf8.RuneCountInString(*first))
		if avg == 0 {
			if firstLen > 1 {
				return true
			}
			continue
		}
		if math.Abs(avg-firstLen)/avg > headerLengthRatio {
			return true
		}
	}
	return false
}
