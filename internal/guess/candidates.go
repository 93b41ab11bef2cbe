package guess

// Candidate lists are ordered. Tie-breaks depend on the order.
var (
	DelimiterCandidates         = []string{",", "\t", "|", ";"}
	QuoteCandidates             = []string{`"`, "'"}
	NullStringCandidates        = []string{"null", "NULL", "#N/A", `\N`}
	CommentLineMarkerCandidates = []string{"#", "//"}
	EscapeCandidates            = []string{`\`, `"`}
)

const (
	// MaxSkipLines bounds the preamble search.
	MaxSkipLines = 10
	// NoSkipDetectLines is the lookahead that confirms a preamble boundary.
	NoSkipDetectLines = 10

	delimiterMinWeight = 1.0
	quoteMinScore      = 10.0

	quotePairWeight      = 20
	quoteFieldWeight     = 40
	stddevEpsilon        = 1e-9
	headerLengthVariance = 0.2
	headerLengthRatio    = 0.7

	defaultDelimiter = ","
	rfcQuote         = `"`
)
