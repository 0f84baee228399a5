package app

import (
	"regexp"
	"strings"
)

// universityKeywords is the closed set of recognised universities. Order
// matters: the first keyword that appears in a query wins, regardless of
// where it sits in the text.
var universityKeywords = []string{
	"nust", "fast", "lums", "comsats", "air", "iba", "giki",
	"stanford", "oxford", "mit", "caltech", "harvard", "cambridge",
	"berkeley", "princeton",
}

var universityPatterns = compileKeywordPatterns(universityKeywords)

func compileKeywordPatterns(keywords []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(keywords))
	for i, keyword := range keywords {
		patterns[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
	}
	return patterns
}

// ResolveUniversity extracts a university identifier from free text by
// whole-word keyword match. Returns false when no known university is
// mentioned.
func ResolveUniversity(query string) (string, bool) {
	lowered := strings.ToLower(query)
	for i, pattern := range universityPatterns {
		if pattern.MatchString(lowered) {
			return universityKeywords[i], true
		}
	}
	return "", false
}
