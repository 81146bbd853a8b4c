package queryopt

import (
	"regexp"
	"strings"
)

// Intent tags the cache tier and downstream formatting choices for a query.
type Intent string

const (
	IntentNews     Intent = "news"
	IntentFinance  Intent = "finance"
	IntentAcademic Intent = "academic"
	IntentHowTo    Intent = "how_to"
	IntentGeneral  Intent = "general"
)

var newsKeywords = []string{"today", "latest", "breaking", "news", "this week", "yesterday", "right now"}
var financeKeywords = []string{"price", "stock", "market cap", "exchange rate", "crypto", "bitcoin"}
var academicKeywords = []string{"study", "paper", "research", "journal", "peer-reviewed", "arxiv"}
var howToPattern = regexp.MustCompile(`(?i)^how (do|can|to) `)

// stableIntents marks which classifications are cacheable under the long
// TTL: their answers don't meaningfully change hour to hour.
var stableIntents = map[Intent]bool{
	IntentAcademic: true,
	IntentHowTo:    true,
	IntentGeneral:  true,
}

// Classify returns the best-matching Intent for a cleaned query, a small
// keyword-and-pattern classifier grounded on the research workflow's
// keyword-extraction and model-selector's classification style.
func Classify(query string) Intent {
	lower := strings.ToLower(query)

	if containsAny(lower, newsKeywords) {
		return IntentNews
	}
	if containsAny(lower, financeKeywords) {
		return IntentFinance
	}
	if containsAny(lower, academicKeywords) {
		return IntentAcademic
	}
	if howToPattern.MatchString(query) {
		return IntentHowTo
	}
	return IntentGeneral
}

// IsStable reports whether an Intent's answers belong in the cache's stable
// (long-TTL) tier rather than the volatile one.
func IsStable(i Intent) bool {
	return stableIntents[i]
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
