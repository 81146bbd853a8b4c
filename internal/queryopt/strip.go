// Package queryopt strips meta-language from user queries before they reach
// a search primitive and classifies query intent for cache-tier routing.
package queryopt

import (
	"regexp"
	"strings"

	"github.com/nvlabs/deepwatch/internal/errs"
)

var metaPatterns = []*regexp.Regexp{
	// Leading "(let's)?(do a)?(web) search (for|to|about|on) ..."
	regexp.MustCompile(`(?i)^\s*(let'?s\s+)?(do\s+an?\s+)?(web\s+)?search\s+(for|to|about|on)(\s+|$)`),
	// Embedded "and what it means" / "better understand the context around ..."
	regexp.MustCompile(`(?i)\s*,?\s*and\s+what\s+it\s+means\b`),
	regexp.MustCompile(`(?i)\s*(to\s+)?better\s+understand\s+the\s+context\s+around\b`),
	// Trailing "what does this mean" / "to (better) understand"
	regexp.MustCompile(`(?i)\s*,?\s*what\s+does\s+this\s+mean\s*\.?\s*$`),
	regexp.MustCompile(`(?i)\s*,?\s*to\s+(better\s+)?understand\s*\.?\s*$`),
	// Leading "(behind|about|regarding) " only as the very first token.
	regexp.MustCompile(`(?i)^(behind|about|regarding)\s+`),
}

// Strip removes meta-language wrapping from query, returning the cleaned
// search term. If stripping would leave nothing, it returns
// InvalidArgumentError rather than searching for an empty string.
func Strip(query string) (string, error) {
	cleaned := query
	for _, pattern := range metaPatterns {
		cleaned = pattern.ReplaceAllString(cleaned, "")
	}
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return "", &errs.InvalidArgumentError{Reason: "query contained only meta-language; please restate what to search for"}
	}
	return cleaned, nil
}
