// Package resultproc deduplicates, ranks, and domain-diversifies search
// results.
package resultproc

import (
	"net/url"
	"sort"
	"strings"
)

// SearchResult is the common shape every search fetcher (internal/search)
// produces and every result-processing stage consumes.
type SearchResult struct {
	Title       string
	Description string
	URL         string
	Source      string
}

// DefaultMaxPerDomain is the domain-diversity cap applied by Process.
const DefaultMaxPerDomain = 2

// NormalizeURL lowercases scheme+host, strips a leading "www.", strips the
// trailing slash from the path, and drops the fragment while preserving the
// query string — exactly _normalize_url's behavior.
func NormalizeURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}

	host := strings.ToLower(parsed.Host)
	host = strings.TrimPrefix(host, "www.")
	path := strings.TrimSuffix(parsed.Path, "/")

	normalized := parsed.Scheme + "://" + host + path
	if parsed.RawQuery != "" {
		normalized += "?" + parsed.RawQuery
	}
	return normalized
}

func domainOf(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
}

// Dedup removes results whose normalized URL has already been seen,
// preserving first-seen order. Results with no URL are always kept.
func Dedup(results []SearchResult) []SearchResult {
	seen := make(map[string]struct{}, len(results))
	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		if r.URL == "" {
			out = append(out, r)
			continue
		}
		norm := NormalizeURL(r.URL)
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, r)
	}
	return out
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func intersectionCount(a, b map[string]struct{}) int {
	count := 0
	for w := range a {
		if _, ok := b[w]; ok {
			count++
		}
	}
	return count
}

// score implements calculate_score's weights exactly: +3/title word,
// +1/description word, +5 exact phrase in title, +2 exact phrase in
// description, +0.5 for a >3-char query word appearing in the domain.
func score(r SearchResult, queryLower string, queryWords map[string]struct{}) float64 {
	titleLower := strings.ToLower(r.Title)
	descLower := strings.ToLower(r.Description)

	var s float64
	if matches := intersectionCount(queryWords, wordSet(titleLower)); matches > 0 {
		s += float64(matches) * 3.0
	}
	if matches := intersectionCount(queryWords, wordSet(descLower)); matches > 0 {
		s += float64(matches) * 1.0
	}
	if queryLower != "" && strings.Contains(titleLower, queryLower) {
		s += 5.0
	}
	if queryLower != "" && strings.Contains(descLower, queryLower) {
		s += 2.0
	}

	if r.URL != "" {
		domain := domainOf(r.URL)
		for w := range queryWords {
			if len(w) > 3 && strings.Contains(domain, w) {
				s += 0.5
				break
			}
		}
	}
	return s
}

// Rank sorts results by relevance score, descending, stably (equal-score
// results keep their relative input order — the stability invariant).
func Rank(results []SearchResult, query string) []SearchResult {
	queryLower := strings.ToLower(query)
	queryWords := wordSet(query)

	scored := make([]float64, len(results))
	for i, r := range results {
		scored[i] = score(r, queryLower, queryWords)
	}

	out := make([]SearchResult, len(results))
	copy(out, results)
	indices := make([]int, len(results))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(i, j int) bool {
		return scored[indices[i]] > scored[indices[j]]
	})

	ranked := make([]SearchResult, len(results))
	for pos, idx := range indices {
		ranked[pos] = out[idx]
	}
	return ranked
}

// CapPerDomain keeps at most maxPerDomain results per domain, in input
// order, letting through any result whose URL doesn't parse or is empty.
func CapPerDomain(results []SearchResult, maxPerDomain int) []SearchResult {
	if maxPerDomain <= 0 {
		return results
	}
	counts := make(map[string]int)
	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		if r.URL == "" {
			out = append(out, r)
			continue
		}
		domain := domainOf(r.URL)
		if domain == "" {
			out = append(out, r)
			continue
		}
		if counts[domain] < maxPerDomain {
			counts[domain]++
			out = append(out, r)
		}
	}
	return out
}

// Process runs Dedup, Rank, CapPerDomain in order, the pipeline
// process_results implements.
func Process(results []SearchResult, query string) []SearchResult {
	if len(results) == 0 {
		return nil
	}
	deduped := Dedup(results)
	ranked := Rank(deduped, query)
	return CapPerDomain(ranked, DefaultMaxPerDomain)
}

// Merge flattens every result set and runs Process over the combined list,
// per merge_results.
func Merge(sets [][]SearchResult, query string) []SearchResult {
	var all []SearchResult
	for _, set := range sets {
		all = append(all, set...)
	}
	return Process(all, query)
}
