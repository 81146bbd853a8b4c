package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/nvlabs/deepwatch/agent"
	"github.com/nvlabs/deepwatch/internal/cache"
	"github.com/nvlabs/deepwatch/internal/queryopt"
	"github.com/nvlabs/deepwatch/internal/registry"
	"github.com/nvlabs/deepwatch/internal/resultproc"
)

// Tools bundles the search-related clients and cache that web_search and
// academic_search need, so RegisterTools has a single dependency to accept
// rather than five positional clients.
type Tools struct {
	Brave         *BraveClient
	Core          *CoreClient
	Cache         *cache.TieredCache
	MaxResults    int
	SciHubMirrors []string
}

// DefaultMaxResults mirrors the original's "a handful of results, not a
// firehose" per-source cap.
const DefaultMaxResults = 8

func (t *Tools) maxResults() int {
	if t.MaxResults > 0 {
		return t.MaxResults
	}
	return DefaultMaxResults
}

func intArg(args map[string]interface{}, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// WebSearch runs the query-optimizer → cache → parallel-fetch → result-
// processor pipeline, grounded on the original router's "web_search" tool
// call and _result_processor.py's merge/rank/dedup/domain-cap contract.
func (t *Tools) WebSearch(session *registry.Session, args map[string]interface{}) (string, error) {
	raw, _ := args["query"].(string)
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("web_search: query must be non-empty")
	}
	cleaned, err := queryopt.Strip(raw)
	if err != nil {
		return "", err
	}

	ctx := context.Background()
	maxResults := intArg(args, "max_results", t.maxResults())
	intent := queryopt.Classify(cleaned)
	stable := queryopt.IsStable(intent)
	normalized := resultproc.NormalizeURL("search://" + strings.ToLower(cleaned))
	key := cache.Key(normalized, maxResults)

	if t.Cache != nil {
		if cached, ok, _ := t.Cache.Get(ctx, key, stable); ok {
			return cached, nil
		}
	}

	sets, err := ParallelWebSearch(ctx, t.Brave, cleaned, maxResults)
	if err != nil {
		return "", err
	}
	merged := resultproc.Merge(sets, cleaned)
	formatted := FormatSearchResults(cleaned, merged)

	if t.Cache != nil {
		_ = t.Cache.Set(ctx, key, formatted, stable)
	}
	return formatted, nil
}

// AcademicSearch runs the 7-source academic fan-out plus Sci-Hub
// full-text probing, grounded on the original's academic_search tool.
func (t *Tools) AcademicSearch(session *registry.Session, args map[string]interface{}) (string, error) {
	raw, _ := args["query"].(string)
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("academic_search: query must be non-empty")
	}
	ctx := context.Background()
	maxPerSource := intArg(args, "max_per_source", 5)

	results, err := AcademicSearch(ctx, raw, maxPerSource, t.Core, t.SciHubMirrors)
	if err != nil {
		return "", err
	}
	return FormatAcademicResults(raw, results), nil
}

// FormatSearchResults renders merged web results with the
// "Search results for:" marker that internal/turn's context-injection
// fallback scans conversation history for.
func FormatSearchResults(query string, results []resultproc.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("Search results for: %s\n\nNo results found.", query)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Search results for: %s\n\n", query)
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n   %s\n   URL: %s\n\n", i+1, r.Title, r.Description, r.URL)
	}
	return b.String()
}

// FormatAcademicResults renders academic results with the
// "Academic search results for:" marker.
func FormatAcademicResults(query string, results []Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("Academic search results for: %s\n\nNo results found.", query)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Academic search results for: %s\n\n", query)
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s", i+1, r.Title)
		if r.Year != "" {
			fmt.Fprintf(&b, " (%s)", r.Year)
		}
		b.WriteString("\n")
		if r.Authors != "" {
			fmt.Fprintf(&b, "   Authors: %s\n", r.Authors)
		}
		if r.DOI != "" {
			fmt.Fprintf(&b, "   DOI: %s\n", r.DOI)
		}
		fmt.Fprintf(&b, "   URL: %s\n", r.URL)
		if r.FullTextAvailable {
			fmt.Fprintf(&b, "   Full text: %s\n", r.SciHubURL)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RegisterTools wires web_search and academic_search into reg.
func (t *Tools) RegisterTools(reg *registry.Registry) {
	reg.Register(agent.ToolSpec{
		Name:        "web_search",
		Description: "Search the web for current information via Brave and DuckDuckGo, merged and ranked.",
	}, t.WebSearch)

	reg.Register(agent.ToolSpec{
		Name:        "academic_search",
		Description: "Search academic sources (arXiv, PubMed, CORE, Google Scholar, bioRxiv, medRxiv, PMC) with Sci-Hub full-text probing.",
	}, t.AcademicSearch)
}
