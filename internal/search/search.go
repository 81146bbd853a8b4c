// Package search implements the ten external-source fetchers the research
// and deep-research workflows fan out over, plus the worker-pool idiom
// shared by parallel web search and academic search.
package search

import (
	"context"

	"github.com/nvlabs/deepwatch/internal/resultproc"
)

// Result embeds resultproc.SearchResult and adds the academic-specific
// fields a fetcher may populate.
type Result struct {
	resultproc.SearchResult
	Authors          string
	Year             string
	DOI              string
	CitationCount    int
	SciHubURL        string
	FullTextAvailable bool
}

// Fetcher is the common shape of every search source.
type Fetcher func(ctx context.Context, query string, maxResults int) ([]Result, error)

// toSearchResults strips the academic fields for feeding into resultproc.
func toSearchResults(results []Result) []resultproc.SearchResult {
	out := make([]resultproc.SearchResult, len(results))
	for i, r := range results {
		out[i] = r.SearchResult
	}
	return out
}
