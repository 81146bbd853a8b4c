package search

import (
	"context"
	"fmt"

	"github.com/nvlabs/deepwatch/internal/errs"
	"github.com/nvlabs/deepwatch/internal/resultproc"
)

// ParallelWebSearch fans Brave web search and DuckDuckGo text search out
// concurrently, collecting whichever non-empty result sets come back. If
// every source fails, it returns a user-visible error enumerating which
// sources were attempted, rather than an opaque aggregate error.
func ParallelWebSearch(ctx context.Context, brave *BraveClient, query string, maxResults int) ([][]resultproc.SearchResult, error) {
	type sourceResult struct {
		name    string
		results []resultproc.SearchResult
		err     error
	}

	jobs := []Job{
		func(ctx context.Context) (interface{}, error) {
			results, err := brave.Web(ctx, query, maxResults)
			return sourceResult{name: "Brave", results: toSearchResults(results), err: err}, nil
		},
		func(ctx context.Context) (interface{}, error) {
			results, err := DuckDuckGoText(ctx, query, maxResults)
			return sourceResult{name: "DuckDuckGo", results: toSearchResults(results), err: err}, nil
		},
	}

	raw, err := RunPool(ctx, jobs, 2)
	if err != nil {
		return nil, err
	}

	var sets [][]resultproc.SearchResult
	var attempted []string
	var succeeded bool
	for _, r := range raw {
		sr, ok := r.(sourceResult)
		if !ok {
			continue
		}
		attempted = append(attempted, sr.name)
		if sr.err == nil && len(sr.results) > 0 {
			sets = append(sets, sr.results)
			succeeded = true
		}
	}

	if !succeeded {
		return nil, &errs.InvalidResponseError{Reason: fmt.Sprintf("no results from any source (attempted: %v)", attempted)}
	}
	return sets, nil
}
