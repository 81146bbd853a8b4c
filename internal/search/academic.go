package search

import (
	"context"
	"strings"

	"github.com/nvlabs/deepwatch/internal/errs"
)

// academicSources is the 7-source fan-out set searched concurrently.
func academicSources(core *CoreClient) []Fetcher {
	return []Fetcher{
		ScholarSearch,
		PubMedSearch,
		core.Search,
		ArxivSearch,
		BioRxivSearch,
		MedRxivSearch,
		PMCSearch,
	}
}

// AcademicSearch fans the 7 academic sources out over a worker pool (≤7
// workers), dedups by DOI-or-lowercased-title, then probes Sci-Hub for each
// surviving result over a second pool (≤10 workers), attaching SciHubURL
// and FullTextAvailable when found. Context cancellation propagates
// errs.Interrupted.
func AcademicSearch(ctx context.Context, query string, maxPerSource int, core *CoreClient, mirrors []string) ([]Result, error) {
	sources := academicSources(core)
	jobs := make([]Job, len(sources))
	for i, fetch := range sources {
		fetch := fetch
		jobs[i] = func(ctx context.Context) (interface{}, error) {
			results, err := fetch(ctx, query, maxPerSource)
			if err != nil {
				return []Result{}, nil // a single source failing doesn't fail the whole search
			}
			return results, nil
		}
	}

	raw, err := RunPool(ctx, jobs, 7)
	if err != nil {
		return nil, err
	}

	var all []Result
	for _, r := range raw {
		if results, ok := r.([]Result); ok {
			all = append(all, results...)
		}
	}

	deduped := dedupAcademic(all)
	if ctx.Err() != nil {
		return nil, errs.Interrupted
	}

	enrichJobs := make([]Job, len(deduped))
	for i, result := range deduped {
		result := result
		enrichJobs[i] = func(ctx context.Context) (interface{}, error) {
			identifier := result.DOI
			if identifier == "" {
				identifier = result.Title
			}
			if pdfURL, found := ProbeSciHub(ctx, identifier, mirrors); found {
				result.SciHubURL = pdfURL
				result.FullTextAvailable = true
			}
			return result, nil
		}
	}

	enriched, err := RunPool(ctx, enrichJobs, 10)
	if err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(enriched))
	for _, r := range enriched {
		if result, ok := r.(Result); ok {
			out = append(out, result)
		}
	}
	return out, nil
}

func dedupAcademic(results []Result) []Result {
	seen := make(map[string]struct{}, len(results))
	out := make([]Result, 0, len(results))
	for _, r := range results {
		key := r.DOI
		if key == "" {
			key = strings.ToLower(strings.TrimSpace(r.Title))
		}
		if key == "" {
			out = append(out, r)
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
