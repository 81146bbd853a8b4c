package search

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/nvlabs/deepwatch/internal/errs"
	"github.com/nvlabs/deepwatch/internal/resultproc"
)

const duckduckgoHTMLURL = "https://html.duckduckgo.com/html/"

var ddgResultRe = regexp.MustCompile(`(?s)<a rel="nofollow" class="result__a" href="([^"]+)"[^>]*>(.*?)</a>.*?<a class="result__snippet"[^>]*>(.*?)</a>`)
var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

func stripTags(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}

// DuckDuckGoText fetches DuckDuckGo's HTML-only result page (no API key
// required). Three attempts with 2*n second backoff; the first attempt caps
// TLS at 1.2 to work around a known TLS-1.3-handshake failure against this
// endpoint from some network environments, then falls back to the default
// transport for subsequent attempts.
func DuckDuckGoText(ctx context.Context, query string, maxResults int) ([]Result, error) {
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		client := &http.Client{Timeout: 15 * time.Second}
		if attempt == 1 {
			client.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{MaxVersion: tls.VersionTLS12},
			}
		}

		results, err := fetchDDGOnce(ctx, client, query, maxResults)
		if err == nil {
			return results, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, errs.Interrupted
		}
		select {
		case <-time.After(time.Duration(2*attempt) * time.Second):
		case <-ctx.Done():
			return nil, errs.Interrupted
		}
	}
	return nil, lastErr
}

func fetchDDGOnce(ctx context.Context, client *http.Client, query string, maxResults int) ([]Result, error) {
	params := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, duckduckgoHTMLURL, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &errs.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &errs.NetworkError{StatusCode: resp.StatusCode}
	}

	body, err := readAll(resp.Body)
	if err != nil {
		return nil, &errs.NetworkError{Err: err}
	}

	matches := ddgResultRe.FindAllStringSubmatch(string(body), -1)
	out := make([]Result, 0, len(matches))
	for _, m := range matches {
		if maxResults > 0 && len(out) >= maxResults {
			break
		}
		out = append(out, Result{SearchResult: resultproc.SearchResult{
			Title:       stripTags(m[2]),
			Description: stripTags(m[3]),
			URL:         m[1],
			Source:      "DuckDuckGo",
		}})
	}
	return out, nil
}

// siteRestrictedFetcher builds a Fetcher that prefixes query with
// "site:<host>" and tags each result's description with "[<label>]", the
// shape shared by Scholar/PubMed/arXiv/bioRxiv/medRxiv.
func siteRestrictedFetcher(host, label string) Fetcher {
	return func(ctx context.Context, query string, maxResults int) ([]Result, error) {
		restricted := "site:" + host + " " + query
		results, err := DuckDuckGoText(ctx, restricted, maxResults)
		if err != nil {
			return nil, err
		}
		for i := range results {
			results[i].Source = label
			results[i].Description = "[" + label + "] " + results[i].Description
		}
		return results, nil
	}
}

var (
	ScholarSearch   = siteRestrictedFetcher("scholar.google.com", "Scholar")
	PubMedSearch    = siteRestrictedFetcher("pubmed.ncbi.nlm.nih.gov", "PubMed")
	ArxivSearch     = siteRestrictedFetcher("arxiv.org", "arXiv")
	BioRxivSearch   = siteRestrictedFetcher("biorxiv.org", "bioRxiv")
	MedRxivSearch   = siteRestrictedFetcher("medrxiv.org", "medRxiv")
)

// pmcURLPattern matches the PMC article URL shape results are filtered
// against, since PMC search avoids the unreliable site: filter and instead
// appends PMC-specific keywords to the raw query.
var pmcURLPattern = regexp.MustCompile(`(?i)ncbi\.nlm\.nih\.gov/pmc/articles/`)

// PMCSearch appends PMC-specific keywords rather than a site: filter (which
// is unreliable against this index), then filters results to those whose
// URL matches the PMC article pattern.
func PMCSearch(ctx context.Context, query string, maxResults int) ([]Result, error) {
	augmented := query + " PMC PubMed Central full text"
	results, err := DuckDuckGoText(ctx, augmented, 0)
	if err != nil {
		return nil, err
	}
	out := make([]Result, 0, maxResults)
	for _, r := range results {
		if !pmcURLPattern.MatchString(r.URL) {
			continue
		}
		r.Source = "PMC"
		out = append(out, r)
		if maxResults > 0 && len(out) >= maxResults {
			break
		}
	}
	return out, nil
}
