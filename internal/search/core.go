package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/nvlabs/deepwatch/internal/errs"
	"github.com/nvlabs/deepwatch/internal/resultproc"
)

const coreAPIURL = "https://api.core.ac.uk/v3/search/works"

// CoreClient queries the CORE aggregator's authenticated JSON API.
type CoreClient struct {
	APIKey     string
	HTTPClient *http.Client
}

func NewCoreClient(apiKey string) *CoreClient {
	return &CoreClient{APIKey: apiKey, HTTPClient: http.DefaultClient}
}

type coreResponse struct {
	Results []struct {
		Title         string   `json:"title"`
		Abstract      string   `json:"abstract"`
		DOI           string   `json:"doi"`
		YearPublished int      `json:"yearPublished"`
		CitationCount int      `json:"citationCount"`
		DownloadURL   string   `json:"downloadUrl"`
		Authors       []struct {
			Name string `json:"name"`
		} `json:"authors"`
	} `json:"results"`
}

// Search queries CORE, extracting first-three-authors+"et al.", year,
// citation_count, DOI, and the best available link.
func (c *CoreClient) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if c.APIKey == "" {
		return nil, &errs.ConfigError{Remediation: "set CORE_API_KEY to enable CORE academic search"}
	}

	params := url.Values{"q": {query}, "limit": {fmt.Sprint(clampCount(maxResults))}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coreAPIURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
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

	var parsed coreResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &errs.InvalidResponseError{Reason: "malformed core response: " + err.Error()}
	}

	out := make([]Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		authorNames := make([]string, 0, len(r.Authors))
		for _, a := range r.Authors {
			authorNames = append(authorNames, a.Name)
		}
		authors := summarizeAuthors(authorNames)

		year := ""
		if r.YearPublished > 0 {
			year = fmt.Sprint(r.YearPublished)
		}

		out = append(out, Result{
			SearchResult: resultproc.SearchResult{
				Title:       r.Title,
				Description: "[CORE] " + r.Abstract,
				URL:         r.DownloadURL,
				Source:      "CORE",
			},
			Authors:       authors,
			Year:          year,
			DOI:           r.DOI,
			CitationCount: r.CitationCount,
		})
	}
	return out, nil
}

// summarizeAuthors renders the first three authors plus "et al." when more
// follow.
func summarizeAuthors(names []string) string {
	if len(names) == 0 {
		return ""
	}
	if len(names) <= 3 {
		return strings.Join(names, ", ")
	}
	return strings.Join(names[:3], ", ") + " et al."
}
