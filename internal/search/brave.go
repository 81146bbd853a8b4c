package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/nvlabs/deepwatch/internal/errs"
	"github.com/nvlabs/deepwatch/internal/resultproc"
)

func readAll(r io.Reader) ([]byte, error) {
	return io.ReadAll(r)
}

const (
	braveWebURL    = "https://api.search.brave.com/res/v1/web/search"
	braveNewsURL   = "https://api.search.brave.com/res/v1/news/search"
	braveImagesURL = "https://api.search.brave.com/res/v1/images/search"
)

// BraveClient carries the API token every Brave endpoint requires.
type BraveClient struct {
	Token      string
	HTTPClient *http.Client
}

// NewBraveClient builds a client with a default http.Client.
func NewBraveClient(token string) *BraveClient {
	return &BraveClient{Token: token, HTTPClient: http.DefaultClient}
}

func clampCount(n int) int {
	if n <= 0 {
		return 10
	}
	if n > 20 {
		return 20
	}
	return n
}

func (c *BraveClient) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Subscription-Token", c.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &errs.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &errs.NetworkError{StatusCode: resp.StatusCode}
	}

	var buf []byte
	buf, err = readAll(resp.Body)
	return buf, err
}

type braveWebResponse struct {
	Web struct {
		Results []struct {
			Title         string `json:"title"`
			Description   string `json:"description"`
			URL           string `json:"url"`
			Age           string `json:"age"`
			PublishedDate string `json:"published_date"`
		} `json:"results"`
	} `json:"web"`
}

// Web fetches Brave's general web search.
func (c *BraveClient) Web(ctx context.Context, query string, maxResults int) ([]Result, error) {
	params := url.Values{"q": {query}, "count": {fmt.Sprint(clampCount(maxResults))}}
	body, err := c.get(ctx, braveWebURL, params)
	if err != nil {
		return nil, err
	}
	var parsed braveWebResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &errs.InvalidResponseError{Reason: "malformed brave web response: " + err.Error()}
	}

	out := make([]Result, 0, len(parsed.Web.Results))
	for _, r := range parsed.Web.Results {
		out = append(out, Result{SearchResult: wrapSR(r.Title, r.Description, r.URL, "Brave")})
	}
	return out, nil
}

type braveNewsResponse struct {
	Results []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
	} `json:"results"`
}

// News fetches Brave's news endpoint with freshness=pd (past day).
func (c *BraveClient) News(ctx context.Context, query string, maxResults int) ([]Result, error) {
	params := url.Values{"q": {query}, "count": {fmt.Sprint(clampCount(maxResults))}, "freshness": {"pd"}}
	body, err := c.get(ctx, braveNewsURL, params)
	if err != nil {
		return nil, err
	}
	var parsed braveNewsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &errs.InvalidResponseError{Reason: "malformed brave news response: " + err.Error()}
	}
	out := make([]Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		out = append(out, Result{SearchResult: wrapSR(r.Title, r.Description, r.URL, "Brave News")})
	}
	return out, nil
}

type braveImagesResponse struct {
	Results []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"results"`
}

// Images fetches Brave's images endpoint with safesearch=moderate.
func (c *BraveClient) Images(ctx context.Context, query string, maxResults int) ([]Result, error) {
	params := url.Values{"q": {query}, "count": {fmt.Sprint(clampCount(maxResults))}, "safesearch": {"moderate"}}
	body, err := c.get(ctx, braveImagesURL, params)
	if err != nil {
		return nil, err
	}
	var parsed braveImagesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &errs.InvalidResponseError{Reason: "malformed brave images response: " + err.Error()}
	}
	out := make([]Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		out = append(out, Result{SearchResult: wrapSR(r.Title, "", r.URL, "Brave Images")})
	}
	return out, nil
}

func wrapSR(title, description, rawURL, source string) resultproc.SearchResult {
	return resultproc.SearchResult{Title: title, Description: description, URL: rawURL, Source: source}
}
