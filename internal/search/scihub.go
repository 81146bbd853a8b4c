package search

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// DefaultSciHubMirrors is the configured probe list; at most three are tried.
var DefaultSciHubMirrors = []string{
	"https://sci-hub.se",
	"https://sci-hub.st",
	"https://sci-hub.ru",
}

// ProbeSciHub fetches <mirror>/<identifier> for each mirror in order,
// walking the returned HTML with golang.org/x/net/html for an embedded PDF
// element or download anchor. identifier is a DOI when known, else the
// title. All network and parse errors fold into "not found" (empty string,
// false) rather than propagating.
func ProbeSciHub(ctx context.Context, identifier string, mirrors []string) (string, bool) {
	if len(mirrors) == 0 {
		mirrors = DefaultSciHubMirrors
	}
	if len(mirrors) > 3 {
		mirrors = mirrors[:3]
	}
	client := &http.Client{Timeout: 10 * time.Second}

	for _, mirror := range mirrors {
		target := strings.TrimRight(mirror, "/") + "/" + url.PathEscape(identifier)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			continue
		}
		req.Header.Set("User-Agent", "Mozilla/5.0")

		resp, err := client.Do(req)
		if err != nil {
			continue
		}
		pdfURL, found := extractPDFURL(resp.Body, mirror)
		resp.Body.Close()
		if found {
			return pdfURL, true
		}
	}
	return "", false
}

// extractPDFURL tokenizes r looking for an <embed>/<iframe src=...> pointing
// at a PDF, or an <a> anchor whose href ends in .pdf. Relative URLs are
// resolved against base.
func extractPDFURL(r io.Reader, base string) (string, bool) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", false
	}

	tokenizer := html.NewTokenizer(r)
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			return "", false
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}

		token := tokenizer.Token()
		switch token.Data {
		case "embed", "iframe":
			if src, ok := attrValue(token, "src"); ok && looksLikePDF(src) {
				return resolveURL(baseURL, src), true
			}
		case "a":
			if href, ok := attrValue(token, "href"); ok && looksLikePDF(href) {
				return resolveURL(baseURL, href), true
			}
		}
	}
}

func attrValue(token html.Token, key string) (string, bool) {
	for _, a := range token.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func looksLikePDF(href string) bool {
	lower := strings.ToLower(href)
	return strings.Contains(lower, ".pdf")
}

func resolveURL(base *url.URL, ref string) string {
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(refURL).String()
}
