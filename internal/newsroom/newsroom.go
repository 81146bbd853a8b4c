// Package newsroom authenticates against the bearer-JWT article API used as
// a first-party source for the research workflow.
package newsroom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/nvlabs/deepwatch/agent"
)

const articlesPath = "/api/data-admin/newsroom/articles"

// Article is the flattened shape this package works with; TopicTags[0] is
// the article's primary topic for grouping. GeographyTags feeds the digest
// workflow's continent assignment.
type Article struct {
	Headline      string
	Date          string
	URL           string
	Source        string
	TopicTags     []string
	GeographyTags []string
}

// Client authenticates newsroom requests with a bearer JWT, sourced from
// either an explicit token or the NEWSROOM_JWT environment variable.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Logger     agent.Logger
}

// NewClient builds a Client. If token is empty, NEWSROOM_JWT is consulted.
func NewClient(baseURL, token string, logger agent.Logger) *Client {
	if token == "" {
		token = os.Getenv("NEWSROOM_JWT")
	}
	if logger == nil {
		logger = &agent.NoopLogger{}
	}
	return &Client{
		BaseURL:    baseURL,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Logger:     logger,
	}
}

type articlesResponse struct {
	Articles []struct {
		Headline      string   `json:"headline"`
		Date          string   `json:"date"`
		URL           string   `json:"url"`
		Source        string   `json:"source"`
		Tags          []string `json:"topic_tags"`
		GeographyTags []string `json:"geography_tags"`
	} `json:"articles"`
}

// FetchArticles does a GET against /api/data-admin/newsroom/articles with a
// 10 second timeout. Non-200 responses and transport failures are logged
// via the classified reason (missing token / 401 / 403 / 5xx / network) and
// return an empty slice rather than an error, since newsroom failure is
// best-effort and never fatal to the research workflow.
func (c *Client) FetchArticles(ctx context.Context, search string, limit int, dateFrom time.Time) []Article {
	if c.Token == "" {
		c.Logger.Warn(ctx, "newsroom: missing token, skipping fetch")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+articlesPath, nil)
	if err != nil {
		c.Logger.Warn(ctx, "newsroom: build request failed", agent.F("error", err.Error()))
		return nil
	}
	q := req.URL.Query()
	q.Set("search", search)
	q.Set("limit", fmt.Sprint(limit))
	q.Set("date_from", dateFrom.Format("2006-01-02"))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Logger.Warn(ctx, "newsroom: network error", agent.F("error", err.Error()))
		return nil
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized:
		c.Logger.Error(ctx, "newsroom: 401 unauthorized, check NEWSROOM_JWT")
		return nil
	case resp.StatusCode == http.StatusForbidden:
		c.Logger.Error(ctx, "newsroom: 403 forbidden, token lacks newsroom access")
		return nil
	case resp.StatusCode >= 500:
		c.Logger.Warn(ctx, "newsroom: server error", agent.F("status", resp.StatusCode))
		return nil
	default:
		c.Logger.Warn(ctx, "newsroom: unexpected status", agent.F("status", resp.StatusCode))
		return nil
	}

	var parsed articlesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.Logger.Warn(ctx, "newsroom: malformed response", agent.F("error", err.Error()))
		return nil
	}

	out := make([]Article, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		out = append(out, Article{
			Headline:      a.Headline,
			Date:          a.Date,
			URL:           a.URL,
			Source:        a.Source,
			TopicTags:     a.Tags,
			GeographyTags: a.GeographyTags,
		})
	}
	return out
}

// FetchRecent is FetchArticles with an empty search term and a date floor
// daysBack days before now, capped at maxResults — the shape the digest
// workflow needs for its wide, topic-agnostic article pull.
func (c *Client) FetchRecent(ctx context.Context, daysBack, maxResults int) []Article {
	return c.FetchArticles(ctx, "", maxResults, time.Now().AddDate(0, 0, -daysBack))
}

// FormatForDisplay groups articles by primary topic tag (TopicTags[0]),
// renders a topic-frequency header, then grouped date/source/URL listings.
func FormatForDisplay(articles []Article) string {
	if len(articles) == 0 {
		return "No newsroom articles found."
	}

	topicCounts := make(map[string]int)
	byTopic := make(map[string][]Article)
	var untaggedOrder []string

	for _, a := range articles {
		topic := "Uncategorized"
		if len(a.TopicTags) > 0 && a.TopicTags[0] != "" {
			topic = a.TopicTags[0]
		}
		if _, seen := byTopic[topic]; !seen {
			untaggedOrder = append(untaggedOrder, topic)
		}
		topicCounts[topic]++
		byTopic[topic] = append(byTopic[topic], a)
	}

	type topicCount struct {
		topic string
		count int
	}
	ordered := make([]topicCount, 0, len(topicCounts))
	for _, t := range untaggedOrder {
		ordered = append(ordered, topicCount{t, topicCounts[t]})
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].count > ordered[j].count })

	var b strings.Builder
	fmt.Fprintf(&b, "Newsroom Headlines (%d articles)\n", len(articles))
	b.WriteString(strings.Repeat("=", 60) + "\n\nTopic Distribution:\n")
	for _, tc := range ordered {
		fmt.Fprintf(&b, "  - %s: %d articles\n", tc.topic, tc.count)
	}
	b.WriteString("\n" + strings.Repeat("=", 60) + "\n")

	for _, tc := range ordered {
		fmt.Fprintf(&b, "\n%s (%d articles):\n", strings.ToUpper(tc.topic), tc.count)
		for _, a := range byTopic[tc.topic] {
			fmt.Fprintf(&b, "  - %s [%s]\n", a.Headline, a.Date)
			if a.URL != "" {
				fmt.Fprintf(&b, "    URL: %s\n", a.URL)
			}
			fmt.Fprintf(&b, "    Source: %s\n", a.Source)
		}
	}
	return b.String()
}
