package newsroom

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvlabs/deepwatch/agent"
)

func TestFetchArticles_MissingTokenReturnsNilWithoutRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, HTTPClient: srv.Client(), Logger: &agent.NoopLogger{}}
	got := c.FetchArticles(context.Background(), "", 10, time.Now())

	assert.Nil(t, got)
	assert.False(t, called)
}

func TestFetchArticles_UnauthorizedReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, Token: "bad-token", HTTPClient: srv.Client(), Logger: &agent.NoopLogger{}}
	got := c.FetchArticles(context.Background(), "", 10, time.Now())

	assert.Nil(t, got)
}

func TestFetchArticles_ParsesArticlesOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer good-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"articles":[{"headline":"Tariffs rise","date":"2026-07-01","url":"https://n/1","source":"Reuters","topic_tags":["trade"],"geography_tags":["Asia"]}]}`))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, Token: "good-token", HTTPClient: srv.Client(), Logger: &agent.NoopLogger{}}
	got := c.FetchArticles(context.Background(), "tariffs", 10, time.Now())

	require.Len(t, got, 1)
	assert.Equal(t, "Tariffs rise", got[0].Headline)
	assert.Equal(t, []string{"trade"}, got[0].TopicTags)
	assert.Equal(t, []string{"Asia"}, got[0].GeographyTags)
}

func TestFetchArticles_ServerErrorReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, Token: "good-token", HTTPClient: srv.Client(), Logger: &agent.NoopLogger{}}
	got := c.FetchArticles(context.Background(), "", 10, time.Now())

	assert.Nil(t, got)
}

func TestFetchArticles_MalformedJSONReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, Token: "good-token", HTTPClient: srv.Client(), Logger: &agent.NoopLogger{}}
	got := c.FetchArticles(context.Background(), "", 10, time.Now())

	assert.Nil(t, got)
}

func TestFormatForDisplay_EmptyReturnsPlaceholder(t *testing.T) {
	assert.Equal(t, "No newsroom articles found.", FormatForDisplay(nil))
}

func TestFormatForDisplay_GroupsByPrimaryTopicAndRanksByFrequency(t *testing.T) {
	articles := []Article{
		{Headline: "A", Date: "2026-01-01", TopicTags: []string{"trade"}},
		{Headline: "B", Date: "2026-01-02", TopicTags: []string{"trade"}},
		{Headline: "C", Date: "2026-01-03", TopicTags: []string{"energy"}},
		{Headline: "D", Date: "2026-01-04"},
	}

	out := FormatForDisplay(articles)

	assert.Contains(t, out, "Newsroom Headlines (4 articles)")
	assert.Contains(t, out, "trade: 2 articles")
	assert.Contains(t, out, "energy: 1 articles")
	assert.Contains(t, out, "Uncategorized: 1 articles")
	tradeIdx := indexOf(out, "TRADE")
	energyIdx := indexOf(out, "ENERGY")
	require.Greater(t, energyIdx, tradeIdx)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
