package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvlabs/deepwatch/internal/newsroom"
)

func TestFilterByTopic_RanksHeadlineMatchesAboveTagMatches(t *testing.T) {
	articles := []newsroom.Article{
		{Headline: "Tariffs on steel imports rise", TopicTags: []string{"trade"}},
		{Headline: "Market update", TopicTags: []string{"tariffs", "trade"}},
		{Headline: "Unrelated sports story", TopicTags: []string{"sports"}},
	}
	got := filterByTopic(articles, "tariffs")
	require.Len(t, got, 2)
	assert.Equal(t, "Tariffs on steel imports rise", got[0].Headline)
}

func TestFilterByTopic_NoMatchesReturnsEmpty(t *testing.T) {
	articles := []newsroom.Article{
		{Headline: "Unrelated sports story", TopicTags: []string{"sports"}},
	}
	got := filterByTopic(articles, "quantum computing")
	assert.Empty(t, got)
}

func TestAssignToContinents_RespectsPriorityAndNoRepetition(t *testing.T) {
	articles := []newsroom.Article{
		{URL: "https://a", GeographyTags: []string{"West Africa"}},
		{URL: "https://b", GeographyTags: []string{"North America"}},
		{URL: "https://c", GeographyTags: []string{}},
	}
	got := assignToContinents(articles)
	require.Len(t, got["Africa"], 1)
	assert.Equal(t, "https://a", got["Africa"][0].URL)
	require.Len(t, got["Americas"], 1)
	assert.Equal(t, "https://b", got["Americas"][0].URL)
	require.Len(t, got["Global"], 1)
	assert.Equal(t, "https://c", got["Global"][0].URL)
}

func TestAssignToContinents_CapsAtArticlesPerContinent(t *testing.T) {
	var articles []newsroom.Article
	for i := 0; i < 10; i++ {
		articles = append(articles, newsroom.Article{URL: "https://a" + string(rune('0'+i)), GeographyTags: []string{"Asia"}})
	}
	got := assignToContinents(articles)
	assert.Len(t, got["Asia"], articlesPerContinent)
}

func TestContinentFor_FallsBackToCaseInsensitiveMatch(t *testing.T) {
	assert.Equal(t, "Middle East", continentFor([]string{"middle east"}))
	assert.Equal(t, "", continentFor([]string{"Atlantis"}))
}

func TestFallbackTrendAnalysis_RanksByTagFrequency(t *testing.T) {
	articles := []newsroom.Article{
		{TopicTags: []string{"tariffs"}},
		{TopicTags: []string{"tariffs"}},
		{TopicTags: []string{"elections"}},
	}
	got := fallbackTrendAnalysis(articles)
	require.NotEmpty(t, got)
	assert.Equal(t, "Rising Focus on tariffs", got[0].Title)
}

func TestParseTrendsJSON_CapsAtThree(t *testing.T) {
	text := `{"trends": [{"title":"a","description":"d"},{"title":"b","description":"d"},{"title":"c","description":"d"},{"title":"e","description":"d"}]}`
	got := parseTrendsJSON(text)
	assert.Len(t, got, 3)
}

func TestParseTrendsJSON_InvalidJSONReturnsNil(t *testing.T) {
	assert.Nil(t, parseTrendsJSON("not json"))
}

func TestParseSummariesJSON_ParsesList(t *testing.T) {
	text := `{"summaries": ["one", "two"]}`
	got := parseSummariesJSON(text)
	assert.Equal(t, []string{"one", "two"}, got)
}

func TestDigestExecute_NoArticlesReturnsError(t *testing.T) {
	d := &Digest{}
	result, err := d.Execute(context.Background(), 7, "")
	require.NoError(t, err)
	assert.Contains(t, result, "No articles found")
}
