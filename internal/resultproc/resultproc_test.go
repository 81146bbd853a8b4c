package resultproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://example.com/path", NormalizeURL("https://WWW.Example.com/path/"))
	assert.Equal(t, "https://example.com/path?x=1", NormalizeURL("https://example.com/path?x=1#frag"))
}

func TestDedup(t *testing.T) {
	results := []SearchResult{
		{Title: "a", URL: "https://example.com/a"},
		{Title: "a dup", URL: "https://www.example.com/a/"},
		{Title: "b", URL: "https://example.com/b"},
	}
	out := Dedup(results)
	assert.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Title)
	assert.Equal(t, "b", out[1].Title)
}

func TestRank_TitleMatchesOutrankDescriptionMatches(t *testing.T) {
	results := []SearchResult{
		{Title: "unrelated", Description: "mentions golang concurrency patterns", URL: "https://x.com/1"},
		{Title: "golang concurrency patterns guide", Description: "", URL: "https://y.com/2"},
	}
	ranked := Rank(results, "golang concurrency patterns")
	assert.Equal(t, "golang concurrency patterns guide", ranked[0].Title)
}

func TestRank_StableOnTies(t *testing.T) {
	results := []SearchResult{
		{Title: "first", URL: "https://a.com/1"},
		{Title: "second", URL: "https://b.com/2"},
	}
	ranked := Rank(results, "nomatch")
	assert.Equal(t, "first", ranked[0].Title)
	assert.Equal(t, "second", ranked[1].Title)
}

func TestCapPerDomain(t *testing.T) {
	results := []SearchResult{
		{Title: "1", URL: "https://example.com/1"},
		{Title: "2", URL: "https://example.com/2"},
		{Title: "3", URL: "https://example.com/3"},
	}
	out := CapPerDomain(results, 2)
	assert.Len(t, out, 2)
}

func TestMerge(t *testing.T) {
	setA := []SearchResult{{Title: "go tutorial", URL: "https://a.com/1"}}
	setB := []SearchResult{{Title: "go tutorial", URL: "https://a.com/1"}, {Title: "other", URL: "https://b.com/2"}}
	merged := Merge([][]SearchResult{setA, setB}, "go tutorial")
	assert.Len(t, merged, 2)
}
