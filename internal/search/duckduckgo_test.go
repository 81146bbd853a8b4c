package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripTags_RemovesMarkupAndTrims(t *testing.T) {
	got := stripTags("  <b>hello</b> <i>world</i>  ")
	assert.Equal(t, "hello world", got)
}

func TestPmcURLPattern_MatchesPMCArticleURLs(t *testing.T) {
	assert.True(t, pmcURLPattern.MatchString("https://www.ncbi.nlm.nih.gov/pmc/articles/PMC1234567/"))
	assert.True(t, pmcURLPattern.MatchString("http://NCBI.NLM.NIH.GOV/PMC/articles/PMC999/"))
	assert.False(t, pmcURLPattern.MatchString("https://www.ncbi.nlm.nih.gov/pubmed/1234567"))
}

func TestDdgResultRe_ExtractsHrefTitleAndSnippet(t *testing.T) {
	html := `<a rel="nofollow" class="result__a" href="https://example.com/a">Example <b>Title</b></a>` +
		`<span>noise</span>` +
		`<a class="result__snippet" href="#">A short <i>snippet</i> of text.</a>`

	matches := ddgResultRe.FindAllStringSubmatch(html, -1)
	require := assert.New(t)
	require.Len(matches, 1)
	require.Equal("https://example.com/a", matches[0][1])
	require.Equal("Example <b>Title</b>", matches[0][2])
	require.Equal("A short <i>snippet</i> of text.", matches[0][3])
}
