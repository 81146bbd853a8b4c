package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampCount_DefaultsAndCaps(t *testing.T) {
	assert.Equal(t, 10, clampCount(0))
	assert.Equal(t, 10, clampCount(-5))
	assert.Equal(t, 5, clampCount(5))
	assert.Equal(t, 20, clampCount(50))
}

func TestSummarizeAuthors_NoAuthorsReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", summarizeAuthors(nil))
}

func TestSummarizeAuthors_ThreeOrFewerJoinsAll(t *testing.T) {
	assert.Equal(t, "Alice, Bob", summarizeAuthors([]string{"Alice", "Bob"}))
}

func TestSummarizeAuthors_MoreThanThreeAppendsEtAl(t *testing.T) {
	got := summarizeAuthors([]string{"Alice", "Bob", "Carol", "Dave"})
	assert.Equal(t, "Alice, Bob, Carol et al.", got)
}

func TestCoreClientSearch_NoAPIKeyReturnsConfigError(t *testing.T) {
	c := NewCoreClient("")
	_, err := c.Search(context.Background(), "quantum computing", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORE_API_KEY")
}
