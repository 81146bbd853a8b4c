package queryopt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrip_RemovesLeadingSearchPhrase(t *testing.T) {
	cleaned, err := Strip("let's do a web search for gold vs bitcoin prices")
	require.NoError(t, err)
	assert.Equal(t, "gold vs bitcoin prices", cleaned)
}

func TestStrip_RemovesTrailingMeaning(t *testing.T) {
	cleaned, err := Strip("impact of tariffs on steel, what does this mean")
	require.NoError(t, err)
	assert.Equal(t, "impact of tariffs on steel", cleaned)
}

func TestStrip_EmptyAfterStrippingFails(t *testing.T) {
	_, err := Strip("search for")
	require.Error(t, err)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, IntentNews, Classify("breaking news on the election"))
	assert.Equal(t, IntentFinance, Classify("current bitcoin price"))
	assert.Equal(t, IntentAcademic, Classify("recent peer-reviewed study on vaccines"))
	assert.Equal(t, IntentHowTo, Classify("how do I set up a go module"))
	assert.Equal(t, IntentGeneral, Classify("tell me about the eiffel tower"))
}
