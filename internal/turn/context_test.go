package turn

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInjectContext_PrependsRecentToolOutput(t *testing.T) {
	p := newTestProcessor(t)
	p.recordToolOutput("web_search", "Search results for: solar tariffs\n1. ...")

	args := map[string]interface{}{"query": "summarize that"}
	out := p.injectContext("use_search_model", args)

	got, ok := out["query"].(string)
	require.True(t, ok)
	assert.True(t, strings.Contains(got, "[Previous web_search output]:"))
	assert.True(t, strings.Contains(got, "Task: summarize that"))
}

func TestInjectContext_NoOutputsFallsBackToHistoryScan(t *testing.T) {
	p := newTestProcessor(t)
	ctx := context.Background()
	p.Conversation.AddUserMessage(ctx, "search for wind energy policy")
	require.NoError(t, p.Conversation.AddAssistantMessage(ctx, "Search results for: wind energy policy\n1. foo", nil))

	args := map[string]interface{}{"task": "write a summary"}
	out := p.injectContext("use_reasoning_model", args)

	got, ok := out["task"].(string)
	require.True(t, ok)
	assert.True(t, strings.Contains(got, "[Previous tool output from conversation]:"))
}

func TestInjectContext_UnknownToolPassesThrough(t *testing.T) {
	p := newTestProcessor(t)
	args := map[string]interface{}{"foo": "bar"}
	out := p.injectContext("read_file", args)
	assert.Equal(t, args, out)
}

func TestInjectContext_NoPriorOutputsLeavesArgsUnchanged(t *testing.T) {
	p := newTestProcessor(t)
	args := map[string]interface{}{"task": "write a summary"}
	out := p.injectContext("use_reasoning_model", args)
	assert.Equal(t, args["task"], out["task"])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 10))
	assert.Equal(t, "he...", truncate("hello", 2))
}
