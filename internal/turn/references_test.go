package turn

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvlabs/deepwatch/internal/conversation"
)

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	conv := conversation.New("system prompt")
	return &Processor{Conversation: conv}
}

func TestResolveReferences_NoMatchPassesThrough(t *testing.T) {
	p := newTestProcessor(t)
	args := map[string]interface{}{"task": "summarize the Q3 earnings report"}
	out := p.resolveReferences("use_reasoning_model", args)
	assert.Equal(t, args["task"], out["task"])
}

func TestResolveReferences_VagueTopicResolvesFromLastSpecialistOutput(t *testing.T) {
	p := newTestProcessor(t)
	p.lastSpecialistOutput = "Solar tariffs in Vietnam are regulated by..."
	args := map[string]interface{}{"task": "this topic"}
	out := p.resolveReferences("use_reasoning_model", args)
	assert.Equal(t, p.lastSpecialistOutput, out["task"])
}

func TestResolveReferences_UnknownToolPassesThrough(t *testing.T) {
	p := newTestProcessor(t)
	args := map[string]interface{}{"foo": "this topic"}
	out := p.resolveReferences("not_a_tool", args)
	assert.Equal(t, args, out)
}

func TestResolveReferences_WebSearchPrefersSubstantialUserMessage(t *testing.T) {
	p := newTestProcessor(t)
	ctx := context.Background()
	p.Conversation.AddUserMessage(ctx, "tell me about offshore wind permitting in the EU")
	require.NoError(t, p.Conversation.AddAssistantMessage(ctx, "ok", nil))

	args := map[string]interface{}{"query": "the previous topic"}
	out := p.resolveReferences("web_search", args)
	assert.Equal(t, "tell me about offshore wind permitting in the EU", out["query"])
}

func TestResolveReferences_NoResolutionLeavesArgsUnchanged(t *testing.T) {
	p := newTestProcessor(t)
	args := map[string]interface{}{"query": "the previous topic"}
	out := p.resolveReferences("web_search", args)
	assert.Equal(t, args["query"], out["query"])
}
