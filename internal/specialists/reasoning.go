package specialists

import "context"

const reasoningSystemPrompt = `You are a careful analytical assistant. Think through the request step by step, weigh tradeoffs explicitly, and give a clear final answer. Do not pad the response with unrelated caveats.`

// UseReasoningModel streams an analysis/planning response, printing chunks
// to c.Out as they arrive and returning the accumulated text.
func (c *Caller) UseReasoningModel(ctx context.Context, query string) (string, error) {
	return c.streamRole(ctx, "use_reasoning_model", reasoningSystemPrompt, query)
}

const searchSystemPrompt = `You are a knowledgeable assistant answering general-knowledge questions directly and concisely, without fabricating citations.`

// UseSearchModel streams a general-knowledge answer. Despite the name
// (carried over from the original tool's naming), this does not perform a
// web search itself — it answers from the model's own knowledge; actual web
// search is internal/search's job.
func (c *Caller) UseSearchModel(ctx context.Context, query string) (string, error) {
	return c.streamRole(ctx, "use_search_model", searchSystemPrompt, query)
}
