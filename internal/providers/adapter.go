package providers

import (
	"context"

	"github.com/nvlabs/deepwatch/agent"
)

// Adapter extends agent.LLMAdapter with the third operation required of
// every ProviderEndpoint: listing available models.
type Adapter interface {
	agent.LLMAdapter
	ListModels(ctx context.Context) ([]string, error)
}

// StreamChunk is one piece of streamed text. The contract forbids
// interleaving tool calls into a stream; a future extension that needs both
// introduces a separate StreamEvent union rather than overloading this one.
type StreamChunk struct {
	Text string
}
