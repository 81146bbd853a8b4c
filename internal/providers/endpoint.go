package providers

import (
	"fmt"

	"github.com/nvlabs/deepwatch/agent"
)

// ChatTemplate identifies the prompt-rendering template an HF Inference
// Toolkit endpoint expects, since it exposes no structured chat endpoint.
type ChatTemplate string

const (
	TemplateMistral ChatTemplate = "mistral"
	TemplateChatML  ChatTemplate = "chatml"
	TemplateAlpaca  ChatTemplate = "alpaca"
	TemplateRaw     ChatTemplate = "raw"
)

// Kind discriminates the ProviderEndpoint tagged union.
type Kind string

const (
	KindLocal             Kind = "local"
	KindOpenAICompatible  Kind = "openai_compatible"
	KindOpenAIHosted      Kind = "openai_hosted"
	KindAnthropicHosted   Kind = "anthropic_hosted"
	KindHFInferenceToolkit Kind = "hf_inference_toolkit"
)

// Endpoint is a tagged union: exactly one of the Kind-specific field groups
// is meaningful, selected by Kind. A small dispatch table (NewAdapter) picks
// the concrete agent.LLMAdapter implementation from the endpoint's shape,
// favoring a dispatch table over an inheritance tree.
type Endpoint struct {
	Kind Kind

	// Name is an optional label used only for log correlation across
	// roles that happen to share a provider type.
	Name string

	// Local / OpenAICompatible
	URL         string
	BearerToken string // optional for OpenAICompatible, unused for Local

	// OpenAIHosted
	APIKey string
	Model  string

	// AnthropicHosted reuses APIKey and Model above.

	// HFInferenceToolkit
	Token    string
	Template ChatTemplate

	// StaticModels backs OpenAIHosted's ListModels() parity-with-HF
	// requirement: no network call, just this configured map.
	StaticModels []string
}

// Validate checks the endpoint carries the fields its Kind requires.
func (e Endpoint) Validate() error {
	switch e.Kind {
	case KindLocal, KindOpenAICompatible:
		if e.URL == "" {
			return fmt.Errorf("%s endpoint requires a URL", e.Kind)
		}
	case KindOpenAIHosted, KindAnthropicHosted:
		if e.APIKey == "" {
			return fmt.Errorf("%s endpoint requires an API key", e.Kind)
		}
		if e.Model == "" {
			return fmt.Errorf("%s endpoint requires a model", e.Kind)
		}
	case KindHFInferenceToolkit:
		if e.URL == "" {
			return fmt.Errorf("hf_inference_toolkit endpoint requires a URL")
		}
		switch e.Template {
		case TemplateMistral, TemplateChatML, TemplateAlpaca, TemplateRaw:
		default:
			return fmt.Errorf("hf_inference_toolkit endpoint has unknown chat_template %q", e.Template)
		}
	default:
		return fmt.Errorf("unknown endpoint kind %q", e.Kind)
	}
	return nil
}

// NewAdapter builds the agent.LLMAdapter implementation matching the
// endpoint's Kind.
func NewAdapter(e Endpoint) (agent.LLMAdapter, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	switch e.Kind {
	case KindLocal:
		return NewLocalAdapter(e.URL), nil
	case KindOpenAICompatible:
		return NewOpenAICompatAdapter(e.URL, e.BearerToken), nil
	case KindOpenAIHosted:
		return NewOpenAIHostedAdapter(e.APIKey, e.Model, e.URL, e.StaticModels), nil
	case KindAnthropicHosted:
		return NewAnthropicAdapter(e.APIKey, e.Model), nil
	case KindHFInferenceToolkit:
		return NewHFToolkitAdapter(e.URL, e.Token, e.Template), nil
	default:
		return nil, fmt.Errorf("unknown endpoint kind %q", e.Kind)
	}
}
