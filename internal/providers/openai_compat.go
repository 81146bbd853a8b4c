package providers

import (
	"context"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/nvlabs/deepwatch/agent"
	"github.com/nvlabs/deepwatch/internal/errs"
)

// openAIWireAdapter implements the OpenAI-compatible chat-completions wire
// protocol shared by the Local, OpenAICompatible, and OpenAIHosted endpoint
// kinds. It carries a static model list (for the OpenAIHosted variant's
// list_models parity-with-HF requirement) and runs every call through the
// shared retry policy.
type openAIWireAdapter struct {
	client       *openai.Client
	staticModels []string
}

// NewLocalAdapter builds the Local endpoint variant: an OpenAI-wire-
// compatible server with no authentication, addressed by URL (e.g. Ollama,
// llama.cpp's server mode).
func NewLocalAdapter(url string) Adapter {
	client := openai.NewClient(option.WithBaseURL(url), option.WithAPIKey("local"))
	return &openAIWireAdapter{client: &client}
}

// NewOpenAICompatAdapter builds the OpenAICompatible endpoint variant: a
// custom base URL with an optional bearer token.
func NewOpenAICompatAdapter(url, bearerToken string) Adapter {
	opts := []option.RequestOption{option.WithBaseURL(url)}
	if bearerToken != "" {
		opts = append(opts, option.WithAPIKey(bearerToken))
	}
	client := openai.NewClient(opts...)
	return &openAIWireAdapter{client: &client}
}

// NewOpenAIHostedAdapter builds the OpenAIHosted endpoint variant: always
// bearer-token authenticated. list_models() never makes a network call; it
// serves the configured staticModels, for parity with the HF toolkit
// adapter (which has no model-listing endpoint either).
func NewOpenAIHostedAdapter(apiKey, model, baseURL string, staticModels []string) Adapter {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	models := staticModels
	if len(models) == 0 && model != "" {
		models = []string{model}
	}
	return &openAIWireAdapter{client: &client, staticModels: models}
}

func (a *openAIWireAdapter) ListModels(ctx context.Context) ([]string, error) {
	return a.staticModels, nil
}

func (a *openAIWireAdapter) Complete(ctx context.Context, req *agent.CompletionRequest) (*agent.CompletionResponse, error) {
	params := a.buildParams(req)

	var completion *openai.ChatCompletion
	err := Do(ctx, func() error {
		var callErr error
		completion, callErr = a.client.Chat.Completions.New(ctx, params)
		if callErr != nil {
			return classifyOpenAIError(callErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return a.convertResponse(completion)
}

func (a *openAIWireAdapter) Stream(ctx context.Context, req *agent.CompletionRequest, onChunk func(string)) (*agent.CompletionResponse, error) {
	if len(req.Tools) > 0 {
		return nil, &errs.InvalidArgumentError{Reason: "streaming does not support tools; use Complete instead"}
	}

	params := a.buildParams(req)
	stream := a.client.Chat.Completions.NewStreaming(ctx, params)
	acc := openai.ChatCompletionAccumulator{}
	var fullContent string

	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)

		if content, ok := acc.JustFinishedContent(); ok {
			fullContent = content
		}

		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			delta := chunk.Choices[0].Delta.Content
			if onChunk != nil {
				onChunk(delta)
			}
			if fullContent == "" {
				fullContent += delta
			}
		}
	}

	if err := stream.Err(); err != nil {
		return nil, classifyOpenAIError(err)
	}

	return &agent.CompletionResponse{Content: fullContent, FinishReason: "stop"}, nil
}

func (a *openAIWireAdapter) buildParams(req *agent.CompletionRequest) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: a.convertMessages(req),
	}

	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.TopP > 0 {
		params.TopP = openai.Float(req.TopP)
	}
	if req.Seed > 0 {
		params.Seed = openai.Int(req.Seed)
	}
	if req.PresencePenalty != 0 {
		params.PresencePenalty = openai.Float(req.PresencePenalty)
	}
	if req.FrequencyPenalty != 0 {
		params.FrequencyPenalty = openai.Float(req.FrequencyPenalty)
	}
	if req.N > 0 {
		params.N = openai.Int(int64(req.N))
	}
	if len(req.Tools) > 0 {
		params.Tools = a.convertTools(req.Tools)
		params.ParallelToolCalls = openai.Bool(true)
	}

	return params
}

func (a *openAIWireAdapter) convertMessages(req *agent.CompletionRequest) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)

	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}

	for _, msg := range req.Messages {
		switch msg.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(msg.Content))
		case "user":
			messages = append(messages, openai.UserMessage(msg.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(msg.Content))
		case "tool":
			messages = append(messages, openai.ToolMessage(msg.ToolCallID, msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	return messages
}

func (a *openAIWireAdapter) convertTools(tools []*agent.Tool) []openai.ChatCompletionToolUnionParam {
	result := make([]openai.ChatCompletionToolUnionParam, len(tools))
	for i, tool := range tools {
		var funcParams openai.FunctionParameters
		if tool.Parameters != nil {
			funcParams = tool.Parameters
		}
		result[i] = openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        tool.Name,
			Description: openai.String(tool.Description),
			Parameters:  funcParams,
		})
	}
	return result
}

func (a *openAIWireAdapter) convertResponse(completion *openai.ChatCompletion) (*agent.CompletionResponse, error) {
	if completion == nil || len(completion.Choices) == 0 {
		return nil, &errs.InvalidResponseError{Reason: "response carries no choices"}
	}

	choice := completion.Choices[0]
	if choice.FinishReason == "" {
		return nil, &errs.InvalidResponseError{Reason: "first choice is missing finish_reason"}
	}

	resp := &agent.CompletionResponse{
		ID:           completion.ID,
		Model:        completion.Model,
		Created:      completion.Created,
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Refusal:      choice.Message.Refusal,
	}

	if len(choice.Message.ToolCalls) > 0 {
		resp.ToolCalls = make([]agent.ToolCall, len(choice.Message.ToolCalls))
		for i, tc := range choice.Message.ToolCalls {
			resp.ToolCalls[i] = agent.ToolCall{
				ID:        tc.ID,
				Type:      string(tc.Type),
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			}
		}
	}

	resp.Usage = agent.TokenUsage{
		PromptTokens:     int(completion.Usage.PromptTokens),
		CompletionTokens: int(completion.Usage.CompletionTokens),
		TotalTokens:      int(completion.Usage.TotalTokens),
	}

	return resp, nil
}

// classifyOpenAIError wraps the SDK's error into *errs.NetworkError so the
// shared retry policy (429/5xx/network retryable, other 4xx not) applies
// uniformly across adapters.
func classifyOpenAIError(err error) error {
	if apiErr, ok := err.(*openai.Error); ok {
		return &errs.NetworkError{StatusCode: apiErr.StatusCode, Body: apiErr.Error(), Err: err}
	}
	return &errs.NetworkError{Err: err}
}
