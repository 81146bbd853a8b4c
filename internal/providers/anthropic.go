package providers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nvlabs/deepwatch/agent"
	"github.com/nvlabs/deepwatch/internal/errs"
)

const (
	anthropicAPIURL     = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion = "2023-06-01"
)

// anthropicAdapter implements the AnthropicHosted endpoint kind. It is a
// hand-rolled net/http client rather than an SDK wrapper, following the
// raw-HTTP Anthropic client pattern of JSON request/response structs,
// manual content-block walking, and explicit stop-reason mapping.
type anthropicAdapter struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewAnthropicAdapter builds the AnthropicHosted endpoint variant.
func NewAnthropicAdapter(apiKey, model string) Adapter {
	return &anthropicAdapter{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 180 * time.Second,
		},
	}
}

func (a *anthropicAdapter) ListModels(ctx context.Context) ([]string, error) {
	return []string{a.model}, nil
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
	Stream      bool               `json:"stream,omitempty"`
	Tools       []anthropicTool    `json:"tools,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicTool struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	InputSchema interface{} `json:"input_schema"`
}

type anthropicContentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type anthropicResponse struct {
	ID         string                  `json:"id"`
	Content    []anthropicContentBlock `json:"content"`
	StopReason string                  `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (a *anthropicAdapter) buildRequest(req *agent.CompletionRequest, stream bool) anthropicRequest {
	var systemParts []string
	if req.System != "" {
		systemParts = append(systemParts, req.System)
	}

	messages := make([]anthropicMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == "system" {
			systemParts = append(systemParts, m.Content)
			continue
		}
		role := m.Role
		if role == "tool" {
			role = "user"
		}
		messages = append(messages, anthropicMessage{Role: role, Content: m.Content})
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	ar := anthropicRequest{
		Model:       req.Model,
		Messages:    messages,
		System:      strings.Join(systemParts, "\n\n"),
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		Stream:      stream,
	}

	if len(req.Tools) > 0 {
		ar.Tools = make([]anthropicTool, len(req.Tools))
		for i, t := range req.Tools {
			ar.Tools[i] = anthropicTool{
				Name:        t.Name,
				Description: t.Description,
				InputSchema: t.Parameters,
			}
		}
	}

	return ar
}

func (a *anthropicAdapter) doRequest(ctx context.Context, body anthropicRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal anthropic request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicAPIURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	return a.httpClient.Do(httpReq)
}

func (a *anthropicAdapter) Complete(ctx context.Context, req *agent.CompletionRequest) (*agent.CompletionResponse, error) {
	body := a.buildRequest(req, false)

	var parsed anthropicResponse
	err := Do(ctx, func() error {
		resp, callErr := a.doRequest(ctx, body)
		if callErr != nil {
			return &errs.NetworkError{Err: callErr}
		}
		defer resp.Body.Close()

		data, callErr := io.ReadAll(resp.Body)
		if callErr != nil {
			return &errs.NetworkError{Err: callErr}
		}

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return &errs.AuthError{StatusCode: resp.StatusCode, Remediation: "check ANTHROPIC_API_KEY"}
		}
		if resp.StatusCode != http.StatusOK {
			return &errs.NetworkError{StatusCode: resp.StatusCode, Body: string(data)}
		}

		if jsonErr := json.Unmarshal(data, &parsed); jsonErr != nil {
			return &errs.InvalidResponseError{Reason: "malformed anthropic response body: " + jsonErr.Error()}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if parsed.Error != nil {
		return nil, &errs.InvalidResponseError{Reason: parsed.Error.Message}
	}

	return a.convertResponse(&parsed), nil
}

func (a *anthropicAdapter) convertResponse(r *anthropicResponse) *agent.CompletionResponse {
	resp := &agent.CompletionResponse{
		ID:           r.ID,
		FinishReason: mapStopReason(r.StopReason),
		Usage: agent.TokenUsage{
			PromptTokens:     r.Usage.InputTokens,
			CompletionTokens: r.Usage.OutputTokens,
			TotalTokens:      r.Usage.InputTokens + r.Usage.OutputTokens,
		},
	}

	var textParts []string
	for _, block := range r.Content {
		switch block.Type {
		case "text":
			textParts = append(textParts, block.Text)
		case "tool_use":
			resp.ToolCalls = append(resp.ToolCalls, agent.ToolCall{
				ID:        block.ID,
				Type:      "function",
				Name:      block.Name,
				Arguments: string(block.Input),
			})
		}
	}
	resp.Content = strings.Join(textParts, "\n")

	return resp
}

func mapStopReason(reason string) string {
	switch reason {
	case "end_turn":
		return "stop"
	case "max_tokens":
		return "length"
	case "tool_use":
		return "tool_calls"
	default:
		return "stop"
	}
}

// Stream rejects tools per the streaming contract and relays SSE
// content_block_delta/text_delta events to onChunk.
func (a *anthropicAdapter) Stream(ctx context.Context, req *agent.CompletionRequest, onChunk func(string)) (*agent.CompletionResponse, error) {
	if len(req.Tools) > 0 {
		return nil, &errs.InvalidArgumentError{Reason: "streaming does not support tools; use Complete instead"}
	}

	body := a.buildRequest(req, true)
	resp, err := a.doRequest(ctx, body)
	if err != nil {
		return nil, &errs.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, &errs.NetworkError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	var fullContent strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")

		var evt struct {
			Type  string `json:"type"`
			Delta struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"delta"`
		}
		if jsonErr := json.Unmarshal([]byte(payload), &evt); jsonErr != nil {
			continue // malformed chunks are silently skipped
		}
		if evt.Type == "content_block_delta" && evt.Delta.Type == "text_delta" {
			fullContent.WriteString(evt.Delta.Text)
			if onChunk != nil {
				onChunk(evt.Delta.Text)
			}
		}
	}

	return &agent.CompletionResponse{Content: fullContent.String(), FinishReason: "stop"}, nil
}
