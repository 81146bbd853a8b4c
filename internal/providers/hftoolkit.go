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

// hfToolkitAdapter implements the HFInferenceToolkit endpoint kind: a bare
// Hugging Face text-generation-inference deployment that exposes no
// structured chat endpoint, only a raw /generate (or root) prompt-in,
// text-out contract. The chat-style Messages slice is rendered into a flat
// prompt string using one of four templates before being sent.
type hfToolkitAdapter struct {
	url        string
	token      string
	template   ChatTemplate
	httpClient *http.Client
}

// NewHFToolkitAdapter builds the HFInferenceToolkit endpoint variant.
func NewHFToolkitAdapter(url, token string, template ChatTemplate) Adapter {
	return &hfToolkitAdapter{
		url:      url,
		token:    token,
		template: template,
		httpClient: &http.Client{
			Timeout: 180 * time.Second,
		},
	}
}

// ListModels has no discovery endpoint on bare toolkit deployments; the
// single configured URL is the only "model" this adapter can ever serve.
func (a *hfToolkitAdapter) ListModels(ctx context.Context) ([]string, error) {
	return []string{a.url}, nil
}

type hfGenerateRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters hfGenParams    `json:"parameters"`
	Stream     bool           `json:"stream,omitempty"`
}

type hfGenParams struct {
	MaxNewTokens    int     `json:"max_new_tokens"`
	Temperature     float64 `json:"temperature,omitempty"`
	TopP            float64 `json:"top_p,omitempty"`
	ReturnFullText  bool    `json:"return_full_text"`
}

// renderPrompt flattens req into a single prompt string per a.template. The
// four templates mirror the prompt formats real open-weight chat models are
// tuned against; an inference-toolkit deployment has no notion of roles, so
// this adapter owns the translation the provider-hosted adapters get for
// free from their SDKs.
func (a *hfToolkitAdapter) renderPrompt(req *agent.CompletionRequest) string {
	switch a.template {
	case TemplateChatML:
		return renderChatML(req)
	case TemplateAlpaca:
		return renderAlpaca(req)
	case TemplateRaw:
		return renderRaw(req)
	default: // TemplateMistral, and the fallback for unknown values
		return renderMistral(req)
	}
}

func renderMistral(req *agent.CompletionRequest) string {
	var b strings.Builder
	b.WriteString("<s>")
	first := true
	for _, turn := range flattenTurns(req) {
		switch turn.role {
		case "user":
			if first && req.System != "" {
				fmt.Fprintf(&b, "[INST] %s\n\n%s [/INST]", req.System, turn.content)
			} else {
				fmt.Fprintf(&b, "[INST] %s [/INST]", turn.content)
			}
			first = false
		case "assistant":
			fmt.Fprintf(&b, "%s</s><s>", turn.content)
		}
	}
	return b.String()
}

func renderChatML(req *agent.CompletionRequest) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "<|im_start|>system\n%s<|im_end|>\n", req.System)
	}
	for _, turn := range flattenTurns(req) {
		fmt.Fprintf(&b, "<|im_start|>%s\n%s<|im_end|>\n", turn.role, turn.content)
	}
	b.WriteString("<|im_start|>assistant\n")
	return b.String()
}

func renderAlpaca(req *agent.CompletionRequest) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "%s\n\n", req.System)
	}
	for _, turn := range flattenTurns(req) {
		switch turn.role {
		case "user":
			fmt.Fprintf(&b, "### Instruction:\n%s\n\n", turn.content)
		case "assistant":
			fmt.Fprintf(&b, "### Response:\n%s\n\n", turn.content)
		}
	}
	b.WriteString("### Response:\n")
	return b.String()
}

func renderRaw(req *agent.CompletionRequest) string {
	var b strings.Builder
	if req.System != "" {
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}
	for _, turn := range flattenTurns(req) {
		b.WriteString(turn.content)
		b.WriteString("\n")
	}
	return b.String()
}

type flatTurn struct {
	role    string
	content string
}

func flattenTurns(req *agent.CompletionRequest) []flatTurn {
	turns := make([]flatTurn, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == "system" {
			continue
		}
		role := m.Role
		if role == "tool" {
			role = "user"
		}
		turns = append(turns, flatTurn{role: role, content: m.Content})
	}
	return turns
}

func (a *hfToolkitAdapter) Complete(ctx context.Context, req *agent.CompletionRequest) (*agent.CompletionResponse, error) {
	if len(req.Tools) > 0 {
		return nil, &errs.InvalidArgumentError{Reason: "hf_inference_toolkit endpoints do not support tool calling"}
	}

	maxNew := req.MaxTokens
	if maxNew == 0 {
		maxNew = 512
	}
	body := hfGenerateRequest{
		Inputs: a.renderPrompt(req),
		Parameters: hfGenParams{
			MaxNewTokens:   maxNew,
			Temperature:    req.Temperature,
			TopP:           req.TopP,
			ReturnFullText: false,
		},
	}

	var text string
	err := Do(ctx, func() error {
		resp, callErr := a.post(ctx, body)
		if callErr != nil {
			return &errs.NetworkError{Err: callErr}
		}
		defer resp.Body.Close()

		data, callErr := io.ReadAll(resp.Body)
		if callErr != nil {
			return &errs.NetworkError{Err: callErr}
		}

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return &errs.AuthError{StatusCode: resp.StatusCode, Remediation: "check the inference toolkit token"}
		}
		if resp.StatusCode != http.StatusOK {
			return &errs.NetworkError{StatusCode: resp.StatusCode, Body: string(data)}
		}

		parsedText, parseErr := parseHFGenerateBody(data)
		if parseErr != nil {
			return parseErr
		}
		text = parsedText
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &agent.CompletionResponse{Content: text, FinishReason: "stop"}, nil
}

// parseHFGenerateBody handles the three response shapes a toolkit deployment
// may return: a list of {generated_text}, a single {generated_text} object,
// or an {error} object.
func parseHFGenerateBody(data []byte) (string, error) {
	var asList []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(data, &asList); err == nil && len(asList) > 0 {
		return asList[0].GeneratedText, nil
	}

	var asObj struct {
		GeneratedText string `json:"generated_text"`
		Error         string `json:"error"`
	}
	if err := json.Unmarshal(data, &asObj); err == nil {
		if asObj.Error != "" {
			return "", &errs.InvalidResponseError{Reason: asObj.Error}
		}
		if asObj.GeneratedText != "" {
			return asObj.GeneratedText, nil
		}
	}

	return "", &errs.InvalidResponseError{Reason: "unrecognized hf_inference_toolkit response shape"}
}

func (a *hfToolkitAdapter) post(ctx context.Context, body hfGenerateRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal hf toolkit request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+a.token)
	}

	return a.httpClient.Do(httpReq)
}

// Stream uses the toolkit's SSE variant, emitting `data: {"token":{"text":...}}`
// lines. Tools are unsupported regardless of streaming, so Stream rejects
// them just as Complete does.
func (a *hfToolkitAdapter) Stream(ctx context.Context, req *agent.CompletionRequest, onChunk func(string)) (*agent.CompletionResponse, error) {
	if len(req.Tools) > 0 {
		return nil, &errs.InvalidArgumentError{Reason: "hf_inference_toolkit endpoints do not support tool calling"}
	}

	maxNew := req.MaxTokens
	if maxNew == 0 {
		maxNew = 512
	}
	body := hfGenerateRequest{
		Inputs: a.renderPrompt(req),
		Parameters: hfGenParams{
			MaxNewTokens:   maxNew,
			Temperature:    req.Temperature,
			TopP:           req.TopP,
			ReturnFullText: false,
		},
		Stream: true,
	}

	resp, err := a.post(ctx, body)
	if err != nil {
		return nil, &errs.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, &errs.NetworkError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	var fullText strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			continue
		}

		var evt struct {
			Token struct {
				Text    string `json:"text"`
				Special bool   `json:"special"`
			} `json:"token"`
		}
		if jsonErr := json.Unmarshal([]byte(payload), &evt); jsonErr != nil {
			continue
		}
		if evt.Token.Special {
			continue
		}
		fullText.WriteString(evt.Token.Text)
		if onChunk != nil {
			onChunk(evt.Token.Text)
		}
	}

	return &agent.CompletionResponse{Content: fullText.String(), FinishReason: "stop"}, nil
}
