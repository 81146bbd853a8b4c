// Package specialists implements the fixed set of role-scoped model callers:
// small tool functions that resolve a role to a configured provider endpoint,
// build a role-specific system prompt, and call Complete or Stream, all
// dispatched behind config.Config.
package specialists

import (
	"context"
	"io"
	"regexp"

	"github.com/nvlabs/deepwatch/agent"
	"github.com/nvlabs/deepwatch/internal/config"
	"github.com/nvlabs/deepwatch/internal/providers"
)

// thinkTagRe strips <think>...</think> and <thinking>...</thinking> blocks
// from specialist output. Deliberately permissive; don't tighten this
// pattern without evidence of a model that needs it.
var thinkTagRe = regexp.MustCompile(`(?is)<think(?:ing)?>.*?</think(?:ing)?>`)

// StripThinking removes any thinking-tag blocks and trims the result.
func StripThinking(s string) string {
	return stripAndTrim(thinkTagRe.ReplaceAllString(s, ""))
}

func stripAndTrim(s string) string {
	for len(s) > 0 && (s[0] == '\n' || s[0] == ' ' || s[0] == '\t' || s[0] == '\r') {
		s = s[1:]
	}
	for len(s) > 0 {
		last := s[len(s)-1]
		if last == '\n' || last == ' ' || last == '\t' || last == '\r' {
			s = s[:len(s)-1]
			continue
		}
		break
	}
	return s
}

// Caller builds provider adapters for a named role from config.Config,
// letting every specialist function share a single resolution path and a
// single injected writer for streamed output (never os.Stdout directly, so
// callers and tests can capture it).
type Caller struct {
	Config *config.Config
	Out    io.Writer
}

// NewCaller builds a Caller. If out is nil, streamed chunks are discarded.
func NewCaller(cfg *config.Config, out io.Writer) *Caller {
	if out == nil {
		out = io.Discard
	}
	return &Caller{Config: cfg, Out: out}
}

func (c *Caller) adapterFor(role string) (agent.LLMAdapter, providers.Endpoint, error) {
	ep, err := c.Config.EndpointFor(role)
	if err != nil {
		return nil, providers.Endpoint{}, err
	}
	adapter, err := providers.NewAdapter(ep)
	if err != nil {
		return nil, providers.Endpoint{}, err
	}
	return adapter, ep, nil
}

// completeRole calls Complete against role's endpoint with a system prompt
// and single user message, returning thinking-stripped content.
func (c *Caller) completeRole(ctx context.Context, role, systemPrompt, userMessage string) (string, error) {
	adapter, ep, err := c.adapterFor(role)
	if err != nil {
		return "", err
	}
	resp, err := adapter.Complete(ctx, &agent.CompletionRequest{
		Model:   ep.Model,
		System:  systemPrompt,
		Messages: []agent.Message{{Role: "user", Content: userMessage}},
	})
	if err != nil {
		return "", err
	}
	return StripThinking(resp.Content), nil
}

// streamRole calls Stream against role's endpoint, writing chunks to c.Out
// as they arrive and returning the full thinking-stripped content.
func (c *Caller) streamRole(ctx context.Context, role, systemPrompt, userMessage string) (string, error) {
	adapter, ep, err := c.adapterFor(role)
	if err != nil {
		return "", err
	}
	resp, err := adapter.Stream(ctx, &agent.CompletionRequest{
		Model:   ep.Model,
		System:  systemPrompt,
		Messages: []agent.Message{{Role: "user", Content: userMessage}},
	}, func(chunk string) {
		io.WriteString(c.Out, chunk)
	})
	if err != nil {
		return "", err
	}
	return StripThinking(resp.Content), nil
}
