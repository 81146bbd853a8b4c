// Package conversation maintains the append-only message log and bounded
// context window for a single session.
package conversation

import (
	"context"
	"strings"

	"github.com/nvlabs/deepwatch/agent"
	"github.com/nvlabs/deepwatch/internal/errs"
)

// Summarizer condenses a run of messages into a short text block. The
// reasoning-role specialist call satisfies this in production; tests can
// stub it.
type Summarizer interface {
	Summarize(ctx context.Context, messages []agent.Message) (string, error)
}

// NoopSummarizer always returns the original's documented fallback string,
// used when no Summarizer is configured.
type NoopSummarizer struct{}

func (NoopSummarizer) Summarize(ctx context.Context, messages []agent.Message) (string, error) {
	return "[Previous conversation context unavailable]", nil
}

const summaryPrefix = "[Previous conversation summary: "

// Manager holds one conversation's message log plus bounded-window
// management. Not safe for concurrent use by multiple goroutines without
// external synchronization; conversation handling is single-threaded.
type Manager struct {
	messages []agent.Message

	maxMessages          int // 0 means unlimited
	enableSummarization  bool
	keepRecent           int
	summarizer           Summarizer
}

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithMaxMessages caps the window; 0 (the default) means unlimited.
func WithMaxMessages(n int) Option { return func(m *Manager) { m.maxMessages = n } }

// WithSummarization enables summarize-then-FIFO instead of plain FIFO once
// the window overflows, keeping keepRecent of the newest messages verbatim.
func WithSummarization(summarizer Summarizer, keepRecent int) Option {
	return func(m *Manager) {
		m.enableSummarization = true
		m.summarizer = summarizer
		m.keepRecent = keepRecent
	}
}

// New creates a Manager seeded with a system prompt message.
func New(systemPrompt string, opts ...Option) *Manager {
	m := &Manager{
		messages: []agent.Message{{Role: "system", Content: systemPrompt}},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.keepRecent <= 0 {
		m.keepRecent = 10
	}
	return m
}

// AddUserMessage appends a user turn and runs context management.
func (m *Manager) AddUserMessage(ctx context.Context, content string) {
	m.messages = append(m.messages, agent.Message{Role: "user", Content: content})
	m.manageContext(ctx)
}

// AddAssistantMessage appends an assistant turn. Per the OpenAI wire
// requirement the original documents, a tool-calls-only message still
// carries an explicit empty Content rather than omitting it.
func (m *Manager) AddAssistantMessage(ctx context.Context, content string, toolCalls []agent.ToolCall) error {
	if content == "" && len(toolCalls) == 0 {
		return &errs.InvalidArgumentError{Reason: "conversation: assistant message must have content or tool_calls"}
	}
	m.messages = append(m.messages, agent.Message{Role: "assistant", Content: content, ToolCalls: toolCalls})
	m.manageContext(ctx)
	return nil
}

// AddToolResult appends a tool-result message.
func (m *Manager) AddToolResult(ctx context.Context, toolCallID, name, content string) {
	m.messages = append(m.messages, agent.Message{Role: "tool", ToolCallID: toolCallID, Name: name, Content: content})
	m.manageContext(ctx)
}

// Messages returns a defensive copy of the current log.
func (m *Manager) Messages() []agent.Message {
	out := make([]agent.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Clear resets the log to just the original system prompt.
func (m *Manager) Clear() {
	system := m.messages[0]
	m.messages = []agent.Message{system}
}

// ContextStats mirrors get_context_stats: message count and a rough
// character-based token estimate (1 token ~= 4 characters).
type ContextStats struct {
	MessageCount     int
	EstimatedTokens  int
	MaxMessages      int
}

func (m *Manager) Stats() ContextStats {
	totalChars := 0
	for _, msg := range m.messages {
		totalChars += len(msg.Content)
	}
	return ContextStats{
		MessageCount:    len(m.messages),
		EstimatedTokens: totalChars / 4,
		MaxMessages:     m.maxMessages,
	}
}

// Snapshot captures the log for persistence or branching.
type Snapshot struct {
	Messages []agent.Message
}

func (m *Manager) Snapshot() Snapshot {
	return Snapshot{Messages: m.Messages()}
}

// Restore replaces the log with a previously captured Snapshot.
func (m *Manager) Restore(s Snapshot) {
	m.messages = make([]agent.Message, len(s.Messages))
	copy(m.messages, s.Messages)
}

func (m *Manager) manageContext(ctx context.Context) {
	if m.maxMessages == 0 || len(m.messages) <= m.maxMessages {
		return
	}

	if m.enableSummarization && m.summarizer != nil {
		if m.summarizeInPlace(ctx) {
			return
		}
	}

	// FIFO fallback: system message + the newest maxMessages-1 messages.
	system := m.messages[0]
	recent := m.messages[len(m.messages)-(m.maxMessages-1):]
	m.messages = append([]agent.Message{system}, recent...)
}

func (m *Manager) summarizeInPlace(ctx context.Context) bool {
	if len(m.messages) <= m.keepRecent+1 {
		return false
	}

	system := m.messages[0]
	hasSummary := len(m.messages) > 1 && strings.Contains(m.messages[1].Content, "Previous conversation summary:")

	if hasSummary {
		oldSummary := m.messages[1]
		toSummarize := m.messages[2 : len(m.messages)-m.keepRecent]
		recent := m.messages[len(m.messages)-m.keepRecent:]

		newText, err := m.summarizer.Summarize(ctx, toSummarize)
		if err != nil {
			return false
		}
		combined := oldSummary.Content + "\n\n[Additional context:]\n" + newText
		m.messages = append([]agent.Message{system, {Role: "user", Content: combined}}, recent...)
		return true
	}

	toSummarize := m.messages[1 : len(m.messages)-m.keepRecent]
	recent := m.messages[len(m.messages)-m.keepRecent:]

	summaryText, err := m.summarizer.Summarize(ctx, toSummarize)
	if err != nil {
		return false
	}
	summaryMsg := agent.Message{Role: "user", Content: summaryPrefix + summaryText + "]"}
	m.messages = append([]agent.Message{system, summaryMsg}, recent...)
	return true
}
