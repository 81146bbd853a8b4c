package turn

import (
	"fmt"
	"strings"
)

// contextParamByTool mirrors _inject_context's per-tool param_name
// selection: only specialist tools that take a single free-text task/query
// argument get prior tool output auto-injected.
var contextParamByTool = map[string]string{
	"use_reasoning_model": "task",
	"use_search_model":    "query",
	"use_coding_agent":    "code_context",
	"analyze_image":       "task",
}

const (
	searchContextLimit   = 10000
	defaultContextLimit  = 2000
)

var toolOutputMarkers = []string{
	"Academic search results for:",
	"Search results for:",
	"Found",
	"Summary: Found",
}

// injectContext prepends recent tool outputs to a specialist tool's single
// free-text argument, grounded on _inject_context. If recentToolOutputs is
// empty, it falls back to scanning the assistant messages among the last 5
// conversation messages for a recognizable tool-output marker.
func (p *Processor) injectContext(toolName string, args map[string]interface{}) map[string]interface{} {
	paramName, ok := contextParamByTool[toolName]
	if !ok {
		return args
	}
	original, ok := args[paramName]
	if !ok {
		return args
	}

	var contextParts []string
	for _, entry := range p.recentToolOutputs {
		limit := defaultContextLimit
		if entry.Tool == "academic_search" || entry.Tool == "web_search" {
			limit = searchContextLimit
		}
		contextParts = append(contextParts, fmt.Sprintf("[Previous %s output]:\n%s", entry.Tool, truncate(entry.Result, limit)))
	}

	if len(contextParts) == 0 {
		contextParts = p.scanHistoryForToolOutput()
	}

	if len(contextParts) == 0 {
		return args
	}

	contextStr := strings.Join(contextParts, "\n\n")
	out := cloneArgs(args)
	out[paramName] = fmt.Sprintf("%s\n\n---\nTask: %v", contextStr, original)
	return out
}

func (p *Processor) scanHistoryForToolOutput() []string {
	messages := p.Conversation.Messages()
	start := len(messages) - 5
	if start < 0 {
		start = 0
	}
	recent := messages[start:]

	for i := len(recent) - 1; i >= 0; i-- {
		msg := recent[i]
		if msg.Role != "assistant" {
			continue
		}
		matched := false
		for _, marker := range toolOutputMarkers {
			if strings.Contains(msg.Content, marker) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		isSearchResult := strings.Contains(msg.Content, "Academic search results for:") || strings.Contains(msg.Content, "Search results for:")
		limit := defaultContextLimit
		if isSearchResult {
			limit = searchContextLimit
		}
		return []string{fmt.Sprintf("[Previous tool output from conversation]:\n%s", truncate(msg.Content, limit))}
	}
	return nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
