package turn

import (
	"regexp"
	"strings"
)

// referenceParamByTool mirrors _resolve_references' per-tool param_name
// selection: only these tools take a single free-text argument worth
// resolving a pronoun reference against.
var referenceParamByTool = map[string]string{
	"write_file":          "content",
	"use_coding_agent":    "code_context",
	"use_reasoning_model": "task",
	"web_search":          "query",
	"use_search_model":    "query",
	"use_nehanda":         "query",
}

var referencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bthis\s+topic\b`),
	regexp.MustCompile(`(?i)\bthat\s+topic\b`),
	regexp.MustCompile(`(?i)\bthe\s+topic\b`),
	regexp.MustCompile(`(?i)\bthis\s+subject\b`),
	regexp.MustCompile(`(?i)\bthis\s+issue\b`),
	regexp.MustCompile(`(?i)\bthis\s+question\b`),
	regexp.MustCompile(`(?i)^(this|that|the)\s+(topic|subject|issue|question|thing)$`),
	regexp.MustCompile(`(?i)\bthe\s+plan\b`),
	regexp.MustCompile(`(?i)\bthe\s+outline\b`),
	regexp.MustCompile(`(?i)\bthe\s+analysis\b`),
	regexp.MustCompile(`(?i)\bthe\s+report\b`),
	regexp.MustCompile(`(?i)\babove\b`),
	regexp.MustCompile(`(?i)\bprevious\b`),
	regexp.MustCompile(`(?i)\bjust\s+generated\b`),
	regexp.MustCompile(`(?i)\bjust\s+provided\b`),
}

var vagueReferenceRe = regexp.MustCompile(`(?i)^(this|that|the)\s+(topic|subject|issue|question|thing)$`)

var webSearchPreambleRe = regexp.MustCompile(`(?i)^(let'?s\s+)?(do\s+a\s+)?(web\s+)?search`)

var forQueryRe = regexp.MustCompile(`(?i)for:\s*(.+?)(?:\s+\[|$)`)

// resolveReferences replaces a vague pronoun reference ("this topic", "the
// plan") in a tool's single free-text argument with the most recent
// substantial user message or the last specialist output, grounded on
// _resolve_references.
func (p *Processor) resolveReferences(toolName string, args map[string]interface{}) map[string]interface{} {
	paramName, ok := referenceParamByTool[toolName]
	if !ok {
		return args
	}
	original, ok := args[paramName].(string)
	if !ok {
		return args
	}

	hasReference := false
	for _, re := range referencePatterns {
		if re.MatchString(original) {
			hasReference = true
			break
		}
	}
	isTooVague := vagueReferenceRe.MatchString(strings.TrimSpace(original))
	if !hasReference && !isTooVague {
		return args
	}

	resolved := p.resolveFromHistory(toolName)
	if resolved == "" {
		resolved = p.resolveFromLastSpecialistOutput(toolName)
	}
	if resolved == "" {
		return args
	}

	out := cloneArgs(args)
	out[paramName] = resolved
	return out
}

func (p *Processor) resolveFromHistory(toolName string) string {
	if toolName != "web_search" {
		return ""
	}
	messages := p.Conversation.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.Role != "user" {
			continue
		}
		if len(msg.Content) > 20 && !webSearchPreambleRe.MatchString(msg.Content) {
			return msg.Content
		}
	}
	return ""
}

func (p *Processor) resolveFromLastSpecialistOutput(toolName string) string {
	if p.lastSpecialistOutput == "" {
		return ""
	}
	if toolName != "web_search" {
		return p.lastSpecialistOutput
	}

	firstLine := strings.SplitN(p.lastSpecialistOutput, "\n", 2)[0]
	if m := forQueryRe.FindStringSubmatch(firstLine); m != nil {
		return strings.TrimSpace(m[1])
	}
	if len(firstLine) > 10 {
		if len(firstLine) > 100 {
			return firstLine[:100]
		}
		return firstLine
	}
	return ""
}

func cloneArgs(args map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(args))
	for k, v := range args {
		out[k] = v
	}
	return out
}
