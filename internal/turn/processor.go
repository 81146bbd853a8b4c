// Package turn processes a single user turn end-to-end: route (or honor a
// forced workflow), resolve references, inject context, dispatch to a tool
// or specialist, and record the result for the next turn.
package turn

import (
	"context"
	"strconv"
	"strings"

	"github.com/nvlabs/deepwatch/internal/conversation"
	"github.com/nvlabs/deepwatch/internal/registry"
	"github.com/nvlabs/deepwatch/internal/router"
	"github.com/nvlabs/deepwatch/internal/specialists"
	"github.com/nvlabs/deepwatch/internal/workflow"
)

// toolOutputEntry is one recent tool invocation's name and result, used by
// injectContext the way recent_tool_outputs is in the original.
type toolOutputEntry struct {
	Tool   string
	Result string
}

const recentOutputsCapacity = 5

// Processor ties together routing, the tool dispatcher, and specialist
// calls for one conversation.
type Processor struct {
	Conversation *conversation.Manager
	Dispatcher   *registry.Dispatcher
	Session      *registry.Session
	Specialists  *specialists.Caller

	// Research, DeepResearch, Digest, and Develop are the fixed multi-step
	// pipelines forced slash commands hand off to. Any of them may be nil;
	// dispatchForced falls back to a single specialist call when so.
	Research     *workflow.Research
	DeepResearch *workflow.DeepResearch
	Digest       *workflow.Digest
	Develop      *workflow.Develop

	lastSpecialistOutput string
	recentToolOutputs    []toolOutputEntry
}

// NewProcessor builds a Processor over an already-wired dispatcher,
// session, conversation manager, and specialist caller.
func NewProcessor(conv *conversation.Manager, dispatcher *registry.Dispatcher, session *registry.Session, callers *specialists.Caller) *Processor {
	return &Processor{
		Conversation: conv,
		Dispatcher:   dispatcher,
		Session:      session,
		Specialists:  callers,
	}
}

func (p *Processor) recordToolOutput(tool, result string) {
	p.recentToolOutputs = append(p.recentToolOutputs, toolOutputEntry{Tool: tool, Result: result})
	if len(p.recentToolOutputs) > recentOutputsCapacity {
		p.recentToolOutputs = p.recentToolOutputs[len(p.recentToolOutputs)-recentOutputsCapacity:]
	}
}

// Process runs one user turn to completion and returns its final text
// answer. forcedWorkflow, when non-empty, overrides routing (a slash
// command like "/energy ..."); otherwise Process routes user input
// deterministically via internal/router.
func (p *Processor) Process(ctx context.Context, userInput, forcedWorkflow string) (string, error) {
	p.Conversation.AddUserMessage(ctx, userInput)

	if fw, ok := router.ParseForced(forcedWorkflow); ok {
		return p.dispatchForced(ctx, fw, userInput)
	}

	if editPath := DetectFileInInput(userInput, p.Session.Cwd()); editPath != "" && looksLikeEditRequest(userInput) {
		result := p.HandleCodeEdit(ctx, userInput, editPath, 3)
		p.finishTurn(ctx, "edit_file", result)
		return result, nil
	}

	decision := router.Route(userInput)
	return p.dispatchDecision(ctx, decision, userInput)
}

func looksLikeEditRequest(userInput string) bool {
	lower := strings.ToLower(userInput)
	for _, verb := range []string{"update", "edit", "modify", "change", "fix"} {
		if strings.Contains(lower, verb) {
			return true
		}
	}
	return false
}

func (p *Processor) dispatchForced(ctx context.Context, fw router.ForcedWorkflow, userInput string) (string, error) {
	switch fw {
	case router.ForcedCode:
		return p.callSpecialist(ctx, "use_coding_agent", map[string]interface{}{"code_context": userInput})
	case router.ForcedQA:
		return p.callSpecialist(ctx, "use_reasoning_model", map[string]interface{}{"task": userInput})
	case router.ForcedEnergy:
		return p.callSpecialist(ctx, "use_nehanda", map[string]interface{}{"query": userInput})
	case router.ForcedImage:
		return p.callSpecialist(ctx, "generate_image", map[string]interface{}{"prompt": userInput})
	case router.ForcedVision:
		return p.callSpecialist(ctx, "analyze_image", map[string]interface{}{"image_url": userInput})
	case router.ForcedResearch:
		return p.dispatchResearch(ctx, userInput)
	case router.ForcedDeep:
		return p.dispatchDeepResearch(ctx, userInput)
	case router.ForcedAcademic:
		return p.callTool(ctx, "academic_search", map[string]interface{}{"query": userInput})
	case router.ForcedDigest:
		return p.dispatchDigest(ctx, userInput)
	case router.ForcedDevelop:
		return p.dispatchDevelop(ctx, userInput)
	default:
		return p.callSpecialist(ctx, "use_search_model", map[string]interface{}{"query": userInput})
	}
}

func (p *Processor) dispatchResearch(ctx context.Context, userInput string) (string, error) {
	if p.Research == nil {
		return p.callSpecialist(ctx, "use_search_model", map[string]interface{}{"query": userInput})
	}
	result := p.Research.Execute(ctx, userInput)
	p.finishTurn(ctx, "research", result)
	return result, nil
}

func (p *Processor) dispatchDeepResearch(ctx context.Context, userInput string) (string, error) {
	if p.DeepResearch == nil {
		return p.dispatchResearch(ctx, userInput)
	}
	result, err := p.DeepResearch.Execute(ctx, userInput, userInput)
	if err != nil {
		return "", err
	}
	p.finishTurn(ctx, "deep_research", result.Answer)
	return result.Answer, nil
}

func (p *Processor) dispatchDigest(ctx context.Context, userInput string) (string, error) {
	if p.Digest == nil {
		return p.callSpecialist(ctx, "use_search_model", map[string]interface{}{"query": userInput})
	}
	daysBack, topic := parseDigestArgs(userInput)
	result, err := p.Digest.Execute(ctx, daysBack, topic)
	if err != nil {
		return "", err
	}
	p.finishTurn(ctx, "digest", result)
	return result, nil
}

// parseDigestArgs reads an optional leading integer (days back) off
// userInput, the text after the /digest command; anything after it is the
// topic filter. "14 tariffs" -> (14, "tariffs"); "tariffs" -> (7, "tariffs");
// "" -> (7, "").
const defaultDigestDays = 7

func parseDigestArgs(userInput string) (int, string) {
	fields := strings.Fields(userInput)
	if len(fields) == 0 {
		return defaultDigestDays, ""
	}
	if days, err := strconv.Atoi(fields[0]); err == nil {
		return days, strings.TrimSpace(strings.Join(fields[1:], " "))
	}
	return defaultDigestDays, userInput
}

func (p *Processor) dispatchDevelop(ctx context.Context, userInput string) (string, error) {
	if p.Develop == nil {
		return p.callSpecialist(ctx, "use_coding_agent", map[string]interface{}{"code_context": userInput})
	}
	result := p.Develop.Execute(ctx, userInput)
	p.finishTurn(ctx, "develop", result)
	return result, nil
}

func (p *Processor) dispatchDecision(ctx context.Context, decision router.Decision, userInput string) (string, error) {
	switch decision.Workflow {
	case router.WorkflowFileOp:
		return p.callTool(ctx, decision.Tool, map[string]interface{}{"file_path": extractFileArg(userInput)})
	case router.WorkflowCode:
		return p.callSpecialist(ctx, "use_coding_agent", map[string]interface{}{"code_context": userInput})
	case router.WorkflowImage:
		return p.callSpecialist(ctx, "generate_image", map[string]interface{}{"prompt": userInput})
	case router.WorkflowVision:
		return p.callSpecialist(ctx, "analyze_image", map[string]interface{}{"image_url": userInput})
	case router.WorkflowEnergy:
		return p.callSpecialist(ctx, "use_nehanda", map[string]interface{}{"query": userInput})
	case router.WorkflowQA:
		return p.callSpecialist(ctx, "use_reasoning_model", map[string]interface{}{"task": userInput})
	default: // WorkflowResearch
		return p.callSpecialist(ctx, "use_search_model", map[string]interface{}{"query": userInput})
	}
}

// extractFileArg is a minimal stand-in for the original's heuristic
// filename extraction when the router recognizes a file-op phrase but no
// explicit path was detected by DetectFileInInput.
func extractFileArg(userInput string) string {
	fields := strings.Fields(userInput)
	for _, f := range fields {
		if strings.Contains(f, ".") {
			return strings.Trim(f, `"'.,`)
		}
	}
	return ""
}

func (p *Processor) callTool(ctx context.Context, toolName string, args map[string]interface{}) (string, error) {
	args = p.resolveReferences(toolName, args)
	result, err := p.Dispatcher.Call(ctx, p.Session, "", toolName, args)
	if err != nil {
		return "", err
	}
	p.recordToolOutput(toolName, result)
	p.finishTurn(ctx, toolName, result)
	return result, nil
}

func (p *Processor) callSpecialist(ctx context.Context, toolName string, args map[string]interface{}) (string, error) {
	args = p.resolveReferences(toolName, args)
	args = p.injectContext(toolName, args)

	result, err := p.Dispatcher.Call(ctx, p.Session, "", toolName, args)
	if err != nil {
		return "", err
	}
	p.lastSpecialistOutput = result
	p.recordToolOutput(toolName, result)
	p.finishTurn(ctx, toolName, result)
	return result, nil
}

func (p *Processor) finishTurn(ctx context.Context, toolName, result string) {
	_ = p.Conversation.AddAssistantMessage(ctx, result, nil)
}
