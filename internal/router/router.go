// Package router implements a deterministic regex decision tree over user
// input.
package router

import (
	"regexp"
	"strings"
)

// Workflow names the routed destination.
type Workflow string

const (
	WorkflowFileOp   Workflow = "file_op"
	WorkflowCode     Workflow = "code"
	WorkflowResearch Workflow = "research"
	WorkflowQA       Workflow = "qa"
	WorkflowEnergy   Workflow = "energy"
	WorkflowImage    Workflow = "image"
	WorkflowVision   Workflow = "vision"
)

// Decision is the router's output; Confidence is always 1.0 since routing
// is purely deterministic.
type Decision struct {
	Workflow   Workflow
	Action     string
	Tool       string
	Confidence float64
}

var readFilePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(read|show|display|view|cat|open)\b.*\b(file|research|notes?)\b`),
	regexp.MustCompile(`\b(show|list)\b.*\b(my|saved|past)\b.*\b(research|findings|notes?)\b`),
	regexp.MustCompile(`\bwhat.*(research|notes?).*(have|saved)\b`),
}

var listFilePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(list|show)\b.*\b(files|research|saved)\b`),
	regexp.MustCompile(`\bwhat.*(files|research).*(do i have|saved)\b`),
}

var writeFilePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(save|write|store)\b.*\b(this|research|findings?|notes?)\b`),
	regexp.MustCompile(`\b(save|write|store)\b.*\b(to|as)\b`),
	regexp.MustCompile(`\bcreate.*\b(file|research note|notes?)\b`),
}

var codePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(write|generate|create|build)\b.*\b(code|script|function|program)\b`),
	regexp.MustCompile(`\b(write|create)\b.*\b(python|javascript|typescript|rust|go)\b`),
	regexp.MustCompile(`\bimplement\b.*\b(function|class|algorithm)\b`),
	regexp.MustCompile(`\bcode\s+(to|for|that)\b`),
	regexp.MustCompile(`\bpython\s+script\b`),
}

// qa/energy/image/vision branches, checked deterministically after the
// file-op and code patterns above.
var qaPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(what|who|when|where|why|how)\s+is\b`),
	regexp.MustCompile(`^(what|who|when|where|why|how)\s+are\b`),
	regexp.MustCompile(`^define\b`),
}

// researchTriggerRe keeps a question out of qa when it asks about trends,
// news, or a recent period; such questions fall through to research.
var researchTriggerRe = regexp.MustCompile(`\b(trends?|latest|news|recent|current|today|this\s+(week|month|year))\b`)

var energyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(energy|renewable|solar|wind|grid|electricity|power)\b.*\b(policy|regulation|tariff|subsidy)\b`),
	regexp.MustCompile(`\b(policy|regulation)\b.*\b(energy|renewable|solar|wind|grid|electricity)\b`),
}

var imagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(draw|generate|create)\b.*\b(an?\s+)?image\b`),
	regexp.MustCompile(`\bgenerate\s+a\s+picture\b`),
}

var visionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bwhat'?s\s+in\s+this\s+image\b`),
	regexp.MustCompile(`\b(describe|analyze)\b.*\bimage\b`),
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// Route decides a Workflow for userInput, priority: file-ops → code →
// qa/energy/image/vision supplements → research default.
func Route(userInput string) Decision {
	lower := strings.ToLower(userInput)

	if d, ok := checkFileOperation(lower); ok {
		return d
	}

	if matchesAny(codePatterns, lower) {
		return Decision{Workflow: WorkflowCode, Action: "generate_code", Tool: "use_coding_agent", Confidence: 1.0}
	}

	if matchesAny(imagePatterns, lower) {
		return Decision{Workflow: WorkflowImage, Action: "generate_image", Tool: "generate_image", Confidence: 1.0}
	}
	if matchesAny(visionPatterns, lower) {
		return Decision{Workflow: WorkflowVision, Action: "analyze_image", Tool: "analyze_image", Confidence: 1.0}
	}
	if matchesAny(energyPatterns, lower) {
		return Decision{Workflow: WorkflowEnergy, Action: "policy_rag", Tool: "use_nehanda", Confidence: 1.0}
	}
	if matchesAny(qaPatterns, lower) && !researchTriggerRe.MatchString(lower) {
		return Decision{Workflow: WorkflowQA, Action: "answer_question", Tool: "use_reasoning_model", Confidence: 1.0}
	}

	return Decision{Workflow: WorkflowResearch, Action: "multi_source_research", Confidence: 1.0}
}

func checkFileOperation(lower string) (Decision, bool) {
	if matchesAny(readFilePatterns, lower) {
		return Decision{Workflow: WorkflowFileOp, Action: "read_file", Tool: "read_file", Confidence: 1.0}, true
	}
	if matchesAny(listFilePatterns, lower) {
		return Decision{Workflow: WorkflowFileOp, Action: "list_files", Tool: "ls", Confidence: 1.0}, true
	}
	// A write phrase that is also a code request ("write a python script to
	// ...") is left to the code branch.
	if matchesAny(writeFilePatterns, lower) && !matchesAny(codePatterns, lower) {
		return Decision{Workflow: WorkflowFileOp, Action: "write_file", Tool: "write_file", Confidence: 1.0}, true
	}
	return Decision{}, false
}
