package specialists

import (
	"context"
	"encoding/json"
	"strings"
)

const intentSystemPrompt = `You are an intent detector. Analyze the user request and output ONLY a JSON object.

CRITICAL: Output ONLY the JSON object. NO thinking tags, NO explanations, NO markdown.
Do NOT use <think> tags. Just output the JSON directly.

Available tools:
- write_file: User wants to save/write/create a file (keywords: "write to", "save to", "create file", ".py file", ".md file")
- read_file: User wants to ONLY read/view a file WITHOUT analysis (keywords: "read", "show me", "view file", "content of") - BUT NOT if they also want analysis
- list_files: User wants to list directory contents (keywords: "list files", "show files", "ls", "what files", "directory contents")
- analyze_image: User wants to analyze/OCR/convert an EXISTING image (keywords: "analyze image", "convert image", "OCR", "extract text from image", ".png", ".jpg", "image to markdown", "what's in this image")
- generate_image: User wants to CREATE/GENERATE a new image from text (keywords: "generate image", "create image", "make an image", "draw", "visualize", "illustration of", "picture of")
- use_coding_agent: User wants to generate/modify code (keywords: "write function", "create script", "generate code")
- use_reasoning_model: User wants analysis/planning/thinking (keywords: "analyze", "deep dive", "implications", "think deeply", "examine", "investigate") - PRIORITIZE this over read_file if analysis keywords present
- web_search: User wants current web information (keywords: "search", "latest", "current news", "what's happening")
- get_newsroom_headlines: User wants today's news from the newsroom (keywords: "today's news", "newsroom", "headlines today")
- use_nehanda: User wants energy policy/regulatory info (keywords: "FERC", "ISO", "NEM", "tariff", "energy regulation")
- use_search_model: User wants general knowledge questions (keywords: "what is", "explain", "how does")

CRITICAL PRIORITY RULES:
1. If user mentions BOTH a file AND analysis keywords ("analyze", "deep dive", "implications", "think about"), choose use_reasoning_model NOT read_file. The reasoning model can request file reads if needed.
2. If user mentions an EXISTING image file (.png, .jpg, etc.) or image analysis/OCR keywords, choose analyze_image.
3. If user wants to CREATE/GENERATE a new image from text description, choose generate_image.

Output format (ONLY this, nothing else):
{"tool": "tool_name", "confidence": "high|medium|low", "reasoning": "one sentence why"}

Remember: Output ONLY the JSON. No thinking process, no tags, no extra text.`

// IntentResult is use_intent_detector's typed output. On any failure
// UseIntentDetector returns the fixed fallback from defaultIntentResult,
// {Tool:"none", Confidence:"low"}, with the reason in Reasoning.
type IntentResult struct {
	Tool       string `json:"tool"`
	Confidence string `json:"confidence"`
	Reasoning  string `json:"reasoning"`
}

func defaultIntentResult(reasoning string) IntentResult {
	return IntentResult{Tool: "none", Confidence: "low", Reasoning: reasoning}
}

// UseIntentDetector classifies userInput into a candidate tool name using a
// small, fast model: strip thinking tags, strip markdown fences, locate the
// first balanced JSON object, parse, and default-fill missing fields. Any
// failure collapses to the typed default rather than propagating an error,
// since intent detection is advisory only.
func (c *Caller) UseIntentDetector(ctx context.Context, userInput, recentContext string) IntentResult {
	if userInput == "" {
		return defaultIntentResult("empty input")
	}
	if len(userInput) > 2000 {
		return defaultIntentResult("input too long")
	}

	userMessage := userInput
	if recentContext != "" {
		if len(recentContext) > 500 {
			recentContext = recentContext[:500]
		}
		userMessage = "\nRecent context:\n" + recentContext + "\n\nUser request: " + userInput + "\n\nOutput (JSON only, no thinking):"
	} else {
		userMessage = "\nUser request: " + userInput + "\n\nOutput (JSON only, no thinking):"
	}

	content, err := c.completeRole(ctx, "use_intent_detector", intentSystemPrompt, userMessage)
	if err != nil {
		return defaultIntentResult("error: " + err.Error())
	}
	if strings.TrimSpace(content) == "" {
		return defaultIntentResult("empty response from model")
	}

	jsonBody := extractJSONObject(content)
	if jsonBody == "" {
		return defaultIntentResult("invalid JSON from model")
	}

	var result IntentResult
	if err := json.Unmarshal([]byte(jsonBody), &result); err != nil {
		return defaultIntentResult("invalid JSON from model")
	}
	if result.Tool == "" {
		result.Tool = "none"
	}
	if result.Confidence == "" {
		result.Confidence = "low"
	}
	if result.Reasoning == "" {
		result.Reasoning = "no reasoning provided"
	}
	return result
}

// extractJSONObject strips markdown code fences (StripThinking already
// removed thinking tags) and returns the first balanced {...} block
// containing "tool", or "" if none is found.
func extractJSONObject(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		kept := lines[:0]
		for _, l := range lines {
			if strings.HasPrefix(l, "```") {
				continue
			}
			kept = append(kept, l)
		}
		content = strings.TrimSpace(strings.Join(kept, "\n"))
	}

	start := strings.Index(content, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	for i := start; i < len(content); i++ {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				candidate := content[start : i+1]
				if strings.Contains(candidate, `"tool"`) {
					return candidate
				}
				// keep scanning from the next '{' in case this wasn't the
				// intended object
				next := strings.Index(content[i+1:], "{")
				if next == -1 {
					return ""
				}
				start = i + 1 + next
				depth = 0
				i = start - 1
			}
		}
	}
	return ""
}
