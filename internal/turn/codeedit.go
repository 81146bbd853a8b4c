package turn

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nvlabs/deepwatch/internal/tools"
)

var filePathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:update|edit|modify|change|fix)\s+([^\s"']+\.[a-zA-Z0-9]+)`),
	regexp.MustCompile(`(?i)([^\s"']+\.[a-zA-Z0-9]+)\s+(?:from|to)`),
	regexp.MustCompile(`(?i)(?:in|on)\s+([^\s"']+\.[a-zA-Z0-9]+)`),
	regexp.MustCompile(`"([^"]+\.[a-zA-Z0-9]+)"`),
	regexp.MustCompile(`'([^']+\.[a-zA-Z0-9]+)'`),
	regexp.MustCompile(`["']([^"'\s.]+)["']`),
	regexp.MustCompile(`([a-zA-Z_][a-zA-Z0-9_]*\.[a-zA-Z0-9]+)`),
}

var commonExtensions = []string{".py", ".js", ".ts", ".json", ".yaml", ".yml", ".md", ".go"}

// DetectFileInInput looks for a file path mentioned in userInput that
// actually exists under workingDir, grounded on _detect_file_in_input.
func DetectFileInInput(userInput, workingDir string) string {
	for _, pattern := range filePathPatterns {
		for _, match := range pattern.FindAllStringSubmatch(userInput, -1) {
			candidate := match[1]
			full := filepath.Join(workingDir, candidate)
			if info, err := os.Stat(full); err == nil && !info.IsDir() {
				return candidate
			}
			if !strings.Contains(candidate, ".") {
				for _, ext := range commonExtensions {
					full := filepath.Join(workingDir, candidate+ext)
					if _, err := os.Stat(full); err == nil {
						return candidate + ext
					}
				}
			}
		}
	}
	return ""
}

func addLineNumbers(content string) string {
	lines := strings.Split(content, "\n")
	var b strings.Builder
	for i, l := range lines {
		fmt.Fprintf(&b, "%4d\t%s\n", i+1, l)
	}
	return b.String()
}

func buildEditPrompt(userInput, filePath, numberedContent string) string {
	return fmt.Sprintf(`You need to edit a file based on the user's request.

FILE: %s

CURRENT CONTENT (with line numbers for reference):
%s

USER REQUEST: %s

IMPORTANT:
1. The OLD_CODE must match EXACTLY what's in the file (including whitespace/indentation)
2. Copy the text precisely from the content above (do NOT include line numbers)
3. If string appears multiple times, include enough context to make it unique
4. Make minimal changes - only change what's necessary

Output your response in this EXACT format:
OLD_CODE:
`+"```"+`
[exact code to replace - copy from above, without line numbers]
`+"```"+`

NEW_CODE:
`+"```"+`
[replacement code]
`+"```", filePath, numberedContent, userInput)
}

func buildRetryEditPrompt(userInput, filePath, numberedContent, previousError string, attempt int) string {
	return fmt.Sprintf(`RETRY ATTEMPT %d: Your previous edit failed.

ERROR: %s

FILE: %s

CURRENT CONTENT (with line numbers - use these for reference):
%s

USER REQUEST: %s

IMPORTANT:
1. The OLD_CODE must match EXACTLY what's in the file (including whitespace)
2. Copy the exact text from the file above, preserving indentation
3. If the string appears multiple times, include more context to make it unique
4. Do NOT include line numbers in your OLD_CODE - just the actual code

Output in this EXACT format:
OLD_CODE:
`+"```"+`
[exact code to replace - copy from file above, without line numbers]
`+"```"+`

NEW_CODE:
`+"```"+`
[replacement code]
`+"```", attempt+1, previousError, filePath, numberedContent, userInput)
}

type editInstructions struct {
	Old string
	New string
}

func extractCodeBlock(text string) string {
	if idx := strings.Index(text, "```"); idx >= 0 {
		if nl := strings.Index(text[idx:], "\n"); nl >= 0 {
			start := idx + nl + 1
			if end := strings.Index(text[start:], "```"); end >= 0 {
				return strings.TrimSpace(text[start : start+end])
			}
		}
	}
	return strings.TrimSpace(text)
}

func extractEditInstructions(response, currentContent string) *editInstructions {
	if !strings.Contains(response, "OLD_CODE:") || !strings.Contains(response, "NEW_CODE:") {
		return nil
	}
	oldStart := strings.Index(response, "OLD_CODE:") + len("OLD_CODE:")
	oldEnd := strings.Index(response, "NEW_CODE:")
	newStart := oldEnd + len("NEW_CODE:")

	oldSection := strings.TrimSpace(response[oldStart:oldEnd])
	newSection := strings.TrimSpace(response[newStart:])

	oldCode := extractCodeBlock(oldSection)
	newCode := extractCodeBlock(newSection)

	if oldCode == "" || !strings.Contains(currentContent, oldCode) {
		return nil
	}
	return &editInstructions{Old: oldCode, New: newCode}
}

const maxEditContentLength = 15000

// HandleCodeEdit runs the read -> prompt -> parse OLD_CODE/NEW_CODE ->
// apply-with-retry loop for a single-file edit request, grounded on
// _execute_code_edit. The prompt goes to the coding specialist's EditCode
// (bypassing the plan/accept loop, matching the original's "bypass
// planning phase for simple edits"), and the edit is applied by calling
// internal/tools.EditFile directly rather than through the dispatcher.
func (p *Processor) HandleCodeEdit(ctx context.Context, userInput, filePath string, maxRetries int) string {
	return handleCodeEditWith(p, p.Specialists, ctx, userInput, filePath, maxRetries)
}

// codeEditor is the slice of *specialists.Caller that HandleCodeEdit needs;
// narrowed to an interface so tests can substitute a stub that never makes
// a network call.
type codeEditor interface {
	EditCode(ctx context.Context, prompt string) (string, error)
}

func handleCodeEditWith(p *Processor, caller codeEditor, ctx context.Context, userInput, filePath string, maxRetries int) string {
	fullPath := filepath.Join(p.Session.Cwd(), filePath)
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return fmt.Sprintf("Error: File %s does not exist", filePath)
	}

	var lastErr string
	for attempt := 0; attempt < maxRetries; attempt++ {
		currentContent := string(data)
		numbered := addLineNumbers(currentContent)
		if len(numbered) > maxEditContentLength {
			lines := strings.Split(numbered, "\n")
			head := lines
			if len(head) > 200 {
				head = head[:200]
			}
			tail := lines
			if len(tail) > 100 {
				tail = tail[len(tail)-100:]
			}
			numbered = strings.Join(head, "\n") + "\n... (truncated) ...\n" + strings.Join(tail, "\n")
		}

		var prompt string
		if attempt == 0 {
			prompt = buildEditPrompt(userInput, filePath, numbered)
		} else {
			prompt = buildRetryEditPrompt(userInput, filePath, numbered, lastErr, attempt)
		}

		result, err := caller.EditCode(ctx, prompt)
		if err != nil || strings.TrimSpace(result) == "" {
			lastErr = "no response from coding model"
			if err != nil {
				lastErr = err.Error()
			}
			continue
		}

		instr := extractEditInstructions(result, currentContent)
		if instr == nil {
			lastErr = "could not parse OLD_CODE/NEW_CODE from model response"
			continue
		}

		editResult, err := tools.EditFile(p.Session, map[string]interface{}{
			"file_path": filePath,
			"old_code":  instr.Old,
			"new_code":  instr.New,
		})
		if err == nil {
			return fmt.Sprintf("Successfully edited %s:\n%s", filePath, editResult)
		}
		lastErr = err.Error()

		// Refresh content for the next retry attempt.
		if refreshed, readErr := os.ReadFile(fullPath); readErr == nil {
			data = refreshed
		}
	}

	return fmt.Sprintf("Error: Failed to edit %s after %d attempts. Last error: %s", filePath, maxRetries, lastErr)
}
