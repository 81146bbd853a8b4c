// Package workflow implements the fixed, non-LLM-orchestrated multi-step
// pipelines — research, deep research, digest, develop — that the turn
// processor forwards forced slash commands to.
package workflow

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/nvlabs/deepwatch/internal/events"
	"github.com/nvlabs/deepwatch/internal/newsroom"
	"github.com/nvlabs/deepwatch/internal/registry"
	"github.com/nvlabs/deepwatch/internal/specialists"
)

// heartbeatMessages cycles through increasingly specific status lines while
// synthesis is in flight, then falls back to an elapsed-time line — grounded
// on research_workflow.py's emit_heartbeat.
var heartbeatMessages = []string{
	"Analyzing sources and generating synthesis...",
	"Processing findings and cross-referencing...",
	"Generating comprehensive answer with citations...",
	"Finalizing synthesis...",
}

const heartbeatInterval = 5 * time.Second

// Research runs the fixed three-step research pipeline: best-effort
// newsroom fetch, web search, LLM synthesis with inline citations.
type Research struct {
	Dispatcher  *registry.Dispatcher
	Session     *registry.Session
	Specialists *specialists.Caller
	Newsroom    *newsroom.Client
	Bus         *events.Bus
}

type sourceDoc struct {
	name    string
	content string
}

// Execute runs the pipeline for query and returns the synthesized answer.
func (r *Research) Execute(ctx context.Context, query string) string {
	workflowID := emit(r.Bus, events.WorkflowStart, fmt.Sprintf("Research: %s", truncateLabel(query, 60)), "", map[string]interface{}{"query": query})

	var sources []sourceDoc

	step1 := emit(r.Bus, events.StepStart, "Step 1/3: Fetching newsroom articles...", workflowID, map[string]interface{}{"step": 1})
	if newsroomResult := r.fetchNewsroom(ctx); newsroomResult != "" {
		sources = append(sources, sourceDoc{"Newsroom", newsroomResult})
		emit(r.Bus, events.StepComplete, "Found newsroom articles", step1, nil)
	} else {
		emit(r.Bus, events.StepError, "Newsroom unavailable - skipping", step1, nil)
	}

	step2 := emit(r.Bus, events.StepStart, "Step 2/3: Searching web...", workflowID, map[string]interface{}{"step": 2})
	searchQuery := ExtractSearchKeywords(query)
	webResult, err := r.fetchWeb(ctx, searchQuery)
	if err == nil && webResult != "" {
		sources = append(sources, sourceDoc{"Web", webResult})
		emit(r.Bus, events.StepComplete, "Found web results", step2, nil)
	} else {
		emit(r.Bus, events.StepError, "Web search failed", step2, nil)
	}

	if len(sources) == 0 {
		emit(r.Bus, events.WorkflowComplete, "Error: No sources available", "", map[string]interface{}{"workflow_id": workflowID, "error": true})
		return "Error: Could not fetch any sources. Please check newsroom and web search availability."
	}

	step3 := emit(r.Bus, events.StepStart, "Step 3/3: Synthesizing findings... This may take 15-25 seconds.", workflowID, map[string]interface{}{"step": 3})
	result := r.synthesizeWithHeartbeat(ctx, query, sources, step3)
	emit(r.Bus, events.StepComplete, "Synthesis complete", step3, nil)
	emit(r.Bus, events.WorkflowComplete, "Research complete", "", map[string]interface{}{"workflow_id": workflowID})
	return result
}

func (r *Research) fetchNewsroom(ctx context.Context) string {
	if r.Newsroom == nil {
		return ""
	}
	articles := r.Newsroom.FetchArticles(ctx, "", 100, time.Now().AddDate(0, -6, 0))
	if len(articles) == 0 {
		return ""
	}
	var b strings.Builder
	for _, a := range articles {
		topics := "No topics"
		if len(a.TopicTags) > 0 {
			limit := a.TopicTags
			if len(limit) > 3 {
				limit = limit[:3]
			}
			topics = strings.Join(limit, ", ")
		}
		date := a.Date
		if len(date) > 10 {
			date = date[:10]
		}
		fmt.Fprintf(&b, "- [%s] %s\n  Topics: %s\n  Source: %s\n  URL: %s\n\n", date, a.Headline, topics, a.Source, a.URL)
	}
	return strings.TrimSpace(b.String())
}

func (r *Research) fetchWeb(ctx context.Context, searchQuery string) (string, error) {
	return r.Dispatcher.Call(ctx, r.Session, "", "web_search", map[string]interface{}{"query": searchQuery})
}

var stopwordPattern = buildStopwordPattern([]string{
	"what", "why", "how", "when", "where", "who",
	"are", "is", "the", "a", "an", "of", "in", "on", "at",
	"based on", "using", "from", "newsroom", "web search",
	"tell me about", "explain", "describe",
})

func buildStopwordPattern(words []string) *regexp.Regexp {
	escaped := make([]string, len(words))
	for i, w := range words {
		escaped[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(escaped, "|") + `)\b`)
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// ExtractSearchKeywords strips question words and filler terms, falling
// back to the original query if stripping leaves fewer than 10 characters.
// Grounded on _extract_search_keywords.
func ExtractSearchKeywords(query string) string {
	cleaned := stopwordPattern.ReplaceAllString(strings.ToLower(query), "")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	if len(cleaned) < 10 {
		return query
	}
	return cleaned
}

var sourceURLPattern = regexp.MustCompile(`URL: (https?://\S+)`)

func (r *Research) synthesizeWithHeartbeat(ctx context.Context, query string, sources []sourceDoc, stepID string) string {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()
		count := 0
		start := time.Now()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				count++
				if count <= len(heartbeatMessages) {
					emit(r.Bus, events.MessageEvent, heartbeatMessages[count-1], stepID, map[string]interface{}{"heartbeat": count})
				} else {
					emit(r.Bus, events.MessageEvent, fmt.Sprintf("Still synthesizing... (%ds elapsed)", int(time.Since(start).Seconds())), stepID, map[string]interface{}{"heartbeat": count})
				}
			}
		}
	}()
	defer func() {
		close(done)
		wg.Wait()
	}()

	return r.synthesize(ctx, query, sources)
}

func (r *Research) synthesize(ctx context.Context, query string, sources []sourceDoc) string {
	var sourceURLs []string
	var sourcesText strings.Builder

	for _, s := range sources {
		for _, url := range firstN(sourceURLPattern.FindAllStringSubmatch(s.content, -1), 5) {
			sourceURLs = append(sourceURLs, fmt.Sprintf("[%s] %s", s.name, url[1]))
		}
		content := s.content
		if len(content) > 5000 {
			content = content[:5000] + "..."
		}
		fmt.Fprintf(&sourcesText, "\n\n[%s]:\n%s", s.name, content)
	}

	currentDate := time.Now().Format("January 2, 2006")
	prompt := fmt.Sprintf(`You are a research analyst synthesizing findings from multiple sources.

IMPORTANT: Today's date is %s. When interpreting dates like "6 months ago", calculate from today's date.

SOURCES:%s

RESEARCH QUESTION:
%s

INSTRUCTIONS:
1. First, identify which Newsroom articles are semantically relevant to the research question
   - The Newsroom contains many articles; only use those actually related to the query
   - Consider topic relevance, not just keyword matches
   - Ignore irrelevant articles completely
2. Synthesize findings from the RELEVANT newsroom articles and web results
3. Cite sources inline using [Newsroom] or [Web] tags after each claim
4. When citing web results, mention the domain/site name when relevant
5. Be concise but comprehensive - focus on answering the specific question
6. If sources conflict, note the discrepancy
7. Structure your answer with clear sections if covering multiple topics
8. Use the current date (%s) when interpreting temporal references

ANSWER:`, currentDate, sourcesText.String(), query, currentDate)

	if r.Specialists == nil {
		result := "Research findings:" + sourcesText.String()
		if len(sourceURLs) > 0 {
			result += "\n\n## Sources:\n" + strings.Join(sourceURLs, "\n")
		}
		return result
	}

	answer, err := r.Specialists.UseReasoningModel(ctx, prompt)
	if err != nil {
		result := fmt.Sprintf("Error synthesizing results: %v\n\nRaw sources:%s", err, sourcesText.String())
		if len(sourceURLs) > 0 {
			result += "\n\n## Sources:\n" + strings.Join(sourceURLs, "\n")
		}
		return result
	}

	answer = strings.TrimSpace(answer)
	if len(sourceURLs) > 0 {
		answer += "\n\n## Sources:\n" + strings.Join(sourceURLs, "\n")
	} else if len(sources) > 0 {
		names := make([]string, len(sources))
		for i, s := range sources {
			names[i] = s.name
		}
		answer += "\n\nSources: " + strings.Join(names, ", ")
	}
	return answer
}

func firstN(matches [][]string, n int) [][]string {
	if len(matches) > n {
		return matches[:n]
	}
	return matches
}

func truncateLabel(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

// emit builds and sends an Event on bus (a nil bus is a no-op), returning
// the new event's node id so callers can parent subsequent events on it.
func emit(bus *events.Bus, typ events.EventType, message, parentID string, metadata map[string]interface{}) string {
	if bus == nil {
		return ""
	}
	e := events.NewEvent(typ, message, parentID)
	if metadata != nil {
		e.Metadata = metadata
	}
	bus.Emit(e)
	return e.NodeID
}
