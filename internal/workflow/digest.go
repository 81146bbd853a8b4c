package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nvlabs/deepwatch/internal/newsroom"
	"github.com/nvlabs/deepwatch/internal/specialists"
)

// continentTags is the fixed priority order for continent assignment and
// rendering, grounded on digest_workflow.py's CONTINENT_TAGS.
var continentTags = []string{"Africa", "Americas", "Asia", "Europe", "Middle East", "Oceania", "Global"}

const articlesPerContinent = 6

// geographyToContinent mirrors digest_workflow.py's GEOGRAPHY_TO_CONTINENT
// map, transcribed verbatim.
var geographyToContinent = map[string]string{
	"Africa": "Africa", "North Africa": "Africa", "Sub-Saharan Africa": "Africa",
	"East Africa": "Africa", "West Africa": "Africa", "Southern Africa": "Africa", "Central Africa": "Africa",
	"Americas": "Americas", "North America": "Americas", "South America": "Americas",
	"Latin America": "Americas", "Central America": "Americas", "Caribbean": "Americas",
	"Asia": "Asia", "East Asia": "Asia", "Southeast Asia": "Asia", "South Asia": "Asia", "Central Asia": "Asia",
	"Europe": "Europe", "Western Europe": "Europe", "Eastern Europe": "Europe",
	"Northern Europe": "Europe", "Southern Europe": "Europe",
	"Middle East": "Middle East", "MENA": "Middle East",
	"Oceania": "Oceania", "Australia": "Oceania", "Pacific": "Oceania",
	"Global": "Global", "World": "Global", "International": "Global",
}

// Digest generates a continent-organized news trend digest from newsroom
// articles, grounded line-for-line on workflows/digest_workflow.py's
// DigestWorkflow.
type Digest struct {
	Newsroom    *newsroom.Client
	Specialists *specialists.Caller
}

type trend struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Execute runs the digest pipeline for daysBack days (capped at 90),
// optionally filtered to topic.
func (d *Digest) Execute(ctx context.Context, daysBack int, topic string) (string, error) {
	if daysBack > 90 {
		daysBack = 90
	}

	articles := d.fetchArticles(ctx, daysBack)
	if len(articles) == 0 {
		return "Error: No articles found. Check newsroom configuration.", nil
	}

	if topic != "" {
		articles = filterByTopic(articles, topic)
		if len(articles) == 0 {
			return fmt.Sprintf("Error: No articles found matching topic '%s' in the past %d days.", topic, daysBack), nil
		}
	}

	trends := d.identifyTrends(ctx, articles, topic)
	continental := assignToContinents(articles)

	rendered := make(map[string][]renderArticle, len(continental))
	for continent, list := range continental {
		rendered[continent] = d.summarizeArticles(ctx, list, topic)
	}

	return formatDigest(trends, rendered, daysBack, topic, len(articles)), nil
}

// renderArticle pairs an article with its digest summary — newsroom.Article
// itself carries no Summary field since it's a shared read-only shape used
// by the research and display pipelines too.
type renderArticle struct {
	newsroom.Article
	Summary string
}

func (d *Digest) fetchArticles(ctx context.Context, daysBack int) []newsroom.Article {
	if d.Newsroom == nil {
		return nil
	}
	maxResults := daysBack * 50
	if maxResults > 1000 {
		maxResults = 1000
	}
	return d.Newsroom.FetchRecent(ctx, daysBack, maxResults)
}

func filterByTopic(articles []newsroom.Article, topic string) []newsroom.Article {
	type scored struct {
		score   int
		article newsroom.Article
	}
	var words []string
	for _, w := range strings.Fields(strings.ToLower(topic)) {
		if len(w) >= 2 {
			words = append(words, w)
		}
	}
	topicLower := strings.ToLower(topic)

	var candidates []scored
	for _, a := range articles {
		headline := strings.ToLower(a.Headline)
		tagsStr := strings.ToLower(strings.Join(a.TopicTags, " "))

		score := 0
		for _, w := range words {
			if strings.Contains(headline, w) {
				score += 3
			}
			if strings.Contains(tagsStr, w) {
				score += 2
			}
		}
		if strings.Contains(headline, topicLower) {
			score += 5
		}
		if strings.Contains(tagsStr, topicLower) {
			score += 3
		}
		if score >= 2 {
			candidates = append(candidates, scored{score, a})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	out := make([]newsroom.Article, len(candidates))
	for i, c := range candidates {
		out[i] = c.article
	}
	return out
}

func (d *Digest) identifyTrends(ctx context.Context, articles []newsroom.Article, topic string) []trend {
	limited := articles
	if len(limited) > 100 {
		limited = limited[:100]
	}
	var summaries strings.Builder
	for _, a := range limited {
		fmt.Fprintf(&summaries, "- %s [%s] Tags: %s\n", a.Headline, a.Date, strings.Join(a.TopicTags, ", "))
	}

	topicInstruction := ""
	if topic != "" {
		topicInstruction = fmt.Sprintf("Focus your analysis specifically on trends related to '%s'.", topic)
	}

	prompt := fmt.Sprintf(`Analyze these news headlines and identify exactly 3 high-level meta trends.
%s

Headlines and tags:
%s

Return your analysis as JSON with exactly this format:
{
  "trends": [
    {"title": "Trend 1 Title", "description": "2-3 sentence description of this trend"},
    {"title": "Trend 2 Title", "description": "2-3 sentence description of this trend"},
    {"title": "Trend 3 Title", "description": "2-3 sentence description of this trend"}
  ]
}

Important:
- Identify overarching themes, not individual stories
- Be specific and insightful about market/industry implications
- Keep descriptions concise (2-3 sentences each)
- Return ONLY valid JSON, no other text`, topicInstruction, summaries.String())

	if d.Specialists != nil {
		if result, err := d.Specialists.UseReasoningModel(ctx, prompt); err == nil {
			if trends := parseTrendsJSON(result); len(trends) > 0 {
				return trends
			}
		}
	}

	return fallbackTrendAnalysis(articles)
}

func parseTrendsJSON(text string) []trend {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil
	}
	var parsed struct {
		Trends []trend `json:"trends"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
		return nil
	}
	if len(parsed.Trends) > 3 {
		return parsed.Trends[:3]
	}
	return parsed.Trends
}

func fallbackTrendAnalysis(articles []newsroom.Article) []trend {
	counts := map[string]int{}
	var order []string
	for _, a := range articles {
		for _, tag := range a.TopicTags {
			if _, seen := counts[tag]; !seen {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > 3 {
		order = order[:3]
	}

	trends := make([]trend, 0, len(order))
	for _, tag := range order {
		trends = append(trends, trend{
			Title:       "Rising Focus on " + tag,
			Description: fmt.Sprintf("Multiple sources (%d articles) are reporting on %s-related developments, indicating significant market attention in this area.", counts[tag], tag),
		})
	}
	return trends
}

func assignToContinents(articles []newsroom.Article) map[string][]newsroom.Article {
	continental := make(map[string][]newsroom.Article, len(continentTags))
	for _, c := range continentTags {
		continental[c] = nil
	}
	used := map[string]bool{}

	for _, continent := range continentTags {
		if len(continental[continent]) >= articlesPerContinent {
			continue
		}
		for _, a := range articles {
			if used[a.URL] {
				continue
			}
			if continentFor(a.GeographyTags) == continent {
				continental[continent] = append(continental[continent], a)
				used[a.URL] = true
				if len(continental[continent]) >= articlesPerContinent {
					break
				}
			}
		}
	}

	for _, a := range articles {
		if used[a.URL] {
			continue
		}
		if len(a.GeographyTags) == 0 && len(continental["Global"]) < articlesPerContinent {
			continental["Global"] = append(continental["Global"], a)
			used[a.URL] = true
		}
	}

	return continental
}

func continentFor(geographyTags []string) string {
	for _, tag := range geographyTags {
		if continent, ok := geographyToContinent[tag]; ok {
			return continent
		}
		for geoTag, continent := range geographyToContinent {
			if strings.EqualFold(geoTag, tag) {
				return continent
			}
		}
	}
	return ""
}

func (d *Digest) summarizeArticles(ctx context.Context, articles []newsroom.Article, topic string) []renderArticle {
	if len(articles) == 0 {
		return nil
	}

	var headlines strings.Builder
	for i, a := range articles {
		fmt.Fprintf(&headlines, "%d. %s\n", i+1, a.Headline)
	}

	topicInstruction := ""
	if topic != "" {
		topicInstruction = fmt.Sprintf("Focus on aspects relevant to '%s'.", topic)
	}

	prompt := fmt.Sprintf(`Summarize each of these news headlines in 1-2 sentences each. %s

Headlines:
%s

Return your summaries as JSON:
{
  "summaries": [
    "Summary for headline 1",
    "Summary for headline 2"
  ]
}

Important:
- Each summary should be 1-2 sentences
- Be concise and factual
- Return ONLY valid JSON`, topicInstruction, headlines.String())

	summaries := articleHeadlines(articles)
	if d.Specialists != nil {
		if result, err := d.Specialists.UseReasoningModel(ctx, prompt); err == nil {
			if parsed := parseSummariesJSON(result); len(parsed) >= len(articles) {
				summaries = parsed
			}
		}
	}

	out := make([]renderArticle, len(articles))
	for i, a := range articles {
		summary := a.Headline
		if i < len(summaries) {
			summary = summaries[i]
		}
		out[i] = renderArticle{Article: a, Summary: summary}
	}
	return out
}

func articleHeadlines(articles []newsroom.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.Headline
	}
	return out
}

func parseSummariesJSON(text string) []string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil
	}
	var parsed struct {
		Summaries []string `json:"summaries"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
		return nil
	}
	return parsed.Summaries
}

func formatDigest(trends []trend, continental map[string][]renderArticle, daysBack int, topic string, total int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Newsroom Digest: Past %d Days\n", daysBack)
	if topic != "" {
		fmt.Fprintf(&b, "## Focus: %s\n", topic)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "*Generated: %s | Articles analyzed: %d*\n\n---\n\n", time.Now().Format("2006-01-02 15:04"), total)

	b.WriteString("## Meta Trends\n\n")
	for i, t := range trends {
		title := t.Title
		if title == "" {
			title = "Trend " + strconv.Itoa(i+1)
		}
		desc := t.Description
		if desc == "" {
			desc = "No description available."
		}
		fmt.Fprintf(&b, "### %d. %s\n%s\n\n", i+1, title, desc)
	}
	b.WriteString("---\n\n")

	for _, continent := range continentTags {
		fmt.Fprintf(&b, "## %s\n\n", continent)
		articles := continental[continent]
		if len(articles) == 0 {
			b.WriteString("*No articles for this period*\n\n")
			continue
		}
		for _, a := range articles {
			fmt.Fprintf(&b, "**%s**\n*%s* | %s\n\n%s\n", a.Headline, orUnknown(a.Source), a.Date, a.Summary)
			if a.URL != "" {
				fmt.Fprintf(&b, "[Read more](%s)\n", a.URL)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n")
	fmt.Fprintf(&b, "*End of digest. %d articles processed.*\n", total)
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown source"
	}
	return s
}
