package workflow

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nvlabs/deepwatch/internal/store"
)

// CredibilityTier is a coarse three-tier source-trust classification.
type CredibilityTier string

const (
	CredibilityHigh   CredibilityTier = "high"
	CredibilityMedium CredibilityTier = "medium"
	CredibilityLow    CredibilityTier = "low"
)

// highTrustSuffixes and lowTrustSuffixes are a small hardcoded
// domain-reputation map backing source-credibility scoring.
var highTrustSuffixes = []string{".gov", ".edu", "reuters.com", "apnews.com", "bloomberg.com"}
var lowTrustSuffixes = []string{"blogspot.com", "medium.com", "wordpress.com"}

func domainTier(rawURL string) CredibilityTier {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return CredibilityMedium
	}
	host := strings.ToLower(parsed.Host)
	for _, suf := range highTrustSuffixes {
		if strings.HasSuffix(host, suf) {
			return CredibilityHigh
		}
	}
	for _, suf := range lowTrustSuffixes {
		if strings.HasSuffix(host, suf) {
			return CredibilityLow
		}
	}
	return CredibilityMedium
}

func bump(tier CredibilityTier) CredibilityTier {
	switch tier {
	case CredibilityLow:
		return CredibilityMedium
	case CredibilityMedium:
		return CredibilityHigh
	default:
		return CredibilityHigh
	}
}

// ScoreCredibility combines domain reputation, a recency bonus (published
// within 30 days bumps one tier), and a cross-source-agreement bonus (the
// same URL appearing in 2+ of the caller's source sets bumps one tier).
func ScoreCredibility(rawURL string, publishedAt time.Time, agreementCount int) CredibilityTier {
	tier := domainTier(rawURL)
	if !publishedAt.IsZero() && time.Since(publishedAt) <= 30*24*time.Hour {
		tier = bump(tier)
	}
	if agreementCount >= 2 {
		tier = bump(tier)
	}
	return tier
}

// DeepResearch extends Research with credibility scoring and
// content-addressed persistence, grounded on research_workflow.py's
// docstring references to a deeper variant plus research_persistence.py's
// save/load contract (reworked onto internal/store's content-addressed
// layout rather than the original's topic-slug files).
type DeepResearch struct {
	Research *Research
	Store    *store.Store
}

// DeepResult is the outcome of a deep research run: the synthesized answer,
// its persisted document id, and the high/medium/low source-count summary.
type DeepResult struct {
	Answer     string
	DocumentID string
	Tiers      map[CredibilityTier]int
}

// Execute runs the base research pipeline, scores every cited source URL's
// credibility, persists the result, and appends a tier-count summary line.
func (d *DeepResearch) Execute(ctx context.Context, topic, query string) (DeepResult, error) {
	answer := d.Research.Execute(ctx, query)

	urls := extractAllURLs(answer)
	tiers := map[CredibilityTier]int{}
	seen := map[string]int{}
	for _, u := range urls {
		seen[u]++
	}
	now := time.Now()
	for u := range seen {
		tier := ScoreCredibility(u, now, seen[u])
		tiers[tier]++
	}

	summary := fmt.Sprintf("\n\n## Source credibility: %d high, %d medium, %d low",
		tiers[CredibilityHigh], tiers[CredibilityMedium], tiers[CredibilityLow])
	fullAnswer := answer + summary

	var docID string
	if d.Store != nil {
		id, err := d.Store.Save(store.Document{
			Topic:     topic,
			Query:     query,
			Content:   fullAnswer,
			Sources:   urls,
			CreatedAt: now,
		})
		if err != nil {
			return DeepResult{}, err
		}
		docID = id
	}

	return DeepResult{Answer: fullAnswer, DocumentID: docID, Tiers: tiers}, nil
}

func extractAllURLs(text string) []string {
	matches := sourceURLPattern.FindAllStringSubmatch(text, -1)
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		urls = append(urls, m[1])
	}
	return urls
}
