// use_nehanda wraps a configured PolicyRAGEndpoint: detect a municipality
// named in the query against the endpoint's /municipalities list, then POST
// the query to /chat with that municipality and render the answer plus any
// RAG sources.
package specialists

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/nvlabs/deepwatch/internal/errs"
)

type municipalitiesResponse struct {
	Municipalities []string `json:"municipalities"`
}

type nehandaChatResponse struct {
	Response        string   `json:"response"`
	RAGSources      []string `json:"rag_sources"`
	RAGContextUsed  bool     `json:"rag_context_used"`
}

func fetchMunicipalities(ctx context.Context, client *http.Client, endpoint string) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(endpoint, "/")+"/municipalities", nil)
	if err != nil {
		return nil
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	var parsed municipalitiesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil
	}
	return parsed.Municipalities
}

func detectMunicipality(query string, available []string) string {
	lower := strings.ToLower(query)
	for _, m := range available {
		if strings.Contains(lower, strings.ToLower(m)) {
			return m
		}
	}
	return ""
}

// UseNehanda answers an energy policy / regulatory compliance question via
// the configured PolicyRAGEndpoint.
func (c *Caller) UseNehanda(ctx context.Context, query string) (string, error) {
	if query == "" {
		return "", &errs.InvalidArgumentError{Reason: "query must be a non-empty string"}
	}
	if len(query) > 2000 {
		return "", &errs.InvalidArgumentError{Reason: "query too long (max 2000 characters)"}
	}

	rag := c.Config.PolicyRAG
	if !rag.Enabled {
		return "", &errs.ConfigError{Err: fmt.Errorf("nehanda RAG is disabled"), Remediation: "enable policy_rag.enabled in the config file"}
	}

	client := &http.Client{Timeout: rag.Timeout}
	endpoint := strings.TrimRight(rag.URL, "/")

	available := fetchMunicipalities(ctx, client, rag.URL)
	municipality := detectMunicipality(query, available)
	if municipality == "" {
		if len(available) > 0 {
			return "Please specify a municipality in your question. Available: " + strings.Join(available, ", "), nil
		}
		return "", &errs.NetworkError{Err: fmt.Errorf("could not fetch available municipalities from %s", endpoint)}
	}

	body, err := json.Marshal(map[string]interface{}{
		"message":      query,
		"municipality": municipality,
		"use_rag":      true,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/chat", strings.NewReader(string(body)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", &errs.NetworkError{Err: fmt.Errorf("could not connect to nehanda API at %s: %w", endpoint, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &errs.NetworkError{StatusCode: resp.StatusCode, Err: fmt.Errorf("nehanda API error")}
	}

	var parsed nehandaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &errs.InvalidResponseError{Reason: "malformed nehanda response"}
	}

	answer := strings.TrimSpace(parsed.Response)
	if answer == "" {
		return "", &errs.InvalidResponseError{Reason: "nehanda returned empty response"}
	}

	var b strings.Builder
	b.WriteString(answer)
	if parsed.RAGContextUsed && len(parsed.RAGSources) > 0 {
		b.WriteString("\n\nSources:")
		for _, s := range parsed.RAGSources {
			b.WriteString("\n  - " + s)
		}
	}
	return b.String(), nil
}
