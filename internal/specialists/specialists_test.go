package specialists

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvlabs/deepwatch/internal/config"
)

func TestStripThinking_RemovesThinkAndThinkingTags(t *testing.T) {
	assert.Equal(t, "answer", StripThinking("<think>pondering...</think>answer"))
	assert.Equal(t, "answer", StripThinking("  <thinking>deliberating</thinking>\nanswer  "))
	assert.Equal(t, "plain text", StripThinking("plain text"))
}

func TestExtractJSONObject_PlainJSON(t *testing.T) {
	got := extractJSONObject(`{"tool": "read_file", "confidence": "high"}`)
	assert.Equal(t, `{"tool": "read_file", "confidence": "high"}`, got)
}

func TestExtractJSONObject_WithMarkdownFence(t *testing.T) {
	got := extractJSONObject("```json\n{\"tool\": \"write_file\"}\n```")
	assert.Equal(t, `{"tool": "write_file"}`, got)
}

func TestExtractJSONObject_SkipsNonToolObjectFirst(t *testing.T) {
	got := extractJSONObject(`{"unrelated": true} {"tool": "ls", "confidence": "low"}`)
	assert.Equal(t, `{"tool": "ls", "confidence": "low"}`, got)
}

func TestUseIntentDetector_EmptyInput(t *testing.T) {
	c := NewCaller(config.Default(), nil)
	result := c.UseIntentDetector(context.Background(), "", "")
	assert.Equal(t, defaultIntentResult("empty input"), result)
}

func TestUseIntentDetector_TooLong(t *testing.T) {
	c := NewCaller(config.Default(), nil)
	long := make([]byte, 2001)
	for i := range long {
		long[i] = 'a'
	}
	result := c.UseIntentDetector(context.Background(), string(long), "")
	assert.Equal(t, defaultIntentResult("input too long"), result)
}

func TestUseIntentDetector_UnconfiguredRoleFallsBackToDefault(t *testing.T) {
	c := NewCaller(config.Default(), nil)
	result := c.UseIntentDetector(context.Background(), "read notes.md", "")
	assert.Equal(t, "none", result.Tool)
	assert.Equal(t, "low", result.Confidence)
}

func TestDefaultPresenter_AlwaysAccepts(t *testing.T) {
	choice, mods, err := DefaultPresenter{}.Review(context.Background(), "some plan")
	require.NoError(t, err)
	assert.Equal(t, PlanAccept, choice)
	assert.Empty(t, mods)
}

func TestUseNehanda_PromptsForMunicipalityWhenUnspecified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/municipalities" {
			json.NewEncoder(w).Encode(map[string]interface{}{"municipalities": []string{"Cambridge", "Somerville"}})
			return
		}
		t.Fatalf("unexpected path %s", r.URL.Path)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.PolicyRAG = config.PolicyRAGEndpoint{Enabled: true, URL: srv.URL, Timeout: 5 * time.Second}
	c := NewCaller(cfg, nil)

	out, err := c.UseNehanda(context.Background(), "what is the net metering policy here?")
	require.NoError(t, err)
	assert.Contains(t, out, "Cambridge")
	assert.Contains(t, out, "Somerville")
}

func TestUseNehanda_AnswersWhenMunicipalityDetected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/municipalities":
			json.NewEncoder(w).Encode(map[string]interface{}{"municipalities": []string{"Cambridge"}})
		case "/chat":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"response":         "Cambridge allows net metering up to 10kW.",
				"rag_sources":      []string{"cambridge_policy_2024.pdf"},
				"rag_context_used": true,
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.PolicyRAG = config.PolicyRAGEndpoint{Enabled: true, URL: srv.URL, Timeout: 5 * time.Second}
	c := NewCaller(cfg, nil)

	out, err := c.UseNehanda(context.Background(), "what is the net metering policy in Cambridge?")
	require.NoError(t, err)
	assert.Contains(t, out, "net metering up to 10kW")
	assert.Contains(t, out, "cambridge_policy_2024.pdf")
}

func TestUseNehanda_DisabledReturnsConfigError(t *testing.T) {
	cfg := config.Default()
	cfg.PolicyRAG.Enabled = false
	c := NewCaller(cfg, nil)

	_, err := c.UseNehanda(context.Background(), "what is the tariff policy in Cambridge?")
	assert.Error(t, err)
}

func TestUseNehanda_RejectsEmptyQuery(t *testing.T) {
	c := NewCaller(config.Default(), nil)
	_, err := c.UseNehanda(context.Background(), "")
	assert.Error(t, err)
}
