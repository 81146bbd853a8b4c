package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_ResolvesRoleToEndpoint(t *testing.T) {
	path := writeConfig(t, `
endpoints:
  local-coder:
    kind: local
    url: http://localhost:11434
roles:
  use_coding_agent:
    endpoint: local-coder
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	ep, err := cfg.EndpointFor("use_coding_agent")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434", ep.URL)
}

func TestLoad_UnknownEndpointReference(t *testing.T) {
	path := writeConfig(t, `
roles:
  use_coding_agent:
    endpoint: missing
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEndpointFor_UnconfiguredRole(t *testing.T) {
	cfg := Default()
	_, err := cfg.EndpointFor("use_reasoning_model")
	assert.Error(t, err)
}

func TestEnvOverride_APIKey(t *testing.T) {
	path := writeConfig(t, `
endpoints:
  hosted:
    kind: openai_hosted
    model: gpt-4o
    api_key_env: TEST_OPENAI_KEY
roles:
  use_reasoning_model:
    endpoint: hosted
`)
	t.Setenv("TEST_OPENAI_KEY", "sk-test-123")
	cfg, err := Load(path)
	require.NoError(t, err)

	ep, err := cfg.EndpointFor("use_reasoning_model")
	require.NoError(t, err)
	assert.Equal(t, "sk-test-123", ep.APIKey)
}
