// Package config loads the orchestrator's YAML configuration: defaults
// first, YAML overlay second, then environment-variable overrides for
// secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nvlabs/deepwatch/internal/errs"
	"github.com/nvlabs/deepwatch/internal/providers"
)

// EndpointConfig is the YAML shape for a single provider endpoint.
type EndpointConfig struct {
	Kind         string   `yaml:"kind"`
	Name         string   `yaml:"name"`
	URL          string   `yaml:"url"`
	BearerToken  string   `yaml:"bearer_token"`
	BearerEnv    string   `yaml:"bearer_token_env"`
	APIKey       string   `yaml:"api_key"`
	APIKeyEnv    string   `yaml:"api_key_env"`
	Model        string   `yaml:"model"`
	Token        string   `yaml:"token"`
	TokenEnv     string   `yaml:"token_env"`
	Template     string   `yaml:"chat_template"`
	StaticModels []string `yaml:"static_models"`
}

// PolicyRAGEndpoint configures the energy-policy RAG backend used by
// use_nehanda.
type PolicyRAGEndpoint struct {
	Enabled bool          `yaml:"enabled"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// RoleConfig names which endpoint a specialist role uses and any
// role-specific overrides.
type RoleConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// Config is the orchestrator's top-level configuration.
type Config struct {
	Endpoints map[string]EndpointConfig `yaml:"endpoints"`
	Roles     map[string]RoleConfig     `yaml:"roles"`
	PolicyRAG PolicyRAGEndpoint         `yaml:"policy_rag"`

	Brave struct {
		Token string `yaml:"token"`
	} `yaml:"brave"`
	Core struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"core"`
	Newsroom struct {
		BaseURL string `yaml:"base_url"`
		Token   string `yaml:"token"`
	} `yaml:"newsroom"`
	Cache struct {
		Backend  string `yaml:"backend"` // "memory" or "redis"
		RedisURL string `yaml:"redis_url"`
	} `yaml:"cache"`
}

// Default returns a Config with sane zero-dependency defaults, usable before
// any file is read: no configured endpoints or roles, the cache backend left
// unset, and the policy-RAG endpoint enabled at localhost:8000.
func Default() *Config {
	return &Config{
		Endpoints: map[string]EndpointConfig{},
		Roles:     map[string]RoleConfig{},
		PolicyRAG: PolicyRAGEndpoint{
			Enabled: true,
			URL:     "http://localhost:8000",
			Timeout: 180 * time.Second,
		},
	}
}

// Load reads YAML from path over the defaults, loads a .env file from the
// working directory if present, then applies environment-variable overrides
// for secrets.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // optional; missing .env is not an error

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &errs.ConfigError{Err: err, Remediation: fmt.Sprintf("create a config file at %s", path)}
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &errs.ConfigError{Err: err, Remediation: "fix the YAML syntax in " + path}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BRAVE_API_TOKEN"); v != "" {
		c.Brave.Token = v
	}
	if v := os.Getenv("CORE_API_KEY"); v != "" {
		c.Core.APIKey = v
	}
	if v := os.Getenv("NEWSROOM_JWT"); v != "" {
		c.Newsroom.Token = v
	}
	for name, ep := range c.Endpoints {
		if ep.BearerEnv != "" {
			if v := os.Getenv(ep.BearerEnv); v != "" {
				ep.BearerToken = v
			}
		}
		if ep.APIKeyEnv != "" {
			if v := os.Getenv(ep.APIKeyEnv); v != "" {
				ep.APIKey = v
			}
		}
		if ep.TokenEnv != "" {
			if v := os.Getenv(ep.TokenEnv); v != "" {
				ep.Token = v
			}
		}
		c.Endpoints[name] = ep
	}
}

// Validate checks every role resolves to a declared endpoint.
func (c *Config) Validate() error {
	for role, rc := range c.Roles {
		if rc.Endpoint == "" {
			return &errs.ConfigError{Err: fmt.Errorf("role %q has no endpoint", role)}
		}
		if _, ok := c.Endpoints[rc.Endpoint]; !ok {
			return &errs.ConfigError{Err: fmt.Errorf("role %q references unknown endpoint %q", role, rc.Endpoint)}
		}
	}
	return nil
}

// EndpointFor resolves a role name (e.g. "use_coding_agent") to a built
// providers.Endpoint, erroring with a remediation hint if the role or its
// endpoint is unconfigured.
func (c *Config) EndpointFor(role string) (providers.Endpoint, error) {
	rc, ok := c.Roles[role]
	if !ok {
		return providers.Endpoint{}, &errs.ConfigError{
			Err:         fmt.Errorf("no role configured for %q", role),
			Remediation: fmt.Sprintf("add a `roles: {%s: {endpoint: ...}}` entry to the config file", role),
		}
	}
	ec, ok := c.Endpoints[rc.Endpoint]
	if !ok {
		return providers.Endpoint{}, &errs.ConfigError{
			Err: fmt.Errorf("role %q references unknown endpoint %q", role, rc.Endpoint),
		}
	}
	return toProvidersEndpoint(ec)
}

func toProvidersEndpoint(ec EndpointConfig) (providers.Endpoint, error) {
	kind := providers.Kind(ec.Kind)
	switch kind {
	case providers.KindLocal, providers.KindOpenAICompatible, providers.KindOpenAIHosted,
		providers.KindAnthropicHosted, providers.KindHFInferenceToolkit:
	default:
		return providers.Endpoint{}, &errs.ConfigError{Err: fmt.Errorf("unknown endpoint kind %q", ec.Kind)}
	}
	return providers.Endpoint{
		Kind:         kind,
		Name:         ec.Name,
		URL:          ec.URL,
		BearerToken:  ec.BearerToken,
		APIKey:       ec.APIKey,
		Model:        ec.Model,
		Token:        ec.Token,
		Template:     providers.ChatTemplate(ec.Template),
		StaticModels: ec.StaticModels,
	}, nil
}
