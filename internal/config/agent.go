package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvAgentProvider   = "INSPECTOR_AGENT_PROVIDER"
	EnvAgentBaseURL    = "INSPECTOR_AGENT_BASE_URL"
	EnvAgentToken      = "INSPECTOR_AGENT_TOKEN"
	EnvAgentModel      = "INSPECTOR_AGENT_MODEL"
	EnvAgentMaxRetries = "INSPECTOR_AGENT_MAX_RETRIES"
)

// Supported agent providers.
const (
	ProviderOpenAI  = "openai"
	ProviderKeyword = "keyword"
)

// AgentConfig selects and configures the model provider backing the text classifier,
// image classifier, and summarizer capabilities.
type AgentConfig struct {
	Provider   string `toml:"provider"`
	BaseURL    string `toml:"base_url"`
	Token      string `toml:"token"`
	Model      string `toml:"model"`
	MaxRetries int    `toml:"max_retries"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *AgentConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *AgentConfig) Merge(overlay *AgentConfig) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Token != "" {
		c.Token = overlay.Token
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.MaxRetries != 0 {
		c.MaxRetries = overlay.MaxRetries
	}
}

func (c *AgentConfig) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderKeyword
	}
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
}

func (c *AgentConfig) loadEnv() {
	if v := os.Getenv(EnvAgentProvider); v != "" {
		c.Provider = v
	}
	if v := os.Getenv(EnvAgentBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvAgentToken); v != "" {
		c.Token = v
	}
	if v := os.Getenv(EnvAgentModel); v != "" {
		c.Model = v
	}
	if v := os.Getenv(EnvAgentMaxRetries); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
}

func (c *AgentConfig) validate() error {
	switch c.Provider {
	case ProviderKeyword:
		return nil
	case ProviderOpenAI:
		if c.Token == "" {
			return fmt.Errorf("token required for provider %q", c.Provider)
		}
		if c.MaxRetries < 0 {
			return fmt.Errorf("max_retries must not be negative")
		}
		return nil
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
}
