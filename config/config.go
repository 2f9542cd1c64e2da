// Package config provides configuration loading for the agentless CLI.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete agentless configuration.
type Config struct {
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Retry     RetryConfig     `yaml:"retry"`
}

// OpenAIConfig configures the OpenAI-style dispatcher.
type OpenAIConfig struct {
	// Model is the model identifier sent in requests.
	Model string `yaml:"model"`
	// Endpoint is the API base URL (empty = api.openai.com).
	Endpoint string `yaml:"endpoint"`
	// MaxTokens is the default response token ceiling.
	MaxTokens int `yaml:"max_tokens"`
	// ReasoningEffort is the reasoning-effort hint.
	ReasoningEffort string `yaml:"reasoning_effort"`
	// CooldownSeconds is the minimum spacing between request starts.
	// OPENAI_MIN_COOLDOWN_SEC takes precedence when set.
	CooldownSeconds float64 `yaml:"cooldown_seconds"`
}

// AnthropicConfig configures the Anthropic-style dispatcher.
type AnthropicConfig struct {
	Model string `yaml:"model"`
	// Endpoint is the API base URL (empty = api.anthropic.com).
	Endpoint string `yaml:"endpoint"`
	// MaxTokens is the default response token ceiling.
	MaxTokens int `yaml:"max_tokens"`
	// Temperature controls sampling randomness (0.0-1.0).
	Temperature float64 `yaml:"temperature"`
}

// RetryConfig bounds the dispatchers' retry loops.
type RetryConfig struct {
	// MaxRetries is the attempt budget per request.
	MaxRetries int `yaml:"max_retries"`
	// TimeoutSeconds is the diagnostic per-attempt timeout of the
	// Anthropic dispatcher.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Cooldown returns the configured cooldown interval as a duration.
func (c *OpenAIConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds * float64(time.Second))
}

// Timeout returns the diagnostic timeout as a duration.
func (r *RetryConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		OpenAI: OpenAIConfig{
			Model:           "gpt-5-mini-2025-08-07",
			Endpoint:        "",
			MaxTokens:       2048,
			ReasoningEffort: "minimal",
			CooldownSeconds: 1.0,
		},
		Anthropic: AnthropicConfig{
			Model:       "claude-2.1",
			Endpoint:    "",
			MaxTokens:   2048,
			Temperature: 1.0,
		},
		Retry: RetryConfig{
			MaxRetries:     40,
			TimeoutSeconds: 500,
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.OpenAI.Model == "" {
		return fmt.Errorf("openai.model is required")
	}
	if c.Anthropic.Model == "" {
		return fmt.Errorf("anthropic.model is required")
	}
	if c.OpenAI.MaxTokens <= 0 {
		return fmt.Errorf("openai.max_tokens must be positive")
	}
	if c.Anthropic.MaxTokens <= 0 {
		return fmt.Errorf("anthropic.max_tokens must be positive")
	}
	if c.Anthropic.Temperature < 0 || c.Anthropic.Temperature > 1 {
		return fmt.Errorf("anthropic.temperature must be between 0 and 1")
	}
	if c.Retry.MaxRetries <= 0 {
		return fmt.Errorf("retry.max_retries must be positive")
	}
	return nil
}

// Merge overlays non-zero fields of other onto c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.OpenAI.Model != "" {
		c.OpenAI.Model = other.OpenAI.Model
	}
	if other.OpenAI.Endpoint != "" {
		c.OpenAI.Endpoint = other.OpenAI.Endpoint
	}
	if other.OpenAI.MaxTokens > 0 {
		c.OpenAI.MaxTokens = other.OpenAI.MaxTokens
	}
	if other.OpenAI.ReasoningEffort != "" {
		c.OpenAI.ReasoningEffort = other.OpenAI.ReasoningEffort
	}
	if other.OpenAI.CooldownSeconds > 0 {
		c.OpenAI.CooldownSeconds = other.OpenAI.CooldownSeconds
	}
	if other.Anthropic.Model != "" {
		c.Anthropic.Model = other.Anthropic.Model
	}
	if other.Anthropic.Endpoint != "" {
		c.Anthropic.Endpoint = other.Anthropic.Endpoint
	}
	if other.Anthropic.MaxTokens > 0 {
		c.Anthropic.MaxTokens = other.Anthropic.MaxTokens
	}
	if other.Anthropic.Temperature > 0 {
		c.Anthropic.Temperature = other.Anthropic.Temperature
	}
	if other.Retry.MaxRetries > 0 {
		c.Retry.MaxRetries = other.Retry.MaxRetries
	}
	if other.Retry.TimeoutSeconds > 0 {
		c.Retry.TimeoutSeconds = other.Retry.TimeoutSeconds
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}
