package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, time.Second, cfg.OpenAI.Cooldown())
	assert.Equal(t, 500*time.Second, cfg.Retry.Timeout())
	assert.Equal(t, 40, cfg.Retry.MaxRetries)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing openai model", func(c *Config) { c.OpenAI.Model = "" }},
		{"missing anthropic model", func(c *Config) { c.Anthropic.Model = "" }},
		{"zero openai max tokens", func(c *Config) { c.OpenAI.MaxTokens = 0 }},
		{"zero anthropic max tokens", func(c *Config) { c.Anthropic.MaxTokens = 0 }},
		{"temperature out of range", func(c *Config) { c.Anthropic.Temperature = 1.5 }},
		{"zero max retries", func(c *Config) { c.Retry.MaxRetries = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Merge(&Config{
		OpenAI: OpenAIConfig{Model: "gpt-4o", CooldownSeconds: 0.5},
		Retry:  RetryConfig{MaxRetries: 10},
	})

	assert.Equal(t, "gpt-4o", base.OpenAI.Model)
	assert.Equal(t, 500*time.Millisecond, base.OpenAI.Cooldown())
	assert.Equal(t, 10, base.Retry.MaxRetries)

	// Unset fields keep their previous values.
	assert.Equal(t, "claude-2.1", base.Anthropic.Model)
	assert.Equal(t, 2048, base.OpenAI.MaxTokens)
	assert.Equal(t, 500, base.Retry.TimeoutSeconds)

	base.Merge(nil)
	assert.Equal(t, "gpt-4o", base.OpenAI.Model)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agentless.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
openai:
  model: gpt-5
  cooldown_seconds: 2.5
anthropic:
  model: claude-3-opus
  max_tokens: 8192
retry:
  max_retries: 7
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-5", cfg.OpenAI.Model)
	assert.Equal(t, 2.5, cfg.OpenAI.CooldownSeconds)
	assert.Equal(t, "claude-3-opus", cfg.Anthropic.Model)
	assert.Equal(t, 8192, cfg.Anthropic.MaxTokens)
	assert.Equal(t, 7, cfg.Retry.MaxRetries)
}

func TestLoadFromFile_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("openai: [not a mapping"), 0o644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoaderLayering(t *testing.T) {
	projectDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, ProjectConfigFile), []byte(`
openai:
  model: project-model
`), 0o644))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(projectDir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	cfg, err := NewLoader(nil).Load()
	require.NoError(t, err)

	assert.Equal(t, "project-model", cfg.OpenAI.Model)
	// Everything else falls back to defaults.
	assert.Equal(t, "claude-2.1", cfg.Anthropic.Model)
}
