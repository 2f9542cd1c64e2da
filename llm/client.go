// Package llm provides retry/backoff request dispatchers for OpenAI-style
// and Anthropic-style chat completion APIs, along with the config builders
// that assemble provider-shaped request payloads.
package llm

import (
	"log/slog"
	"net/http"
	"time"
)

// maxResponseSize limits the LLM response body to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// DefaultMaxRetries bounds the retry loop of both dispatchers.
const DefaultMaxRetries = 40

// clientConfig holds the knobs shared by both dispatchers. Options that do
// not apply to a given dispatcher are ignored by its constructor.
type clientConfig struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	maxRetries int
	cooldown   *Cooldown
	timeout    time.Duration
}

// ClientOption configures an OpenAIClient or AnthropicClient.
type ClientOption func(*clientConfig)

// WithBaseURL overrides the provider API base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithMaxRetries bounds the number of request attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *clientConfig) {
		c.maxRetries = n
	}
}

// WithCooldown injects the gate that spaces out OpenAI dispatch starts.
// Callers that construct several clients can share one gate between them;
// clients built without this option share the package-wide default gate.
// Ignored by AnthropicClient.
func WithCooldown(gate *Cooldown) ClientOption {
	return func(c *clientConfig) {
		c.cooldown = gate
	}
}

// WithTimeout sets the per-attempt duration after which a failed Anthropic
// attempt is logged as timed out. Diagnostic only: it changes the log
// message, never aborts the request. Ignored by OpenAIClient.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

func newClientConfig(opts []ClientOption) clientConfig {
	c := clientConfig{
		httpClient: &http.Client{
			Timeout: 180 * time.Second, // Allow time for LLM responses
		},
		logger:     slog.Default(),
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
