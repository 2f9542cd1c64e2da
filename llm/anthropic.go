package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
	promptCachingBeta       = "prompt-caching-2024-07-31"
)

// DefaultAnthropicTimeout is the per-attempt duration after which a failed
// attempt is logged as timed out. Diagnostic only.
const DefaultAnthropicTimeout = 500 * time.Second

// anthropicRetryStep is multiplied by the retry count for the linearly
// increasing wait between attempts.
const anthropicRetryStep = 10 * time.Second

// AnthropicResponse is the Anthropic messages API response.
type AnthropicResponse struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Role         string         `json:"role"`
	Model        string         `json:"model"`
	Content      []ContentBlock `json:"content"`
	StopReason   string         `json:"stop_reason"`
	StopSequence string         `json:"stop_sequence,omitempty"`
	Usage        AnthropicUsage `json:"usage"`
}

// AnthropicUsage reports token consumption, including prompt-cache activity.
type AnthropicUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
}

// Text returns the concatenated text blocks of the response, or "" when no
// content is present. Callers must treat "" as a possible outcome.
func (r *AnthropicResponse) Text() string {
	if r == nil {
		return ""
	}
	var text string
	for _, block := range r.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text
}

// AnthropicClient dispatches message requests with the Anthropic retry
// policy: every failure is logged and retried with a linearly increasing
// wait, bounded only by the attempt budget. No error class is fatal.
type AnthropicClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	maxRetries int
	timeout    time.Duration

	// retryStep is overridden in tests to keep the linear waits short.
	retryStep time.Duration
}

// NewAnthropicClient creates an Anthropic-style dispatcher. The API key is
// read from ANTHROPIC_API_KEY at request time.
func NewAnthropicClient(opts ...ClientOption) *AnthropicClient {
	cfg := newClientConfig(opts)

	timeout := cfg.timeout
	if timeout <= 0 {
		timeout = DefaultAnthropicTimeout
	}

	base := cfg.baseURL
	if base == "" {
		base = defaultAnthropicBaseURL
	}

	return &AnthropicClient{
		baseURL:    strings.TrimSuffix(base, "/") + "/v1/messages",
		httpClient: cfg.httpClient,
		logger:     cfg.logger,
		maxRetries: cfg.maxRetries,
		timeout:    timeout,
		retryStep:  anthropicRetryStep,
	}
}

// CreateMessage sends the assembled config, retrying every failure up to the
// configured attempt budget. When promptCache is true the first message's
// first content block is marked as a prompt-cache boundary and the request
// is routed through the cache-aware beta path; servers that do not support
// the beta ignore the annotation and handle the request normally.
// Exhaustion of the budget returns an error wrapping ErrRetriesExhausted.
func (c *AnthropicClient) CreateMessage(ctx context.Context, cfg *AnthropicConfig, promptCache bool) (*AnthropicResponse, error) {
	logger := c.logger.With(
		"provider", "anthropic",
		"request_id", uuid.New().String(),
		"model", cfg.Model)

	if promptCache {
		markFirstMessageCacheable(cfg)
	}

	var lastErr error
	for retries := 0; retries < c.maxRetries; retries++ {
		attemptStart := time.Now()

		resp, err := c.doRequest(ctx, cfg, promptCache)
		if err == nil {
			requestsTotal.WithLabelValues("anthropic", "success").Inc()
			return resp, nil
		}
		lastErr = err

		logger.Error("Anthropic request failed", "attempt", retries+1, "error", err)
		// The timeout comparison only selects the log message; it never
		// aborts the attempt already made.
		if time.Since(attemptStart) >= c.timeout {
			logger.Warn("Request timed out, retrying", "attempt", retries+1)
		} else {
			logger.Warn("Retrying after error", "attempt", retries+1)
		}
		retriesTotal.WithLabelValues("anthropic", "error").Inc()

		if wait := c.retryStep * time.Duration(retries); wait > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
	}

	requestsTotal.WithLabelValues("anthropic", "exhausted").Inc()
	if lastErr != nil {
		return nil, fmt.Errorf("anthropic: %w after %d attempts: %w", ErrRetriesExhausted, c.maxRetries, lastErr)
	}
	return nil, fmt.Errorf("anthropic: %w after %d attempts", ErrRetriesExhausted, c.maxRetries)
}

// markFirstMessageCacheable marks the first content block of the first
// message, caching the reused prefix of the conversation (tools and system
// content included, since those precede it in the prompt).
func markFirstMessageCacheable(cfg *AnthropicConfig) {
	if len(cfg.Messages) == 0 || len(cfg.Messages[0].Content) == 0 {
		return
	}
	cfg.Messages[0].Content[0].CacheControl = &CacheControl{Type: "ephemeral"}
}

// doRequest executes a single HTTP request against the messages endpoint.
func (c *AnthropicClient) doRequest(ctx context.Context, cfg *AnthropicConfig, promptCache bool) (*AnthropicResponse, error) {
	body, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		httpReq.Header.Set("x-api-key", apiKey)
	}
	if promptCache {
		httpReq.Header.Set("anthropic-beta", promptCachingBeta)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &ConnectionError{err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, &ConnectionError{err: err}
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: httpResp.StatusCode, Body: truncateBody(respBody)}
	}

	var resp AnthropicResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("parse anthropic response: %w", err)
	}
	return &resp, nil
}
