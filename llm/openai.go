package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// Fixed waits for the OpenAI retry loop. The rate-limit wait is only used
// when the server did not suggest one itself.
const (
	rateLimitFallbackWait = 2 * time.Second
	connectionErrorWait   = 5 * time.Second
	unknownErrorWait      = 1 * time.Second
)

// tokenBumpFloor is the minimum ceiling increase applied by the
// reasoning-exhaustion retry.
const tokenBumpFloor = 512

// ChatCompletion is the OpenAI-style completion response.
type ChatCompletion struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   ChatUsage    `json:"usage"`
}

// ChatChoice is a single sampled completion.
type ChatChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// ChatUsage reports token consumption for a completion.
type ChatUsage struct {
	PromptTokens            int                     `json:"prompt_tokens"`
	CompletionTokens        int                     `json:"completion_tokens"`
	TotalTokens             int                     `json:"total_tokens"`
	CompletionTokensDetails CompletionTokensDetails `json:"completion_tokens_details"`
}

// CompletionTokensDetails breaks completion tokens down by kind.
type CompletionTokensDetails struct {
	ReasoningTokens          int `json:"reasoning_tokens"`
	AcceptedPredictionTokens int `json:"accepted_prediction_tokens"`
}

// Content returns the first choice's message content, or "" when no choice
// is present. Callers must treat "" as a possible outcome.
func (r *ChatCompletion) Content() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// OpenAIClient dispatches chat completion requests with the OpenAI retry
// policy: bad requests are fatal, rate limits honor the server-suggested
// wait, connectivity and unclassified errors use fixed waits, and an empty
// completion whose budget was consumed by reasoning tokens is retried once
// with a raised ceiling.
type OpenAIClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	maxRetries int
	cooldown   *Cooldown
}

// NewOpenAIClient creates an OpenAI-style dispatcher. The API key is read
// from OPENAI_API_KEY at request time.
func NewOpenAIClient(opts ...ClientOption) *OpenAIClient {
	cfg := newClientConfig(opts)

	cooldown := cfg.cooldown
	if cooldown == nil {
		cooldown = defaultCooldownGate()
	}

	return &OpenAIClient{
		baseURL:    openaiURL(cfg.baseURL),
		httpClient: cfg.httpClient,
		logger:     cfg.logger,
		maxRetries: cfg.maxRetries,
		cooldown:   cooldown,
	}
}

func openaiURL(base string) string {
	if base == "" {
		base = defaultOpenAIBaseURL
	}
	base = strings.TrimSuffix(base, "/")
	if strings.HasSuffix(base, "/chat/completions") {
		return base
	}
	return base + "/chat/completions"
}

// CreateChatCompletion sends the assembled config, retrying per the OpenAI
// policy up to the configured attempt budget. A *BadRequestError is returned
// immediately; exhaustion of the budget returns an error wrapping
// ErrRetriesExhausted.
func (c *OpenAIClient) CreateChatCompletion(ctx context.Context, cfg *ChatGPTConfig) (*ChatCompletion, error) {
	logger := c.logger.With(
		"provider", "openai",
		"request_id", uuid.New().String(),
		"model", cfg.Model)

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := c.cooldown.Acquire(ctx); err != nil {
			return nil, err
		}
		logger.Debug("Creating API request", "attempt", attempt)

		resp, err := c.doRequest(ctx, cfg)
		if err == nil {
			requestsTotal.WithLabelValues("openai", "success").Inc()
			return c.retryIfReasoningExhausted(ctx, cfg, resp, logger), nil
		}
		lastErr = err

		if IsBadRequest(err) {
			logger.Warn("Request invalid", "error", err)
			requestsTotal.WithLabelValues("openai", "bad_request").Inc()
			return nil, err
		}

		var wait time.Duration
		var reason string
		switch {
		case IsRateLimit(err):
			reason = "rate_limit"
			wait = rateLimitFallbackWait
			var rateLimit *RateLimitError
			if errors.As(err, &rateLimit) && rateLimit.RetryAfter > 0 {
				wait = rateLimit.RetryAfter
			}
			logger.Warn("Rate limit exceeded, waiting", "wait", wait, "error", err)
		case IsConnection(err):
			reason = "connection"
			wait = connectionErrorWait
			logger.Warn("API connection error, waiting", "wait", wait, "error", err)
		default:
			reason = "unknown"
			wait = unknownErrorWait
			logger.Warn("Unknown error, waiting", "wait", wait, "error", err)
		}
		retriesTotal.WithLabelValues("openai", reason).Inc()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	requestsTotal.WithLabelValues("openai", "exhausted").Inc()
	if lastErr != nil {
		return nil, fmt.Errorf("openai: %w after %d attempts: %w", ErrRetriesExhausted, c.maxRetries, lastErr)
	}
	return nil, fmt.Errorf("openai: %w after %d attempts", ErrRetriesExhausted, c.maxRetries)
}

// retryIfReasoningExhausted applies the one-shot token-budget-bump retry.
// Any failure of the bumped retry is swallowed and the original response
// returned; there is no further bump loop.
func (c *OpenAIClient) retryIfReasoningExhausted(ctx context.Context, cfg *ChatGPTConfig, resp *ChatCompletion, logger *slog.Logger) *ChatCompletion {
	if !shouldRetryForReasoningExhaustion(resp, cfg) {
		return resp
	}

	bumped := bumpTokenCeiling(tokenCeiling(cfg))
	logger.Info("Empty content with the budget consumed by reasoning tokens, retrying with a higher ceiling",
		"max_tokens", bumped)

	cfg.MaxTokens = bumped
	cfg.MaxCompletionTokens = bumped

	if err := c.cooldown.Acquire(ctx); err != nil {
		return resp
	}
	retriesTotal.WithLabelValues("openai", "token_budget").Inc()

	retry, err := c.doRequest(ctx, cfg)
	if err != nil {
		logger.Warn("Token budget retry failed, keeping original response", "error", err)
		return resp
	}
	return retry
}

// shouldRetryForReasoningExhaustion reports whether an empty completion is
// explained by the token ceiling being consumed entirely by internal
// reasoning. Pure: it returns false on any unexpected shape and never
// panics.
func shouldRetryForReasoningExhaustion(resp *ChatCompletion, cfg *ChatGPTConfig) bool {
	if resp == nil || cfg == nil || len(resp.Choices) == 0 {
		return false
	}
	if resp.Choices[0].Message.Content != "" {
		return false
	}

	details := resp.Usage.CompletionTokensDetails
	return tokenCeiling(cfg) > 0 &&
		details.ReasoningTokens > 0 &&
		details.AcceptedPredictionTokens == 0
}

// tokenCeiling returns the configured cap, preferring the legacy field when
// both are set.
func tokenCeiling(cfg *ChatGPTConfig) int {
	if cfg.MaxTokens > 0 {
		return cfg.MaxTokens
	}
	return cfg.MaxCompletionTokens
}

func bumpTokenCeiling(ceiling int) int {
	extra := ceiling / 2
	if extra < tokenBumpFloor {
		extra = tokenBumpFloor
	}
	return ceiling + extra
}

// doRequest executes a single HTTP request against the chat completions
// endpoint and classifies failures.
func (c *OpenAIClient) doRequest(ctx context.Context, cfg *ChatGPTConfig) (*ChatCompletion, error) {
	body, err := json.Marshal(cfg)
	if err != nil {
		return nil, &BadRequestError{Body: fmt.Sprintf("marshal request body: %v", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, &BadRequestError{Body: fmt.Sprintf("create HTTP request: %v", err)}
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+apiKey)
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
		return nil, classifyOpenAIError(httpResp.StatusCode, httpResp.Header, respBody)
	}

	var completion ChatCompletion
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return nil, &APIError{StatusCode: httpResp.StatusCode, Body: fmt.Sprintf("parse response: %v", err)}
	}
	return &completion, nil
}
