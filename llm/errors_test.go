package llm

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyOpenAIError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		header     http.Header
		body       string
		check      func(t *testing.T, err error)
	}{
		{
			name:       "bad request is fatal",
			statusCode: http.StatusBadRequest,
			body:       `{"error": "model not found"}`,
			check: func(t *testing.T, err error) {
				assert.True(t, IsBadRequest(err))
				assert.False(t, IsRateLimit(err))
			},
		},
		{
			name:       "rate limit with retry-after header",
			statusCode: http.StatusTooManyRequests,
			header:     http.Header{"Retry-After": []string{"1.5"}},
			body:       `{"error": "rate limit"}`,
			check: func(t *testing.T, err error) {
				assert.True(t, IsRateLimit(err))
				var rateLimit *RateLimitError
				assert.ErrorAs(t, err, &rateLimit)
				assert.Equal(t, 1500*time.Millisecond, rateLimit.RetryAfter)
			},
		},
		{
			name:       "rate limit with suggested wait in message",
			statusCode: http.StatusTooManyRequests,
			body:       `{"error": {"message": "Rate limit reached. Please try again in 1.384s."}}`,
			check: func(t *testing.T, err error) {
				var rateLimit *RateLimitError
				assert.ErrorAs(t, err, &rateLimit)
				assert.Equal(t, time.Duration(1.384*float64(time.Second)), rateLimit.RetryAfter)
			},
		},
		{
			name:       "rate limit without suggested wait",
			statusCode: http.StatusTooManyRequests,
			body:       `{"error": "slow down"}`,
			check: func(t *testing.T, err error) {
				var rateLimit *RateLimitError
				assert.ErrorAs(t, err, &rateLimit)
				assert.Zero(t, rateLimit.RetryAfter)
			},
		},
		{
			name:       "rate limit with date retry-after falls back to message",
			statusCode: http.StatusTooManyRequests,
			header:     http.Header{"Retry-After": []string{"Wed, 21 Oct 2026 07:28:00 GMT"}},
			body:       "try again in 0.5s",
			check: func(t *testing.T, err error) {
				var rateLimit *RateLimitError
				assert.ErrorAs(t, err, &rateLimit)
				assert.Equal(t, 500*time.Millisecond, rateLimit.RetryAfter)
			},
		},
		{
			name:       "server error is unclassified",
			statusCode: http.StatusServiceUnavailable,
			body:       "overloaded",
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				assert.ErrorAs(t, err, &apiErr)
				assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyOpenAIError(tt.statusCode, tt.header, []byte(tt.body))
			tt.check(t, err)
		})
	}
}

func TestTruncateBody(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, truncateBody(long), 203)
	assert.Equal(t, "short", truncateBody([]byte("short")))
}

func TestIsConnection(t *testing.T) {
	err := &ConnectionError{err: fmt.Errorf("dial tcp: refused")}
	assert.True(t, IsConnection(err))
	assert.True(t, IsConnection(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsConnection(fmt.Errorf("plain")))
}

func TestShouldRetryForReasoningExhaustion(t *testing.T) {
	exhausted := &ChatCompletion{
		Choices: []ChatChoice{{Message: Message{Role: RoleAssistant, Content: ""}}},
		Usage: ChatUsage{
			CompletionTokensDetails: CompletionTokensDetails{
				ReasoningTokens:          1000,
				AcceptedPredictionTokens: 0,
			},
		},
	}
	cfg := &ChatGPTConfig{MaxCompletionTokens: 1000}

	assert.True(t, shouldRetryForReasoningExhaustion(exhausted, cfg))

	t.Run("nil response", func(t *testing.T) {
		assert.False(t, shouldRetryForReasoningExhaustion(nil, cfg))
	})
	t.Run("nil config", func(t *testing.T) {
		assert.False(t, shouldRetryForReasoningExhaustion(exhausted, nil))
	})
	t.Run("no choices", func(t *testing.T) {
		assert.False(t, shouldRetryForReasoningExhaustion(&ChatCompletion{}, cfg))
	})
	t.Run("content present", func(t *testing.T) {
		resp := *exhausted
		resp.Choices = []ChatChoice{{Message: Message{Content: "answer"}}}
		assert.False(t, shouldRetryForReasoningExhaustion(&resp, cfg))
	})
	t.Run("accepted tokens nonzero", func(t *testing.T) {
		resp := *exhausted
		resp.Usage.CompletionTokensDetails.AcceptedPredictionTokens = 3
		assert.False(t, shouldRetryForReasoningExhaustion(&resp, cfg))
	})
	t.Run("no reasoning tokens", func(t *testing.T) {
		resp := *exhausted
		resp.Usage.CompletionTokensDetails.ReasoningTokens = 0
		assert.False(t, shouldRetryForReasoningExhaustion(&resp, cfg))
	})
	t.Run("no configured ceiling", func(t *testing.T) {
		assert.False(t, shouldRetryForReasoningExhaustion(exhausted, &ChatGPTConfig{}))
	})
}

func TestBumpTokenCeiling(t *testing.T) {
	// Below 1024 the floor dominates; above it the ceiling grows by half.
	assert.Equal(t, 612, bumpTokenCeiling(100))
	assert.Equal(t, 1512, bumpTokenCeiling(1000))
	assert.Equal(t, 3072, bumpTokenCeiling(2048))
}

func TestTokenCeiling_PrefersLegacyField(t *testing.T) {
	assert.Equal(t, 50, tokenCeiling(&ChatGPTConfig{MaxTokens: 50, MaxCompletionTokens: 100}))
	assert.Equal(t, 100, tokenCeiling(&ChatGPTConfig{MaxCompletionTokens: 100}))
}
