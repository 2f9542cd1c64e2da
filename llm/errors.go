package llm

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"
)

// ErrRetriesExhausted is returned (wrapped) when a dispatcher's retry budget
// runs out without a successful response. Callers check it with errors.Is so
// an absent response cannot be mistaken for success.
var ErrRetriesExhausted = errors.New("retry budget exhausted")

// BadRequestError is a malformed-request rejection from the provider.
// It is the only fatal class: dispatchers return it without retrying.
type BadRequestError struct {
	Body string
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("invalid API request: %s", e.Body)
}

// RateLimitError is an HTTP 429 from the provider. RetryAfter carries the
// server-suggested wait when one could be extracted, zero otherwise.
type RateLimitError struct {
	Body       string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %s", e.Body)
}

// ConnectionError wraps a transport-level failure reaching the provider.
type ConnectionError struct {
	err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("API connection error: %v", e.err)
}

func (e *ConnectionError) Unwrap() error {
	return e.err
}

// APIError is any other provider error response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// IsBadRequest returns true if the error is the fatal malformed-request class.
func IsBadRequest(err error) bool {
	var badRequest *BadRequestError
	return errors.As(err, &badRequest)
}

// IsRateLimit returns true if the error is a provider rate limit.
func IsRateLimit(err error) bool {
	var rateLimit *RateLimitError
	return errors.As(err, &rateLimit)
}

// IsConnection returns true if the error is a transport failure.
func IsConnection(err error) bool {
	var connection *ConnectionError
	return errors.As(err, &connection)
}

// classifyOpenAIError maps a non-200 OpenAI response to a typed error.
func classifyOpenAIError(statusCode int, header http.Header, body []byte) error {
	msg := truncateBody(body)

	switch statusCode {
	case http.StatusBadRequest:
		return &BadRequestError{Body: msg}
	case http.StatusTooManyRequests:
		return &RateLimitError{Body: msg, RetryAfter: extractRetryAfter(header, msg)}
	default:
		return &APIError{StatusCode: statusCode, Body: msg}
	}
}

// retryAfterPattern matches server-suggested waits embedded in rate-limit
// error messages, e.g. "Please try again in 1.384s".
var retryAfterPattern = regexp.MustCompile(`(?i)try again in ([0-9]*\.?[0-9]+)s`)

// extractRetryAfter pulls a server-suggested wait from the Retry-After
// header, falling back to the message text. Returns 0 when neither yields a
// duration.
func extractRetryAfter(header http.Header, msg string) time.Duration {
	if header != nil {
		if v := header.Get("Retry-After"); v != "" {
			// Some servers return a date here; ignore anything non-numeric.
			if secs, err := strconv.ParseFloat(v, 64); err == nil && secs >= 0 {
				return time.Duration(secs * float64(time.Second))
			}
		}
	}

	if m := retryAfterPattern.FindStringSubmatch(msg); len(m) > 1 {
		if secs, err := strconv.ParseFloat(m[1], 64); err == nil {
			return time.Duration(secs * float64(time.Second))
		}
	}

	return 0
}

func truncateBody(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
