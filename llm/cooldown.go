package llm

import (
	"context"
	"os"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// CooldownEnvVar overrides the interval of gates built by CooldownFromEnv,
// in floating-point seconds. Malformed values fall back to the default.
const CooldownEnvVar = "OPENAI_MIN_COOLDOWN_SEC"

// DefaultCooldownInterval is the minimum spacing between OpenAI dispatch
// starts when no override is configured.
const DefaultCooldownInterval = time.Second

// Cooldown spaces out the start times of successive requests so that no two
// dispatch starts are closer together than the configured interval. It is a
// coarse throttle, not an exact rate limiter: the actual network call
// happens after Acquire returns, and in-flight request lifetimes may
// overlap.
type Cooldown struct {
	interval time.Duration
	limiter  *rate.Limiter
}

// NewCooldown creates a gate with the given minimum spacing between
// dispatch starts. A non-positive interval disables throttling.
func NewCooldown(interval time.Duration) *Cooldown {
	return &Cooldown{
		interval: interval,
		// rate.Every treats non-positive intervals as Inf, which is
		// exactly the disabled behavior.
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// CooldownFromEnv creates a gate with the interval taken from
// OPENAI_MIN_COOLDOWN_SEC, defaulting to 1s when unset or malformed.
func CooldownFromEnv() *Cooldown {
	interval := DefaultCooldownInterval
	if raw := os.Getenv(CooldownEnvVar); raw != "" {
		if secs, err := strconv.ParseFloat(raw, 64); err == nil {
			interval = time.Duration(secs * float64(time.Second))
		}
	}
	return NewCooldown(interval)
}

// Interval returns the configured minimum spacing.
func (c *Cooldown) Interval() time.Duration {
	return c.interval
}

// Acquire blocks until the next dispatch may start. The reservation is
// recorded before the network call is made, so the recorded start slightly
// precedes real dispatch.
func (c *Cooldown) Acquire(ctx context.Context) error {
	start := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	cooldownWaitSeconds.Observe(time.Since(start).Seconds())
	return nil
}

// The package-default gate preserves the shared-across-callers throttling
// contract for clients constructed without an explicit gate: every
// OpenAIClient in the process then shares this one.
var (
	defaultCooldown     *Cooldown
	defaultCooldownOnce sync.Once
)

func defaultCooldownGate() *Cooldown {
	defaultCooldownOnce.Do(func() {
		defaultCooldown = CooldownFromEnv()
	})
	return defaultCooldown
}
