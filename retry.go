package linetl

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"time"
)

// Retry defaults exposed to users.
const (
	DefaultRetryCount   = 3
	DefaultRetryTimeout = 60 * time.Second
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxRetries     int           // Maximum number of retry attempts
	BaseDelay      time.Duration // Initial delay between retries
	MaxDelay       time.Duration // Maximum delay between retries
	Factor         float64       // Backoff multiplier per attempt
	Randomize      bool          // Multiply each delay by a random factor in [1, 2)
	AttemptTimeout time.Duration // Deadline of a single attempt (0 = none)

	// ShouldRetry decides whether an error is worth another attempt.
	// Nil means IsRetryable.
	ShouldRetry func(error) bool

	// OnRetry is called after each failed attempt that will be retried.
	OnRetry func(attempt int, err error, retriesLeft int)
}

// DefaultRetryConfig returns sensible defaults for retry behavior.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     DefaultRetryCount,
		BaseDelay:      1 * time.Second,
		MaxDelay:       30 * time.Second,
		Factor:         2,
		Randomize:      true,
		AttemptTimeout: DefaultRetryTimeout,
		ShouldRetry:    IsRetryable,
	}
}

// RetryConfigFor returns the retry policy of a method's family.
// retryCount < 0 keeps the default count; attemptTimeout <= 0 keeps the default timeout.
func RetryConfigFor(m Method, retryCount int, attemptTimeout time.Duration) RetryConfig {
	cfg := DefaultRetryConfig()
	if retryCount >= 0 {
		cfg.MaxRetries = retryCount
	}
	if attemptTimeout > 0 {
		cfg.AttemptTimeout = attemptTimeout
	}

	switch m.Family() {
	case FamilyFree:
		cfg.BaseDelay = 2 * time.Second
		cfg.MaxDelay = 60 * time.Second
	case FamilyLLM:
		cfg.ShouldRetry = func(err error) bool {
			if IsContextLimitError(err) {
				return false
			}
			return IsRetryable(err)
		}
	}
	return cfg
}

// RetryFunc is one attempt. ctx carries the attempt deadline.
type RetryFunc[T any] func(ctx context.Context) (T, error)

// WithRetry executes a function with exponential backoff retry.
// Cancellation of ctx stops the loop and returns ctx's cause.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	var lastErr error
	var zero T

	shouldRetry := cfg.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = IsRetryable
	}

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		// Check context before each attempt
		if ctx.Err() != nil {
			return zero, context.Cause(ctx)
		}

		result, err := runAttempt(ctx, cfg.AttemptTimeout, fn)
		if err == nil {
			return result, nil
		}

		lastErr = err

		// The run itself was cancelled while the attempt was in flight
		if ctx.Err() != nil {
			if IsAuthError(err) {
				return zero, err
			}
			return zero, context.Cause(ctx)
		}

		if !shouldRetry(err) {
			return zero, err
		}

		// Don't sleep after the last attempt
		if attempt < cfg.MaxRetries {
			if cfg.OnRetry != nil {
				cfg.OnRetry(attempt+1, err, cfg.MaxRetries-attempt)
			}

			select {
			case <-ctx.Done():
				return zero, context.Cause(ctx)
			case <-time.After(cfg.backoff(attempt)):
			}
		}
	}

	return zero, lastErr
}

func runAttempt[T any](ctx context.Context, timeout time.Duration, fn RetryFunc[T]) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(attemptCtx)
}

// backoff returns the wait before retry number attempt+1.
func (cfg RetryConfig) backoff(attempt int) time.Duration {
	factor := cfg.Factor
	if factor <= 0 {
		factor = 2
	}
	delay := float64(cfg.BaseDelay) * math.Pow(factor, float64(attempt))
	if cfg.Randomize {
		delay *= 1 + rand.Float64()
	}
	if cfg.MaxDelay > 0 && delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	return time.Duration(delay)
}

var authMarkers = []string{"unauthorized", "invalid api key", "authentication", "forbidden"}

// IsAuthError reports whether err is an authentication or authorization failure.
// Such errors abort the whole run.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	if status := StatusCode(err); status == 401 || status == 403 {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range authMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsContextLimitError reports whether err says the prompt exceeded the model's context.
func IsContextLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "context length") || strings.Contains(msg, "token limit")
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Never retry auth errors
	if IsAuthError(err) {
		return false
	}

	if errors.Is(err, ErrAborted) {
		return false
	}

	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return false
	}

	// Check for ProviderError with Retryable flag
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}

	// An attempt deadline is transient; a cancelled parent is handled by WithRetry
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	// No status: treat as a network failure
	return true
}
