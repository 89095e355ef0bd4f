package linetl

import (
	"context"
	"sync"
	"time"
)

// RateLimiter paces provider requests with a token bucket.
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

// RateLimitConfig configures the rate limiter.
type RateLimitConfig struct {
	RequestsPerMinute int // Maximum requests per minute
	BurstSize         int // Maximum burst size (default: same as RPM)
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rpm := float64(cfg.RequestsPerMinute)
	if rpm <= 0 {
		rpm = 60
	}

	burst := float64(cfg.BurstSize)
	if burst <= 0 {
		burst = rpm
	}

	return &RateLimiter{
		tokens:     burst, // Start with full bucket
		maxTokens:  burst,
		refillRate: rpm / 60.0,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or ctx ends.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		wait, ok := r.reserve()
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case <-time.After(wait):
		}
	}
}

// TryAcquire attempts to acquire a token without blocking.
func (r *RateLimiter) TryAcquire() bool {
	_, ok := r.reserve()
	return ok
}

// reserve takes a token if one is available; otherwise it reports how long
// until the next one.
func (r *RateLimiter) reserve() (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()
	if r.tokens >= 1 {
		r.tokens--
		return 0, true
	}
	missing := 1 - r.tokens
	return time.Duration(missing / r.refillRate * float64(time.Second)), false
}

// refill adds tokens based on elapsed time (must be called with lock held).
func (r *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(r.lastRefill).Seconds()
	r.lastRefill = now

	r.tokens += elapsed * r.refillRate
	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}
}

// Available returns the current number of available tokens.
func (r *RateLimiter) Available() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill()
	return r.tokens
}

// RateLimitedRegistry hands out adapters that share one limiter, so every
// provider call of a run draws from the same budget.
type RateLimitedRegistry struct {
	registry Registry
	limiter  *RateLimiter
}

// NewRateLimitedRegistry wraps registry with a shared token bucket.
func NewRateLimitedRegistry(registry Registry, cfg RateLimitConfig) *RateLimitedRegistry {
	return &RateLimitedRegistry{
		registry: registry,
		limiter:  NewRateLimiter(cfg),
	}
}

// Adapter implements Registry.
func (r *RateLimitedRegistry) Adapter(m Method) (Adapter, bool) {
	a, ok := r.registry.Adapter(m)
	if !ok {
		return nil, false
	}
	return &rateLimitedAdapter{adapter: a, limiter: r.limiter}, true
}

// Limiter returns the underlying rate limiter for inspection.
func (r *RateLimitedRegistry) Limiter() *RateLimiter {
	return r.limiter
}

type rateLimitedAdapter struct {
	adapter Adapter
	limiter *RateLimiter
}

func (a *rateLimitedAdapter) Translate(ctx context.Context, p Params) (string, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return a.adapter.Translate(ctx, p)
}
