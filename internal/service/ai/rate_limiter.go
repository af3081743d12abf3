package ai

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"polyglot/internal/logger"
)

// DefaultRateLimit is the default QPS limit.
const DefaultRateLimit = 5

// RateLimiter bounds outbound AI calls across all sessions. The debounce in
// front of it keeps per-session traffic low; this caps the process as a whole.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a rate limiter allowing qps calls per second with a
// burst of the same size.
func NewRateLimiter(qps int) *RateLimiter {
	qps = normalizeQPS(qps)
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(qps), qps)}
}

// Wait blocks until a call may proceed or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return nil
}

// SetLimit updates the rate limit dynamically.
func (r *RateLimiter) SetLimit(qps int) {
	qps = normalizeQPS(qps)
	if qps == r.Limit() {
		return
	}
	r.limiter.SetLimit(rate.Limit(qps))
	r.limiter.SetBurst(qps)
	logger.Info("ai rate limit updated", "module", "ai", "action", "update", "resource", "ratelimit", "result", "ok", "qps", qps)
}

// Limit returns the current QPS limit.
func (r *RateLimiter) Limit() int {
	return int(r.limiter.Limit())
}

func normalizeQPS(qps int) int {
	if qps <= 0 {
		return DefaultRateLimit
	}
	return qps
}
