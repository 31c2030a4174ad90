package ratelimit

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/sitepulse/sitepulse/internal/config"
)

// APILimiter enforces a per-user token bucket across the authenticated API.
// A nil APILimiter allows everything, which is how the service runs when
// Redis is not configured.
type APILimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewAPILimiter(cfg config.Config, bucket *TokenBucket) *APILimiter {
	if !cfg.RateLimit.Enabled || bucket == nil {
		return nil
	}
	return &APILimiter{
		bucket: bucket,
		rate:   cfg.RateLimit.APIRate,
		burst:  cfg.RateLimit.APIBurst,
	}
}

func (l *APILimiter) Allow(ctx context.Context, userID snowflake.ID) (*Result, error) {
	if l == nil {
		return &Result{Allowed: true}, nil
	}
	key := fmt.Sprintf("ratelimit:api:%s", userID.String())
	return l.bucket.Allow(ctx, key, l.rate, l.burst)
}
