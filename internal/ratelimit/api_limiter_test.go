package ratelimit

import (
	"context"
	"testing"

	"github.com/sitepulse/sitepulse/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilAPILimiterAllowsEverything(t *testing.T) {
	var limiter *APILimiter

	result, err := limiter.Allow(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestNewAPILimiterDisabled(t *testing.T) {
	cfg := config.Config{}
	cfg.RateLimit.Enabled = false

	assert.Nil(t, NewAPILimiter(cfg, nil))

	cfg.RateLimit.Enabled = true
	// Enabled but no Redis bucket still means no limiter.
	assert.Nil(t, NewAPILimiter(cfg, nil))
}
