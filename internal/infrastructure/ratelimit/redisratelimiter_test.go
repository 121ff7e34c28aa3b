package ratelimit

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	client.FlushDB(ctx)

	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})
	return client
}

func TestRedisRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name    string
		limits  Limits
		calls   int
		allowed int
	}{
		{name: "per minute", limits: Limits{PerMinute: 3}, calls: 5, allowed: 3},
		{name: "per hour tighter", limits: Limits{PerMinute: 10, PerHour: 2}, calls: 4, allowed: 2},
		{name: "unlimited", limits: Limits{}, calls: 4, allowed: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := setupTestRedis(t)
			limiter := NewRedisRateLimiter(client)
			ctx := context.Background()

			got := 0
			for i := 0; i < tt.calls; i++ {
				ok, err := limiter.Allow(ctx, "user:1", tt.limits)
				require.NoError(t, err)
				if ok {
					got++
				}
			}
			assert.Equal(t, tt.allowed, got)
		})
	}
}

func TestRedisRateLimiter_Reset(t *testing.T) {
	client := setupTestRedis(t)
	limiter := NewRedisRateLimiter(client)
	ctx := context.Background()
	limits := Limits{PerMinute: 1}

	ok, err := limiter.Allow(ctx, "user:2", limits)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = limiter.Allow(ctx, "user:2", limits)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, limiter.Reset(ctx, "user:2"))

	ok, err = limiter.Allow(ctx, "user:2", limits)
	require.NoError(t, err)
	assert.True(t, ok)
}
