package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	rdb "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLimiter(t *testing.T, max int, window time.Duration) (*RedisLimiter, *fakeClock, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := rdb.NewClient(&rdb.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clock := &fakeClock{now: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)}
	limiter := NewRedisLimiter(client, "test:rl:", max, window)
	limiter.now = clock.Now
	return limiter, clock, server
}

func TestRedisLimiterRejectsAtLimit(t *testing.T) {
	limiter, _, server := newTestRedisLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i)
		assert.Equal(t, int64(2-i), res.Remaining)
	}

	res, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, int64(3), res.CurrentHits)
	assert.Equal(t, time.Minute, res.RetryAfter)

	other, err := limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed)

	assert.True(t, server.Exists("test:rl:10.0.0.1"))
	assert.Equal(t, time.Minute, server.TTL("test:rl:10.0.0.1"))
}

func TestRedisLimiterSlides(t *testing.T) {
	limiter, clock, _ := newTestRedisLimiter(t, 2, time.Minute)
	ctx := context.Background()

	_, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	clock.Advance(30 * time.Second)
	_, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)

	res, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 30*time.Second, res.RetryAfter)

	clock.Advance(30 * time.Second)
	res, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed, "first hit left the window")

	res, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}

func TestRedisLimiterHoldsUnderConcurrency(t *testing.T) {
	limiter, _, _ := newTestRedisLimiter(t, 10, time.Minute)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := limiter.Allow(ctx, "shared")
			if err == nil && res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, allowed)
}

func TestRedisLimiterSurfacesBackendErrors(t *testing.T) {
	limiter, _, server := newTestRedisLimiter(t, 3, time.Minute)
	server.Close()

	_, err := limiter.Allow(context.Background(), "10.0.0.1")
	assert.Error(t, err)
}
