package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestWindow(max int, window time.Duration) (*SlidingWindow, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)}
	limiter := NewSlidingWindow(max, window)
	limiter.now = clock.Now
	return limiter, clock
}

func TestSlidingWindowRejectsAtLimit(t *testing.T) {
	limiter, _ := newTestWindow(3, time.Minute)
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
}

func TestSlidingWindowSlides(t *testing.T) {
	limiter, clock := newTestWindow(2, time.Minute)
	ctx := context.Background()

	_, _ = limiter.Allow(ctx, "k")
	clock.Advance(30 * time.Second)
	_, _ = limiter.Allow(ctx, "k")

	res, _ := limiter.Allow(ctx, "k")
	assert.False(t, res.Allowed)
	assert.Equal(t, 30*time.Second, res.RetryAfter)

	clock.Advance(30 * time.Second)
	res, _ = limiter.Allow(ctx, "k")
	assert.True(t, res.Allowed, "first hit left the window")

	res, _ = limiter.Allow(ctx, "k")
	assert.False(t, res.Allowed)
}

func TestSlidingWindowEvictsIdleKeys(t *testing.T) {
	limiter, clock := newTestWindow(5, time.Minute)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, _ = limiter.Allow(ctx, fmt.Sprintf("client-%d", i))
	}
	assert.Equal(t, 10, limiter.Tracked())

	clock.Advance(2 * time.Minute)
	_, _ = limiter.Allow(ctx, "client-new")
	assert.Equal(t, 1, limiter.Tracked())
}

func TestSlidingWindowIsSafeForConcurrentUse(t *testing.T) {
	limiter, _ := newTestWindow(50, time.Minute)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
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

	assert.Equal(t, 50, allowed)
}
