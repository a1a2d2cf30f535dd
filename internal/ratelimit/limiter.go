package ratelimit

import (
	"context"
	"sync"
	"time"
)

type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	CurrentHits int64
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// SlidingWindow tracks request timestamps per key in process memory. State
// is lost on restart and is not shared between instances; use RedisLimiter
// when several replicas sit behind one load balancer.
type SlidingWindow struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	now    func() time.Time
	hits   map[string][]time.Time
}

func NewSlidingWindow(max int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		max:    max,
		window: window,
		now:    time.Now,
		hits:   make(map[string][]time.Time),
	}
}

func (l *SlidingWindow) Allow(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	l.sweep(cutoff)

	hits := l.hits[key]
	if len(hits) >= l.max {
		retryAfter := time.Duration(0)
		if len(hits) > 0 {
			retryAfter = hits[0].Add(l.window).Sub(now)
		}
		return Result{
			Allowed:     false,
			Remaining:   0,
			RetryAfter:  retryAfter,
			CurrentHits: int64(len(hits)),
		}, nil
	}

	hits = append(hits, now)
	l.hits[key] = hits
	return Result{
		Allowed:     true,
		Remaining:   int64(l.max - len(hits)),
		CurrentHits: int64(len(hits)),
	}, nil
}

// sweep drops timestamps at or before cutoff for every key and forgets
// keys that end up empty. Caller holds mu.
func (l *SlidingWindow) sweep(cutoff time.Time) {
	for key, hits := range l.hits {
		idx := 0
		for idx < len(hits) && !hits[idx].After(cutoff) {
			idx++
		}
		if idx == len(hits) {
			delete(l.hits, key)
			continue
		}
		if idx > 0 {
			l.hits[key] = append(hits[:0:0], hits[idx:]...)
		}
	}
}

// Tracked returns the number of keys currently holding timestamps.
func (l *SlidingWindow) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}
