package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	rdb "github.com/redis/go-redis/v9"
)

// slidingWindowScript trims, counts and records in one step so concurrent
// callers cannot all pass the same count check. Scores are unix micros.
// ARGV: now, cutoff, max, member, ttl in ms. Returns {allowed, hits, oldest score}.
var slidingWindowScript = rdb.NewScript(`
local key = KEYS[1]
local max = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', ARGV[2])
local hits = redis.call('ZCARD', key)
if hits >= max then
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  local first = tonumber(ARGV[1])
  if oldest[2] then
    first = tonumber(oldest[2])
  end
  return {0, hits, first}
end

redis.call('ZADD', key, ARGV[1], ARGV[4])
redis.call('PEXPIRE', key, ARGV[5])
return {1, hits + 1, 0}
`)

// RedisLimiter keeps the same sliding window in a sorted set per key so
// every replica sees the same counts.
type RedisLimiter struct {
	Client rdb.Scripter
	Prefix string
	Max    int64
	Window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client rdb.Scripter, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{
		Client: client,
		Prefix: prefix,
		Max:    int64(max),
		Window: window,
		now:    time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.now().UTC()
	redisKey := l.Prefix + strings.ReplaceAll(key, " ", "_")
	nowMicros := now.UnixMicro()
	windowMillis := l.Window.Milliseconds()
	if windowMillis < 1 {
		windowMillis = 1
	}
	member := strconv.FormatInt(nowMicros, 10) + "-" + uuid.NewString()

	values, err := slidingWindowScript.Run(ctx, l.Client, []string{redisKey},
		nowMicros, now.Add(-l.Window).UnixMicro(), l.Max, member, windowMillis,
	).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit window: %w", err)
	}
	if len(values) != 3 {
		return Result{}, fmt.Errorf("rate limit window: unexpected reply %v", values)
	}

	hits := values[1]
	if values[0] == 0 {
		first := time.UnixMicro(values[2])
		return Result{
			Allowed:     false,
			CurrentHits: hits,
			RetryAfter:  first.Add(l.Window).Sub(now),
		}, nil
	}
	return Result{
		Allowed:     true,
		Remaining:   l.Max - hits,
		CurrentHits: hits,
	}, nil
}
