package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisFailScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisLimiter keeps attempt counters in Redis so the block survives
// process restarts and applies across replicas.
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

// NewRedisLimiter constructs a RedisLimiter.
func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: strings.TrimSpace(prefix),
	}
}

// Blocked implements AttemptLimiter.
func (l *RedisLimiter) Blocked(ctx context.Context, key string, limit int, _ time.Duration, _ time.Time) (bool, error) {
	if l == nil || l.client == nil || key == "" || limit <= 0 {
		return false, nil
	}
	res, errGet := l.client.Get(ctx, l.buildKey(key)).Int64()
	if errGet != nil {
		if errors.Is(errGet, redis.Nil) {
			return false, nil
		}
		return false, errGet
	}
	return res >= int64(limit), nil
}

// Fail implements AttemptLimiter. The TTL is set only on the first failure
// so the window runs from the first attempt.
func (l *RedisLimiter) Fail(ctx context.Context, key string, window time.Duration, _ time.Time) (int, error) {
	if l == nil || l.client == nil || key == "" {
		return 0, nil
	}
	ttl := int(window / time.Second)
	if ttl < 1 {
		ttl = 1
	}
	res, errEval := redisFailScript.Run(ctx, l.client, []string{l.buildKey(key)}, ttl).Result()
	if errEval != nil {
		return 0, errEval
	}
	count, ok := res.(int64)
	if !ok {
		switch v := res.(type) {
		case int:
			count = int64(v)
		case uint64:
			count = int64(v)
		default:
			return 0, errors.New("rate limit redis: unexpected response type")
		}
	}
	return int(count), nil
}

// Reset implements AttemptLimiter.
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	if l == nil || l.client == nil || key == "" {
		return nil
	}
	return l.client.Del(ctx, l.buildKey(key)).Err()
}

func (l *RedisLimiter) buildKey(key string) string {
	if l.prefix == "" {
		return key
	}
	return l.prefix + ":" + key
}
