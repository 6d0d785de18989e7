package ratelimit

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	// LoginAttemptLimit is the number of failed logins tolerated per IP.
	LoginAttemptLimit = 5
	// LoginAttemptWindow is the fixed window the failures are counted in.
	LoginAttemptWindow = 15 * time.Minute

	loginKeyPrefix       = "login:"
	redisBreakerDuration = 30 * time.Second
)

// RedisClientFactory constructs a Redis client for the given options.
type RedisClientFactory func(options *redis.Options) *redis.Client

// LoginLimiter counts failed login attempts per client IP. When Redis is
// configured the counters live there so the block is shared across
// replicas; otherwise, or while Redis is unreachable, process memory is
// used with a 30 second breaker before Redis is retried.
type LoginLimiter struct {
	settings       RedisSettings
	nowFn          func() time.Time
	memory         AttemptLimiter
	newRedisClient RedisClientFactory

	mu           sync.Mutex
	redisLimiter *RedisLimiter
	breakerUntil time.Time
}

// NewLoginLimiter constructs a LoginLimiter with default dependencies when nil.
func NewLoginLimiter(settings RedisSettings, nowFn func() time.Time, newRedisClient RedisClientFactory) *LoginLimiter {
	if nowFn == nil {
		nowFn = time.Now
	}
	if newRedisClient == nil {
		newRedisClient = redis.NewClient
	}
	return &LoginLimiter{
		settings:       settings,
		nowFn:          nowFn,
		memory:         NewMemoryLimiter(),
		newRedisClient: newRedisClient,
	}
}

// Blocked reports whether the IP has exhausted its login attempts.
func (m *LoginLimiter) Blocked(ctx context.Context, ip string) bool {
	if m == nil || ip == "" {
		return false
	}
	now := m.nowFn()
	key := loginKeyPrefix + ip
	if limiter := m.redisBackend(ctx, now); limiter != nil {
		blocked, errCheck := limiter.Blocked(ctx, key, LoginAttemptLimit, LoginAttemptWindow, now)
		if errCheck == nil {
			return blocked
		}
		m.tripBreaker(errCheck, now)
	}
	blocked, _ := m.memory.Blocked(ctx, key, LoginAttemptLimit, LoginAttemptWindow, now)
	return blocked
}

// Fail records one failed login attempt for the IP.
func (m *LoginLimiter) Fail(ctx context.Context, ip string) {
	if m == nil || ip == "" {
		return
	}
	now := m.nowFn()
	key := loginKeyPrefix + ip
	if limiter := m.redisBackend(ctx, now); limiter != nil {
		_, errFail := limiter.Fail(ctx, key, LoginAttemptWindow, now)
		if errFail == nil {
			return
		}
		m.tripBreaker(errFail, now)
	}
	_, _ = m.memory.Fail(ctx, key, LoginAttemptWindow, now)
}

// Reset clears the counter for the IP after a successful login.
func (m *LoginLimiter) Reset(ctx context.Context, ip string) {
	if m == nil || ip == "" {
		return
	}
	now := m.nowFn()
	key := loginKeyPrefix + ip
	if limiter := m.redisBackend(ctx, now); limiter != nil {
		if errReset := limiter.Reset(ctx, key); errReset != nil {
			m.tripBreaker(errReset, now)
		}
	}
	_ = m.memory.Reset(ctx, key)
}

func (m *LoginLimiter) redisBackend(ctx context.Context, now time.Time) *RedisLimiter {
	if strings.TrimSpace(m.settings.Addr) == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if m.isBreakerActive(now) {
		return nil
	}
	limiter, errEnsure := m.ensureRedis(ctx)
	if errEnsure != nil {
		m.tripBreaker(errEnsure, now)
		return nil
	}
	return limiter
}

func (m *LoginLimiter) isBreakerActive(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.breakerUntil.IsZero() {
		return false
	}
	if now.Before(m.breakerUntil) {
		return true
	}
	m.breakerUntil = time.Time{}
	return false
}

func (m *LoginLimiter) tripBreaker(err error, now time.Time) {
	if err == nil || m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.breakerUntil.IsZero() && now.Before(m.breakerUntil) {
		return
	}
	m.breakerUntil = now.Add(redisBreakerDuration)
	log.WithError(err).Warn("login limiter: redis unavailable, falling back to memory")
}

func (m *LoginLimiter) ensureRedis(ctx context.Context) (*RedisLimiter, error) {
	addr := strings.TrimSpace(m.settings.Addr)
	if addr == "" {
		return nil, errors.New("login limiter redis: missing address")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.redisLimiter != nil {
		return m.redisLimiter, nil
	}

	dbNum := m.settings.DB
	if dbNum < 0 {
		dbNum = 0
	}
	client := m.newRedisClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(m.settings.Password),
		DB:       dbNum,
	})
	ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if errPing := client.Ping(ctxPing).Err(); errPing != nil {
		_ = client.Close()
		return nil, errPing
	}
	m.redisLimiter = NewRedisLimiter(client, strings.TrimSpace(m.settings.Prefix))
	return m.redisLimiter, nil
}
