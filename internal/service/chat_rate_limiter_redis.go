package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Ventana deslizante sobre un sorted set por usuario: score = instante en ms.
// Los rechazos no se registran, igual que en memoryRateLimiter.
const redisSlidingWindowScript = `
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", now - window)
if redis.call("ZCARD", KEYS[1]) >= tonumber(ARGV[3]) then
  return 0
end
redis.call("ZADD", KEYS[1], now, ARGV[4])
redis.call("PEXPIRE", KEYS[1], window)
return 1
`

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisRateLimiter struct {
	client  redisEvaler
	window  time.Duration
	max     int
	prefix  string
	timeout time.Duration
	now     func() time.Time
	newID   func() string
}

// NewRedisRateLimiter comparte la ventana de cada usuario entre replicas de la API.
func NewRedisRateLimiter(client *redis.Client, window time.Duration, max int) MessageRateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisRateLimiter{
		client:  client,
		window:  window,
		max:     max,
		prefix:  "chat:rl:user:",
		timeout: defaultStoreTimeout,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Allow deja pasar si redis falla; un request ya cancelado se rechaza sin tocar redis.
func (l *redisRateLimiter) Allow(ctx context.Context, userID string) bool {
	if l == nil || l.client == nil {
		return true
	}
	userID = strings.TrimSpace(userID)
	if userID == "" || ctx.Err() != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	allowed, err := l.client.Eval(ctx, redisSlidingWindowScript,
		[]string{l.prefix + userID},
		l.now().UnixMilli(), l.window.Milliseconds(), l.max, l.newID(),
	).Int()
	if err != nil {
		return true
	}
	return allowed == 1
}
