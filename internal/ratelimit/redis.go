package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

const defaultRedisPrefix = "mediareviews:ratelimit"

// RedisFixedWindow shares windows across API replicas. Keys are bucketed by
// window slot so counters expire on their own.
type RedisFixedWindow struct {
	max    int
	window time.Duration
	clock  Clock
	log    zerolog.Logger

	client *redis.Client
	prefix string
}

func NewRedisFixedWindow(client *redis.Client, prefix string, max int, window time.Duration, log zerolog.Logger) (*RedisFixedWindow, error) {
	if max <= 0 || window <= 0 {
		return nil, errors.New("rate limiter requires positive limit and window")
	}
	if client == nil {
		return nil, errors.New("rate limiter redis client is required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisFixedWindow{
		max:    max,
		window: window,
		clock:  SystemClock,
		log:    log.With().Str("component", "ratelimit").Logger(),
		client: client,
		prefix: prefix,
	}, nil
}

// NewRedisClient opens a client and checks the connection.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("rate limiter redis addr is required")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Allow fails open: when Redis is unreachable the request is let through
// and the error is logged.
func (l *RedisFixedWindow) Allow(ctx context.Context, key string) (bool, time.Duration) {
	key = normalizeKey(key)
	windowMs := l.window.Milliseconds()
	if windowMs <= 0 {
		return true, 0
	}

	nowMs := l.clock.Now().UTC().UnixMilli()
	slot := nowMs / windowMs
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	count, err := fixedWindowScript.Run(ctx, l.client, []string{redisKey}, windowMs).Int64()
	if err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("rate limit check failed, allowing request")
		return true, 0
	}
	if count <= int64(l.max) {
		return true, 0
	}
	return false, time.Duration((slot+1)*windowMs-nowMs) * time.Millisecond
}
