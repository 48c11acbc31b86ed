package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"jobboard/internal/config"
	"jobboard/internal/logging"
)

var ErrUnavailable = errors.New("redis unavailable")

// Redis is a best-effort cache. When the server cannot be reached at startup every call
// becomes a miss or a no-op, so callers never have to special-case a missing cache.
type Redis struct {
	client     redis.UniversalClient
	logger     logging.Logger
	defaultTTL time.Duration

	warnedUnavailable atomic.Bool
}

func NewRedis(ctx context.Context, cfg config.RedisConfig, logger logging.Logger) *Redis {
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.With("component", "cache")

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", strings.TrimSpace(cfg.Host), strings.TrimSpace(cfg.Port)),
		Password: cfg.Password,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn(ctx, "redis unavailable, bypassing cache", "error", err)
		_ = client.Close()
		return &Redis{logger: logger, defaultTTL: cfg.TTL}
	}

	return &Redis{client: client, logger: logger, defaultTTL: cfg.TTL}
}

// NewWithClient wraps an existing client. A nil client gives a cache that always misses.
func NewWithClient(client redis.UniversalClient, ttl time.Duration, logger logging.Logger) *Redis {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Redis{client: client, logger: logger, defaultTTL: ttl}
}

func (r *Redis) isUnavailable() bool {
	return r == nil || r.client == nil
}

func (r *Redis) warnUnavailableOnce(ctx context.Context, err error) {
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.Warn(ctx, "redis call failed, continuing without cache", "error", err)
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	if r.isUnavailable() {
		return ErrUnavailable
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	if r.isUnavailable() {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if r.isUnavailable() {
		return false, nil
	}
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		r.warnUnavailableOnce(ctx, err)
		return false, err
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if r.isUnavailable() {
		return nil
	}
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, b, ttl).Err(); err != nil {
		r.warnUnavailableOnce(ctx, err)
		return err
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if r.isUnavailable() || len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.warnUnavailableOnce(ctx, err)
		return err
	}
	return nil
}

func (r *Redis) DeleteByPattern(ctx context.Context, pattern string) error {
	if r.isUnavailable() {
		return nil
	}
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		if err := r.client.Del(ctx, k).Err(); err != nil {
			r.logger.Warn(ctx, "redis delete failed", "key", k, "pattern", pattern, "error", err)
		}
	}
	return iter.Err()
}

// Hit counts one request against a fixed window keyed by key. The first hit of a window
// sets its expiry. It returns the count so far and the time left in the window.
func (r *Redis) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if r.isUnavailable() {
		return 0, 0, ErrUnavailable
	}
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		r.warnUnavailableOnce(ctx, err)
		return 0, 0, err
	}
	left := ttl.Val()
	if left < 0 {
		left = window
	}
	return incr.Val(), left, nil
}
