package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"estate-intake/internal/domain"
	"estate-intake/internal/referral"
)

const (
	DefaultKey = "estate-intake:state-limits"
	DefaultTTL = 5 * time.Minute
)

// redisAPI is the subset of *redis.Client used by LimitsCache.
type redisAPI interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// NewClient opens a Redis client for addr.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: addr,
	})
}

// LimitsCache is a read-through cache of the state-limits table in front of
// another LimitSource. Redis failures are logged and fall through to the
// source, so the cache never makes classification less available.
type LimitsCache struct {
	api    redisAPI
	source referral.LimitSource
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

func NewLimitsCache(api redisAPI, source referral.LimitSource, key string, ttl time.Duration, logger *slog.Logger) (*LimitsCache, error) {
	if api == nil {
		return nil, errors.New("cache: redis client must not be nil")
	}
	if source == nil {
		return nil, errors.New("cache: limit source must not be nil")
	}
	if key = strings.TrimSpace(key); key == "" {
		key = DefaultKey
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LimitsCache{api: api, source: source, key: key, ttl: ttl, logger: logger}, nil
}

// StateLimits implements referral.LimitSource.
func (c *LimitsCache) StateLimits(ctx context.Context) (referral.Limits, error) {
	if limits, ok := c.cached(ctx); ok {
		return limits, nil
	}

	limits, err := c.source.StateLimits(ctx)
	if err != nil {
		return nil, err
	}
	if len(limits) == 0 {
		return limits, nil
	}
	raw, err := json.Marshal(map[string]domain.Cents(limits))
	if err != nil {
		c.logger.WarnContext(ctx, "state limit cache encode failed", "err", err)
		return limits, nil
	}
	if err := c.api.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "state limit cache write failed", "key", c.key, "err", err)
	}
	return limits, nil
}

func (c *LimitsCache) cached(ctx context.Context) (referral.Limits, bool) {
	raw, err := c.api.Get(ctx, c.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "state limit cache read failed", "key", c.key, "err", err)
		}
		return nil, false
	}
	var table map[string]domain.Cents
	if err := json.Unmarshal(raw, &table); err != nil || len(table) == 0 {
		c.logger.WarnContext(ctx, "state limit cache entry unusable", "key", c.key, "err", err)
		return nil, false
	}
	return referral.Limits(table), true
}

// Invalidate drops the cached table so the next read goes to the source.
func (c *LimitsCache) Invalidate(ctx context.Context) error {
	return c.api.Del(ctx, c.key).Err()
}
