package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/ashishbaghudana/relna/internal/infrastructure/monitoring/logging"
	"github.com/ashishbaghudana/relna/pkg/errors"
)

var (
	ErrCacheMiss           = errors.New(errors.ErrCodeNotFound, "cache miss")
	ErrNullValue           = errors.New(errors.ErrCodeNotFound, "cached null value")
	ErrSerializationFailed = errors.New(errors.ErrCodeSerialization, "serialization failed")
)

// nullSentinel marks a cached negative lookup so repeated misses do not
// re-contact the external service within the null TTL.
const nullSentinel = "__null__"

// Cache is the read-through cache contract consumed by the cached
// cross-reference adapters.
type Cache interface {
	// Get decodes the entry at key into dest. A missing key returns
	// ErrCacheMiss; a negative entry written by SetNull returns
	// ErrNullValue. Both carry the not-found code.
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	SetNull(ctx context.Context, key string) error
	Delete(ctx context.Context, keys ...string) error
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration,
		loader func(ctx context.Context) (interface{}, error)) error
	Ping(ctx context.Context) error
}

type redisCache struct {
	client       *Client
	logger       logging.Logger
	prefix       string
	defaultTTL   time.Duration
	nullCacheTTL time.Duration
	group        singleflight.Group
}

// CacheOption customises cache construction.
type CacheOption func(*redisCache)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) CacheOption {
	return func(c *redisCache) { c.prefix = prefix }
}

// WithDefaultTTL overrides the TTL used when Set receives ttl 0.
func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *redisCache) { c.defaultTTL = ttl }
}

// WithNullCacheTTL overrides the TTL for cached negative lookups.
func WithNullCacheTTL(ttl time.Duration) CacheOption {
	return func(c *redisCache) { c.nullCacheTTL = ttl }
}

// NewCache constructs a Cache backed by client.
func NewCache(client *Client, log logging.Logger, opts ...CacheOption) Cache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &redisCache{
		client:       client,
		logger:       log.Named("cache"),
		prefix:       client.config.KeyPrefix,
		defaultTTL:   client.config.DefaultTTL,
		nullCacheTTL: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *redisCache) fullKey(key string) string {
	return c.prefix + key
}

// jitterTTL spreads expiry by +/- 10% so batched writes do not expire at
// the same instant.
func (c *redisCache) jitterTTL(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return 0
	}
	jitter := float64(ttl) * 0.1 * (rand.Float64()*2 - 1)
	return ttl + time.Duration(jitter)
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	rdb, err := c.client.raw()
	if err != nil {
		return err
	}
	data, err := rdb.Get(ctx, c.fullKey(key)).Bytes()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to get from cache")
	}
	if string(data) == nullSentinel {
		return ErrNullValue
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	return nil
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	rdb, err := c.client.raw()
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	if err := rdb.Set(ctx, c.fullKey(key), data, c.jitterTTL(ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to set cache entry")
	}
	return nil
}

// SetNull records a negative lookup under the short null TTL.
func (c *redisCache) SetNull(ctx context.Context, key string) error {
	rdb, err := c.client.raw()
	if err != nil {
		return err
	}
	if err := rdb.Set(ctx, c.fullKey(key), nullSentinel, c.nullCacheTTL).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to set null cache entry")
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	rdb, err := c.client.raw()
	if err != nil {
		return err
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.fullKey(k)
	}
	if err := rdb.Del(ctx, full...).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to delete cache entries")
	}
	return nil
}

// GetOrSet returns the cached value for key or, on a miss, invokes loader
// exactly once per key across concurrent callers (singleflight), stores
// the result, and decodes it into dest.
func (c *redisCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration,
	loader func(ctx context.Context) (interface{}, error)) error {

	if err := c.Get(ctx, key, dest); err == nil {
		return nil
	} else if !errors.IsCode(err, errors.ErrCodeNotFound) {
		return err
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		loaded, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.Set(ctx, key, loaded, ttl); err != nil {
			c.logger.Warn("failed to populate cache", logging.String("key", key), logging.Err(err))
		}
		return loaded, nil
	})
	if err != nil {
		return err
	}

	// Round-trip through JSON to fill dest from the loaded value.
	data, err := json.Marshal(v)
	if err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	return nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}
