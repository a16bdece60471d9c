// internal/cache/redis.go
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sas-panel/internal/common/config"
	apperrors "sas-panel/internal/common/errors"
	"sas-panel/internal/models"
)

// NewRedis creates a Redis client from the cache section of the config.
func NewRedis(cfg config.CacheConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     4,
	})
}

// RecordCache keeps raw fetch results in one Redis hash per record kind,
// keyed by filter. Dropping the hash invalidates every filter of that kind.
type RecordCache struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRecordCache(rdb redis.Cmdable, prefix string, ttl time.Duration) *RecordCache {
	return &RecordCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

// FromConfig connects to the configured Redis and checks it answers.
func FromConfig(ctx context.Context, cfg config.CacheConfig) (*RecordCache, *redis.Client, error) {
	rdb := NewRedis(cfg)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, apperrors.NewCacheFailedError("ping", fmt.Errorf("redis %s: %w", cfg.Address, err))
	}
	return NewRecordCache(rdb, cfg.Prefix, config.GetDuration(cfg.TTL)), rdb, nil
}

func (c *RecordCache) hashKey(kind models.Kind) string {
	return c.prefix + ":" + string(kind)
}

func (c *RecordCache) Get(ctx context.Context, kind models.Kind, key string) ([]byte, bool, error) {
	b, err := c.rdb.HGet(ctx, c.hashKey(kind), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperrors.NewCacheFailedError("get", err)
	}
	return b, true, nil
}

// Put stores results and restarts the kind's TTL.
func (c *RecordCache) Put(ctx context.Context, kind models.Kind, key string, results []byte) error {
	hkey := c.hashKey(kind)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, hkey, key, results)
		if c.ttl > 0 {
			pipe.PExpire(ctx, hkey, c.ttl)
		}
		return nil
	})
	if err != nil {
		return apperrors.NewCacheFailedError("put", err)
	}
	return nil
}

func (c *RecordCache) Invalidate(ctx context.Context, kinds ...models.Kind) error {
	if len(kinds) == 0 {
		return nil
	}
	keys := make([]string, len(kinds))
	for i, k := range kinds {
		keys[i] = c.hashKey(k)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return apperrors.NewCacheFailedError("invalidate", err)
	}
	return nil
}
