package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vandonov/storefront/internal/config"
)

// redisCache supports targeted tag invalidation: every tagged Set records the
// key in a Redis set named after the tag, and FlushTag deletes exactly the
// keys in that set.
type redisCache struct {
	client *redis.Client
	cfg    *config.CacheConfig
}

func NewRedisCache(client *redis.Client, cfg *config.CacheConfig) Cache {
	return &redisCache{
		client: client,
		cfg:    cfg,
	}
}

func tagSetKey(tag string) string {
	return "tag:" + tag
}

func (r *redisCache) Get(ctx context.Context, key string, dest any) (bool, error) {

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {

		if errors.Is(err, redis.Nil) {
			return false, nil
		}

		return false, fmt.Errorf("failed to get key %s from redis: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache data for key %s: %w", key, err)
	}

	return true, nil
}

func (r *redisCache) Set(ctx context.Context, key string, value any, ttl time.Duration, tags ...string) error {

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	if ttl <= 0 {
		ttl = r.cfg.DefaultTTL
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, ttl)

	for _, tag := range tags {
		pipe.SAdd(ctx, tagSetKey(tag), key)
		// Tag sets outlive their members slightly so a flush still sees
		// keys that expired on their own.
		pipe.Expire(ctx, tagSetKey(tag), ttl+time.Minute)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set key %s in redis: %w", key, err)
	}

	return nil
}

func (r *redisCache) Delete(ctx context.Context, key string) error {

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s from redis: %w", key, err)
	}

	return nil
}

func (r *redisCache) FlushTag(ctx context.Context, tag string) error {

	setKey := tagSetKey(tag)

	keys, err := r.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return fmt.Errorf("failed to read tag set %s: %w", setKey, err)
	}

	keys = append(keys, setKey)

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to flush tag %s: %w", tag, err)
	}

	return nil
}

func (r *redisCache) Flush(ctx context.Context) error {

	if err := r.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("failed to flush redis: %w", err)
	}

	return nil
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
