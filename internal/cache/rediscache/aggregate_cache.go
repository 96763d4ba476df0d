package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gunvolt24/statshub/internal/ports"
	"github.com/redis/go-redis/v9"
)

var _ ports.AggregateCache = (*AggregateCache)(nil)

// AggregateCache — общий для всех экземпляров кэш агрегатов в Redis.
type AggregateCache struct {
	client redis.Cmdable
}

// NewAggregateCache — кэш поверх готового клиента (redis.Client, Cluster или мок).
func NewAggregateCache(client redis.Cmdable) *AggregateCache {
	return &AggregateCache{client: client}
}

// Get — redis.Nil означает промах, а не ошибку.
func (c *AggregateCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

// Set — SET key value EX ttl; ttl <= 0 — без срока.
func (c *AggregateCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Remove — один DEL на все ключи; отсутствующие ключи Redis просто не считает.
func (c *AggregateCache) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del %v: %w", keys, err)
	}
	return nil
}
