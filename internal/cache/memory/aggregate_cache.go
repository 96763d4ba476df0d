package memory

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Gunvolt24/statshub/internal/ports"
	"github.com/Gunvolt24/statshub/pkg/metrics"
	lru "github.com/hashicorp/golang-lru/v2"
)

var _ ports.AggregateCache = (*AggregateCache)(nil)

type entry struct {
	value     []byte
	expiresAt time.Time // нулевое значение — без срока
}

// AggregateCache — in-process LRU для сериализованных агрегатов с TTL на запись.
// Подходит для одного экземпляра сервиса и тестов; общий кэш — rediscache.
type AggregateCache struct {
	lru *lru.Cache[string, entry]
	now func() time.Time

	// Get с удалением истёкшей записи должен быть атомарен относительно Set.
	mu sync.Mutex
}

// Option — настройка кэша.
type Option func(*AggregateCache)

// WithClock — подмена часов (для тестов TTL).
func WithClock(now func() time.Time) Option {
	return func(c *AggregateCache) {
		if now != nil {
			c.now = now
		}
	}
}

// New — кэш на capacity записей.
func New(capacity int, opts ...Option) (*AggregateCache, error) {
	if capacity <= 0 {
		capacity = 1
	}
	l, err := lru.New[string, entry](capacity)
	if err != nil {
		return nil, fmt.Errorf("new lru: %w", err)
	}
	c := &AggregateCache{lru: l, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get — копия значения; истёкшая запись удаляется и считается промахом.
func (c *AggregateCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.lru.Get(key)
	if !ok {
		metrics.CacheOps.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if !ent.expiresAt.IsZero() && !c.now().Before(ent.expiresAt) {
		c.lru.Remove(key)
		metrics.CacheOps.WithLabelValues("expired").Inc()
		metrics.CacheSize.Set(float64(c.lru.Len()))
		return nil, false, nil
	}

	metrics.CacheOps.WithLabelValues("hit").Inc()
	return bytes.Clone(ent.value), true, nil
}

// Set — сохраняет копию значения; ttl <= 0 — без срока.
func (c *AggregateCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	ent := entry{value: bytes.Clone(value)}
	if ttl > 0 {
		ent.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if evicted := c.lru.Add(key, ent); evicted {
		metrics.CacheOps.WithLabelValues("evicted").Inc()
	}
	metrics.CacheSize.Set(float64(c.lru.Len()))
	return nil
}

// Remove — удаляет ключи; отсутствующие игнорируются.
func (c *AggregateCache) Remove(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, k := range keys {
		c.lru.Remove(k)
	}
	metrics.CacheSize.Set(float64(c.lru.Len()))
	return nil
}

// Len — число записей (включая ещё не вычищенные истёкшие).
func (c *AggregateCache) Len() int {
	return c.lru.Len()
}
