package memory

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newCache(t *testing.T, capacity int, clock *fakeClock) *AggregateCache {
	t.Helper()
	var opts []Option
	if clock != nil {
		opts = append(opts, WithClock(clock.Now))
	}
	c, err := New(capacity, opts...)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	return c
}

func TestSetGet_HitMiss(t *testing.T) {
	c := newCache(t, 2, nil)
	ctx := context.Background()

	// miss
	if _, ok, err := c.Get(ctx, "stats:revenue:daily"); ok || err != nil {
		t.Fatalf("expected miss before Set, got ok=%v err=%v", ok, err)
	}

	// hit после Set
	_ = c.Set(ctx, "stats:revenue:daily", []byte(`[{"date":"2024-01-01","revenue":"300"}]`), time.Minute)
	got, ok, err := c.Get(ctx, "stats:revenue:daily")
	if err != nil || !ok || string(got) != `[{"date":"2024-01-01","revenue":"300"}]` {
		t.Fatalf("expected hit, got %q ok=%v err=%v", got, ok, err)
	}
}

func TestTTL_Expiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := newCache(t, 2, clock)
	ctx := context.Background()

	_ = c.Set(ctx, "ttl", []byte("v"), 10*time.Minute)
	clock.Advance(9 * time.Minute)
	if _, ok, _ := c.Get(ctx, "ttl"); !ok {
		t.Fatalf("expected hit before TTL expires")
	}
	clock.Advance(time.Minute)
	if _, ok, _ := c.Get(ctx, "ttl"); ok {
		t.Fatalf("expected miss after TTL expires")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry must be dropped, len=%d", c.Len())
	}
}

func TestTTL_ZeroMeansNoExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := newCache(t, 2, clock)
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), 0)
	clock.Advance(24 * time.Hour)
	if _, ok, _ := c.Get(ctx, "k"); !ok {
		t.Fatalf("entry without ttl must not expire")
	}
}

func TestLRUEviction(t *testing.T) {
	c := newCache(t, 2, nil)
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	// a становится самым свежим
	if _, ok, _ := c.Get(ctx, "a"); !ok {
		t.Fatalf("expected hit for a")
	}
	_ = c.Set(ctx, "c", []byte("3"), 0)

	if _, ok, _ := c.Get(ctx, "b"); ok {
		t.Fatalf("b must be evicted as least recently used")
	}
	if _, ok, _ := c.Get(ctx, "a"); !ok {
		t.Fatalf("a must survive eviction")
	}
}

func TestRemove_MultipleAndAbsent(t *testing.T) {
	c := newCache(t, 4, nil)
	ctx := context.Background()

	_ = c.Set(ctx, "stats:revenue:daily", []byte("d"), time.Minute)
	_ = c.Set(ctx, "stats:revenue:brand", []byte("b"), time.Minute)

	if err := c.Remove(ctx, "stats:revenue:daily", "stats:revenue:brand", "absent"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty cache, len=%d", c.Len())
	}
	// повторное удаление — не ошибка
	if err := c.Remove(ctx, "stats:revenue:daily"); err != nil {
		t.Fatalf("idempotent remove: %v", err)
	}
}

func TestCloneImmutability(t *testing.T) {
	c := newCache(t, 2, nil)
	ctx := context.Background()

	src := []byte("original")
	_ = c.Set(ctx, "k", src, 0)
	src[0] = 'X'

	got, _, _ := c.Get(ctx, "k")
	if string(got) != "original" {
		t.Fatalf("cache must store a copy, got %q", got)
	}
	got[0] = 'Y'
	again, _, _ := c.Get(ctx, "k")
	if string(again) != "original" {
		t.Fatalf("cache must return a copy, got %q", again)
	}
}
