package usecase

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/Gunvolt24/statshub/internal/domain"
	"github.com/Gunvolt24/statshub/internal/ports"
)

var _ ports.CacheInvalidator = (*CacheInvalidator)(nil)

// CacheInvalidator — удаляет фиксированные ключи агрегатов одним вызовом кэша.
// Каждая инвалидация увеличивает поколение: пересчёт, начатый до неё, в кэш уже не пишется.
type CacheInvalidator struct {
	cache ports.AggregateCache
	gen   atomic.Uint64
}

func NewCacheInvalidator(cache ports.AggregateCache) *CacheInvalidator {
	return &CacheInvalidator{cache: cache}
}

// Invalidate — идемпотентно; без видов агрегатов кэш не трогается.
func (i *CacheInvalidator) Invalidate(ctx context.Context, kinds ...domain.AggregateKind) error {
	keys := domain.CacheKeys(kinds...)
	if len(keys) == 0 {
		return nil
	}
	// поколение растёт до удаления: запись, опоздавшая к Remove, увидит новое поколение
	i.gen.Add(1)
	if err := i.cache.Remove(ctx, keys...); err != nil {
		return fmt.Errorf("invalidate %v: %w", kinds, err)
	}
	return nil
}

// Generation — число начатых инвалидаций в этом процессе.
func (i *CacheInvalidator) Generation() uint64 { return i.gen.Load() }
