package ports

import (
	"context"
	"time"
)

// AggregateCache — общий кэш сериализованных агрегатов с TTL.
// Отсутствие записи и истёкшая запись для читателя неразличимы: (nil, false, nil).
type AggregateCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Remove — удалить записи; отсутствующий ключ ошибкой не считается.
	Remove(ctx context.Context, keys ...string) error
}
