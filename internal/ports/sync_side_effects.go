package ports

import (
	"context"

	"github.com/Gunvolt24/statshub/internal/domain"
)

// CacheInvalidator — удаление устаревших агрегатов из кэша после записи.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, kinds ...domain.AggregateKind) error
}

// SyncNotifier — уведомление подписчиков о новой синхронизации (fire-and-forget).
type SyncNotifier interface {
	NotifySynced(ctx context.Context)
}

// TaskDispatcher — неблокирующая передача задачи в фон; false, если задача не принята.
type TaskDispatcher interface {
	Dispatch(ctx context.Context, task func(ctx context.Context)) bool
}
