package ports

import (
	"context"

	"github.com/Gunvolt24/statshub/internal/domain"
)

// OrderStore — долговременное хранилище заказов с уникальностью по бизнес-ключу.
type OrderStore interface {
	// ExistingKeys — какие из переданных ключей уже есть в хранилище (один запрос на весь набор).
	ExistingKeys(ctx context.Context, keys []string) (map[string]struct{}, error)

	// BulkInsert — атомарная вставка пачки; дубликаты ключей пропускаются.
	// Возвращает число реально записанных заказов.
	BulkInsert(ctx context.Context, orders []domain.Order) (int, error)

	// GroupSumByDate — выручка по календарным дням, по возрастанию даты.
	GroupSumByDate(ctx context.Context) ([]domain.DailyRevenuePoint, error)

	// GroupSumByBrand — выручка по брендам.
	GroupSumByBrand(ctx context.Context) (domain.BrandRevenue, error)
}
