package ports

import (
	"context"

	"github.com/Gunvolt24/statshub/internal/domain"
)

// StatsService — фасад прикладного слоя для транспорта (HTTP).
type StatsService interface {
	Sync(ctx context.Context, batch []domain.Order) (int, error)
	DailyRevenue(ctx context.Context) ([]domain.DailyRevenuePoint, error)
	BrandRevenue(ctx context.Context) (domain.BrandRevenue, error)
}
