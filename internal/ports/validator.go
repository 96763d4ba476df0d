package ports

import (
	"context"

	"github.com/Gunvolt24/statshub/internal/domain"
)

type OrderValidator interface {
	Validate(ctx context.Context, order *domain.Order) error
	ValidateBatch(ctx context.Context, batch []domain.Order) error
}
