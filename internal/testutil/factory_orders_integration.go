//go:build integration

package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/Gunvolt24/statshub/internal/domain"
	"github.com/shopspring/decimal"
)

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func UniqSuffix() string { return randHex(6) }

// MakeOrder — валидный заказ с уникальным бизнес-ключом (опции переопределяют поля).
func MakeOrder(opts ...func(*domain.Order)) domain.Order {
	o := domain.Order{
		OrderID:   "ord-" + UniqSuffix(),
		SKU:       "SKU-" + UniqSuffix(),
		UnitPrice: decimal.RequireFromString("10.50"),
		Quantity:  1,
		CreatedAt: time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond),
		BrandName: "brand",
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func WithOrderID(id string) func(*domain.Order) {
	return func(o *domain.Order) { o.OrderID = id }
}

func WithBrand(brand string) func(*domain.Order) {
	return func(o *domain.Order) { o.BrandName = brand }
}

func WithPrice(price string) func(*domain.Order) {
	return func(o *domain.Order) { o.UnitPrice = decimal.RequireFromString(price) }
}

func WithQuantity(q int) func(*domain.Order) {
	return func(o *domain.Order) { o.Quantity = q }
}

func WithCreatedAt(t time.Time) func(*domain.Order) {
	return func(o *domain.Order) { o.CreatedAt = t }
}
