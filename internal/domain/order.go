package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Order — строка заказа из внешней системы продаж.
// После сохранения запись не меняется.
type Order struct {
	ID        string          `json:"-"`         // внутренний идентификатор хранилища (uuid)
	OrderID   string          `json:"orderId"`   // бизнес-идентификатор, уникален во всём хранилище
	SKU       string          `json:"sku"`       // артикул
	UnitPrice decimal.Decimal `json:"price"`     // цена за единицу, > 0
	Quantity  int             `json:"quantity"`  // количество, > 0
	CreatedAt time.Time       `json:"createdAt"` // момент создания заказа
	BrandName string          `json:"brandName"` // бренд — ключ группировки выручки
}

// LineRevenue — выручка по строке: цена × количество.
func (o *Order) LineRevenue() decimal.Decimal {
	return o.UnitPrice.Mul(decimal.NewFromInt(int64(o.Quantity)))
}

// OrderIDs — бизнес-ключи заказов в исходном порядке.
func OrderIDs(orders []Order) []string {
	ids := make([]string, 0, len(orders))
	for i := range orders {
		ids = append(ids, orders[i].OrderID)
	}
	return ids
}

// Форматы createdAt: RFC 3339 со смещением или локальное время без смещения,
// которое читается как UTC.
const wallClockLayout = "2006-01-02T15:04:05.999999999"

// orderJSON — Order с createdAt в виде строки; поле верхнего уровня перекрывает встроенное.
type orderJSON struct {
	plainOrder
	CreatedAt string `json:"createdAt"`
}

type plainOrder Order

// UnmarshalJSON — строгий разбор: неизвестные поля отклоняются независимо от декодера снаружи.
func (o *Order) UnmarshalJSON(data []byte) error {
	var raw orderJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	createdAt, err := ParseTimestamp(raw.CreatedAt)
	if err != nil {
		return fmt.Errorf("createdAt: %w", err)
	}
	*o = Order(raw.plainOrder)
	o.CreatedAt = createdAt
	return nil
}

// ParseTimestamp — RFC 3339; без смещения время считается UTC. Пустая строка — нулевое время.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(wallClockLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: want RFC 3339 or %s", s, wallClockLayout)
	}
	return t, nil
}
