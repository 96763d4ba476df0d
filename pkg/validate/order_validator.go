package validate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Gunvolt24/statshub/internal/domain"
	"github.com/Gunvolt24/statshub/internal/ports"
)

// Проверка, что OrderValidator удовлетворяет интерфейсу OrderValidator.
var _ ports.OrderValidator = (*OrderValidator)(nil)

// ErrInvalidOrder — базовая (sentinel error) ошибка валидации.
var ErrInvalidOrder = errors.New("order validation failed")

const (
	// MaxBrandNameLen — ограничение колонки brand_name.
	MaxBrandNameLen = 100
	// createdAtSkew — допустимое опережение часов источника.
	createdAtSkew = time.Minute
)

// FieldError — ошибка в конкретном поле конкретной записи пачки.
type FieldError struct {
	Index  int    // позиция записи в пачке; -1 для одиночного заказа
	Field  string // JSON-имя поля
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidOrder, e.Path(), e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrInvalidOrder }

// Path — "[i].field" для записи пачки, "field" для одиночного заказа.
func (e *FieldError) Path() string {
	if e.Index < 0 {
		return e.Field
	}
	return fmt.Sprintf("[%d].%s", e.Index, e.Field)
}

// ValidationErrors — карта "путь → причины" для ответа клиенту.
// Для ошибок без FieldError возвращает nil.
func ValidationErrors(err error) map[string][]string {
	var fe *FieldError
	if !errors.As(err, &fe) {
		return nil
	}
	return map[string][]string{fe.Path(): {fe.Reason}}
}

// Option — настройка валидатора.
type Option func(*OrderValidator)

// WithClock — подмена источника текущего времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(v *OrderValidator) {
		if now != nil {
			v.now = now
		}
	}
}

// OrderValidator — структура для валидации заказа.
type OrderValidator struct {
	now func() time.Time
}

// NewOrderValidator — конструктор OrderValidator.
// Возвращает ErrInvalidOrder (обёрнутый в FieldError) при любой проблеме.
func NewOrderValidator(opts ...Option) *OrderValidator {
	v := &OrderValidator{now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate — проверяет корректность полей одного заказа.
func (v *OrderValidator) Validate(_ context.Context, order *domain.Order) error {
	if order == nil {
		return &FieldError{Index: -1, Field: "order", Reason: "заказ не может быть nil"}
	}
	return v.check(-1, order, v.now())
}

// ValidateBatch — проверяет пачку до первой ошибки; ошибка указывает индекс записи.
func (v *OrderValidator) ValidateBatch(ctx context.Context, batch []domain.Order) error {
	now := v.now()
	for i := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := v.check(i, &batch[i], now); err != nil {
			return err
		}
	}
	return nil
}

func (v *OrderValidator) check(idx int, o *domain.Order, now time.Time) error {
	fail := func(field, reason string) error {
		return &FieldError{Index: idx, Field: field, Reason: reason}
	}

	if strings.TrimSpace(o.OrderID) == "" {
		return fail("orderId", "orderId обязателен")
	}
	if strings.TrimSpace(o.SKU) == "" {
		return fail("sku", "sku обязателен")
	}
	if !o.UnitPrice.IsPositive() {
		return fail("price", "price должен быть больше нуля")
	}
	if o.Quantity <= 0 {
		return fail("quantity", "quantity должен быть больше нуля")
	}
	if o.CreatedAt.IsZero() {
		return fail("createdAt", "createdAt обязателен")
	}
	if o.CreatedAt.After(now.Add(createdAtSkew)) {
		return fail("createdAt", "createdAt не может быть в будущем")
	}
	if strings.TrimSpace(o.BrandName) == "" {
		return fail("brandName", "brandName обязателен")
	}
	if utf8.RuneCountInString(o.BrandName) > MaxBrandNameLen {
		return fail("brandName", fmt.Sprintf("brandName длиннее %d символов", MaxBrandNameLen))
	}
	return nil
}
