package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Gunvolt24/statshub/internal/domain"
	"github.com/Gunvolt24/statshub/internal/ports"
)

// DecodeBatch — строгий разбор пачки заказов (JSON-массив).
// Неизвестные поля и данные после массива отклоняются; ошибка оборачивает ErrInvalidOrder.
func DecodeBatch(raw []byte) ([]domain.Order, error) {
	var batch []domain.Order
	if err := decodeStrict(raw, &batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// ValidateBatchFromJSON — разбор и валидация пачки из JSON до первой ошибки.
func ValidateBatchFromJSON(ctx context.Context, validator ports.OrderValidator, raw []byte) ([]domain.Order, error) {
	batch, err := DecodeBatch(raw)
	if err != nil {
		return nil, err
	}
	if err := validator.ValidateBatch(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// ValidateOrderFromJSON — валидация одиночного заказа из JSON.
func ValidateOrderFromJSON(ctx context.Context, validator ports.OrderValidator, raw []byte) (*domain.Order, error) {
	var order domain.Order
	if err := decodeStrict(raw, &order); err != nil {
		return nil, err
	}
	if err := validator.Validate(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func decodeStrict(raw []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid json: %w", ErrInvalidOrder, err)
	}
	// гарантируем отсутствие данных после документа
	if err := dec.Decode(new(struct{})); err != io.EOF {
		return fmt.Errorf("%w: invalid json: trailing data", ErrInvalidOrder)
	}
	return nil
}
