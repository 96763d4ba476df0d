package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Gunvolt24/statshub/internal/domain"
	"github.com/Gunvolt24/statshub/internal/ports"
)

// InputFormat допустимые значения.
type InputFormat string

const (
	FormatAuto  InputFormat = "auto"
	FormatJSON  InputFormat = "json"  // одна пачка: JSON-массив заказов
	FormatJSONL InputFormat = "jsonl" // по заказу на строку
)

func summaryOf(valid, invalid int) string {
	return fmt.Sprintf("%d valid / %d invalid", valid, invalid)
}

// ValidateFile — валидирует файл как JSON или JSONL и пишет валидный вывод в writer.
// Пачка JSON принимается целиком или не принимается (как при синхронизации).
func ValidateFile(ctx context.Context, validator ports.OrderValidator, filePath string, format InputFormat, ow io.Writer) (string, error) {
	if format == FormatAuto {
		format = FormatJSON
		if strings.EqualFold(filepath.Ext(filePath), ".jsonl") {
			format = FormatJSONL
		}
	}
	if format != FormatJSON && format != FormatJSONL {
		return "", fmt.Errorf("unsupported format: %s", format)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	if format == FormatJSONL {
		result, err := ValidateJSONLStream(ctx, validator, file, ow)
		if err != nil {
			return "", err
		}
		return summaryOf(result.ValidLinesCount, result.InvalidLinesCount), nil
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	batch, err := DecodeBatch(raw)
	if err != nil {
		return summaryOf(0, 0), err
	}

	valid, invalid, firstErr := countValid(ctx, validator, batch)
	if firstErr != nil {
		return summaryOf(valid, invalid), firstErr
	}

	canonical, err := json.Marshal(batch)
	if err != nil {
		return "", fmt.Errorf("marshal batch: %w", err)
	}
	if _, err := ow.Write(append(canonical, '\n')); err != nil {
		return "", fmt.Errorf("write json: %w", err)
	}
	return summaryOf(valid, invalid), nil
}

// countValid — проверяет каждую запись, чтобы отчёт содержал полные счётчики.
func countValid(ctx context.Context, validator ports.OrderValidator, batch []domain.Order) (valid, invalid int, firstErr error) {
	for i := range batch {
		if err := validator.Validate(ctx, &batch[i]); err != nil {
			invalid++
			if firstErr == nil {
				firstErr = fmt.Errorf("record %d: %w", i, err)
			}
			continue
		}
		valid++
	}
	return valid, invalid, firstErr
}
