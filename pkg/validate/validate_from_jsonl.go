package validate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Gunvolt24/statshub/internal/ports"
)

// maxLineSize — предел длины одной строки JSONL.
const maxLineSize = 10 * 1024 * 1024

// JSONLResult — статистика валидации потока JSONL.
type JSONLResult struct {
	ValidLinesCount   int
	InvalidLinesCount int
}

// ValidateJSONLStream — читает JSONL (по заказу на строку), валидные заказы пишет в writer
// каноническим JSON одной строкой. Пустые строки пропускаются, невалидные считаются.
func ValidateJSONLStream(ctx context.Context, validator ports.OrderValidator, ir io.Reader, ow io.Writer) (JSONLResult, error) {
	var res JSONLResult

	scanner := bufio.NewScanner(ir)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		order, err := ValidateOrderFromJSON(ctx, validator, line)
		if err != nil {
			res.InvalidLinesCount++
			continue
		}

		canonical, err := json.Marshal(order)
		if err != nil {
			return res, fmt.Errorf("marshal order: %w", err)
		}
		if _, err := ow.Write(append(canonical, '\n')); err != nil {
			return res, fmt.Errorf("write valid line: %w", err)
		}
		res.ValidLinesCount++
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("scan: %w", err)
	}
	return res, nil
}
