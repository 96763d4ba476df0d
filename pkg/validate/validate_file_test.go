package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Gunvolt24/statshub/internal/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestValidateFile_JSON_Auto_OK(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, "batch.json", batchJSON(
		minimalValidOrderJSON("A", "S1", "Nike"),
		minimalValidOrderJSON("B", "S2", "Puma"),
	))

	var out bytes.Buffer
	summary, err := ValidateFile(ctx, NewOrderValidator(), path, FormatAuto, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != "2 valid / 0 invalid" {
		t.Fatalf("unexpected summary: %s", summary)
	}
	var batch []domain.Order
	if err := json.Unmarshal(out.Bytes(), &batch); err != nil {
		t.Fatalf("output must be a json array: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("expected 2 orders in output, got %d", len(batch))
	}
}

func TestValidateFile_JSON_InvalidRecord(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, "batch.json", batchJSON(
		minimalValidOrderJSON("A", "S1", "Nike"),
		minimalValidOrderJSON("B", "S2", ""),
	))

	var out bytes.Buffer
	summary, err := ValidateFile(ctx, NewOrderValidator(), path, FormatAuto, &out)
	if !errors.Is(err, ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder, got: %v", err)
	}
	if summary != "1 valid / 1 invalid" {
		t.Fatalf("unexpected summary: %s", summary)
	}
	if out.String() != "" {
		t.Fatalf("output must be empty for rejected batch")
	}
}

func TestValidateFile_JSONL_Auto_Mixed(t *testing.T) {
	ctx := context.Background()
	content := oneLineJSON(minimalValidOrderJSON("A", "S1", "Nike")) + "\n" +
		oneLineJSON(minimalValidOrderJSON("B", "S2", "")) + "\n" + // пустой бренд
		oneLineJSON(minimalValidOrderJSON("C", "S3", "Puma")) + "\n"
	path := writeFile(t, "list.jsonl", content)

	var out bytes.Buffer
	summary, err := ValidateFile(ctx, NewOrderValidator(), path, FormatAuto, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != "2 valid / 1 invalid" {
		t.Fatalf("unexpected summary: %s", summary)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 output lines, got %d", len(lines))
	}
}

func TestValidateFile_JSON_Malformed(t *testing.T) {
	ctx := context.Background()
	// неизвестное поле
	path := writeFile(t, "bad.json", `[{"unknown":1,`+minimalValidOrderJSON("A", "S1", "Nike")[1:]+`]`)

	var out bytes.Buffer
	summary, err := ValidateFile(ctx, NewOrderValidator(), path, FormatJSON, &out)
	if err == nil {
		t.Fatalf("expected error for invalid json")
	}
	if summary != "0 valid / 0 invalid" {
		t.Fatalf("unexpected summary: %s", summary)
	}
	if out.String() != "" {
		t.Fatalf("output must be empty for invalid JSON")
	}
}

func TestValidateFile_ExplicitFormat_IgnoresExt(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, "data.txt", oneLineJSON(minimalValidOrderJSON("A", "S1", "Nike"))+"\n")

	var out bytes.Buffer
	summary, err := ValidateFile(ctx, NewOrderValidator(), path, FormatJSONL, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != "1 valid / 0 invalid" {
		t.Fatalf("unexpected summary: %s", summary)
	}
}

func TestValidateFile_OpenError(t *testing.T) {
	var out bytes.Buffer
	_, err := ValidateFile(context.Background(), NewOrderValidator(), "no-such-file.json", FormatAuto, &out)
	if err == nil {
		t.Fatalf("expected open error")
	}
}

func TestValidateFile_UnsupportedFormat(t *testing.T) {
	path := writeFile(t, "batch.json", batchJSON(minimalValidOrderJSON("A", "S1", "Nike")))

	var out bytes.Buffer
	_, err := ValidateFile(context.Background(), NewOrderValidator(), path, InputFormat("yaml"), &out)
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("expected unsupported format error, got: %v", err)
	}
}

// ---- функции для тестирования ----

func oneLineJSON(s string) string {
	var b bytes.Buffer
	_ = json.Compact(&b, []byte(s))
	return b.String()
}
