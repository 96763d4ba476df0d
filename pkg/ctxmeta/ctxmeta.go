// Пакет ctxmeta — метаданные запроса в context.Context (request_id, trace_id, span_id).
// HTTP-слой, консьюмер и логгер зависят от него, но не друг от друга.
package ctxmeta

import "context"

type ctxKey string

const (
	// KeyRequestID — ключ request_id; собственный тип исключает коллизии.
	KeyRequestID ctxKey = "request_id"
)

// Имена полей в структурных логах.
const (
	FieldRequestID = "request_id"
	FieldTraceID   = "trace_id"
	FieldSpanID    = "span_id"
)

// WithRequestID кладёт request_id в контекст (если пусто — ничего не делает).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, KeyRequestID, requestID)
}

// RequestIDFromContext достаёт request_id из контекста.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(KeyRequestID).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// Fields — известные метаданные контекста парами ключ/значение (для логгера).
// Отсутствующие значения пропускаются.
func Fields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	var kv []any
	if v, ok := RequestIDFromContext(ctx); ok {
		kv = append(kv, FieldRequestID, v)
	}
	if v, ok := TraceIDFromContext(ctx); ok {
		kv = append(kv, FieldTraceID, v)
	}
	if v, ok := SpanIDFromContext(ctx); ok {
		kv = append(kv, FieldSpanID, v)
	}
	return kv
}
