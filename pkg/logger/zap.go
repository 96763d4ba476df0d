package logger

import (
	"context"

	"github.com/Gunvolt24/statshub/internal/ports"
	"github.com/Gunvolt24/statshub/pkg/ctxmeta"
	"go.uber.org/zap"
)

var _ ports.Logger = (*ZapLogger)(nil)

// ZapLogger — реализация ports.Logger поверх zap.
// Метаданные запроса (request_id, trace_id, span_id) из контекста идут отдельными полями.
type ZapLogger struct {
	base   *zap.Logger
	sugar  *zap.SugaredLogger
	isProd bool
}

// NewZapLogger — production (JSON) или development (консоль) конфигурация.
func NewZapLogger(isProd bool) (*ZapLogger, func() error, error) {
	var (
		logger *zap.Logger
		err    error
	)

	if isProd {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, nil, err
	}

	loggerWrap := FromZap(logger.Named("statshub"))
	loggerWrap.isProd = isProd

	cleanup := func() error { return loggerWrap.base.Sync() }
	return loggerWrap, cleanup, nil
}

// FromZap — обёртка над готовым zap.Logger (тесты, zaptest/observer).
func FromZap(l *zap.Logger) *ZapLogger {
	// пропускаем собственный фрейм, чтобы caller указывал на вызывающий код
	l = l.WithOptions(zap.AddCallerSkip(1))
	return &ZapLogger{base: l, sugar: l.Sugar()}
}

func (z *ZapLogger) with(ctx context.Context) *zap.SugaredLogger {
	if kv := ctxmeta.Fields(ctx); len(kv) > 0 {
		return z.sugar.With(kv...)
	}
	return z.sugar
}

func (z *ZapLogger) Infof(ctx context.Context, format string, args ...any) {
	z.with(ctx).Infof(format, args...)
}
func (z *ZapLogger) Warnf(ctx context.Context, format string, args ...any) {
	z.with(ctx).Warnf(format, args...)
}
func (z *ZapLogger) Errorf(ctx context.Context, format string, args ...any) {
	z.with(ctx).Errorf(format, args...)
}

func (z *ZapLogger) Base() *zap.Logger           { return z.base }
func (z *ZapLogger) Sugared() *zap.SugaredLogger { return z.sugar }
func (z *ZapLogger) IsProd() bool                { return z.isProd }
