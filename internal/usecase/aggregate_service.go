package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Gunvolt24/statshub/internal/domain"
	"github.com/Gunvolt24/statshub/internal/ports"
	"github.com/Gunvolt24/statshub/pkg/metrics"
	"github.com/Gunvolt24/statshub/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultAggregateTTL — срок жизни агрегата в кэше.
const DefaultAggregateTTL = 10 * time.Minute

// AggregateService — чтение агрегатов выручки по схеме cache-aside.
// Сбой кэша на чтении или записи никогда не доходит до вызывающего: источник истины — хранилище.
type AggregateService struct {
	store ports.OrderStore
	cache ports.AggregateCache
	log   ports.Logger
	ttl   time.Duration
	gen   InvalidationCounter
}

// InvalidationCounter — поколение инвалидаций кэша (см. CacheInvalidator).
type InvalidationCounter interface {
	Generation() uint64
}

// AggregateOption — настройка AggregateService.
type AggregateOption func(*AggregateService)

// WithInvalidationCounter — пересчёт, пересёкшийся с инвалидацией, не попадает в кэш.
func WithInvalidationCounter(c InvalidationCounter) AggregateOption {
	return func(s *AggregateService) { s.gen = c }
}

// NewAggregateService — DI-конструктор; ttl <= 0 — DefaultAggregateTTL.
func NewAggregateService(
	store ports.OrderStore,
	cache ports.AggregateCache,
	log ports.Logger,
	ttl time.Duration,
	opts ...AggregateOption,
) *AggregateService {
	if ttl <= 0 {
		ttl = DefaultAggregateTTL
	}
	s := &AggregateService{store: store, cache: cache, log: log, ttl: ttl}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DailyRevenue — выручка по дням (по возрастанию даты).
func (s *AggregateService) DailyRevenue(ctx context.Context) ([]domain.DailyRevenuePoint, error) {
	return readThrough(ctx, s, domain.AggregateDaily, s.store.GroupSumByDate)
}

// BrandRevenue — выручка по брендам.
func (s *AggregateService) BrandRevenue(ctx context.Context) (domain.BrandRevenue, error) {
	return readThrough(ctx, s, domain.AggregateBrand, s.store.GroupSumByBrand)
}

// RecomputeDaily — дневной агрегат прямо из хранилища, кэш не читается и не пишется.
// Иначе рассылка могла бы вернуть в кэш значение старше параллельной инвалидации.
func (s *AggregateService) RecomputeDaily(ctx context.Context) ([]domain.DailyRevenuePoint, error) {
	return recompute(ctx, domain.AggregateDaily, s.store.GroupSumByDate)
}

// WarmUp — пересчитывает оба агрегата и кладёт их в кэш (старт и периодическое обновление).
// Ошибка одного вида не мешает другому; возвращается первая ошибка хранилища.
func (s *AggregateService) WarmUp(ctx context.Context) error {
	start := time.Now()

	gen := s.generation()
	daily, dailyErr := recompute(ctx, domain.AggregateDaily, s.store.GroupSumByDate)
	if dailyErr == nil {
		s.put(ctx, domain.AggregateDaily, daily, gen)
	}
	gen = s.generation()
	brand, brandErr := recompute(ctx, domain.AggregateBrand, s.store.GroupSumByBrand)
	if brandErr == nil {
		s.put(ctx, domain.AggregateBrand, brand, gen)
	}

	if err := errors.Join(dailyErr, brandErr); err != nil {
		s.log.Errorf(ctx, "aggregate warm-up failed err=%v", err)
		if dailyErr != nil {
			return dailyErr
		}
		return brandErr
	}
	s.log.Infof(ctx, "aggregates warmed days=%d brands=%d took=%s", len(daily), len(brand), time.Since(start))
	return nil
}

// readThrough — попадание в кэш или пересчёт из хранилища с записью в кэш.
func readThrough[T any](ctx context.Context, s *AggregateService, kind domain.AggregateKind, load func(context.Context) (T, error)) (T, error) {
	if cached, ok := lookup[T](ctx, s, kind); ok {
		return cached, nil
	}
	gen := s.generation()
	value, err := recompute(ctx, kind, load)
	if err != nil {
		var zero T
		return zero, err
	}
	s.put(ctx, kind, value, gen)
	return value, nil
}

// lookup — промах, ошибка чтения и битое значение для вызывающего одинаковы: (zero, false).
func lookup[T any](ctx context.Context, s *AggregateService, kind domain.AggregateKind) (T, bool) {
	var value T

	raw, ok, err := s.cache.Get(ctx, kind.CacheKey())
	switch {
	case err != nil:
		s.log.Warnf(ctx, "aggregate cache read failed kind=%s err=%v", kind, err)
		metrics.AggregateCache.WithLabelValues(kind.String(), "error").Inc()
		return value, false
	case !ok:
		metrics.AggregateCache.WithLabelValues(kind.String(), "miss").Inc()
		return value, false
	}

	if err := json.Unmarshal(raw, &value); err != nil {
		s.log.Warnf(ctx, "aggregate cache value corrupt kind=%s err=%v", kind, err)
		metrics.AggregateCache.WithLabelValues(kind.String(), "corrupt").Inc()
		var zero T
		return zero, false
	}
	metrics.AggregateCache.WithLabelValues(kind.String(), "hit").Inc()
	return value, true
}

func recompute[T any](ctx context.Context, kind domain.AggregateKind, load func(context.Context) (T, error)) (T, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "AggregateService.recompute",
		trace.WithAttributes(attribute.String("aggregate.kind", kind.String())))
	defer span.End()

	timer := prometheus.NewTimer(metrics.AggregateRecompute.WithLabelValues(kind.String()))
	defer timer.ObserveDuration()

	value, err := load(ctx)
	if err != nil {
		span.RecordError(err)
		var zero T
		return zero, fmt.Errorf("recompute %s revenue: %w", kind, err)
	}
	return value, nil
}

func (s *AggregateService) generation() uint64 {
	if s.gen == nil {
		return 0
	}
	return s.gen.Generation()
}

// put — запись в кэш по возможности; сбой только логируется.
// Если с начала пересчёта (поколение gen) прошла инвалидация, значение могло устареть и не пишется.
func (s *AggregateService) put(ctx context.Context, kind domain.AggregateKind, value any, gen uint64) {
	if s.generation() != gen {
		metrics.AggregateCache.WithLabelValues(kind.String(), "stale").Inc()
		s.log.Infof(ctx, "aggregate not cached: invalidated during recompute kind=%s", kind)
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		s.log.Warnf(ctx, "aggregate marshal failed kind=%s err=%v", kind, err)
		return
	}
	if err := s.cache.Set(ctx, kind.CacheKey(), raw, s.ttl); err != nil {
		s.log.Warnf(ctx, "aggregate cache write failed kind=%s err=%v", kind, err)
	}
}
