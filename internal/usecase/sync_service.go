package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/Gunvolt24/statshub/internal/domain"
	"github.com/Gunvolt24/statshub/internal/ports"
	"github.com/Gunvolt24/statshub/pkg/metrics"
	"github.com/Gunvolt24/statshub/pkg/telemetry"
	"github.com/Gunvolt24/statshub/pkg/validate"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultInvalidateTimeout — предел ожидания инвалидации кэша после записи.
const DefaultInvalidateTimeout = 3 * time.Second

// SyncService — приём пачек заказов: валидация, дедупликация, атомарная запись,
// инвалидация агрегатов и уведомление подписчиков.
type SyncService struct {
	store       ports.OrderStore
	validator   ports.OrderValidator
	invalidator ports.CacheInvalidator
	notifier    ports.SyncNotifier
	log         ports.Logger

	invalidateTimeout time.Duration
}

// SyncOption — настройка SyncService.
type SyncOption func(*SyncService)

// WithInvalidateTimeout — предел ожидания инвалидации (d <= 0 — значение по умолчанию).
func WithInvalidateTimeout(d time.Duration) SyncOption {
	return func(s *SyncService) {
		if d > 0 {
			s.invalidateTimeout = d
		}
	}
}

// NewSyncService — DI-конструктор.
func NewSyncService(
	store ports.OrderStore,
	validator ports.OrderValidator,
	invalidator ports.CacheInvalidator,
	notifier ports.SyncNotifier,
	log ports.Logger,
	opts ...SyncOption,
) *SyncService {
	s := &SyncService{
		store:             store,
		validator:         validator,
		invalidator:       invalidator,
		notifier:          notifier,
		log:               log,
		invalidateTimeout: DefaultInvalidateTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync — сохраняет новые заказы пачки и возвращает их число.
// Шаги:
//  1. пустая пачка — 0 без побочных эффектов;
//  2. валидация всей пачки до первой ошибки (validate.ErrInvalidOrder), хранилище не трогаем;
//  3. UTC для createdAt, дубликаты внутри пачки отбрасываются (первое вхождение остаётся);
//  4. один запрос существующих ключей, вставляется только разница;
//  5. атомарная вставка; ключи, занятые конкурентом, не считаются;
//  6. если записано > 0: синхронная инвалидация агрегатов и асинхронное уведомление.
//
// Ошибки шага 6 только логируются: запись уже состоялась.
func (s *SyncService) Sync(ctx context.Context, batch []domain.Order) (int, error) {
	if len(batch) == 0 {
		s.log.Infof(ctx, "no orders to sync")
		metrics.SyncBatches.WithLabelValues("noop").Inc()
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	ctx, span := telemetry.Tracer().Start(ctx, "SyncService.Sync",
		trace.WithAttributes(attribute.Int("sync.batch_size", len(batch))))
	defer span.End()

	if err := s.validator.ValidateBatch(ctx, batch); err != nil {
		s.log.Warnf(ctx, "sync rejected batch_size=%d err=%v", len(batch), err)
		metrics.SyncBatches.WithLabelValues("invalid").Inc()
		span.SetStatus(codes.Error, "invalid batch")
		return 0, fmt.Errorf("validate batch: %w", err)
	}

	candidates := normalizeBatch(batch)

	existing, err := s.store.ExistingKeys(ctx, domain.OrderIDs(candidates))
	if err != nil {
		return 0, s.fail(ctx, span, fmt.Errorf("existing keys: %w", err))
	}

	fresh := make([]domain.Order, 0, len(candidates))
	for i := range candidates {
		if _, ok := existing[candidates[i].OrderID]; !ok {
			fresh = append(fresh, candidates[i])
		}
	}
	if len(fresh) == 0 {
		s.log.Infof(ctx, "all orders already exist batch_size=%d", len(batch))
		metrics.SyncBatches.WithLabelValues("noop").Inc()
		return 0, nil
	}

	inserted, err := s.store.BulkInsert(ctx, fresh)
	if err != nil {
		return 0, s.fail(ctx, span, fmt.Errorf("bulk insert orders: %w", err))
	}
	span.SetAttributes(attribute.Int("sync.inserted", inserted))
	if inserted == 0 {
		// все свежие ключи успел записать конкурентный писатель
		s.log.Infof(ctx, "all orders already exist batch_size=%d", len(batch))
		metrics.SyncBatches.WithLabelValues("noop").Inc()
		return 0, nil
	}

	metrics.SyncBatches.WithLabelValues("inserted").Inc()
	metrics.OrdersSynced.Add(float64(inserted))
	s.log.Infof(ctx, "imported %d new orders batch_size=%d", inserted, len(batch))

	s.afterWrite(ctx)
	return inserted, nil
}

// SyncFromMessage — пачка из Kafka (JSON-массив). Битый JSON оборачивает
// validate.ErrInvalidOrder, чтобы консьюмер пропустил сообщение.
func (s *SyncService) SyncFromMessage(ctx context.Context, raw []byte) (int, error) {
	batch, err := validate.DecodeBatch(raw)
	if err != nil {
		s.log.Warnf(ctx, "sync message rejected err=%v", err)
		metrics.SyncBatches.WithLabelValues("invalid").Inc()
		return 0, err
	}
	return s.Sync(ctx, batch)
}

// afterWrite — инвалидация на контексте, отвязанном от отмены вызывающего:
// клиент мог отвалиться, но следующий читатель обязан получить промах.
func (s *SyncService) afterWrite(ctx context.Context) {
	detached := context.WithoutCancel(ctx)

	invCtx, cancel := context.WithTimeout(detached, s.invalidateTimeout)
	defer cancel()
	if err := s.invalidator.Invalidate(invCtx, domain.AllAggregateKinds()...); err != nil {
		s.log.Warnf(ctx, "aggregate cache invalidation failed err=%v", err)
	}

	s.notifier.NotifySynced(detached)
}

func (s *SyncService) fail(ctx context.Context, span trace.Span, err error) error {
	s.log.Errorf(ctx, "sync failed err=%v", err)
	metrics.SyncBatches.WithLabelValues("error").Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, "sync failed")
	return err
}

// normalizeBatch — копия пачки: createdAt в UTC, без повторов бизнес-ключа.
func normalizeBatch(batch []domain.Order) []domain.Order {
	seen := make(map[string]struct{}, len(batch))
	out := make([]domain.Order, 0, len(batch))
	for i := range batch {
		o := batch[i]
		if _, dup := seen[o.OrderID]; dup {
			continue
		}
		seen[o.OrderID] = struct{}{}
		o.CreatedAt = o.CreatedAt.UTC()
		out = append(out, o)
	}
	return out
}
