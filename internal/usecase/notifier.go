package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Gunvolt24/statshub/internal/domain"
	"github.com/Gunvolt24/statshub/internal/ports"
	"github.com/Gunvolt24/statshub/pkg/metrics"
)

var _ ports.SyncNotifier = (*BroadcastNotifier)(nil)

const (
	// DefaultBroadcastTopic — топик обновлений дневной выручки.
	DefaultBroadcastTopic = "revenue.update"
	// DefaultBroadcastTimeout — предел на пересчёт и публикацию одного уведомления.
	DefaultBroadcastTimeout = 5 * time.Second
)

// DailyRevenueSource — свежий дневной агрегат в обход кэша.
type DailyRevenueSource interface {
	RecomputeDaily(ctx context.Context) ([]domain.DailyRevenuePoint, error)
}

// BroadcastNotifier — после записи пересчитывает дневной агрегат и рассылает его подписчикам.
// Работа уходит в пул задач; при полной очереди уведомление теряется (доставка не гарантируется).
type BroadcastNotifier struct {
	source      DailyRevenueSource
	broadcaster ports.Broadcaster
	dispatcher  ports.TaskDispatcher
	log         ports.Logger
	topic       string
	timeout     time.Duration
}

// NewBroadcastNotifier — пустой topic и timeout <= 0 заменяются значениями по умолчанию.
func NewBroadcastNotifier(
	source DailyRevenueSource,
	broadcaster ports.Broadcaster,
	dispatcher ports.TaskDispatcher,
	log ports.Logger,
	topic string,
	timeout time.Duration,
) *BroadcastNotifier {
	if topic == "" {
		topic = DefaultBroadcastTopic
	}
	if timeout <= 0 {
		timeout = DefaultBroadcastTimeout
	}
	return &BroadcastNotifier{
		source:      source,
		broadcaster: broadcaster,
		dispatcher:  dispatcher,
		log:         log,
		topic:       topic,
		timeout:     timeout,
	}
}

// Topic — топик рассылки.
func (n *BroadcastNotifier) Topic() string { return n.topic }

// NotifySynced — fire-and-forget: не блокирует и не возвращает ошибок.
func (n *BroadcastNotifier) NotifySynced(ctx context.Context) {
	detached := context.WithoutCancel(ctx)
	accepted := n.dispatcher.Dispatch(detached, func(taskCtx context.Context) {
		taskCtx, cancel := context.WithTimeout(taskCtx, n.timeout)
		defer cancel()
		if err := n.PublishDaily(taskCtx); err != nil {
			n.log.Warnf(taskCtx, "revenue broadcast failed topic=%s err=%v", n.topic, err)
		}
	})
	if !accepted {
		metrics.Broadcasts.WithLabelValues("dropped").Inc()
		n.log.Warnf(ctx, "revenue broadcast dropped: task queue full topic=%s", n.topic)
	}
}

// PublishDaily — синхронное ядро уведомления: пересчёт, сериализация, публикация.
func (n *BroadcastNotifier) PublishDaily(ctx context.Context) error {
	points, err := n.source.RecomputeDaily(ctx)
	if err != nil {
		metrics.Broadcasts.WithLabelValues("error").Inc()
		return err
	}
	payload, err := json.Marshal(points)
	if err != nil {
		metrics.Broadcasts.WithLabelValues("error").Inc()
		return fmt.Errorf("marshal daily revenue: %w", err)
	}
	if err := n.broadcaster.Publish(ctx, n.topic, payload); err != nil {
		metrics.Broadcasts.WithLabelValues("error").Inc()
		return fmt.Errorf("publish %s: %w", n.topic, err)
	}
	metrics.Broadcasts.WithLabelValues("ok").Inc()
	return nil
}
