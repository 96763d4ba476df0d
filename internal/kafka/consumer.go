package kafka

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/Gunvolt24/statshub/internal/ports"
	"github.com/Gunvolt24/statshub/pkg/ctxmeta"
	"github.com/Gunvolt24/statshub/pkg/metrics"
	"github.com/Gunvolt24/statshub/pkg/validate"
	"github.com/segmentio/kafka-go"
)

var _ ports.Runner = (*Consumer)(nil)

// Consumer — читает из Kafka сообщения с JSON-массивом заказов и синхронизирует их.
// Оффсеты коммитятся вручную: успех и невалидная пачка — коммит, временная ошибка —
// повтор того же сообщения без коммита. Повторная доставка безопасна: синхронизация
// пропускает уже сохранённые заказы.
type Consumer struct {
	reader         reader
	syncer         batchSyncer
	log            ports.Logger
	processTimeout time.Duration
	retry          *backoff
	closeOnce      sync.Once
}

func NewConsumer(cfg *ConsumerConfig, syncer batchSyncer, log ports.Logger) *Consumer {
	initial, maxDelay := cfg.retryBounds()
	return &Consumer{
		reader:         kafka.NewReader(cfg.ReaderConfig()),
		syncer:         syncer,
		log:            log,
		processTimeout: cfg.processTimeout(),
		retry:          newBackoff(initial, maxDelay, rand.New(rand.NewSource(time.Now().UnixNano()))),
	}
}

// Run — цикл чтения до отмены ctx; возвращает ctx.Err().
func (c *Consumer) Run(ctx context.Context) error {
	rc := c.reader.Config()
	c.log.Infof(ctx, "kafka consumer started topic=%s group_id=%s brokers=%v", rc.Topic, rc.GroupID, rc.Brokers)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			pause := c.retry.Next()
			c.log.Warnf(ctx, "kafka fetch failed, retry in %s err=%v", pause, err)
			if !sleepCtx(ctx, pause) {
				return ctx.Err()
			}
			continue
		}
		c.retry.Reset()
		metrics.KafkaMessagesConsumed.WithLabelValues(rc.Topic).Inc()

		if !c.processUntilDone(ctx, rc.Topic, msg) {
			return ctx.Err()
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Warnf(ctx, "kafka commit failed partition=%d offset=%d err=%v", msg.Partition, msg.Offset, err)
		}
	}
}

// processUntilDone — повторяет обработку сообщения после временных ошибок,
// пока она не завершится (успех или невалидная пачка) или не отменят ctx.
// Следующий fetch после ошибки вернул бы уже другое сообщение, а его коммит
// молча подтвердил бы и несохранённое.
func (c *Consumer) processUntilDone(ctx context.Context, topic string, msg kafka.Message) bool {
	// один идентификатор на все попытки: строки лога одной пачки связаны
	ctx = ctxmeta.WithRequestID(ctx, fmt.Sprintf("kafka-%s-%d-%d", topic, msg.Partition, msg.Offset))
	pause := newBackoff(c.retry.initial, c.retry.max, c.retry.rnd)
	for !c.process(ctx, topic, msg) {
		if !sleepCtx(ctx, pause.Next()) {
			return false
		}
	}
	return true
}

// process — синхронизация одной пачки; true — оффсет можно коммитить.
func (c *Consumer) process(ctx context.Context, topic string, msg kafka.Message) bool {
	pctx, cancel := context.WithTimeout(ctx, c.processTimeout)
	defer cancel()

	inserted, err := c.syncer.SyncFromMessage(pctx, msg.Value)
	switch {
	case err == nil:
		metrics.KafkaMessagesProcessed.WithLabelValues(topic).Inc()
		c.log.Infof(ctx, "kafka batch synced inserted=%d partition=%d offset=%d", inserted, msg.Partition, msg.Offset)
		return true
	case errors.Is(err, validate.ErrInvalidOrder):
		// мусор не ретраим: коммитим и идём дальше
		metrics.KafkaMessagesFailed.WithLabelValues(topic).Inc()
		c.log.Warnf(ctx, "kafka batch skipped partition=%d offset=%d err=%v", msg.Partition, msg.Offset, err)
		return true
	default:
		metrics.KafkaMessagesFailed.WithLabelValues(topic).Inc()
		c.log.Errorf(ctx, "kafka batch failed, will retry partition=%d offset=%d err=%v", msg.Partition, msg.Offset, err)
		return false
	}
}

// Close — закрывает reader (идемпотентно).
func (c *Consumer) Close() (err error) {
	c.closeOnce.Do(func() {
		err = c.reader.Close()
	})
	return err
}
