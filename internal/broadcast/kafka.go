package broadcast

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Gunvolt24/statshub/internal/ports"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

var (
	_ ports.Broadcaster = (*KafkaPublisher)(nil)
	_ ports.Runner      = (*KafkaRelay)(nil)
)

// KafkaPublisherConfig — параметры асинхронного писателя.
type KafkaPublisherConfig struct {
	Brokers      []string
	BatchTimeout time.Duration
	// Local — локальный хаб, получает обновление сразу; nil — доставка только через KafkaRelay.
	Local ports.Broadcaster
}

// KafkaPublisher — публикация обновлений во внешний Kafka-топик (топик задаётся на сообщение).
// Запись асинхронная: ошибки доставки приходят в Completion и только логируются.
type KafkaPublisher struct {
	writer *kafka.Writer
	local  ports.Broadcaster
	log    ports.Logger
}

func NewKafkaPublisher(cfg KafkaPublisherConfig, log ports.Logger) *KafkaPublisher {
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 10 * time.Millisecond
	}
	p := &KafkaPublisher{local: cfg.Local, log: log}
	p.writer = &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           cfg.BatchTimeout,
		Async:                  true,
		Completion:             p.completion,
	}
	return p
}

// Publish — ставит сообщение в очередь писателя и отдаёт его локальному хабу.
func (p *KafkaPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if p.local != nil {
		_ = p.local.Publish(ctx, topic, payload)
	}
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Value: payload,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("kafka publish %s: %w", topic, err)
	}
	return nil
}

func (p *KafkaPublisher) completion(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	topic := ""
	if len(messages) > 0 {
		topic = messages[0].Topic
	}
	p.log.Warnf(context.Background(), "kafka broadcast delivery failed topic=%s messages=%d err=%v", topic, len(messages), err)
}

// Close — дожидается отправки буфера и закрывает писателя.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

const (
	relayGroupPrefix = "statshub-relay-"
	relayRetryPause  = time.Second
)

// KafkaRelayConfig — параметры чтения топика обновлений.
type KafkaRelayConfig struct {
	Brokers []string
	Topic   string
	// RetryPause — пауза после ошибки чтения; 0 — секунда.
	RetryPause time.Duration
}

// KafkaRelay — чтение топика обновлений и пересылка в локальный хаб.
// У каждого экземпляра своя consumer group: сообщение получают все экземпляры,
// чтение начинается с конца топика (история не нужна).
type KafkaRelay struct {
	reader *kafka.Reader
	topic  string
	pause  time.Duration
	sink   ports.Broadcaster
	log    ports.Logger

	closeOnce sync.Once
}

func NewKafkaRelay(cfg KafkaRelayConfig, sink ports.Broadcaster, log ports.Logger) *KafkaRelay {
	pause := cfg.RetryPause
	if pause <= 0 {
		pause = relayRetryPause
	}
	return &KafkaRelay{
		reader: kafka.NewReader(relayReaderConfig(cfg, relayGroupID())),
		topic:  cfg.Topic,
		pause:  pause,
		sink:   sink,
		log:    log,
	}
}

func relayReaderConfig(cfg KafkaRelayConfig, groupID string) kafka.ReaderConfig {
	return kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     groupID,
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    1 << 20,
		MaxWait:     500 * time.Millisecond,
	}
}

// relayGroupID — уникальная группа на экземпляр.
func relayGroupID() string {
	return relayGroupPrefix + uuid.NewString()
}

// Run — блокирует до отмены ctx или Close; ошибки чтения логируются с паузой.
func (r *KafkaRelay) Run(ctx context.Context) error {
	r.log.Infof(ctx, "kafka relay started topic=%s group_id=%s", r.topic, r.reader.Config().GroupID)
	for {
		msg, err := r.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				r.log.Infof(ctx, "kafka relay stopped topic=%s", r.topic)
				return nil
			}
			r.log.Warnf(ctx, "kafka relay read failed, retry in %s err=%v", r.pause, err)
			timer := time.NewTimer(r.pause)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}
			continue
		}
		if err := r.sink.Publish(ctx, msg.Topic, msg.Value); err != nil {
			r.log.Warnf(ctx, "kafka relay forward failed topic=%s err=%v", msg.Topic, err)
		}
	}
}

// Close — закрывает reader (идемпотентно); Run после этого возвращается.
func (r *KafkaRelay) Close() (err error) {
	r.closeOnce.Do(func() {
		err = r.reader.Close()
	})
	return err
}
