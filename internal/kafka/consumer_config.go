package kafka

import (
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// ConsumerConfig — параметры консьюмера пачек заказов.
type ConsumerConfig struct {
	Brokers     []string
	Topic       string
	GroupID     string
	StartOffset string // first | last (по умолчанию last)

	MinBytes int
	MaxBytes int
	MaxWait  time.Duration

	ProcessTimeout time.Duration // предел на синхронизацию одного сообщения
	RetryInitial   time.Duration // первая пауза после ошибки fetch
	RetryMax       time.Duration // потолок экспоненциальной паузы
}

const (
	defaultProcessTimeout = 10 * time.Second
	defaultRetryInitial   = time.Second
	defaultRetryMax       = 30 * time.Second
)

// ReaderConfig — kafka.ReaderConfig с ручным коммитом оффсетов.
func (c *ConsumerConfig) ReaderConfig() kafka.ReaderConfig {
	rc := kafka.ReaderConfig{
		Brokers:        c.Brokers,
		GroupID:        c.GroupID,
		Topic:          c.Topic,
		MinBytes:       c.MinBytes,
		MaxBytes:       c.MaxBytes,
		MaxWait:        c.MaxWait,
		CommitInterval: 0,
		StartOffset:    kafka.LastOffset,
	}
	if strings.EqualFold(strings.TrimSpace(c.StartOffset), "first") {
		rc.StartOffset = kafka.FirstOffset
	}
	return rc
}

func (c *ConsumerConfig) processTimeout() time.Duration {
	return positiveOr(c.ProcessTimeout, defaultProcessTimeout)
}

func (c *ConsumerConfig) retryBounds() (initial, maxDelay time.Duration) {
	initial = positiveOr(c.RetryInitial, defaultRetryInitial)
	maxDelay = positiveOr(c.RetryMax, defaultRetryMax)
	if maxDelay < initial {
		maxDelay = initial
	}
	return initial, maxDelay
}

func positiveOr(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
