package broadcast

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Gunvolt24/statshub/internal/ports"
	"github.com/redis/go-redis/v9"
)

var (
	_ ports.Broadcaster = (*RedisPublisher)(nil)
	_ ports.Runner      = (*RedisRelay)(nil)
)

// RedisPublisher — публикация через Redis Pub/Sub: сообщение получат все экземпляры сервиса.
type RedisPublisher struct {
	client redis.Cmdable
}

func NewRedisPublisher(client redis.Cmdable) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Publish — PUBLISH topic payload; отсутствие подписчиков ошибкой не считается.
func (p *RedisPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := p.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", topic, err)
	}
	return nil
}

// RedisRelay — подписка на топик Redis и пересылка сообщений в локальный хаб.
type RedisRelay struct {
	client redis.UniversalClient
	topic  string
	sink   ports.Broadcaster
	log    ports.Logger

	mu     sync.Mutex
	pubsub *redis.PubSub
	closed bool
}

func NewRedisRelay(client redis.UniversalClient, topic string, sink ports.Broadcaster, log ports.Logger) *RedisRelay {
	return &RedisRelay{client: client, topic: topic, sink: sink, log: log}
}

// Run — блокирует до отмены ctx или Close. Ошибка только если подписка не удалась.
func (r *RedisRelay) Run(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, r.topic)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		_ = pubsub.Close()
		return nil
	}
	r.pubsub = pubsub
	r.mu.Unlock()
	defer r.Close()

	// ждём подтверждения подписки, иначе первые сообщения могут потеряться
	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("redis subscribe %s: %w", r.topic, err)
	}
	r.log.Infof(ctx, "redis relay subscribed topic=%s", r.topic)

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			r.log.Infof(ctx, "redis relay stopped topic=%s", r.topic)
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if err := r.sink.Publish(ctx, msg.Channel, []byte(msg.Payload)); err != nil {
				r.log.Warnf(ctx, "redis relay forward failed topic=%s err=%v", msg.Channel, err)
			}
		}
	}
}

// Close — закрывает подписку; Run после этого возвращается.
func (r *RedisRelay) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if r.pubsub == nil {
		return nil
	}
	if err := r.pubsub.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}
