// Package broadcast — рассылка обновлений агрегатов живым подписчикам:
// локальный Hub и транспорты между экземплярами сервиса (Redis Pub/Sub, Kafka).
package broadcast

import (
	"context"
	"sync"

	"github.com/Gunvolt24/statshub/internal/ports"
	"github.com/Gunvolt24/statshub/pkg/metrics"
)

var _ ports.Broadcaster = (*Hub)(nil)

// DefaultSubscriberBuffer — сколько сообщений подписчик может не забирать, прежде чем начнёт их терять.
const DefaultSubscriberBuffer = 16

// Hub — рассылка по топикам подписчикам этого процесса.
// Publish никогда не блокирует: медленный подписчик пропускает обновление.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[chan []byte]struct{}
	total  int
	buffer int
	closed bool
}

// NewHub — buffer <= 0 — DefaultSubscriberBuffer.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Hub{topics: make(map[string]map[chan []byte]struct{}), buffer: buffer}
}

// Subscribe — канал обновлений топика и функция отписки (идемпотентна, закрывает канал).
// После Close хаба возвращается уже закрытый канал.
func (h *Hub) Subscribe(topic string) (<-chan []byte, func()) {
	ch := make(chan []byte, h.buffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[chan []byte]struct{})
		h.topics[topic] = subs
	}
	subs[ch] = struct{}{}
	h.total++
	metrics.HubSubscribers.Set(float64(h.total))

	var once sync.Once
	return ch, func() {
		once.Do(func() { h.unsubscribe(topic, ch) })
	}
}

func (h *Hub) unsubscribe(topic string, ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[topic]
	if !ok {
		return
	}
	if _, ok := subs[ch]; !ok {
		return
	}
	delete(subs, ch)
	if len(subs) == 0 {
		delete(h.topics, topic)
	}
	close(ch)
	h.total--
	metrics.HubSubscribers.Set(float64(h.total))
}

// Publish — неблокирующая отправка всем подписчикам топика. Ошибок не бывает.
func (h *Hub) Publish(_ context.Context, topic string, payload []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.topics[topic] {
		select {
		case ch <- payload:
		default:
			metrics.HubDropped.Inc()
		}
	}
	return nil
}

// Subscribers — число подписчиков топика.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Close — закрывает каналы всех подписчиков (SSE-обработчики завершаются). Идемпотентен.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for topic, subs := range h.topics {
		for ch := range subs {
			close(ch)
		}
		delete(h.topics, topic)
	}
	h.total = 0
	metrics.HubSubscribers.Set(0)
	return nil
}
