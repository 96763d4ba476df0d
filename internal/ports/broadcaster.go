package ports

import "context"

// Broadcaster — публикация в топик всем текущим подписчикам, без подтверждения доставки.
type Broadcaster interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}
