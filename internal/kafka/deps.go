package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// reader — то, что консьюмеру нужно от kafka.Reader (подменяется моком в тестах).
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Config() kafka.ReaderConfig
	Close() error
}

// batchSyncer — прикладной слой: разбор пачки заказов из сообщения и её синхронизация.
type batchSyncer interface {
	SyncFromMessage(ctx context.Context, raw []byte) (int, error)
}
