package kafka_test

import (
	"slices"
	"testing"
	"time"

	statskafka "github.com/Gunvolt24/statshub/internal/kafka"
	kafkago "github.com/segmentio/kafka-go"
)

func TestConsumerConfig_ReaderConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		startOffset string
		wantOffset  int64
	}{
		{"first lower", "first", kafkago.FirstOffset},
		{"first upper", "FIRST", kafkago.FirstOffset},
		{"first spaced", " FiRsT \n", kafkago.FirstOffset},
		{"empty -> last", "", kafkago.LastOffset},
		{"explicit last", "last", kafkago.LastOffset},
		{"unknown -> last", "earliest", kafkago.LastOffset},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := statskafka.ConsumerConfig{
				Brokers:     []string{"k1:9092", "k2:9092"},
				Topic:       "orders.sync",
				GroupID:     "statshub",
				StartOffset: tt.startOffset,
				MinBytes:    1,
				MaxBytes:    10 << 20,
				MaxWait:     500 * time.Millisecond,
			}

			rc := cfg.ReaderConfig()

			if rc.StartOffset != tt.wantOffset {
				t.Fatalf("StartOffset: want %d, got %d", tt.wantOffset, rc.StartOffset)
			}
			if !slices.Equal(rc.Brokers, cfg.Brokers) {
				t.Fatalf("Brokers: want %v, got %v", cfg.Brokers, rc.Brokers)
			}
			if rc.Topic != cfg.Topic || rc.GroupID != cfg.GroupID {
				t.Fatalf("Topic/GroupID not propagated: %+v", rc)
			}
			if rc.MinBytes != 1 || rc.MaxBytes != 10<<20 || rc.MaxWait != 500*time.Millisecond {
				t.Fatalf("fetch limits not propagated: %+v", rc)
			}
			if rc.CommitInterval != 0 {
				t.Fatalf("CommitInterval: want 0 (manual commit), got %v", rc.CommitInterval)
			}
		})
	}
}
