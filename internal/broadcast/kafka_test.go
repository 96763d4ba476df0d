package broadcast

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

type quietLogger struct{}

func (quietLogger) Infof(context.Context, string, ...any)  {}
func (quietLogger) Warnf(context.Context, string, ...any)  {}
func (quietLogger) Errorf(context.Context, string, ...any) {}

func TestRelayGroupID_UniquePerInstance(t *testing.T) {
	a, b := relayGroupID(), relayGroupID()
	if a == b {
		t.Fatalf("group ids must differ between instances: %s", a)
	}
	for _, id := range []string{a, b} {
		if !strings.HasPrefix(id, relayGroupPrefix) {
			t.Fatalf("unexpected group id %q", id)
		}
	}
}

func TestRelayReaderConfig(t *testing.T) {
	rc := relayReaderConfig(KafkaRelayConfig{Brokers: []string{"k1:9092", "k2:9092"}, Topic: "revenue.update"}, "g-1")
	if rc.Topic != "revenue.update" || rc.GroupID != "g-1" || len(rc.Brokers) != 2 {
		t.Fatalf("unexpected reader config: %+v", rc)
	}
	// новая группа читает только свежие сообщения
	if rc.StartOffset != kafka.LastOffset {
		t.Fatalf("want LastOffset, got %d", rc.StartOffset)
	}
}

func TestKafkaRelay_StopsOnCancel(t *testing.T) {
	hub := NewHub(1)
	relay := NewKafkaRelay(KafkaRelayConfig{Brokers: []string{"127.0.0.1:1"}, Topic: "revenue.update"}, hub, quietLogger{})
	if relay.pause != relayRetryPause {
		t.Fatalf("default retry pause: %s", relay.pause)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("cancelled relay must stop cleanly, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("relay did not stop")
	}
	_ = relay.Close()
	if err := relay.Close(); err != nil {
		t.Fatalf("second Close must be a no-op: %v", err)
	}
}
