package telemetry

import (
	"context"
	"testing"
)

func TestSetupTracing_DisabledIsNoop(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown returned %v", err)
	}
}

func TestClampRatio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.25, 0.25},
		{1, 1},
		{3, 1},
	}
	for _, tt := range tests {
		if got := clampRatio(tt.in); got != tt.want {
			t.Fatalf("clampRatio(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTracer_StartsSpanWithoutProvider(t *testing.T) {
	_, span := Tracer().Start(context.Background(), "op")
	defer span.End()
	if span == nil {
		t.Fatalf("span must not be nil")
	}
}
