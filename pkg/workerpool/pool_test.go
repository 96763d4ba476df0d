package workerpool_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Gunvolt24/statshub/pkg/workerpool"
)

func TestPool_RunsAllAcceptedTasks(t *testing.T) {
	p := workerpool.New(4, 100)

	var n atomic.Int32
	for i := 0; i < 50; i++ {
		if !p.Dispatch(context.Background(), func(context.Context) { n.Add(1) }) {
			t.Fatalf("task %d rejected", i)
		}
	}
	_ = p.Close()

	if got := n.Load(); got != 50 {
		t.Fatalf("want 50 tasks executed, got %d", got)
	}
}

func TestPool_Dispatch_FullQueueDoesNotBlock(t *testing.T) {
	p := workerpool.New(1, 1)

	release := make(chan struct{})
	started := make(chan struct{})
	if !p.Dispatch(context.Background(), func(context.Context) {
		close(started)
		<-release
	}) {
		t.Fatal("first task rejected")
	}
	<-started

	// единственное место в очереди
	if !p.Dispatch(context.Background(), func(context.Context) {}) {
		t.Fatal("queued task rejected")
	}

	done := make(chan bool, 1)
	go func() { done <- p.Dispatch(context.Background(), func(context.Context) {}) }()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected rejection on full queue")
		}
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on full queue")
	}

	close(release)
	_ = p.Close()
}

func TestPool_DispatchAfterClose(t *testing.T) {
	p := workerpool.New(1, 1)
	_ = p.Close()
	_ = p.Close() // повторный Close безопасен

	if p.Dispatch(context.Background(), func(context.Context) {}) {
		t.Fatal("closed pool must reject tasks")
	}
}

func TestPool_NilTask(t *testing.T) {
	p := workerpool.New(1, 1)
	defer p.Close()

	if p.Dispatch(context.Background(), nil) {
		t.Fatal("nil task must be rejected")
	}
}

func TestPool_PanicDoesNotKillWorker(t *testing.T) {
	var (
		mu        sync.Mutex
		recovered []any
	)
	p := workerpool.New(1, 4, workerpool.WithPanicHandler(func(_ context.Context, r any) {
		mu.Lock()
		recovered = append(recovered, r)
		mu.Unlock()
	}))

	var ran atomic.Bool
	p.Dispatch(context.Background(), func(context.Context) { panic("boom") })
	p.Dispatch(context.Background(), func(context.Context) { ran.Store(true) })
	_ = p.Close()

	if !ran.Load() {
		t.Fatal("task after panic was not executed")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(recovered) != 1 || recovered[0] != "boom" {
		t.Fatalf("unexpected recovered values: %v", recovered)
	}
}

func TestPool_TaskReceivesContext(t *testing.T) {
	p := workerpool.New(1, 1)

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	got := make(chan any, 1)
	p.Dispatch(ctx, func(ctx context.Context) { got <- ctx.Value(key{}) })
	_ = p.Close()

	if v := <-got; v != "v" {
		t.Fatalf("want ctx value v, got %v", v)
	}
}

func TestPool_Shutdown_Timeout(t *testing.T) {
	p := workerpool.New(1, 1)
	release := make(chan struct{})
	defer close(release)
	p.Dispatch(context.Background(), func(context.Context) { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := p.Shutdown(ctx); err == nil {
		t.Fatal("expected shutdown timeout")
	}
}
