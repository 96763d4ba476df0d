// Package workerpool — фиксированный набор воркеров над ограниченной очередью.
package workerpool

import (
	"context"
	"fmt"
	"sync"
)

// Task — фоновая задача; ctx передаётся тот, что указан при постановке.
type Task func(ctx context.Context)

type job struct {
	ctx  context.Context
	task Task
}

// PanicHandler — вызывается при панике внутри задачи.
type PanicHandler func(ctx context.Context, recovered any)

// Pool — пул воркеров. Постановка задачи никогда не блокирует вызывающего.
type Pool struct {
	jobs    chan job
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	onPanic PanicHandler
}

// Option — настройка пула.
type Option func(*Pool)

// WithPanicHandler — обработчик паник в задачах (по умолчанию паника проглатывается).
func WithPanicHandler(h PanicHandler) Option {
	return func(p *Pool) { p.onPanic = h }
}

// New — запускает workers воркеров с очередью на queueSize задач.
func New(workers, queueSize int, opts ...Option) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	p := &Pool{jobs: make(chan job, queueSize)}
	for _, opt := range opts {
		opt(p)
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		p.run(j)
	}
}

func (p *Pool) run(j job) {
	defer func() {
		if r := recover(); r != nil && p.onPanic != nil {
			p.onPanic(j.ctx, r)
		}
	}()
	j.task(j.ctx)
}

// Dispatch — ставит задачу в очередь. false, если очередь заполнена или пул закрыт.
func (p *Pool) Dispatch(ctx context.Context, task func(ctx context.Context)) bool {
	if task == nil {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.jobs <- job{ctx: ctx, task: task}:
		return true
	default:
		return false
	}
}

// Close — прекращает приём, дожидается выполнения уже принятых задач.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

// Shutdown — Close с ограничением по времени ожидания.
func (p *Pool) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		_ = p.Close()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("workerpool shutdown: %w", ctx.Err())
	}
}
