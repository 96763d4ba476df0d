// Package scheduler — периодические фоновые задачи сервиса.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Gunvolt24/statshub/internal/ports"
	"github.com/go-co-op/gocron"
)

var _ ports.Runner = (*CacheRefresher)(nil)

// DefaultRefreshCron — пересчёт агрегатов каждые пять минут.
const DefaultRefreshCron = "*/5 * * * *"

// Warmer — пересчёт агрегатов с записью в кэш.
type Warmer interface {
	WarmUp(ctx context.Context) error
}

// CacheRefresher — по расписанию cron прогревает кэш агрегатов,
// чтобы читатели не упирались в пересчёт после истечения TTL.
type CacheRefresher struct {
	warmer  Warmer
	log     ports.Logger
	spec    string
	timeout time.Duration

	mu        sync.Mutex
	scheduler *gocron.Scheduler
}

// NewCacheRefresher — пустой spec отключает обновление; timeout ограничивает один прогон.
func NewCacheRefresher(warmer Warmer, log ports.Logger, spec string, timeout time.Duration) *CacheRefresher {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &CacheRefresher{warmer: warmer, log: log, spec: spec, timeout: timeout}
}

// Run — запускает планировщик и блокирует до отмены ctx.
func (r *CacheRefresher) Run(ctx context.Context) error {
	if r.spec == "" {
		r.log.Infof(ctx, "cache refresher disabled")
		return nil
	}

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	if _, err := s.Cron(r.spec).Do(r.Refresh, ctx); err != nil {
		return fmt.Errorf("schedule cache refresh %q: %w", r.spec, err)
	}

	r.mu.Lock()
	r.scheduler = s
	r.mu.Unlock()

	s.StartAsync()
	r.log.Infof(ctx, "cache refresher started cron=%q", r.spec)

	<-ctx.Done()
	r.stop()
	r.log.Infof(ctx, "cache refresher stopped")
	return nil
}

// Refresh — один прогон прогрева; ошибка логируется, следующий прогон по расписанию.
func (r *CacheRefresher) Refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.warmer.WarmUp(ctx); err != nil {
		r.log.Warnf(ctx, "scheduled cache refresh failed err=%v", err)
	}
}

// Close — останавливает планировщик (идемпотентно).
func (r *CacheRefresher) Close() error {
	r.stop()
	return nil
}

func (r *CacheRefresher) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.scheduler != nil && r.scheduler.IsRunning() {
		r.scheduler.Stop()
	}
}
