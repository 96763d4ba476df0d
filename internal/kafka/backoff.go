package kafka

import (
	"context"
	"math/rand"
	"time"
)

// backoff — экспоненциальная пауза с equal-jitter: половина задержки фиксирована,
// вторая половина случайна, чтобы экземпляры не повторяли попытки синхронно.
type backoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
	rnd     *rand.Rand
}

func newBackoff(initial, maxDelay time.Duration, rnd *rand.Rand) *backoff {
	return &backoff{initial: initial, max: maxDelay, current: initial, rnd: rnd}
}

// Next — пауза для текущей попытки; следующая будет вдвое длиннее (не больше max).
func (b *backoff) Next() time.Duration {
	d := b.jitter(b.current)
	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}
	return d
}

// Reset — после успешного fetch начинаем с initial.
func (b *backoff) Reset() { b.current = b.initial }

func (b *backoff) jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	half := d / 2
	return half + time.Duration(b.rnd.Int63n(int64(d-half)+1))
}

// sleepCtx — ждёт d или отмены ctx; false, если ctx отменён.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
