package kafka

import (
	"context"
	"math/rand"
	"time"
)

// backoff - экспоненциальная задержка с equal jitter: половина фиксирована, половина случайна.
// Не потокобезопасен: живёт внутри одного Run.
type backoff struct {
	initial time.Duration
	ceiling time.Duration
	cur     time.Duration
	rnd     *rand.Rand
}

func newBackoff(initial, ceiling time.Duration, rnd *rand.Rand) *backoff {
	return &backoff{initial: initial, ceiling: ceiling, cur: initial, rnd: rnd}
}

// next - очередная задержка; следующая будет вдвое больше, но не больше ceiling.
func (b *backoff) next() time.Duration {
	d := b.cur
	if b.cur < b.ceiling {
		b.cur *= 2
		if b.cur > b.ceiling {
			b.cur = b.ceiling
		}
	}
	return jitter(d, b.rnd)
}

func (b *backoff) reset() { b.cur = b.initial }

func jitter(d time.Duration, rnd *rand.Rand) time.Duration {
	if d <= 0 {
		return 0
	}
	half := d / 2
	return half + time.Duration(rnd.Int63n(int64(d-half)+1))
}

// sleepCtx - false, если контекст отменён раньше.
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
