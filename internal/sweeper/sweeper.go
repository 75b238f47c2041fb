package sweeper

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Gunvolt24/cart-service/internal/domain"
	"github.com/Gunvolt24/cart-service/internal/ports"
	"github.com/Gunvolt24/cart-service/pkg/metrics"
)

var _ ports.Worker = (*Sweeper)(nil)

const (
	defaultInterval = 5 * time.Minute
	defaultTTL      = 24 * time.Hour
)

// Sweeper - периодически удаляет корзины, которые не менялись дольше TTL.
type Sweeper struct {
	store    ports.CartStore
	carts    ports.IdleCartClearer
	log      ports.Logger
	interval time.Duration
	ttl      time.Duration
	now      func() time.Time

	done      chan struct{}
	closeOnce sync.Once
}

type Option func(*Sweeper)

// WithClock - подмена часов (тесты).
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) { s.now = now }
}

// New - interval/ttl <= 0 заменяются значениями по умолчанию (5m / 24h).
func New(
	store ports.CartStore,
	carts ports.IdleCartClearer,
	log ports.Logger,
	interval, ttl time.Duration,
	opts ...Option,
) *Sweeper {
	if interval <= 0 {
		interval = defaultInterval
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}

	s := &Sweeper{
		store:    store,
		carts:    carts,
		log:      log,
		interval: interval,
		ttl:      ttl,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SweepOnce - один проход: cutoff = now - ttl, ClearIdleCart для каждой найденной корзины.
// Корзина, которую пользователь изменил между выборкой и очисткой, не удаляется.
// Ошибки по отдельным корзинам логируются и не прерывают проход;
// err возвращается только если не удалось получить список корзин.
func (s *Sweeper) SweepOnce(ctx context.Context) (cleared int, err error) {
	metrics.SweeperRuns.Inc()
	cutoff := s.now().Add(-s.ttl)

	carts, err := s.store.FindCartsIdleSince(ctx, cutoff)
	if err != nil {
		metrics.SweeperFailed.Inc()
		s.log.Errorf(ctx, "sweeper: list idle carts failed cutoff=%s err=%v", cutoff.Format(time.RFC3339), err)
		return 0, err
	}

	for i := range carts {
		if ctx.Err() != nil {
			return cleared, ctx.Err()
		}

		userID := carts[i].UserID
		switch ok, clearErr := s.carts.ClearIdleCart(ctx, userID, cutoff); {
		case clearErr == nil && ok:
			cleared++
			metrics.SweeperCleared.Inc()
		case clearErr == nil:
			s.log.Infof(ctx, "sweeper: cart touched after scan, kept user=%s", userID)
		case errors.Is(clearErr, domain.ErrCartNotFound):
			// корзину уже удалили между выборкой и очисткой
			s.log.Infof(ctx, "sweeper: cart already gone user=%s", userID)
		default:
			metrics.SweeperFailed.Inc()
			s.log.Warnf(ctx, "sweeper: clear failed user=%s err=%v", userID, clearErr)
		}
	}

	if len(carts) > 0 {
		s.log.Infof(ctx, "sweeper: cleared %d of %d idle carts", cleared, len(carts))
	}
	return cleared, nil
}

// Run - проход раз в interval до отмены контекста или Close.
func (s *Sweeper) Run(ctx context.Context) error {
	s.log.Infof(ctx, "sweeper started interval=%s ttl=%s", s.interval, s.ttl)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case <-ticker.C:
			_, _ = s.SweepOnce(ctx)
		}
	}
}

// Close - останавливает Run; повторный вызов безопасен.
func (s *Sweeper) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}
