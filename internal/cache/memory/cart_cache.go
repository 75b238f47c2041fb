package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/Gunvolt24/cart-service/internal/domain"
	"github.com/Gunvolt24/cart-service/internal/ports"
	"github.com/Gunvolt24/cart-service/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

const cartsCacheName = "carts"

var _ ports.CartCache = (*CartCache)(nil)

// CartCache - in-memory кэш представлений корзин.
// Invalidate сдвигает поколение пользователя, и загрузка, начатая
// в старом поколении, в кэш уже не попадёт.
type CartCache struct {
	mu    sync.Mutex
	lru   *lruTTL[*domain.CartView]
	gens  *generations
	group singleflight.Group
}

func NewCartCache(capacity int, ttl time.Duration) *CartCache {
	return &CartCache{
		lru:  newLRUTTL(cartsCacheName, capacity, ttl, (*domain.CartView).Clone),
		gens: newGenerations(),
	}
}

// GetOrLoad - попадание или одна загрузка на (пользователь, поколение).
// Загрузка не зависит от отмены контекста того, кто её начал:
// остальные ждущие получают результат, а не чужой context.Canceled.
func (c *CartCache) GetOrLoad(ctx context.Context, userID string, loader ports.CartLoader) (*domain.CartView, error) {
	c.mu.Lock()
	if v, ok := c.lru.get(userID); ok {
		c.mu.Unlock()
		return v, nil
	}
	gen := c.gens.acquire(userID)
	c.mu.Unlock()
	defer c.release(userID)

	key := userID + "#" + strconv.FormatUint(gen, 10)
	res, err, _ := c.group.Do(key, func() (any, error) {
		loadCtx, cancel := detach(ctx)
		defer cancel()

		view, err := loader(loadCtx)
		if err != nil {
			return nil, err
		}
		c.storeIfCurrent(userID, gen, view)
		return view, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*domain.CartView).Clone(), nil
}

func (c *CartCache) Invalidate(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gens.bump(userID)
	if c.lru.remove(userID) {
		metrics.CacheOps.WithLabelValues(cartsCacheName, "invalidated").Inc()
	}
	return nil
}

func (c *CartCache) storeIfCurrent(userID string, gen uint64, view *domain.CartView) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.gens.current(userID, gen) {
		metrics.CacheOps.WithLabelValues(cartsCacheName, "stale").Inc()
		return
	}
	c.lru.set(userID, view)
}

func (c *CartCache) release(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens.release(userID)
}

// Len - текущее число записей.
func (c *CartCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.len()
}
