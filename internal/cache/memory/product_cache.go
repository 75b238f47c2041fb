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

const productsCacheName = "products"

var _ ports.ProductCache = (*ProductCache)(nil)

// ProductCache - LRU-кэш товаров по SKU.
// Delete сдвигает поколение SKU: чтение каталога, начатое до обновления,
// не вернёт в кэш старую цену или остаток.
type ProductCache struct {
	mu    sync.Mutex
	lru   *lruTTL[*domain.Product]
	gens  *generations
	group singleflight.Group
}

func NewProductCache(capacity int, ttl time.Duration) *ProductCache {
	return &ProductCache{
		lru:  newLRUTTL(productsCacheName, capacity, ttl, cloneProduct),
		gens: newGenerations(),
	}
}

func (c *ProductCache) GetOrLoad(ctx context.Context, sku string, loader ports.ProductLoader) (*domain.Product, error) {
	c.mu.Lock()
	if p, ok := c.lru.get(sku); ok {
		c.mu.Unlock()
		return p, nil
	}
	gen := c.gens.acquire(sku)
	c.mu.Unlock()
	defer c.release(sku)

	res, err, _ := c.group.Do(sku+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		loadCtx, cancel := detach(ctx)
		defer cancel()

		p, err := loader(loadCtx)
		if err != nil || p == nil {
			return p, err
		}
		c.storeIfCurrent(sku, gen, p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	p, _ := res.(*domain.Product)
	return cloneProduct(p), nil
}

func (c *ProductCache) Delete(_ context.Context, sku string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gens.bump(sku)
	if c.lru.remove(sku) {
		metrics.CacheOps.WithLabelValues(productsCacheName, "invalidated").Inc()
	}
}

func (c *ProductCache) storeIfCurrent(sku string, gen uint64, p *domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.gens.current(sku, gen) {
		metrics.CacheOps.WithLabelValues(productsCacheName, "stale").Inc()
		return
	}
	c.lru.set(sku, p)
}

func (c *ProductCache) release(sku string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens.release(sku)
}

func cloneProduct(p *domain.Product) *domain.Product {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
