package memory

import (
	"container/list"
	"time"

	"github.com/Gunvolt24/cart-service/pkg/metrics"
)

type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

// lruTTL - LRU с TTL. Не потокобезопасен: блокировку держит владелец.
type lruTTL[V any] struct {
	name     string // метка cache в метриках
	capacity int
	ttl      time.Duration
	clone    func(V) V
	now      func() time.Time

	ll    *list.List
	index map[string]*list.Element
}

func newLRUTTL[V any](name string, capacity int, ttl time.Duration, clone func(V) V) *lruTTL[V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &lruTTL[V]{
		name:     name,
		capacity: capacity,
		ttl:      ttl,
		clone:    clone,
		now:      time.Now,
		ll:       list.New(),
		index:    make(map[string]*list.Element),
	}
}

func (c *lruTTL[V]) get(key string) (V, bool) {
	var zero V
	now := c.now()

	elem, ok := c.index[key]
	if !ok {
		metrics.CacheOps.WithLabelValues(c.name, "miss").Inc()
		return zero, false
	}
	ent := elem.Value.(*entry[V])
	if c.isExpired(ent, now) {
		metrics.CacheOps.WithLabelValues(c.name, "expired").Inc()
		c.removeElement(elem)
		return zero, false
	}
	c.ll.MoveToFront(elem)

	metrics.CacheOps.WithLabelValues(c.name, "hit").Inc()
	return c.clone(ent.value), true
}

func (c *lruTTL[V]) set(key string, value V) {
	now := c.now()

	if elem, ok := c.index[key]; ok {
		ent := elem.Value.(*entry[V])
		ent.value = c.clone(value)
		ent.expiresAt = c.expiryFrom(now)
		c.ll.MoveToFront(elem)
		return
	}

	c.pruneExpiredFromBack(now)

	elem := c.ll.PushFront(&entry[V]{
		key:       key,
		value:     c.clone(value),
		expiresAt: c.expiryFrom(now),
	})
	c.index[key] = elem
	metrics.CacheSize.WithLabelValues(c.name).Set(float64(len(c.index)))

	if c.ll.Len() > c.capacity {
		c.evictLRU()
	}
}

// remove - true, если ключ был в кэше.
func (c *lruTTL[V]) remove(key string) bool {
	elem, ok := c.index[key]
	if !ok {
		return false
	}
	c.removeElement(elem)
	return true
}

func (c *lruTTL[V]) len() int { return c.ll.Len() }

// ------вспомогательные функции------

func (c *lruTTL[V]) evictLRU() {
	if back := c.ll.Back(); back != nil {
		c.removeElement(back)
		metrics.CacheOps.WithLabelValues(c.name, "evicted").Inc()
	}
}

func (c *lruTTL[V]) removeElement(elem *list.Element) {
	ent := elem.Value.(*entry[V])
	delete(c.index, ent.key)
	c.ll.Remove(elem)
	metrics.CacheSize.WithLabelValues(c.name).Set(float64(len(c.index)))
}

func (c *lruTTL[V]) isExpired(ent *entry[V], now time.Time) bool {
	if c.ttl <= 0 {
		return false
	}
	return now.After(ent.expiresAt)
}

func (c *lruTTL[V]) expiryFrom(now time.Time) time.Time {
	if c.ttl <= 0 {
		return time.Time{}
	}
	return now.Add(c.ttl)
}

// pruneExpiredFromBack - удаляет истёкшие элементы с хвоста до первого актуального.
func (c *lruTTL[V]) pruneExpiredFromBack(now time.Time) {
	if c.ttl <= 0 {
		return
	}
	for {
		back := c.ll.Back()
		if back == nil {
			return
		}
		if !now.After(back.Value.(*entry[V]).expiresAt) {
			return
		}
		c.removeElement(back)
		metrics.CacheOps.WithLabelValues(c.name, "expired").Inc()
	}
}
