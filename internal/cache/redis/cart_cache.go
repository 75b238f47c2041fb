// Package redis - кэш представлений корзин в Redis (cache-aside).
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Gunvolt24/cart-service/internal/domain"
	"github.com/Gunvolt24/cart-service/internal/ports"
	"github.com/Gunvolt24/cart-service/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	cacheName   = "carts"
	genTTL      = 24 * time.Hour
	loadTimeout = 30 * time.Second
)

var _ ports.CartCache = (*CartCache)(nil)

// CartCache - кэш корзин в Redis.
// Рядом с каждой записью живёт ключ поколения: Invalidate делает INCR+DEL,
// а запись значения идёт под WATCH поколения, поэтому устаревшая загрузка
// не перезаписывает инвалидацию.
// Ошибки Redis при чтении не ломают запрос: кэш считается промахом.
type CartCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    ports.Logger
	group  singleflight.Group
}

func NewCartCache(client *redis.Client, prefix string, ttl time.Duration, log ports.Logger) *CartCache {
	return &CartCache{client: client, prefix: prefix, ttl: ttl, log: log}
}

func (c *CartCache) dataKey(userID string) string { return c.prefix + "cart:" + userID }
func (c *CartCache) genKey(userID string) string  { return c.prefix + "cart:gen:" + userID }

func (c *CartCache) GetOrLoad(ctx context.Context, userID string, loader ports.CartLoader) (*domain.CartView, error) {
	vals, err := c.client.MGet(ctx, c.dataKey(userID), c.genKey(userID)).Result()
	if err != nil {
		c.log.Warnf(ctx, "redis cache read user=%s: %v", userID, err)
		return loader(ctx)
	}

	if raw, ok := vals[0].(string); ok {
		view, dErr := decodeView(userID, raw)
		if dErr == nil {
			metrics.CacheOps.WithLabelValues(cacheName, "hit").Inc()
			return view, nil
		}
		c.log.Warnf(ctx, "redis cache decode user=%s: %v", userID, dErr)
	}
	metrics.CacheOps.WithLabelValues(cacheName, "miss").Inc()

	gen, _ := vals[1].(string)
	if gen == "" {
		gen = "0"
	}

	// загрузка отвязана от отмены первого вызывающего: ждущие получают результат
	res, err, _ := c.group.Do(userID+"#"+gen, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		view, lErr := loader(loadCtx)
		if lErr != nil {
			return nil, lErr
		}
		if sErr := c.storeIfCurrent(loadCtx, userID, gen, view); sErr != nil {
			c.log.Warnf(ctx, "redis cache store user=%s: %v", userID, sErr)
		}
		return view, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*domain.CartView).Clone(), nil
}

func (c *CartCache) Invalidate(ctx context.Context, userID string) error {
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, c.genKey(userID))
		p.Expire(ctx, c.genKey(userID), genTTL)
		p.Del(ctx, c.dataKey(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate %s: %w", userID, err)
	}
	metrics.CacheOps.WithLabelValues(cacheName, "invalidated").Inc()
	return nil
}

// storeIfCurrent - SET только если поколение не сменилось с момента чтения.
func (c *CartCache) storeIfCurrent(ctx context.Context, userID, gen string, view *domain.CartView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("marshal view: %w", err)
	}

	genKey := c.genKey(userID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, gErr := tx.Get(ctx, genKey).Result()
		if errors.Is(gErr, redis.Nil) {
			cur = "0"
		} else if gErr != nil {
			return gErr
		}
		if cur != gen {
			return errStaleGeneration
		}
		_, pErr := tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, c.dataKey(userID), data, c.ttl)
			return nil
		})
		return pErr
	}, genKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		metrics.CacheOps.WithLabelValues(cacheName, "stale").Inc()
		return nil
	default:
		return err
	}
}

var errStaleGeneration = errors.New("cache generation changed")

func decodeView(userID, raw string) (*domain.CartView, error) {
	var v domain.CartView
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	v.UserID = userID
	if v.Items == nil {
		v.Items = []domain.CartLineView{}
	}
	return &v, nil
}

// Generation - текущее поколение пользователя (для диагностики и тестов).
func (c *CartCache) Generation(ctx context.Context, userID string) (int64, error) {
	s, err := c.client.Get(ctx, c.genKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(s, 10, 64)
}
