package memory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Gunvolt24/cart-service/internal/domain"
	"github.com/shopspring/decimal"
)

func productWith(price int64) *domain.Product {
	return &domain.Product{SKU: "sku1", Name: "Laptop", Price: decimal.NewFromInt(price), Quantity: 3}
}

func TestProductCache_LoadsOnceThenDelete(t *testing.T) {
	c := NewProductCache(4, time.Minute)
	ctx := context.Background()

	var calls int32
	loader := func(context.Context) (*domain.Product, error) {
		atomic.AddInt32(&calls, 1)
		return productWith(100), nil
	}

	got, err := c.GetOrLoad(ctx, "sku1", loader)
	if err != nil || got.Name != "Laptop" {
		t.Fatalf("unexpected result: %+v %v", got, err)
	}
	got.Name = "changed"
	if again, _ := c.GetOrLoad(ctx, "sku1", loader); again.Name != "Laptop" {
		t.Fatalf("cache must return copies")
	}
	if calls != 1 {
		t.Fatalf("loader calls: want 1, got %d", calls)
	}

	c.Delete(ctx, "sku1")
	if _, err := c.GetOrLoad(ctx, "sku1", loader); err != nil || calls != 2 {
		t.Fatalf("expected reload after delete, calls=%d err=%v", calls, err)
	}
}

func TestProductCache_AbsentAndErrorsNotCached(t *testing.T) {
	c := NewProductCache(4, time.Minute)
	ctx := context.Background()

	p, err := c.GetOrLoad(ctx, "nope", func(context.Context) (*domain.Product, error) { return nil, nil })
	if err != nil || p != nil {
		t.Fatalf("want (nil, nil), got %+v %v", p, err)
	}
	boom := errors.New("db down")
	if _, err := c.GetOrLoad(ctx, "sku1", func(context.Context) (*domain.Product, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("want loader error, got %v", err)
	}
	if c.lru.len() != 0 {
		t.Fatalf("absent products and errors must not be cached")
	}
}

// Чтение, начатое до Delete, возвращается вызывающему, но не кэшируется.
func TestProductCache_LoadBeforeDeleteIsNotStored(t *testing.T) {
	c := NewProductCache(4, time.Minute)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		p, err := c.GetOrLoad(ctx, "sku1", func(context.Context) (*domain.Product, error) {
			close(started)
			<-release
			return productWith(100), nil
		})
		if err != nil || !p.Price.Equal(decimal.NewFromInt(100)) {
			t.Errorf("old reader result: %+v %v", p, err)
		}
	}()

	<-started
	c.Delete(ctx, "sku1")
	close(release)
	<-done

	p, err := c.GetOrLoad(ctx, "sku1", func(context.Context) (*domain.Product, error) { return productWith(80), nil })
	if err != nil || !p.Price.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected fresh price 80 after delete, got %+v %v", p, err)
	}
	if c.gens.len() != 0 {
		t.Fatalf("generations must be dropped when no reads are in flight, got %d", c.gens.len())
	}
}
