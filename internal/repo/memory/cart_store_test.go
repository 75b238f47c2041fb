package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gunvolt24/cart-service/internal/domain"
	"github.com/shopspring/decimal"
)

func TestCartStore_CommitPersists(t *testing.T) {
	s := NewCartStore()
	ctx := context.Background()
	now := time.Now()

	tx, _ := s.Begin(ctx)
	cart, err := tx.CreateCart(ctx, "john", now)
	if err != nil {
		t.Fatal(err)
	}
	_ = tx.SaveItem(ctx, &domain.CartItem{ItemID: "sku1", CartID: cart.ID, Quantity: 1, Price: decimal.NewFromInt(5)})
	if err := tx.Commit(ctx); err != nil {
		t.Fatal(err)
	}

	got, _ := s.FindByUser(ctx, "john")
	if got == nil || len(got.Items) != 1 || got.Items[0].Quantity != 1 {
		t.Fatalf("unexpected cart after commit: %+v", got)
	}
}

func TestCartStore_RollbackRestores(t *testing.T) {
	s := NewCartStore()
	ctx := context.Background()
	now := time.Now()

	tx, _ := s.Begin(ctx)
	cart, _ := tx.CreateCart(ctx, "john", now)
	_ = tx.SaveItem(ctx, &domain.CartItem{ItemID: "sku1", CartID: cart.ID, Quantity: 1})
	_ = tx.Commit(ctx)

	tx, _ = s.Begin(ctx)
	_ = tx.SaveItem(ctx, &domain.CartItem{ItemID: "sku1", CartID: cart.ID, Quantity: 5})
	_ = tx.SaveItem(ctx, &domain.CartItem{ItemID: "sku2", CartID: cart.ID, Quantity: 1})
	_ = tx.SaveCart(ctx, &domain.Cart{ID: cart.ID, LastModified: now.Add(time.Hour)})
	_ = tx.DeleteCart(ctx, cart.ID)
	_ = tx.Rollback(ctx)

	got, _ := s.FindByUser(ctx, "john")
	if got == nil || len(got.Items) != 1 || got.Items[0].Quantity != 1 {
		t.Fatalf("rollback did not restore state: %+v", got)
	}
	if !got.LastModified.Equal(now.UTC()) {
		t.Fatalf("last modified not restored: %v", got.LastModified)
	}
}

func TestCartStore_ClosedTx(t *testing.T) {
	s := NewCartStore()
	ctx := context.Background()

	tx, _ := s.Begin(ctx)
	_ = tx.Commit(ctx)

	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("rollback after commit must be a no-op, got %v", err)
	}
	if _, err := tx.FindByUser(ctx, "john"); !errors.Is(err, ErrTxClosed) {
		t.Fatalf("want ErrTxClosed, got %v", err)
	}
	if err := tx.Commit(ctx); !errors.Is(err, ErrTxClosed) {
		t.Fatalf("want ErrTxClosed on second commit, got %v", err)
	}
}

func TestCartStore_CreateCartIsIdempotent(t *testing.T) {
	s := NewCartStore()
	ctx := context.Background()

	tx, _ := s.Begin(ctx)
	a, _ := tx.CreateCart(ctx, "john", time.Now())
	b, _ := tx.CreateCart(ctx, "john", time.Now())
	_ = tx.Commit(ctx)

	if a.ID != b.ID {
		t.Fatalf("expected the same cart, got %d and %d", a.ID, b.ID)
	}
}

func TestCartStore_FindCartsIdleSince(t *testing.T) {
	s := NewCartStore()
	ctx := context.Background()
	now := time.Now()

	tx, _ := s.Begin(ctx)
	_, _ = tx.CreateCart(ctx, "old", now.Add(-25*time.Hour))
	_, _ = tx.CreateCart(ctx, "fresh", now.Add(-time.Hour))
	_ = tx.Commit(ctx)

	idle, err := s.FindCartsIdleSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(idle) != 1 || idle[0].UserID != "old" {
		t.Fatalf("unexpected idle carts: %+v", idle)
	}
}

func TestCartStore_BeginHonoursCancelledContext(t *testing.T) {
	s := NewCartStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Begin(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}
