// Package memory - хранилища в памяти процесса (backend "memory" и тесты).
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Gunvolt24/cart-service/internal/domain"
	"github.com/Gunvolt24/cart-service/internal/ports"
)

var (
	_ ports.CartStore = (*CartStore)(nil)
	_ ports.CartTx    = (*cartTx)(nil)
)

// ErrTxClosed - операция над завершённой транзакцией.
var ErrTxClosed = errors.New("memory: tx is closed")

type cartRecord struct {
	id           int64
	userID       string
	lastModified time.Time
	items        map[string]domain.CartItem
}

// CartStore - хранилище корзин в памяти.
// Транзакция держит общий мьютекс от Begin до Commit/Rollback,
// поэтому транзакции выполняются строго последовательно.
type CartStore struct {
	mu     sync.Mutex
	byUser map[string]*cartRecord
	nextID int64
}

func NewCartStore() *CartStore {
	return &CartStore{byUser: make(map[string]*cartRecord)}
}

func (s *CartStore) Begin(ctx context.Context) (ports.CartTx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	return &cartTx{store: s}, nil
}

func (s *CartStore) FindByUser(_ context.Context, userID string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(userID), nil
}

func (s *CartStore) FindCartsIdleSince(_ context.Context, cutoff time.Time) ([]domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var carts []domain.Cart
	for _, rec := range s.byUser {
		if rec.lastModified.Before(cutoff) {
			carts = append(carts, domain.Cart{ID: rec.id, UserID: rec.userID, LastModified: rec.lastModified})
		}
	}
	sort.Slice(carts, func(i, j int) bool { return carts[i].LastModified.Before(carts[j].LastModified) })
	return carts, nil
}

// snapshot - копия корзины со строками; вызывать под s.mu.
func (s *CartStore) snapshot(userID string) *domain.Cart {
	rec, ok := s.byUser[userID]
	if !ok {
		return nil
	}
	cart := &domain.Cart{ID: rec.id, UserID: rec.userID, LastModified: rec.lastModified}
	if len(rec.items) > 0 {
		cart.Items = make([]domain.CartItem, 0, len(rec.items))
		for _, it := range rec.items {
			cart.Items = append(cart.Items, it)
		}
		sort.Slice(cart.Items, func(i, j int) bool { return cart.Items[i].ItemID < cart.Items[j].ItemID })
	}
	return cart
}

func (s *CartStore) byID(cartID int64) *cartRecord {
	for _, rec := range s.byUser {
		if rec.id == cartID {
			return rec
		}
	}
	return nil
}

// cartTx - журнал отката и флаг завершения.
type cartTx struct {
	store *CartStore
	undo  []func()
	done  bool
}

func (t *cartTx) FindByUser(_ context.Context, userID string) (*domain.Cart, error) {
	if t.done {
		return nil, ErrTxClosed
	}
	return t.store.snapshot(userID), nil
}

func (t *cartTx) CreateCart(_ context.Context, userID string, now time.Time) (*domain.Cart, error) {
	if t.done {
		return nil, ErrTxClosed
	}
	if _, ok := t.store.byUser[userID]; !ok {
		t.store.nextID++
		t.store.byUser[userID] = &cartRecord{
			id:           t.store.nextID,
			userID:       userID,
			lastModified: now.UTC(),
			items:        make(map[string]domain.CartItem),
		}
		t.undo = append(t.undo, func() { delete(t.store.byUser, userID) })
	}
	return t.store.snapshot(userID), nil
}

func (t *cartTx) SaveCart(_ context.Context, cart *domain.Cart) error {
	if t.done {
		return ErrTxClosed
	}
	rec := t.store.byID(cart.ID)
	if rec == nil {
		return nil
	}
	prev := rec.lastModified
	rec.lastModified = cart.LastModified.UTC()
	t.undo = append(t.undo, func() { rec.lastModified = prev })
	return nil
}

func (t *cartTx) DeleteCart(_ context.Context, cartID int64) error {
	if t.done {
		return ErrTxClosed
	}
	rec := t.store.byID(cartID)
	if rec == nil {
		return nil
	}
	delete(t.store.byUser, rec.userID)
	t.undo = append(t.undo, func() { t.store.byUser[rec.userID] = rec })
	return nil
}

func (t *cartTx) FindItem(_ context.Context, itemID string, cartID int64) (*domain.CartItem, error) {
	if t.done {
		return nil, ErrTxClosed
	}
	rec := t.store.byID(cartID)
	if rec == nil {
		return nil, nil
	}
	it, ok := rec.items[itemID]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (t *cartTx) ItemExists(ctx context.Context, itemID string, cartID int64) (bool, error) {
	it, err := t.FindItem(ctx, itemID, cartID)
	return it != nil, err
}

func (t *cartTx) SaveItem(_ context.Context, item *domain.CartItem) error {
	if t.done {
		return ErrTxClosed
	}
	rec := t.store.byID(item.CartID)
	if rec == nil {
		return errors.New("memory: cart does not exist")
	}
	prev, had := rec.items[item.ItemID]
	rec.items[item.ItemID] = *item
	t.undo = append(t.undo, func() {
		if had {
			rec.items[item.ItemID] = prev
		} else {
			delete(rec.items, item.ItemID)
		}
	})
	return nil
}

func (t *cartTx) DeleteItem(_ context.Context, itemID string, cartID int64) error {
	if t.done {
		return ErrTxClosed
	}
	rec := t.store.byID(cartID)
	if rec == nil {
		return nil
	}
	prev, had := rec.items[itemID]
	if !had {
		return nil
	}
	delete(rec.items, itemID)
	t.undo = append(t.undo, func() { rec.items[itemID] = prev })
	return nil
}

func (t *cartTx) Commit(_ context.Context) error {
	if t.done {
		return ErrTxClosed
	}
	t.finish()
	return nil
}

// Rollback - откатывает журнал в обратном порядке; после Commit ничего не делает.
func (t *cartTx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.finish()
	return nil
}

func (t *cartTx) finish() {
	t.done = true
	t.undo = nil
	t.store.mu.Unlock()
}
