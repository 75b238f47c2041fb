package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gunvolt24/cart-service/internal/domain"
	"github.com/Gunvolt24/cart-service/internal/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	_ ports.CartStore = (*CartStore)(nil)
	_ ports.CartTx    = (*cartTx)(nil)
)

// CartStore - хранилище корзин на Postgres (pgxpool).
type CartStore struct {
	pool *pgxpool.Pool
}

func NewCartStore(pool *pgxpool.Pool) *CartStore { return &CartStore{pool: pool} }

// Begin - транзакция READ COMMITTED; сериализация по пользователю даёт SELECT ... FOR UPDATE.
func (s *CartStore) Begin(ctx context.Context) (ports.CartTx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &cartTx{tx: tx}, nil
}

// FindByUser - чтение без блокировки. Если корзины нет, возвращает (nil, nil).
func (s *CartStore) FindByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	return findCart(ctx, s.pool, userID, false)
}

func (s *CartStore) FindCartsIdleSince(ctx context.Context, cutoff time.Time) ([]domain.Cart, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, last_modified
		FROM carts
		WHERE last_modified < $1
		ORDER BY last_modified
	`, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("select idle carts: %w", err)
	}
	defer rows.Close()

	var carts []domain.Cart
	for rows.Next() {
		var c domain.Cart
		if err := rows.Scan(&c.ID, &c.UserID, &c.LastModified); err != nil {
			return nil, fmt.Errorf("scan idle cart: %w", err)
		}
		carts = append(carts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("idle carts rows: %w", err)
	}
	return carts, nil
}

// cartTx - транзакция над pgx.Tx.
type cartTx struct {
	tx pgx.Tx
}

func (t *cartTx) FindByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	return findCart(ctx, t.tx, userID, true)
}

// CreateCart - ON CONFLICT DO NOTHING + чтение под блокировкой:
// при одновременном первом добавлении оба получат одну и ту же корзину.
func (t *cartTx) CreateCart(ctx context.Context, userID string, now time.Time) (*domain.Cart, error) {
	if _, err := t.tx.Exec(ctx, `
		INSERT INTO carts (user_id, last_modified) VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, now.UTC()); err != nil {
		return nil, fmt.Errorf("insert cart: %w", err)
	}

	cart, err := findCart(ctx, t.tx, userID, true)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, fmt.Errorf("cart for %q vanished after insert", userID)
	}
	return cart, nil
}

func (t *cartTx) SaveCart(ctx context.Context, cart *domain.Cart) error {
	if _, err := t.tx.Exec(ctx, `
		UPDATE carts SET last_modified = $2 WHERE id = $1
	`, cart.ID, cart.LastModified.UTC()); err != nil {
		return fmt.Errorf("update cart: %w", err)
	}
	return nil
}

// DeleteCart - строки удаляются каскадом.
func (t *cartTx) DeleteCart(ctx context.Context, cartID int64) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

func (t *cartTx) FindItem(ctx context.Context, itemID string, cartID int64) (*domain.CartItem, error) {
	var (
		item  domain.CartItem
		price string
	)
	err := t.tx.QueryRow(ctx, `
		SELECT item_id, cart_id, quantity, price::text
		FROM cart_items WHERE item_id = $1 AND cart_id = $2
	`, itemID, cartID).Scan(&item.ItemID, &item.CartID, &item.Quantity, &price)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select cart item: %w", err)
	}
	if item.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse item price: %w", err)
	}
	return &item, nil
}

func (t *cartTx) ItemExists(ctx context.Context, itemID string, cartID int64) (bool, error) {
	var exists bool
	if err := t.tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM cart_items WHERE item_id = $1 AND cart_id = $2)
	`, itemID, cartID).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists cart item: %w", err)
	}
	return exists, nil
}

func (t *cartTx) SaveItem(ctx context.Context, item *domain.CartItem) error {
	if _, err := t.tx.Exec(ctx, `
		INSERT INTO cart_items (item_id, cart_id, quantity, price)
		VALUES ($1, $2, $3, $4::numeric)
		ON CONFLICT (item_id, cart_id) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			price = EXCLUDED.price
	`, item.ItemID, item.CartID, item.Quantity, item.Price.String()); err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}
	return nil
}

func (t *cartTx) DeleteItem(ctx context.Context, itemID string, cartID int64) error {
	if _, err := t.tx.Exec(ctx, `
		DELETE FROM cart_items WHERE item_id = $1 AND cart_id = $2
	`, itemID, cartID); err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	return nil
}

func (t *cartTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback - после Commit вернёт ErrTxClosed; игнорируем.
func (t *cartTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// findCart - корзина со строками; forUpdate блокирует строку корзины до конца транзакции.
func findCart(ctx context.Context, q querier, userID string, forUpdate bool) (*domain.Cart, error) {
	query := `SELECT id, user_id, last_modified FROM carts WHERE user_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var cart domain.Cart
	err := q.QueryRow(ctx, query, userID).Scan(&cart.ID, &cart.UserID, &cart.LastModified)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select cart: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT item_id, cart_id, quantity, price::text
		FROM cart_items WHERE cart_id = $1
		ORDER BY item_id
	`, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("select cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item  domain.CartItem
			price string
		)
		if err := rows.Scan(&item.ItemID, &item.CartID, &item.Quantity, &price); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse item price: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cart items rows: %w", err)
	}
	return &cart, nil
}
