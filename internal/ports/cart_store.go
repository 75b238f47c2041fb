package ports

import (
	"context"
	"time"

	"github.com/Gunvolt24/cart-service/internal/domain"
)

// CartStore - хранилище корзин. Мутации выполняются только внутри CartTx.
type CartStore interface {
	// Begin - открывает транзакцию.
	Begin(ctx context.Context) (CartTx, error)

	// FindByUser - корзина пользователя со строками; (nil, nil), если корзины нет.
	FindByUser(ctx context.Context, userID string) (*domain.Cart, error)

	// FindCartsIdleSince - корзины с LastModified строго раньше cutoff.
	FindCartsIdleSince(ctx context.Context, cutoff time.Time) ([]domain.Cart, error)
}

// CartTx - транзакция хранилища. Чтения корзины внутри берут блокировку строки.
// Commit/Rollback после завершения возвращают ошибку, Rollback после Commit безопасен.
type CartTx interface {
	FindByUser(ctx context.Context, userID string) (*domain.Cart, error)
	// CreateCart - создаёт корзину; при гонке возвращает уже созданную другим.
	CreateCart(ctx context.Context, userID string, now time.Time) (*domain.Cart, error)
	SaveCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, cartID int64) error

	FindItem(ctx context.Context, itemID string, cartID int64) (*domain.CartItem, error)
	ItemExists(ctx context.Context, itemID string, cartID int64) (bool, error)
	SaveItem(ctx context.Context, item *domain.CartItem) error
	DeleteItem(ctx context.Context, itemID string, cartID int64) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
