package ports

import (
	"context"
	"time"

	"github.com/Gunvolt24/cart-service/internal/domain"
)

// CartService - операции над корзиной пользователя.
type CartService interface {
	AddItemToCart(ctx context.Context, userID, itemID string) error
	GetCart(ctx context.Context, userID string) (*domain.CartView, error)
	RemoveItemFromCart(ctx context.Context, userID, itemID string) error
	ClearCart(ctx context.Context, userID string) error
}

// IdleCartClearer - удаление корзины, только если она всё ещё не менялась с cutoff.
// cleared=false без ошибки: корзину успели изменить после выборки.
type IdleCartClearer interface {
	ClearIdleCart(ctx context.Context, userID string, cutoff time.Time) (cleared bool, err error)
}
