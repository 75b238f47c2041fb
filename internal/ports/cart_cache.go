package ports

import (
	"context"

	"github.com/Gunvolt24/cart-service/internal/domain"
)

// CartLoader - загрузка строк корзины (SKU и количество) при промахе кэша.
type CartLoader func(ctx context.Context) (*domain.CartView, error)

// CartCache - cache-aside кэш строк корзин по пользователю; цены в нём не хранятся.
// Требования к реализации: потокобезопасность; возврат копий;
// значение, загруженное до Invalidate, не должно попасть в кэш после него.
type CartCache interface {
	// GetOrLoad - попадание или вызов loader; ошибка loader возвращается как есть и не кэшируется.
	GetOrLoad(ctx context.Context, userID string, loader CartLoader) (*domain.CartView, error)

	// Invalidate - удаляет запись пользователя.
	Invalidate(ctx context.Context, userID string) error
}
