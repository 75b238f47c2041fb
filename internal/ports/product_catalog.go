package ports

import (
	"context"

	"github.com/Gunvolt24/cart-service/internal/domain"
)

// ProductCatalog - чтение каталога. GetProduct возвращает (nil, nil), если товара нет.
type ProductCatalog interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, sku string) (*domain.Product, error)
}

// ProductWriter - изменение каталога (импорт, обновления из Kafka).
type ProductWriter interface {
	UpsertProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, sku string) error
}

// ProductReader - сервис чтения каталога для транспортного слоя.
type ProductReader interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, sku string) (*domain.Product, error)
}

// ProductLoader - чтение товара из каталога при промахе кэша; (nil, nil) - товара нет.
type ProductLoader func(ctx context.Context) (*domain.Product, error)

// ProductCache - кэш товаров по SKU.
// Товар, загруженный до Delete, не должен попасть в кэш после него.
type ProductCache interface {
	// GetOrLoad - попадание или вызов loader; отсутствие товара и ошибки не кэшируются.
	GetOrLoad(ctx context.Context, sku string, loader ProductLoader) (*domain.Product, error)
	Delete(ctx context.Context, sku string)
}
