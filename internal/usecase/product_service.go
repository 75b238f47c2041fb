package usecase

import (
	"context"
	"fmt"

	"github.com/Gunvolt24/cart-service/internal/domain"
	"github.com/Gunvolt24/cart-service/internal/ports"
)

var (
	_ ports.ProductCatalog = (*ProductService)(nil)
	_ ports.ProductReader  = (*ProductService)(nil)
)

// ProductService - чтение каталога с кэшем по SKU.
type ProductService struct {
	catalog ports.ProductCatalog
	cache   ports.ProductCache
	log     ports.Logger
}

func NewProductService(catalog ports.ProductCatalog, cache ports.ProductCache, log ports.Logger) *ProductService {
	return &ProductService{catalog: catalog, cache: cache, log: log}
}

func (s *ProductService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		s.log.Errorf(ctx, "catalog.ListProducts failed err=%v", err)
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// GetProduct - из кэша или каталога; отсутствие товара не кэшируется.
func (s *ProductService) GetProduct(ctx context.Context, sku string) (*domain.Product, error) {
	return s.cache.GetOrLoad(ctx, sku, func(ctx context.Context) (*domain.Product, error) {
		p, err := s.catalog.GetProduct(ctx, sku)
		if err != nil {
			s.log.Errorf(ctx, "catalog.GetProduct failed sku=%s err=%v", sku, err)
			return nil, fmt.Errorf("get product %s: %w", sku, err)
		}
		return p, nil
	})
}

// Evict - сброс записи после изменения каталога; чтения, начатые раньше, запись не вернут.
func (s *ProductService) Evict(ctx context.Context, sku string) {
	s.cache.Delete(ctx, sku)
}
