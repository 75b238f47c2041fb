package ports

import (
	"context"

	"github.com/Gunvolt24/cart-service/internal/domain"
)

// CatalogUpdater - применение изменений каталога.
type CatalogUpdater interface {
	ApplyUpdate(ctx context.Context, upd *domain.ProductUpdate) error
}
