package ports

import (
	"context"

	"github.com/Gunvolt24/cart-service/internal/domain"
)

type ProductValidator interface {
	Validate(ctx context.Context, p *domain.Product) error
}
