package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Gunvolt24/cart-service/internal/domain"
	"github.com/Gunvolt24/cart-service/internal/ports"
)

var (
	_ ports.ProductCatalog = (*ProductCatalog)(nil)
	_ ports.ProductWriter  = (*ProductCatalog)(nil)
)

// ProductCatalog - каталог в памяти.
type ProductCatalog struct {
	mu    sync.RWMutex
	bySKU map[string]domain.Product
}

func NewProductCatalog(products ...domain.Product) *ProductCatalog {
	c := &ProductCatalog{bySKU: make(map[string]domain.Product, len(products))}
	for _, p := range products {
		c.bySKU[p.SKU] = p
	}
	return c
}

func (c *ProductCatalog) ListProducts(_ context.Context) ([]domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Product, 0, len(c.bySKU))
	for _, p := range c.bySKU {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (c *ProductCatalog) GetProduct(_ context.Context, sku string) (*domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.bySKU[sku]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (c *ProductCatalog) UpsertProduct(_ context.Context, p *domain.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bySKU[p.SKU] = *p
	return nil
}

func (c *ProductCatalog) DeleteProduct(_ context.Context, sku string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.bySKU, sku)
	return nil
}
