//go:build integration

package testutil

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/Gunvolt24/cart-service/internal/domain"
	"github.com/shopspring/decimal"
)

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func UniqSuffix() string { return randHex(6) }

// UniqUser - имя пользователя, не пересекающееся между тестами на одной БД.
func UniqUser() string { return "user-" + UniqSuffix() }

// MakeProduct - валидный товар с уникальным SKU.
func MakeProduct(opts ...func(*domain.Product)) domain.Product {
	p := domain.Product{
		SKU:         "sku-" + UniqSuffix(),
		Name:        "Widget",
		Description: "test product",
		Price:       decimal.RequireFromString("19.99"),
		Quantity:    10,
		ImageURL:    "https://example.com/widget.png",
	}
	for _, fn := range opts {
		fn(&p)
	}
	return p
}

func WithStock(n int) func(*domain.Product) {
	return func(p *domain.Product) { p.Quantity = n }
}

func WithPrice(price string) func(*domain.Product) {
	return func(p *domain.Product) { p.Price = decimal.RequireFromString(price) }
}

func WithName(name string) func(*domain.Product) {
	return func(p *domain.Product) { p.Name = name }
}
