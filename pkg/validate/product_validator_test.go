package validate_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Gunvolt24/cart-service/internal/domain"
	"github.com/Gunvolt24/cart-service/pkg/validate"
	"github.com/shopspring/decimal"
)

func validProduct() *domain.Product {
	return &domain.Product{
		SKU:      "sku123",
		Name:     "Laptop",
		Price:    decimal.RequireFromString("999.99"),
		Quantity: 10,
		ImageURL: "https://example.com/laptop.jpg",
	}
}

func TestProductValidator_Validate(t *testing.T) {
	v := validate.NewProductValidator()
	ctx := context.Background()

	t.Run("valid product", func(t *testing.T) {
		if err := v.Validate(ctx, validProduct()); err != nil {
			t.Fatalf("expected valid product, got: %v", err)
		}
	})

	cases := []struct {
		name   string
		mutate func(*domain.Product) *domain.Product
		msg    string
	}{
		{"nil product", func(*domain.Product) *domain.Product { return nil }, "nil"},
		{"empty sku", func(p *domain.Product) *domain.Product { p.SKU = " "; return p }, "sku обязателен"},
		{"sku with spaces", func(p *domain.Product) *domain.Product { p.SKU = "a b"; return p }, "sku некорректен"},
		{"empty name", func(p *domain.Product) *domain.Product { p.Name = ""; return p }, "name"},
		{"negative price", func(p *domain.Product) *domain.Product { p.Price = decimal.NewFromInt(-1); return p }, "price"},
		{"too precise price", func(p *domain.Product) *domain.Product { p.Price = decimal.RequireFromString("1.005"); return p }, "price"},
		{"negative quantity", func(p *domain.Product) *domain.Product { p.Quantity = -1; return p }, "quantity"},
		{"bad image url", func(p *domain.Product) *domain.Product { p.ImageURL = "not a url"; return p }, "image_url"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(ctx, tc.mutate(validProduct()))
			if !errors.Is(err, validate.ErrInvalidProduct) {
				t.Fatalf("want ErrInvalidProduct, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.msg) {
				t.Fatalf("error %q should mention %q", err, tc.msg)
			}
		})
	}
}

func TestProductValidator_ZeroStockIsValid(t *testing.T) {
	p := validProduct()
	p.Quantity = 0
	if err := validate.NewProductValidator().Validate(context.Background(), p); err != nil {
		t.Fatalf("zero stock should be valid, got %v", err)
	}
}
