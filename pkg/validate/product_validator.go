package validate

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Gunvolt24/cart-service/internal/domain"
	"github.com/Gunvolt24/cart-service/internal/ports"
)

// Проверка, что ProductValidator удовлетворяет интерфейсу ProductValidator.
var _ ports.ProductValidator = (*ProductValidator)(nil)

// ErrInvalidProduct - базовая (sentinel error) ошибка валидации.
var ErrInvalidProduct = errors.New("product validation failed")

const maxSKULen = 64

// ProductValidator - валидация товара каталога.
type ProductValidator struct{}

// NewProductValidator - конструктор ProductValidator.
// Возвращает ErrInvalidProduct (с обёрнутой причиной) при любой проблеме.
func NewProductValidator() *ProductValidator { return &ProductValidator{} }

func (v *ProductValidator) Validate(_ context.Context, p *domain.Product) error {
	if p == nil {
		return fmt.Errorf("%w: товар не может быть nil", ErrInvalidProduct)
	}
	if strings.TrimSpace(p.SKU) == "" {
		return fmt.Errorf("%w: sku обязателен", ErrInvalidProduct)
	}
	if len(p.SKU) > maxSKULen || strings.ContainsAny(p.SKU, " /\t\n") {
		return fmt.Errorf("%w: sku некорректен", ErrInvalidProduct)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name обязателен", ErrInvalidProduct)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price должен быть неотрицательным", ErrInvalidProduct)
	}
	if !p.Price.Equal(p.Price.Round(2)) {
		return fmt.Errorf("%w: price не больше двух знаков после запятой", ErrInvalidProduct)
	}
	if p.Quantity < 0 {
		return fmt.Errorf("%w: quantity должен быть неотрицательным", ErrInvalidProduct)
	}
	if p.ImageURL != "" {
		u, err := url.Parse(p.ImageURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: image_url некорректен", ErrInvalidProduct)
		}
	}
	return nil
}
