package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Gunvolt24/cart-service/internal/domain"
	"github.com/Gunvolt24/cart-service/internal/ports"
)

// ValidateProductFromJSON - строгий разбор и валидация одного товара.
func ValidateProductFromJSON(ctx context.Context, validator ports.ProductValidator, raw []byte) (*domain.Product, error) {
	var p domain.Product
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	// гарантируем отсутствие данных после объекта
	if err := dec.Decode(new(struct{})); err != io.EOF {
		return nil, fmt.Errorf("invalid json: trailing data")
	}
	if err := validator.Validate(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ValidateProductsFromJSONArray - массив товаров; невалидные элементы считаются и пропускаются.
func ValidateProductsFromJSONArray(ctx context.Context, validator ports.ProductValidator, raw []byte, fn func(*domain.Product) error) (Result, error) {
	var (
		res   Result
		items []json.RawMessage
	)
	if err := json.Unmarshal(raw, &items); err != nil {
		return res, fmt.Errorf("invalid json array: %w", err)
	}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		p, err := ValidateProductFromJSON(ctx, validator, item)
		if err != nil {
			res.Invalid++
			continue
		}
		if err := fn(p); err != nil {
			return res, err
		}
		res.Valid++
	}
	return res, nil
}
