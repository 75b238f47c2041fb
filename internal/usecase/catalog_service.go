package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Gunvolt24/cart-service/internal/domain"
	"github.com/Gunvolt24/cart-service/internal/ports"
)

var _ ports.CatalogUpdater = (*CatalogService)(nil)

// ErrInvalidMessage - сообщение нельзя разобрать; повтор не поможет.
var ErrInvalidMessage = errors.New("invalid catalog message")

// CatalogService - применение изменений каталога из Kafka.
type CatalogService struct {
	writer    ports.ProductWriter
	products  *ProductService
	validator ports.ProductValidator
	log       ports.Logger
}

func NewCatalogService(
	writer ports.ProductWriter,
	products *ProductService,
	validator ports.ProductValidator,
	log ports.Logger,
) *CatalogService {
	return &CatalogService{writer: writer, products: products, validator: validator, log: log}
}

// SaveFromMessage - разбор сообщения Kafka (raw JSON) и применение.
// Шаги:
//  1. строгий парсинг JSON (DisallowUnknownFields);
//  2. валидация (кроме удаления: там нужен только sku);
//  3. upsert/delete в каталоге;
//  4. сброс записи в кэше товаров.
func (s *CatalogService) SaveFromMessage(ctx context.Context, raw []byte) error {
	var upd domain.ProductUpdate
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&upd); err != nil {
		s.log.Warnf(ctx, "invalid json err=%v", err)
		return fmt.Errorf("%w: invalid json: %v", ErrInvalidMessage, err)
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		s.log.Warnf(ctx, "invalid json: trailing data")
		return fmt.Errorf("%w: invalid json: trailing data", ErrInvalidMessage)
	}

	return s.ApplyUpdate(ctx, &upd)
}

func (s *CatalogService) ApplyUpdate(ctx context.Context, upd *domain.ProductUpdate) error {
	if upd.Deleted {
		if upd.SKU == "" {
			return fmt.Errorf("%w: sku is required", ErrInvalidMessage)
		}
		if err := s.writer.DeleteProduct(ctx, upd.SKU); err != nil {
			s.log.Errorf(ctx, "catalog delete failed sku=%s err=%v", upd.SKU, err)
			return fmt.Errorf("failed to delete product: %w", err)
		}
		s.products.Evict(ctx, upd.SKU)
		s.log.Infof(ctx, "product deleted sku=%s", upd.SKU)
		return nil
	}

	if err := s.validator.Validate(ctx, &upd.Product); err != nil {
		s.log.Warnf(ctx, "validation failed sku=%s err=%v", upd.SKU, err)
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := s.writer.UpsertProduct(ctx, &upd.Product); err != nil {
		s.log.Errorf(ctx, "catalog upsert failed sku=%s err=%v", upd.SKU, err)
		return fmt.Errorf("failed to save product: %w", err)
	}
	s.products.Evict(ctx, upd.SKU)

	s.log.Infof(ctx, "product saved sku=%s quantity=%d", upd.SKU, upd.Quantity)
	return nil
}
