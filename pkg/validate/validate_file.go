package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Gunvolt24/cart-service/internal/domain"
	"github.com/Gunvolt24/cart-service/internal/ports"
)

// InputFormat допустимые значения.
type InputFormat string

const (
	FormatAuto  InputFormat = "auto"
	FormatJSON  InputFormat = "json"
	FormatJSONL InputFormat = "jsonl"
)

// ParseFormat - формат из строки флага.
func ParseFormat(s string) (InputFormat, error) {
	switch f := InputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAuto, FormatJSON, FormatJSONL:
		return f, nil
	case "":
		return FormatAuto, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// WalkFile - валидирует файл товаров (JSON-объект, JSON-массив или JSONL),
// вызывая fn для каждого валидного товара.
func WalkFile(ctx context.Context, validator ports.ProductValidator, filePath string, format InputFormat, fn func(*domain.Product) error) (Result, error) {
	// auto по расширению
	if format == FormatAuto {
		switch strings.ToLower(filepath.Ext(filePath)) {
		case ".jsonl":
			format = FormatJSONL
		default:
			format = FormatJSON
		}
	}

	file, err := os.Open(filePath)
	if err != nil {
		return Result{}, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	switch format {
	case FormatJSON:
		raw, err := io.ReadAll(file)
		if err != nil {
			return Result{}, fmt.Errorf("read file: %w", err)
		}
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			return ValidateProductsFromJSONArray(ctx, validator, trimmed, fn)
		}
		p, err := ValidateProductFromJSON(ctx, validator, raw)
		if err != nil {
			return Result{Invalid: 1}, err
		}
		if err := fn(p); err != nil {
			return Result{}, err
		}
		return Result{Valid: 1}, nil

	case FormatJSONL:
		return ValidateJSONLStream(ctx, validator, file, fn)

	default:
		return Result{}, fmt.Errorf("unsupported format: %s", format)
	}
}

// ValidateFile - валидирует файл и пишет канонический JSON валидных товаров построчно.
func ValidateFile(ctx context.Context, validator ports.ProductValidator, filePath string, format InputFormat, ow io.Writer) (string, error) {
	res, err := WalkFile(ctx, validator, filePath, format, func(p *domain.Product) error {
		canonical, mErr := json.Marshal(p)
		if mErr != nil {
			return fmt.Errorf("marshal product: %w", mErr)
		}
		if _, wErr := ow.Write(append(canonical, '\n')); wErr != nil {
			return fmt.Errorf("write product: %w", wErr)
		}
		return nil
	})
	return res.String(), err
}

// LoadProducts - все валидные товары файла (сид для in-memory каталога).
func LoadProducts(ctx context.Context, validator ports.ProductValidator, filePath string) ([]domain.Product, Result, error) {
	var products []domain.Product
	res, err := WalkFile(ctx, validator, filePath, FormatAuto, func(p *domain.Product) error {
		products = append(products, *p)
		return nil
	})
	return products, res, err
}
