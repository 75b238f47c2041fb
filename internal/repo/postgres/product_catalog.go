package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gunvolt24/cart-service/internal/domain"
	"github.com/Gunvolt24/cart-service/internal/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	_ ports.ProductCatalog = (*ProductCatalog)(nil)
	_ ports.ProductWriter  = (*ProductCatalog)(nil)
)

// ProductCatalog - каталог товаров на Postgres.
type ProductCatalog struct {
	pool *pgxpool.Pool
}

func NewProductCatalog(pool *pgxpool.Pool) *ProductCatalog { return &ProductCatalog{pool: pool} }

func (r *ProductCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT sku, name, description, price::text, quantity, image_url
		FROM products ORDER BY sku
	`)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("products rows: %w", err)
	}
	return products, nil
}

// GetProduct - (nil, nil), если SKU нет.
func (r *ProductCatalog) GetProduct(ctx context.Context, sku string) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT sku, name, description, price::text, quantity, image_url
		FROM products WHERE sku = $1
	`, sku)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *ProductCatalog) UpsertProduct(ctx context.Context, p *domain.Product) error {
	if _, err := r.pool.Exec(ctx, `
		INSERT INTO products (sku, name, description, price, quantity, image_url)
		VALUES ($1, $2, $3, $4::numeric, $5, $6)
		ON CONFLICT (sku) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			quantity = EXCLUDED.quantity,
			image_url = EXCLUDED.image_url
	`, p.SKU, p.Name, p.Description, p.Price.String(), p.Quantity, p.ImageURL); err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

func (r *ProductCatalog) DeleteProduct(ctx context.Context, sku string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM products WHERE sku = $1`, sku); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p     domain.Product
		price string
	)
	if err := row.Scan(&p.SKU, &p.Name, &p.Description, &price, &p.Quantity, &p.ImageURL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse product price: %w", err)
	}
	p.Price = d
	return &p, nil
}
