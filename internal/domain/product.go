package domain

import "github.com/shopspring/decimal"

// Product - товар каталога. Для корзины только на чтение.
type Product struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"` // доступный остаток
	ImageURL    string          `json:"image_url,omitempty"`
}

// ProductUpdate - событие изменения каталога (приходит из Kafka / файла импорта).
type ProductUpdate struct {
	Product
	Deleted bool `json:"deleted,omitempty"`
}
