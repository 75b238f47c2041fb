package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart - запись корзины в хранилище. Не больше одной на пользователя.
type Cart struct {
	ID           int64
	UserID       string
	LastModified time.Time
	Items        []CartItem
}

// CartItem - строка корзины; ключ (ItemID, CartID).
type CartItem struct {
	ItemID   string
	CartID   int64
	Quantity int
	Price    decimal.Decimal // цена на момент добавления
}

// Touch - сдвигает отметку последнего изменения.
func (c *Cart) Touch(now time.Time) { c.LastModified = now.UTC() }

// CartView - представление корзины для ответа клиенту.
type CartView struct {
	UserID string         `json:"-"`
	Items  []CartLineView `json:"items"`
}

// CartLineView - строка представления; цена и имя берутся из текущего каталога.
type CartLineView struct {
	ItemID   string          `json:"itemId"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Name     string          `json:"name"`
}

// Clone - глубокая копия представления.
func (v *CartView) Clone() *CartView {
	if v == nil {
		return nil
	}
	cp := &CartView{UserID: v.UserID}
	if v.Items != nil {
		cp.Items = make([]CartLineView, len(v.Items))
		copy(cp.Items, v.Items)
	}
	return cp
}

// CartLines - строки корзины без цен и имён (то, что хранит кэш корзин).
func CartLines(cart *Cart) *CartView {
	view := &CartView{UserID: cart.UserID, Items: make([]CartLineView, 0, len(cart.Items))}
	for _, it := range cart.Items {
		view.Items = append(view.Items, CartLineView{ItemID: it.ItemID, Quantity: it.Quantity})
	}
	return view
}

// Priced - копия с ценами и именами из products (индекс по SKU);
// ok=false, если для какой-то строки товара нет.
func (v *CartView) Priced(products map[string]*Product) (view *CartView, missing string, ok bool) {
	view = &CartView{UserID: v.UserID, Items: make([]CartLineView, 0, len(v.Items))}
	for _, line := range v.Items {
		p, found := products[line.ItemID]
		if !found || p == nil {
			return nil, line.ItemID, false
		}
		line.Price = p.Price
		line.Name = p.Name
		view.Items = append(view.Items, line)
	}
	return view, "", true
}

// NewCartView - собирает представление из записи корзины и товаров каталога.
func NewCartView(cart *Cart, products map[string]*Product) (view *CartView, missing string, ok bool) {
	return CartLines(cart).Priced(products)
}
