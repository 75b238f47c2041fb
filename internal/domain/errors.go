package domain

import "errors"

var (
	ErrCartNotFound      = errors.New("cart not found")
	ErrItemNotFound      = errors.New("item not found in cart")
	ErrProductNotFound   = errors.New("product does not exist")
	ErrInsufficientStock = errors.New("not enough stock")
	ErrBadRequest        = errors.New("bad request")

	// ErrCartInconsistent - строка корзины ссылается на товар, которого нет в каталоге.
	ErrCartInconsistent = errors.New("cart references unknown product")

	// ErrUnauthorized - неверные учётные данные или токен.
	ErrUnauthorized = errors.New("unauthorized")
)
