package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gunvolt24/cart-service/internal/domain"
	"github.com/Gunvolt24/cart-service/internal/ports"
	"github.com/Gunvolt24/cart-service/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	_ ports.CartService     = (*CartService)(nil)
	_ ports.IdleCartClearer = (*CartService)(nil)
)

// CartService - прикладная логика корзины (без знаний о транспорте).
// Все мутации идут в транзакции хранилища; кэш инвалидируется строго после commit.
type CartService struct {
	store   ports.CartStore      // корзины
	catalog ports.ProductCatalog // товары и остатки
	cache   ports.CartCache      // представления корзин
	log     ports.Logger
	now     func() time.Time
	tracer  trace.Tracer
}

// Option - настройка CartService.
type Option func(*CartService)

// WithClock - источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(s *CartService) { s.now = now }
}

// NewCartService - DI-конструктор.
func NewCartService(
	store ports.CartStore,
	catalog ports.ProductCatalog,
	cache ports.CartCache,
	log ports.Logger,
	opts ...Option,
) *CartService {
	s := &CartService{
		store:   store,
		catalog: catalog,
		cache:   cache,
		log:     log,
		now:     time.Now,
		tracer:  otel.Tracer("cart-service/usecase"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddItemToCart - +1 товара в корзину пользователя; корзина создаётся при первом добавлении.
func (s *CartService) AddItemToCart(ctx context.Context, userID, itemID string) (err error) {
	ctx, span := s.startSpan(ctx, "CartService.AddItemToCart", userID, itemID)
	defer func() { s.finish(span, "add", err) }()

	if userID == "" || itemID == "" {
		return fmt.Errorf("%w: user and item id are required", domain.ErrBadRequest)
	}

	err = s.inTx(ctx, func(tx ports.CartTx) error {
		cart, err := tx.FindByUser(ctx, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			s.log.Infof(ctx, "no cart for user=%s, creating new cart", userID)
			if cart, err = tx.CreateCart(ctx, userID, s.now()); err != nil {
				return err
			}
		}

		product, err := s.catalog.GetProduct(ctx, itemID)
		if err != nil {
			return err
		}
		if product == nil {
			s.log.Warnf(ctx, "product sku=%s does not exist", itemID)
			return fmt.Errorf("%w: %s", domain.ErrProductNotFound, itemID)
		}

		item, err := tx.FindItem(ctx, itemID, cart.ID)
		if err != nil {
			return err
		}
		if item != nil {
			if item.Quantity+1 > product.Quantity {
				s.log.Warnf(ctx, "cannot add more sku=%s requested=%d available=%d", itemID, item.Quantity+1, product.Quantity)
				return fmt.Errorf("%w to add more of this item", domain.ErrInsufficientStock)
			}
			item.Quantity++
		} else {
			if product.Quantity < 1 {
				s.log.Warnf(ctx, "not enough stock to add sku=%s available=%d", itemID, product.Quantity)
				return fmt.Errorf("%w to add this item", domain.ErrInsufficientStock)
			}
			item = &domain.CartItem{ItemID: itemID, CartID: cart.ID, Quantity: 1, Price: product.Price}
		}
		if err := tx.SaveItem(ctx, item); err != nil {
			return err
		}

		cart.Touch(s.now())
		return tx.SaveCart(ctx, cart)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, userID)
	s.log.Infof(ctx, "item sku=%s added to cart user=%s", itemID, userID)
	return nil
}

// GetCart - представление корзины. Кэш хранит только строки (SKU и количество);
// цены и имена берутся из каталога при каждом чтении, поэтому обновление
// товара из Kafka видно сразу, без инвалидации корзин.
func (s *CartService) GetCart(ctx context.Context, userID string) (view *domain.CartView, err error) {
	ctx, span := s.startSpan(ctx, "CartService.GetCart", userID, "")
	defer func() { s.finish(span, "get", err) }()

	if userID == "" {
		return nil, fmt.Errorf("%w: user is required", domain.ErrBadRequest)
	}

	lines, err := s.cache.GetOrLoad(ctx, userID, func(ctx context.Context) (*domain.CartView, error) {
		return s.loadLines(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return s.priced(ctx, lines)
}

// RemoveItemFromCart - удаляет строку целиком (без уменьшения количества).
func (s *CartService) RemoveItemFromCart(ctx context.Context, userID, itemID string) (err error) {
	ctx, span := s.startSpan(ctx, "CartService.RemoveItemFromCart", userID, itemID)
	defer func() { s.finish(span, "remove", err) }()

	if userID == "" || itemID == "" {
		return fmt.Errorf("%w: user and item id are required", domain.ErrBadRequest)
	}

	err = s.inTx(ctx, func(tx ports.CartTx) error {
		cart, err := s.lockedCart(ctx, tx, userID)
		if err != nil {
			return err
		}

		exists, err := tx.ItemExists(ctx, itemID, cart.ID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %s", domain.ErrItemNotFound, itemID)
		}
		if err := tx.DeleteItem(ctx, itemID, cart.ID); err != nil {
			return err
		}

		cart.Touch(s.now())
		return tx.SaveCart(ctx, cart)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, userID)
	s.log.Infof(ctx, "item sku=%s removed from cart user=%s", itemID, userID)
	return nil
}

// ClearCart - удаляет корзину вместе со строками.
func (s *CartService) ClearCart(ctx context.Context, userID string) (err error) {
	ctx, span := s.startSpan(ctx, "CartService.ClearCart", userID, "")
	defer func() { s.finish(span, "clear", err) }()

	if userID == "" {
		return fmt.Errorf("%w: user is required", domain.ErrBadRequest)
	}

	err = s.inTx(ctx, func(tx ports.CartTx) error {
		cart, err := s.lockedCart(ctx, tx, userID)
		if err != nil {
			return err
		}
		return tx.DeleteCart(ctx, cart.ID)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, userID)
	s.log.Infof(ctx, "cart cleared user=%s", userID)
	return nil
}

// ClearIdleCart - удаление брошенной корзины для sweeper.
// Повторно проверяет LastModified под блокировкой строки: корзина,
// изменённая после выборки, остаётся. Нет корзины - ErrCartNotFound.
func (s *CartService) ClearIdleCart(ctx context.Context, userID string, cutoff time.Time) (cleared bool, err error) {
	ctx, span := s.startSpan(ctx, "CartService.ClearIdleCart", userID, "")
	defer func() { s.finish(span, "clear_idle", err) }()

	if userID == "" {
		return false, fmt.Errorf("%w: user is required", domain.ErrBadRequest)
	}

	err = s.inTx(ctx, func(tx ports.CartTx) error {
		cart, err := s.lockedCart(ctx, tx, userID)
		if err != nil {
			return err
		}
		if !cart.LastModified.Before(cutoff) {
			return nil
		}
		if err := tx.DeleteCart(ctx, cart.ID); err != nil {
			return err
		}
		cleared = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if cleared {
		s.invalidate(ctx, userID)
		s.log.Infof(ctx, "idle cart cleared user=%s", userID)
	} else {
		s.log.Infof(ctx, "cart user=%s changed after idle scan, kept", userID)
	}
	return cleared, nil
}

// ------вспомогательные функции------

// inTx - fn в транзакции; откат при любой ошибке до commit.
func (s *CartService) inTx(ctx context.Context, fn func(tx ports.CartTx) error) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.log.Warnf(ctx, "rollback failed: %v", rbErr)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *CartService) lockedCart(ctx context.Context, tx ports.CartTx, userID string) (*domain.Cart, error) {
	cart, err := tx.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, fmt.Errorf("%w for user: %s", domain.ErrCartNotFound, userID)
	}
	return cart, nil
}

// loadLines - загрузчик для кэша: строки корзины из хранилища.
func (s *CartService) loadLines(ctx context.Context, userID string) (*domain.CartView, error) {
	cart, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		s.log.Errorf(ctx, "store.FindByUser failed user=%s err=%v", userID, err)
		return nil, err
	}
	if cart == nil {
		return nil, fmt.Errorf("%w for user: %s", domain.ErrCartNotFound, userID)
	}
	return domain.CartLines(cart), nil
}

// priced - цены и имена из текущего каталога; пропавший товар - ErrCartInconsistent.
func (s *CartService) priced(ctx context.Context, lines *domain.CartView) (*domain.CartView, error) {
	products := make(map[string]*domain.Product, len(lines.Items))
	for _, line := range lines.Items {
		p, err := s.catalog.GetProduct(ctx, line.ItemID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			products[line.ItemID] = p
		}
	}

	view, missing, ok := lines.Priced(products)
	if !ok {
		s.log.Errorf(ctx, "cart user=%s references missing product sku=%s", lines.UserID, missing)
		return nil, fmt.Errorf("%w: %s", domain.ErrCartInconsistent, missing)
	}
	return view, nil
}

// invalidate - ошибка кэша не отменяет уже зафиксированную мутацию.
func (s *CartService) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warnf(ctx, "cache.Invalidate failed user=%s err=%v", userID, err)
	}
}

func (s *CartService) startSpan(ctx context.Context, name, userID, itemID string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String("cart.user", userID)}
	if itemID != "" {
		attrs = append(attrs, attribute.String("cart.item", itemID))
	}
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *CartService) finish(span trace.Span, op string, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	metrics.CartOps.WithLabelValues(op, resultLabel(err)).Inc()
}

// resultLabel - метка результата для метрик.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrCartNotFound):
		return "cart_not_found"
	case errors.Is(err, domain.ErrItemNotFound):
		return "item_not_found"
	case errors.Is(err, domain.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrBadRequest):
		return "bad_request"
	default:
		return "error"
	}
}
