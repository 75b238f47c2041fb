package app

import (
	"context"
	"fmt"

	"github.com/Gunvolt24/cart-service/config"
	cachemem "github.com/Gunvolt24/cart-service/internal/cache/memory"
	cacheredis "github.com/Gunvolt24/cart-service/internal/cache/redis"
	"github.com/Gunvolt24/cart-service/internal/domain"
	"github.com/Gunvolt24/cart-service/internal/ports"
	"github.com/Gunvolt24/cart-service/internal/repo/memory"
	"github.com/Gunvolt24/cart-service/internal/repo/postgres"
	"github.com/Gunvolt24/cart-service/pkg/validate"
	"github.com/shopspring/decimal"
)

// catalogStore - каталог, который умеет и читать, и меняться (обновления из Kafka).
type catalogStore interface {
	ports.ProductCatalog
	ports.ProductWriter
}

type storage struct {
	carts   ports.CartStore
	catalog catalogStore
	close   func()
}

// defaultProducts - каталог memory-бэкенда без сид-файла (те же товары, что в миграции).
var defaultProducts = []domain.Product{
	{SKU: "sku123", Name: "Laptop", Description: "A powerful laptop", Price: decimal.RequireFromString("999.99"), Quantity: 10},
	{SKU: "sku456", Name: "Mouse", Description: "Wireless mouse", Price: decimal.RequireFromString("25.50"), Quantity: 100},
	{SKU: "sku789", Name: "Monitor", Description: "27 inch monitor", Price: decimal.RequireFromString("279.00"), Quantity: 1},
}

func openStorage(ctx context.Context, cfg *config.Config, log ports.Logger) (*storage, error) {
	switch cfg.Storage.Backend {
	case "memory":
		products := defaultProducts
		if cfg.Storage.SeedFile != "" {
			loaded, res, err := validate.LoadProducts(ctx, validate.NewProductValidator(), cfg.Storage.SeedFile)
			if err != nil {
				return nil, fmt.Errorf("load seed file: %w", err)
			}
			log.Infof(ctx, "catalog seeded from %s: %s", cfg.Storage.SeedFile, res)
			products = loaded
		}
		return &storage{
			carts:   memory.NewCartStore(),
			catalog: memory.NewProductCatalog(products...),
			close:   func() {},
		}, nil

	default:
		if cfg.Postgres.AutoMigrate {
			if err := postgres.Migrate(ctx, cfg.Postgres.DSN); err != nil {
				return nil, err
			}
			log.Infof(ctx, "postgres migrations applied")
		}
		pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
		if err != nil {
			return nil, err
		}
		return &storage{
			carts:   postgres.NewCartStore(pool),
			catalog: postgres.NewProductCatalog(pool),
			close:   pool.Close,
		}, nil
	}
}

// openCartCache - кэш представлений корзин; для redis возвращает и функцию закрытия клиента.
func openCartCache(ctx context.Context, cfg *config.Config, log ports.Logger) (ports.CartCache, func(), error) {
	if cfg.Cache.Backend != "redis" {
		return cachemem.NewCartCache(cfg.Cache.Capacity, cfg.Cache.TTL), func() {}, nil
	}

	client, err := cacheredis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, func() {}, err
	}
	closeFn := func() {
		if cerr := client.Close(); cerr != nil {
			log.Warnf(context.Background(), "redis close: %v", cerr)
		}
	}
	return cacheredis.NewCartCache(client, cfg.Redis.Prefix, cfg.Cache.TTL, log), closeFn, nil
}
