package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Gunvolt24/cart-service/internal/domain"
	"github.com/Gunvolt24/cart-service/internal/kafka"
	"github.com/Gunvolt24/cart-service/internal/repo/postgres"
	"github.com/Gunvolt24/cart-service/pkg/validate"
)

// CLI для валидации и импорта товаров каталога.
// Без -dsn и -brokers печатает канонический JSON валидных товаров (dry run).
func main() {
	inputPath := flag.String("file", "", "path to input (.json or .jsonl). If empty, reads JSONL from stdin.")
	formatStr := flag.String("format", "auto", "input format: auto|json|jsonl")
	dsn := flag.String("dsn", "", "postgres DSN: upsert valid products into the catalog")
	brokers := flag.String("brokers", "", "comma-separated kafka brokers: publish valid products as catalog updates")
	topic := flag.String("topic", "catalog-updates", "kafka topic for -brokers")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	format, err := validate.ParseFormat(*formatStr)
	if err != nil {
		fail(err, "")
	}

	path := *inputPath
	if path == "" {
		path = "/dev/stdin"
		if format == validate.FormatAuto {
			format = validate.FormatJSONL
		}
	}

	v := validate.NewProductValidator()

	if *dsn == "" && *brokers == "" {
		summary, err := validate.ValidateFile(ctx, v, path, format, os.Stdout)
		if err != nil {
			fail(err, summary)
		}
		fmt.Fprintf(os.Stderr, "validation ok (%s)\n", summary)
		return
	}

	var products []domain.Product
	res, err := validate.WalkFile(ctx, v, path, format, func(p *domain.Product) error {
		products = append(products, *p)
		return nil
	})
	if err != nil {
		fail(err, res.String())
	}

	if *dsn != "" {
		if err := upsert(ctx, *dsn, products); err != nil {
			fail(err, res.String())
		}
		fmt.Fprintf(os.Stderr, "upserted %d products\n", len(products))
	}

	if *brokers != "" {
		if err := publish(ctx, splitList(*brokers), *topic, products); err != nil {
			fail(err, res.String())
		}
		fmt.Fprintf(os.Stderr, "published %d updates to %s\n", len(products), *topic)
	}
	fmt.Fprintf(os.Stderr, "import ok (%s)\n", res)
}

func upsert(ctx context.Context, dsn string, products []domain.Product) error {
	pool, err := postgres.NewPool(ctx, dsn, 4)
	if err != nil {
		return err
	}
	defer pool.Close()

	catalog := postgres.NewProductCatalog(pool)
	for i := range products {
		if err := catalog.UpsertProduct(ctx, &products[i]); err != nil {
			return err
		}
	}
	return nil
}

func publish(ctx context.Context, brokers []string, topic string, products []domain.Product) error {
	producer := kafka.NewProducer(brokers, topic)
	defer func() { _ = producer.Close() }()

	updates := make([]domain.ProductUpdate, len(products))
	for i := range products {
		updates[i] = domain.ProductUpdate{Product: products[i]}
	}
	return producer.Publish(ctx, updates...)
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func fail(err error, summary string) {
	if summary != "" {
		fmt.Fprintf(os.Stderr, "import: %v (%s)\n", err, summary)
	} else {
		fmt.Fprintf(os.Stderr, "import: %v\n", err)
	}
	os.Exit(1)
}
