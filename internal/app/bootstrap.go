package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Gunvolt24/cart-service/config"
	"github.com/Gunvolt24/cart-service/internal/auth"
	cachemem "github.com/Gunvolt24/cart-service/internal/cache/memory"
	"github.com/Gunvolt24/cart-service/internal/kafka"
	"github.com/Gunvolt24/cart-service/internal/ports"
	"github.com/Gunvolt24/cart-service/internal/sweeper"
	rest "github.com/Gunvolt24/cart-service/internal/transport/http"
	"github.com/Gunvolt24/cart-service/internal/usecase"
	"github.com/Gunvolt24/cart-service/pkg/logger"
	"github.com/Gunvolt24/cart-service/pkg/metrics"
	"github.com/Gunvolt24/cart-service/pkg/telemetry"
	"github.com/Gunvolt24/cart-service/pkg/validate"
	"github.com/gin-gonic/gin"
)

// App - собранное приложение: HTTP-сервер и фоновые воркеры (консьюмер каталога, чистильщик корзин).
type App struct {
	Logger          ports.Logger
	HTTPServer      *http.Server
	Workers         []ports.Worker
	gracefulTimeout time.Duration
}

// Cleanup - функция освобождения ресурсов.
type Cleanup func()

// applyGinMode - режим Gin по строке; неизвестное значение → debug и предупреждение.
func applyGinMode(ctx context.Context, mode string, log ports.Logger) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	case "", "debug":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.DebugMode)
		log.Warnf(ctx, "unknown GIN_MODE=%q, fallback to debug", mode)
	}
}

// Bootstrap - собирает зависимости и возвращает приложение и функцию очистки.
// При ошибке уже открытые ресурсы освобождаются.
func Bootstrap(ctx context.Context, cfg *config.Config) (app *App, cleanup Cleanup, err error) {
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		return nil, func() {}, err
	}

	// закрываются в обратном порядке
	var closers []func()
	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		if cerr := cleanupLogger(); cerr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cerr)
		}
	}
	defer func() {
		if err != nil {
			logg.Errorf(ctx, "bootstrap failed: %v", err)
			release()
			app, cleanup = nil, func() {}
		}
	}()

	metrics.MustRegister()

	// Трейсинг (по умолчанию no-op).
	otelServiceName := ""
	if cfg.Tracing.Enabled {
		shutdown, tErr := telemetry.SetupTracing(ctx, telemetry.Options{
			ServiceName: cfg.Tracing.ServiceName,
			Endpoint:    cfg.Tracing.Endpoint,
			SampleRatio: cfg.Tracing.SampleRatio,
		})
		if tErr != nil {
			logg.Warnf(ctx, "failed to setup tracing: %v", tErr)
		} else {
			logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
				cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
			otelServiceName = cfg.Tracing.ServiceName
			closers = append(closers, func() {
				if terr := shutdown(context.Background()); terr != nil {
					logg.Warnf(ctx, "shutdown tracing: %v", terr)
				}
			})
		}
	}

	st, err := openStorage(ctx, cfg, logg)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, st.close)

	cartCache, closeCache, err := openCartCache(ctx, cfg, logg)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, closeCache)

	// Доменный слой: корзина читает каталог через ProductService (с кэшем товаров).
	productService := usecase.NewProductService(
		st.catalog,
		cachemem.NewProductCache(cfg.Cache.ProductCapacity, cfg.Cache.ProductTTL),
		logg,
	)
	cartService := usecase.NewCartService(st.carts, productService, cartCache, logg)
	catalogService := usecase.NewCatalogService(st.catalog, productService, validate.NewProductValidator(), logg)

	// Пользователи и токены.
	rawUsers, err := auth.ParseUsers(cfg.Auth.Users)
	if err != nil {
		return nil, nil, err
	}
	users, err := auth.NewUserStore(rawUsers, cfg.Auth.BcryptCost)
	if err != nil {
		return nil, nil, err
	}
	tokens, err := auth.NewJWTIssuer(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, nil, err
	}

	applyGinMode(ctx, cfg.HTTP.GinMode, logg)

	h := rest.NewHandler(cartService, productService, users, tokens, logg, cfg.HTTP.HandlerTimeout)
	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           rest.NewRouter(h, otelServiceName),
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	var workers []ports.Worker
	if cfg.Kafka.Enabled {
		kafkaCfg := kafka.ConsumerConfig{
			Brokers:        cfg.Kafka.Brokers,
			GroupID:        cfg.Kafka.GroupID,
			Topic:          cfg.Kafka.Topic,
			StartOffset:    cfg.Kafka.StartOffset,
			ProcessTimeout: cfg.Kafka.ProcessTimeout,
			RetryInitial:   cfg.Kafka.RetryInitial,
			RetryMax:       cfg.Kafka.RetryMax,
		}
		workers = append(workers, kafka.NewConsumer(&kafkaCfg, catalogService, logg))
	}
	if cfg.Sweeper.Enabled {
		workers = append(workers, sweeper.New(st.carts, cartService, logg, cfg.Sweeper.Interval, cfg.Sweeper.TTL))
	}

	logg.Infof(ctx, "bootstrap done storage=%s cache=%s kafka=%t sweeper=%t",
		cfg.Storage.Backend, cfg.Cache.Backend, cfg.Kafka.Enabled, cfg.Sweeper.Enabled)

	return &App{
		Logger:          logg,
		HTTPServer:      httpSrv,
		Workers:         workers,
		gracefulTimeout: cfg.HTTP.GracefulTimeout,
	}, release, nil
}

// Run - запускает HTTP-сервер и воркеры; ждёт отмены контекста или фоновой ошибки и останавливает всё.
func (a *App) Run(ctx context.Context) error {
	runCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	errCh := make(chan error, len(a.Workers)+1)
	var wg sync.WaitGroup

	for _, w := range a.Workers {
		wg.Add(1)
		go func(w ports.Worker) {
			defer wg.Done()
			if err := w.Run(runCtx); err != nil {
				errCh <- err
			}
		}(w)
	}

	go func() {
		a.Logger.Infof(ctx, "http server starting (addr=%s)", a.HTTPServer.Addr)
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.Logger.Infof(ctx, "shutdown requested, starting graceful shutdown")
	case err := <-errCh:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			a.Logger.Infof(ctx, "background component stopped: %v", err)
		} else {
			a.Logger.Warnf(ctx, "background error: %v", err)
		}
	}

	gt := a.gracefulTimeout
	if gt <= 0 {
		gt = 5 * time.Second
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gt)
	defer cancel()

	if err := a.HTTPServer.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warnf(ctx, "http server shutdown failed: %v", err)
	} else {
		a.Logger.Infof(ctx, "http server stopped gracefully")
	}

	cancelWorkers()
	for _, w := range a.Workers {
		if err := w.Close(); err != nil {
			a.Logger.Warnf(ctx, "worker close error: %v", err)
		}
	}
	wg.Wait()

	a.Logger.Infof(ctx, "service stopped")
	return nil
}
