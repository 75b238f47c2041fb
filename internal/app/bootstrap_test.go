package app_test

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Gunvolt24/cart-service/config"
	"github.com/Gunvolt24/cart-service/internal/app"
	"github.com/Gunvolt24/cart-service/internal/ports"
)

// логгер-заглушка
type nopLogger struct{}

func (nopLogger) Infof(context.Context, string, ...any)  {}
func (nopLogger) Warnf(context.Context, string, ...any)  {}
func (nopLogger) Errorf(context.Context, string, ...any) {}

// фейковый воркер, который ждёт отмены контекста
type fakeWorker struct {
	runCalls   int32
	closeCalls int32
	runErr     error
}

func (f *fakeWorker) Run(ctx context.Context) error {
	atomic.AddInt32(&f.runCalls, 1)
	if f.runErr != nil {
		return f.runErr
	}
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeWorker) Close() error {
	atomic.AddInt32(&f.closeCalls, 1)
	return nil
}

func newServer() *http.Server {
	return &http.Server{
		Addr:              "127.0.0.1:0",
		Handler:           http.NewServeMux(),
		ReadHeaderTimeout: time.Second,
	}
}

func TestAppRun_GracefulShutdown(t *testing.T) {
	consumer, sweeper := &fakeWorker{}, &fakeWorker{}
	a := &app.App{
		Logger:     nopLogger{},
		HTTPServer: newServer(),
		Workers:    []ports.Worker{consumer, sweeper},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	for i, w := range []*fakeWorker{consumer, sweeper} {
		if atomic.LoadInt32(&w.runCalls) != 1 {
			t.Fatalf("worker %d: Run should be called once", i)
		}
		if atomic.LoadInt32(&w.closeCalls) != 1 {
			t.Fatalf("worker %d: Close should be called once", i)
		}
	}
}

func TestAppRun_WorkerFailureStopsApp(t *testing.T) {
	failing := &fakeWorker{runErr: errors.New("broker unreachable")}
	healthy := &fakeWorker{}
	a := &app.App{
		Logger:     nopLogger{},
		HTTPServer: newServer(),
		Workers:    []ports.Worker{failing, healthy},
	}

	done := make(chan error, 1)
	go func() { done <- a.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not stop after worker failure")
	}
	if atomic.LoadInt32(&healthy.closeCalls) != 1 {
		t.Fatal("healthy worker must be closed")
	}
}

func TestBootstrap_MemoryBackend(t *testing.T) {
	cfg, err := config.LoadWithPrefix("CART_BOOTSTRAP_TEST")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Storage.Backend = "memory"
	cfg.Cache.Backend = "memory"
	cfg.Kafka.Enabled = false
	cfg.Auth.BcryptCost = 4
	cfg.HTTP.Addr = "127.0.0.1:0"

	a, cleanup, err := app.Bootstrap(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	defer cleanup()

	if len(a.Workers) != 1 {
		t.Fatalf("want only sweeper worker, got %d", len(a.Workers))
	}
	if a.HTTPServer == nil || a.HTTPServer.Handler == nil {
		t.Fatal("http server is not configured")
	}
}

// Ошибка на любом шаге сборки: без паники, cleanup можно вызвать.
func TestBootstrap_FailureReturnsUsableCleanup(t *testing.T) {
	tests := []struct {
		name  string
		apply func(cfg *config.Config)
	}{
		{"malformed users", func(cfg *config.Config) { cfg.Auth.Users = "no-colon" }},
		{"missing seed file", func(cfg *config.Config) { cfg.Storage.SeedFile = filepath.Join(t.TempDir(), "absent.json") }},
		{"empty token secret", func(cfg *config.Config) { cfg.Auth.Secret = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.LoadWithPrefix("CART_BOOTSTRAP_TEST")
			if err != nil {
				t.Fatalf("load config: %v", err)
			}
			cfg.Storage.Backend = "memory"
			cfg.Cache.Backend = "memory"
			cfg.Kafka.Enabled = false
			cfg.Auth.BcryptCost = 4
			tt.apply(&cfg)

			a, cleanup, err := app.Bootstrap(context.Background(), &cfg)
			if err == nil {
				t.Fatal("want bootstrap error")
			}
			if a != nil {
				t.Fatal("app must be nil on error")
			}
			if cleanup == nil {
				t.Fatal("cleanup must not be nil on error")
			}
			cleanup()
		})
	}
}
