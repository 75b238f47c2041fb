package config_test

import (
	"slices"
	"strings"
	"testing"
	"time"

	cfg "github.com/Gunvolt24/cart-service/config"
)

// TestLoadWithPrefix_Defaults - значения по умолчанию.
func TestLoadWithPrefix_Defaults(t *testing.T) {
	t.Parallel()

	c, err := cfg.LoadWithPrefix("CART_TEST_DEFAULTS")
	if err != nil {
		t.Fatalf("LoadWithPrefix error: %v", err)
	}

	// HTTP
	if c.HTTP.Addr != ":8080" || c.HTTP.GinMode != "debug" {
		t.Fatalf("HTTP defaults wrong: %+v", c.HTTP)
	}
	if c.HTTP.ReadTimeout != 10*time.Second || c.HTTP.WriteTimeout != 10*time.Second {
		t.Fatalf("HTTP timeouts wrong: %+v", c.HTTP)
	}
	if c.HTTP.ReadHeaderTimeout != 5*time.Second || c.HTTP.IdleTimeout != 60*time.Second {
		t.Fatalf("HTTP header/idle timeouts wrong: %+v", c.HTTP)
	}
	if c.HTTP.HandlerTimeout != 3*time.Second || c.HTTP.GracefulTimeout != 10*time.Second {
		t.Fatalf("HTTP handler/graceful timeouts wrong: %+v", c.HTTP)
	}

	// Tracing
	if c.Tracing.Enabled {
		t.Fatalf("Tracing.Enabled: want false, got true")
	}
	if c.Tracing.ServiceName != "cart-service" || c.Tracing.Endpoint != "jaeger:4318" || c.Tracing.SampleRatio != 1 {
		t.Fatalf("Tracing defaults wrong: %+v", c.Tracing)
	}

	// Storage / Postgres
	if c.Storage.Backend != "postgres" || c.Storage.SeedFile != "" {
		t.Fatalf("Storage defaults wrong: %+v", c.Storage)
	}
	if c.Postgres.DSN == "" || c.Postgres.MaxConns != 10 || !c.Postgres.AutoMigrate {
		t.Fatalf("Postgres defaults wrong: %+v", c.Postgres)
	}

	// Kafka
	if !c.Kafka.Enabled || !slices.Equal(c.Kafka.Brokers, []string{"kafka:9092"}) {
		t.Fatalf("Kafka brokers wrong: %+v", c.Kafka)
	}
	if c.Kafka.Topic != "catalog-updates" || c.Kafka.GroupID != "cart-service" || c.Kafka.StartOffset != "last" {
		t.Fatalf("Kafka defaults wrong: %+v", c.Kafka)
	}
	if c.Kafka.ProcessTimeout != 5*time.Second || c.Kafka.RetryInitial != time.Second || c.Kafka.RetryMax != 30*time.Second {
		t.Fatalf("Kafka timeouts wrong: %+v", c.Kafka)
	}

	// Cache / Redis
	if c.Cache.Backend != "memory" || c.Cache.Capacity != 1000 || c.Cache.TTL != 10*time.Minute {
		t.Fatalf("Cache defaults wrong: %+v", c.Cache)
	}
	if c.Cache.ProductCapacity != 1000 || c.Cache.ProductTTL != 5*time.Minute {
		t.Fatalf("product cache defaults wrong: %+v", c.Cache)
	}
	if c.Redis.Addr != "redis:6379" || c.Redis.DB != 0 || c.Redis.Prefix != "cart-service:" {
		t.Fatalf("Redis defaults wrong: %+v", c.Redis)
	}

	// Sweeper
	if !c.Sweeper.Enabled || c.Sweeper.Interval != 5*time.Minute || c.Sweeper.TTL != 24*time.Hour {
		t.Fatalf("Sweeper defaults wrong: %+v", c.Sweeper)
	}

	// Auth
	if c.Auth.Users != "john:1234" || c.Auth.TokenTTL != time.Hour || c.Auth.Secret == "" {
		t.Fatalf("Auth defaults wrong: %+v", c.Auth)
	}

	if c.Logger.IsProd {
		t.Fatalf("Logger.IsProd: want false, got true")
	}
}

func TestLoadWithPrefix_Overrides(t *testing.T) {
	const p = "CART_TEST_OVR"

	t.Setenv(p+"_HTTP_ADDR", ":9999")
	t.Setenv(p+"_HTTP_GIN_MODE", "release")
	t.Setenv(p+"_HTTP_READ_TIMEOUT", "2s")
	t.Setenv(p+"_HTTP_HANDLER_TIMEOUT", "4500ms")

	t.Setenv(p+"_TRACING_OTEL_ENABLED", "true")
	t.Setenv(p+"_TRACING_OTEL_SERVICE_NAME", "svc")
	t.Setenv(p+"_TRACING_OTEL_ENDPOINT", "collector:4318")
	t.Setenv(p+"_TRACING_OTEL_SAMPLE_RATIO", "0.25")

	t.Setenv(p+"_STORAGE_BACKEND", " Memory ")
	t.Setenv(p+"_STORAGE_SEED_FILE", "/data/products.jsonl")
	t.Setenv(p+"_POSTGRES_AUTO_MIGRATE", "false")

	t.Setenv(p+"_KAFKA_ENABLED", "false")
	t.Setenv(p+"_KAFKA_BROKERS", "k1:9092,k2:9093")
	t.Setenv(p+"_KAFKA_TOPIC", "catalog-test")
	t.Setenv(p+"_KAFKA_START_OFFSET", "first")
	t.Setenv(p+"_KAFKA_RETRY_MAX", "2m")

	t.Setenv(p+"_CACHE_BACKEND", "redis")
	t.Setenv(p+"_CACHE_TTL", "30m")
	t.Setenv(p+"_REDIS_ADDR", "localhost:6380")
	t.Setenv(p+"_REDIS_DB", "3")

	t.Setenv(p+"_SWEEPER_INTERVAL", "30s")
	t.Setenv(p+"_SWEEPER_TTL", "48h")

	t.Setenv(p+"_AUTH_USERS", "john:1234,jane:pass")
	t.Setenv(p+"_AUTH_TOKEN_TTL", "15m")
	t.Setenv(p+"_AUTH_SECRET", "override-secret")

	t.Setenv(p+"_LOGGER_IS_PROD", "true")

	c, err := cfg.LoadWithPrefix(p)
	if err != nil {
		t.Fatalf("LoadWithPrefix error: %v", err)
	}

	if c.HTTP.Addr != ":9999" || c.HTTP.GinMode != "release" ||
		c.HTTP.ReadTimeout != 2*time.Second || c.HTTP.HandlerTimeout != 4500*time.Millisecond {
		t.Fatalf("HTTP overrides wrong: %+v", c.HTTP)
	}
	if !c.Tracing.Enabled || c.Tracing.ServiceName != "svc" || c.Tracing.Endpoint != "collector:4318" || c.Tracing.SampleRatio != 0.25 {
		t.Fatalf("Tracing overrides wrong: %+v", c.Tracing)
	}
	if c.Storage.Backend != "memory" || c.Storage.SeedFile != "/data/products.jsonl" || c.Postgres.AutoMigrate {
		t.Fatalf("Storage overrides wrong: %+v %+v", c.Storage, c.Postgres)
	}
	if c.Kafka.Enabled || !slices.Equal(c.Kafka.Brokers, []string{"k1:9092", "k2:9093"}) ||
		c.Kafka.Topic != "catalog-test" || c.Kafka.StartOffset != "first" || c.Kafka.RetryMax != 2*time.Minute {
		t.Fatalf("Kafka overrides wrong: %+v", c.Kafka)
	}
	if c.Cache.Backend != "redis" || c.Cache.TTL != 30*time.Minute || c.Redis.Addr != "localhost:6380" || c.Redis.DB != 3 {
		t.Fatalf("Cache/Redis overrides wrong: %+v %+v", c.Cache, c.Redis)
	}
	if c.Sweeper.Interval != 30*time.Second || c.Sweeper.TTL != 48*time.Hour {
		t.Fatalf("Sweeper overrides wrong: %+v", c.Sweeper)
	}
	if c.Auth.Users != "john:1234,jane:pass" || c.Auth.TokenTTL != 15*time.Minute {
		t.Fatalf("Auth overrides wrong: %+v", c.Auth)
	}
	if !c.Logger.IsProd {
		t.Fatalf("Logger.IsProd override wrong: %+v", c.Logger)
	}
}

func TestLoadWithPrefix_InvalidValue_ReturnsError(t *testing.T) {
	const p = "CART_TEST_BAD"
	t.Setenv(p+"_HTTP_READ_TIMEOUT", "not-a-duration")

	if _, err := cfg.LoadWithPrefix(p); err == nil {
		t.Fatalf("expected error for invalid duration, got nil")
	}
}

func TestLoadWithPrefix_UnknownBackend_ReturnsError(t *testing.T) {
	cases := map[string]string{
		"CART_TEST_BAD_STORAGE": "_STORAGE_BACKEND",
		"CART_TEST_BAD_CACHE":   "_CACHE_BACKEND",
	}
	for p, key := range cases {
		t.Setenv(p+key, "mongo")
		if _, err := cfg.LoadWithPrefix(p); err == nil {
			t.Fatalf("%s: expected error for unknown backend", key)
		}
	}
}

func TestLoadWithPrefix_DefaultSecretInProd_ReturnsError(t *testing.T) {
	const p = "CART_TEST_PROD_SECRET"
	t.Setenv(p+"_LOGGER_IS_PROD", "true")

	if _, err := cfg.LoadWithPrefix(p); err == nil || !strings.Contains(err.Error(), "default auth secret") {
		t.Fatalf("expected default secret to be rejected in prod, got %v", err)
	}

	t.Setenv(p+"_AUTH_SECRET", "prod-secret")
	c, err := cfg.LoadWithPrefix(p)
	if err != nil {
		t.Fatalf("custom secret in prod must be accepted: %v", err)
	}
	if c.Auth.Secret != "prod-secret" {
		t.Fatalf("secret override wrong: %q", c.Auth.Secret)
	}
}
