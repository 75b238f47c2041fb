//go:build integration

package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Gunvolt24/cart-service/internal/auth"
	cachemem "github.com/Gunvolt24/cart-service/internal/cache/memory"
	pgrepo "github.com/Gunvolt24/cart-service/internal/repo/postgres"
	"github.com/Gunvolt24/cart-service/internal/testutil"
	rest "github.com/Gunvolt24/cart-service/internal/transport/http"
	"github.com/Gunvolt24/cart-service/internal/usecase"
	"github.com/Gunvolt24/cart-service/pkg/logger"
)

type server struct {
	ts   *httptest.Server
	user string
}

// newServer - полный стек на Postgres из testcontainers; user - уникальный пользователь с паролем "secret".
func newServer(t *testing.T) *server {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pg, stop, err := testutil.StartPostgresTC(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stop(context.Background()) })

	logg, cleanup, err := logger.NewZapLogger(false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })

	user := testutil.UniqUser()
	users, err := auth.NewUserStore(map[string]string{user: "secret"}, bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := auth.NewJWTIssuer("integration-secret", "cart-service", time.Hour)
	require.NoError(t, err)

	products := usecase.NewProductService(pgrepo.NewProductCatalog(pg.Pool), cachemem.NewProductCache(100, time.Minute), logg)
	carts := usecase.NewCartService(pgrepo.NewCartStore(pg.Pool), products, cachemem.NewCartCache(100, time.Minute), logg)

	h := rest.NewHandler(carts, products, users, tokens, logg, 5*time.Second)
	ts := httptest.NewServer(rest.NewRouter(h, ""))
	t.Cleanup(ts.Close)

	return &server{ts: ts, user: user}
}

func (s *server) call(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var got map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&got)
	return resp, got
}

func (s *server) login(t *testing.T) string {
	t.Helper()
	resp, got := s.call(t, http.MethodPost, "/auth/login", "", map[string]string{"username": s.user, "password": "secret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := got["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// 1) login → add → add → get → remove → clear → get(404)
func TestHTTP_CartFlow_TC(t *testing.T) {
	s := newServer(t)
	token := s.login(t)

	resp, _ := s.call(t, http.MethodPost, "/api/v1/carts/items", token, map[string]string{"itemId": "sku123"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = s.call(t, http.MethodPost, "/api/v1/carts/items", token, map[string]string{"itemId": "sku123"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = s.call(t, http.MethodPost, "/api/v1/carts/items", token, map[string]string{"itemId": "sku456"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, got := s.call(t, http.MethodGet, "/api/v1/carts", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items, _ := got["items"].([]any)
	require.Len(t, items, 2)

	byID := map[string]map[string]any{}
	for _, raw := range items {
		it := raw.(map[string]any)
		byID[it["itemId"].(string)] = it
	}
	require.EqualValues(t, 2, byID["sku123"]["quantity"])
	require.Equal(t, "Laptop", byID["sku123"]["name"])
	require.Equal(t, "999.99", byID["sku123"]["price"])

	resp, _ = s.call(t, http.MethodDelete, "/api/v1/carts/items/sku123", token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, got = s.call(t, http.MethodGet, "/api/v1/carts", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, got["items"], 1)

	resp, _ = s.call(t, http.MethodDelete, "/api/v1/carts", token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = s.call(t, http.MethodGet, "/api/v1/carts", token, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// 2) sku789 в единственном экземпляре: второе добавление - 409
func TestHTTP_InsufficientStock_TC(t *testing.T) {
	s := newServer(t)
	token := s.login(t)

	resp, _ := s.call(t, http.MethodPost, "/api/v1/carts/items", token, map[string]string{"itemId": "sku789"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, got := s.call(t, http.MethodPost, "/api/v1/carts/items", token, map[string]string{"itemId": "sku789"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Contains(t, got["error"], "not enough stock")
}

// 3) неизвестный товар - 404, корзина не создаётся
func TestHTTP_UnknownProduct_TC(t *testing.T) {
	s := newServer(t)
	token := s.login(t)

	resp, _ := s.call(t, http.MethodPost, "/api/v1/carts/items", token, map[string]string{"itemId": "no-such-sku"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.call(t, http.MethodGet, "/api/v1/carts", token, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// 4) каталог: список, пагинация и 404
func TestHTTP_Products_TC(t *testing.T) {
	s := newServer(t)

	resp, err := http.Get(s.ts.URL + "/api/v1/products?limit=2")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 2)

	resp2, got := s.call(t, http.MethodGet, "/api/v1/products/sku456", "", nil)
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	require.Equal(t, "Mouse", got["name"])

	resp3, got := s.call(t, http.MethodGet, "/api/v1/products/missing", "", nil)
	require.Equal(t, http.StatusNotFound, resp3.StatusCode)
	require.Equal(t, "product not found", got["error"])
}

// 5) неверный пароль - 401, без токена - 401
func TestHTTP_Unauthorized_TC(t *testing.T) {
	s := newServer(t)

	resp, _ := s.call(t, http.MethodPost, "/auth/login", "", map[string]string{"username": s.user, "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, got := s.call(t, http.MethodGet, "/api/v1/carts", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "missing bearer token", got["error"])
}
