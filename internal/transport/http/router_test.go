package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Gunvolt24/cart-service/internal/domain"
	"github.com/Gunvolt24/cart-service/internal/ports/mocks"
	rest "github.com/Gunvolt24/cart-service/internal/transport/http"
	"github.com/Gunvolt24/cart-service/pkg/ctxmeta"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
)

type noopLogger struct{}

func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

type fixture struct {
	carts    *mocks.MockCartService
	products *mocks.MockProductReader
	auth     *mocks.MockAuthenticator
	tokens   *mocks.MockTokenIssuer
	router   *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)

	f := &fixture{
		carts:    mocks.NewMockCartService(ctrl),
		products: mocks.NewMockProductReader(ctrl),
		auth:     mocks.NewMockAuthenticator(ctrl),
		tokens:   mocks.NewMockTokenIssuer(ctrl),
	}
	h := rest.NewHandler(f.carts, f.products, f.auth, f.tokens, noopLogger{}, time.Second)
	f.router = rest.NewRouter(h, "")
	return f
}

func (f *fixture) do(method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// asJohn - токен "good" принадлежит john.
func (f *fixture) asJohn() {
	f.tokens.EXPECT().Parse("good").Return("john", nil)
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json %q: %v", w.Body.String(), err)
	}
	return body["error"]
}

func TestLogin_OK(t *testing.T) {
	f := newFixture(t)
	f.auth.EXPECT().Authenticate(gomock.Any(), "john", "1234").Return(nil)
	f.tokens.EXPECT().Issue("john").Return("jwt-token", nil)

	w := f.do(http.MethodPost, "/auth/login", `{"username":"john","password":"1234"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var got map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got["token"] != "jwt-token" {
		t.Fatalf("token: %v", got)
	}
}

func TestLogin_WrongPassword_401(t *testing.T) {
	f := newFixture(t)
	f.auth.EXPECT().Authenticate(gomock.Any(), "john", "nope").
		Return(fmt.Errorf("%w: invalid username or password", domain.ErrUnauthorized))

	w := f.do(http.MethodPost, "/auth/login", `{"username":"john","password":"nope"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", w.Code)
	}
}

func TestLogin_MissingFields_400(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/auth/login", `{"username":"john"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", w.Code)
	}
}

func TestCarts_NoToken_401(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/carts", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", w.Code)
	}
	if msg := errorOf(t, w); msg != "missing bearer token" {
		t.Fatalf("error: %q", msg)
	}
}

func TestCarts_InvalidToken_401(t *testing.T) {
	f := newFixture(t)
	f.tokens.EXPECT().Parse("bad").Return("", fmt.Errorf("%w: invalid token", domain.ErrUnauthorized))

	w := f.do(http.MethodGet, "/api/v1/carts", "", "bad")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", w.Code)
	}
}

func TestGetCart_OK(t *testing.T) {
	f := newFixture(t)
	f.asJohn()
	f.carts.EXPECT().GetCart(gomock.Any(), "john").Return(&domain.CartView{
		UserID: "john",
		Items: []domain.CartLineView{
			{ItemID: "sku123", Quantity: 2, Price: decimal.RequireFromString("1000.00"), Name: "Laptop"},
		},
	}, nil)

	w := f.do(http.MethodGet, "/api/v1/carts", "", "good")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var got struct {
		Items []struct {
			ItemID   string `json:"itemId"`
			Quantity int    `json:"quantity"`
			Price    string `json:"price"`
			Name     string `json:"name"`
		} `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].ItemID != "sku123" || got.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", got.Items)
	}
	if got.Items[0].Price != "1000" {
		t.Fatalf("price must be a decimal string, got %q", got.Items[0].Price)
	}
	if strings.Contains(w.Body.String(), "john") {
		t.Fatalf("user id must not be serialised: %s", w.Body.String())
	}
}

func TestGetCart_EmptyItemsAreArray(t *testing.T) {
	f := newFixture(t)
	f.asJohn()
	f.carts.EXPECT().GetCart(gomock.Any(), "john").Return(&domain.CartView{UserID: "john"}, nil)

	w := f.do(http.MethodGet, "/api/v1/carts", "", "good")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"items":[]}` {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
}

func TestGetCart_NotFound_404(t *testing.T) {
	f := newFixture(t)
	f.asJohn()
	f.carts.EXPECT().GetCart(gomock.Any(), "john").
		Return(nil, fmt.Errorf("%w for user: john", domain.ErrCartNotFound))

	w := f.do(http.MethodGet, "/api/v1/carts", "", "good")
	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", w.Code)
	}
	if msg := errorOf(t, w); msg != "cart not found for user: john" {
		t.Fatalf("error: %q", msg)
	}
}

func TestGetCart_UserReachesContext(t *testing.T) {
	f := newFixture(t)
	f.asJohn()
	f.carts.EXPECT().GetCart(gomock.Any(), "john").DoAndReturn(
		func(ctx context.Context, _ string) (*domain.CartView, error) {
			if u, ok := ctxmeta.UserFromContext(ctx); !ok || u != "john" {
				t.Errorf("user in ctx: %q %v", u, ok)
			}
			if _, ok := ctx.Deadline(); !ok {
				t.Errorf("request context must carry a deadline")
			}
			return &domain.CartView{UserID: "john"}, nil
		})

	f.do(http.MethodGet, "/api/v1/carts", "", "good")
}

func TestGetCart_Inconsistent_500(t *testing.T) {
	f := newFixture(t)
	f.asJohn()
	f.carts.EXPECT().GetCart(gomock.Any(), "john").
		Return(nil, fmt.Errorf("%w: gone", domain.ErrCartInconsistent))

	w := f.do(http.MethodGet, "/api/v1/carts", "", "good")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", w.Code)
	}
	if msg := errorOf(t, w); msg != "internal server error" {
		t.Fatalf("error: %q", msg)
	}
}

func TestAddItem_Created(t *testing.T) {
	f := newFixture(t)
	f.asJohn()
	f.carts.EXPECT().AddItemToCart(gomock.Any(), "john", "sku123").Return(nil)

	w := f.do(http.MethodPost, "/api/v1/carts/items", `{"itemId":"sku123"}`, "good")
	if w.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestAddItem_MissingItemID_400(t *testing.T) {
	f := newFixture(t)
	f.asJohn()

	w := f.do(http.MethodPost, "/api/v1/carts/items", `{}`, "good")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", w.Code)
	}
}

func TestAddItem_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unknown product", fmt.Errorf("%w: sku999", domain.ErrProductNotFound), http.StatusNotFound},
		{"no stock", fmt.Errorf("%w for product: sku123", domain.ErrInsufficientStock), http.StatusConflict},
		{"bad request", fmt.Errorf("%w: item is required", domain.ErrBadRequest), http.StatusBadRequest},
		{"store failure", errors.New("begin tx: connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.asJohn()
			f.carts.EXPECT().AddItemToCart(gomock.Any(), "john", "sku123").Return(tc.err)

			w := f.do(http.MethodPost, "/api/v1/carts/items", `{"itemId":"sku123"}`, "good")
			if w.Code != tc.want {
				t.Fatalf("want %d, got %d, body=%s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestRemoveItem_NoContent(t *testing.T) {
	f := newFixture(t)
	f.asJohn()
	f.carts.EXPECT().RemoveItemFromCart(gomock.Any(), "john", "sku123").Return(nil)

	w := f.do(http.MethodDelete, "/api/v1/carts/items/sku123", "", "good")
	if w.Code != http.StatusNoContent {
		t.Fatalf("want 204, got %d", w.Code)
	}
}

func TestRemoveItem_NotInCart_404(t *testing.T) {
	f := newFixture(t)
	f.asJohn()
	f.carts.EXPECT().RemoveItemFromCart(gomock.Any(), "john", "sku456").
		Return(fmt.Errorf("%w: sku456", domain.ErrItemNotFound))

	w := f.do(http.MethodDelete, "/api/v1/carts/items/sku456", "", "good")
	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", w.Code)
	}
}

func TestClearCart_NoContent(t *testing.T) {
	f := newFixture(t)
	f.asJohn()
	f.carts.EXPECT().ClearCart(gomock.Any(), "john").Return(nil)

	w := f.do(http.MethodDelete, "/api/v1/carts", "", "good")
	if w.Code != http.StatusNoContent {
		t.Fatalf("want 204, got %d", w.Code)
	}
}

func TestListProducts_Paginated(t *testing.T) {
	f := newFixture(t)
	all := []domain.Product{
		{SKU: "a", Name: "A", Price: decimal.NewFromInt(1), Quantity: 1},
		{SKU: "b", Name: "B", Price: decimal.NewFromInt(2), Quantity: 1},
		{SKU: "c", Name: "C", Price: decimal.NewFromInt(3), Quantity: 1},
	}
	f.products.EXPECT().ListProducts(gomock.Any()).Return(all, nil)

	w := f.do(http.MethodGet, "/api/v1/products?limit=1&offset=1", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	var got []domain.Product
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got) != 1 || got[0].SKU != "b" {
		t.Fatalf("unexpected page: %+v", got)
	}
}

func TestGetProduct(t *testing.T) {
	f := newFixture(t)
	f.products.EXPECT().GetProduct(gomock.Any(), "sku123").
		Return(&domain.Product{SKU: "sku123", Name: "Laptop", Price: decimal.NewFromInt(1000), Quantity: 5}, nil)
	f.products.EXPECT().GetProduct(gomock.Any(), "missing").Return(nil, nil)

	if w := f.do(http.MethodGet, "/api/v1/products/sku123", "", ""); w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	w := f.do(http.MethodGet, "/api/v1/products/missing", "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", w.Code)
	}
	if msg := errorOf(t, w); msg != "product not found" {
		t.Fatalf("error: %q", msg)
	}
}

func TestNoRoute_404(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/no-such-route", "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", w.Code)
	}
	if msg := errorOf(t, w); msg != "route not found" {
		t.Fatalf("error: %q", msg)
	}
}

func TestMethodNotAllowed_405(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPut, "/api/v1/products/sku123", "", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("want 405, got %d, body=%s", w.Code, w.Body.String())
	}
	if allow := w.Header().Get("Allow"); allow != "GET" {
		t.Fatalf("want Allow: GET, got %q", allow)
	}
}

func TestPing_200(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/ping", "", "")
	if w.Code != http.StatusOK || w.Body.String() != "pong" {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}
}

func TestMetrics_200(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/metrics", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	if w.Body.Len() == 0 {
		t.Fatal("metrics body is empty")
	}
}

func TestRequestID_EchoedBack(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "req-42" {
		t.Fatalf("want req-42, got %q", got)
	}
}
