package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/Gunvolt24/cart-service/internal/ports"
	"github.com/Gunvolt24/cart-service/pkg/httpx"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const (
	defaultProductsLimit = 20
	maxProductsLimit     = 100
)

// Handler - HTTP-обработчики корзины, каталога и логина.
type Handler struct {
	carts    ports.CartService
	products ports.ProductReader
	auth     ports.Authenticator
	tokens   ports.TokenIssuer
	log      ports.Logger
	timeout  time.Duration
}

func NewHandler(
	carts ports.CartService,
	products ports.ProductReader,
	auth ports.Authenticator,
	tokens ports.TokenIssuer,
	log ports.Logger,
	timeout time.Duration,
) *Handler {
	return &Handler{
		carts:    carts,
		products: products,
		auth:     auth,
		tokens:   tokens,
		log:      log,
		timeout:  timeout,
	}
}

// NewRouter - gin.Engine со всеми маршрутами. otelServiceName == "" отключает otelgin.
func NewRouter(h *Handler, otelServiceName string) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(httpx.RequestIDMiddleware())
	if otelServiceName != "" {
		r.Use(otelgin.Middleware(otelServiceName))
	}
	r.Use(httpx.RequestLogger(h.log))
	r.Use(h.withTimeout())

	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/auth/login", h.login)

	api := r.Group("/api/v1")
	api.GET("/products", h.listProducts)
	api.GET("/products/:sku", h.getProduct)

	carts := api.Group("/carts", h.requireUser())
	carts.GET("", h.getCart)
	carts.DELETE("", h.clearCart)
	carts.POST("/items", h.addItem)
	carts.DELETE("/items/:itemId", h.removeItem)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	return r
}

// withTimeout - дедлайн на обработку запроса; timeout <= 0 отключает.
func (h *Handler) withTimeout() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.timeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
