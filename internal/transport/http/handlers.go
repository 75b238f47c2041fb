package rest

import (
	"net/http"

	"github.com/Gunvolt24/cart-service/internal/domain"
	"github.com/Gunvolt24/cart-service/pkg/httpx"
	"github.com/gin-gonic/gin"
)

type addItemRequest struct {
	ItemID string `json:"itemId" binding:"required"`
}

func (h *Handler) getCart(c *gin.Context) {
	view, err := h.carts.GetCart(c.Request.Context(), currentUser(c))
	if err != nil {
		h.writeError(c, "GetCart", err)
		return
	}
	if view.Items == nil {
		view.Items = []domain.CartLineView{}
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "itemId is required"})
		return
	}
	if err := h.carts.AddItemToCart(c.Request.Context(), currentUser(c), req.ItemID); err != nil {
		h.writeError(c, "AddItemToCart", err)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *Handler) removeItem(c *gin.Context) {
	if err := h.carts.RemoveItemFromCart(c.Request.Context(), currentUser(c), c.Param("itemId")); err != nil {
		h.writeError(c, "RemoveItemFromCart", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) clearCart(c *gin.Context) {
	if err := h.carts.ClearCart(c.Request.Context(), currentUser(c)); err != nil {
		h.writeError(c, "ClearCart", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listProducts(c *gin.Context) {
	limit, offset := httpx.ParseLimitOffset(c, defaultProductsLimit, maxProductsLimit)

	products, err := h.products.ListProducts(c.Request.Context())
	if err != nil {
		h.writeError(c, "ListProducts", err)
		return
	}
	c.JSON(http.StatusOK, httpx.Page(products, limit, offset))
}

func (h *Handler) getProduct(c *gin.Context) {
	sku := c.Param("sku")
	p, err := h.products.GetProduct(c.Request.Context(), sku)
	if err != nil {
		h.writeError(c, "GetProduct", err)
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}
