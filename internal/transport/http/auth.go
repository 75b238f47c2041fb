package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Gunvolt24/cart-service/internal/domain"
	"github.com/Gunvolt24/cart-service/pkg/ctxmeta"
	"github.com/gin-gonic/gin"
)

const (
	headerAuthorization = "Authorization"
	bearerPrefix        = "Bearer "
	ctxUserKey          = "user"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	ctx := c.Request.Context()
	if err := h.auth.Authenticate(ctx, req.Username, req.Password); err != nil {
		h.writeError(c, "Authenticate", err)
		return
	}

	token, err := h.tokens.Issue(req.Username)
	if err != nil {
		h.writeError(c, "Issue", err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{Token: token})
}

// requireUser - Bearer-токен обязателен; имя пользователя кладётся в gin и в ctxmeta.
func (h *Handler) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(headerAuthorization)
		if !strings.HasPrefix(raw, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		username, err := h.tokens.Parse(strings.TrimSpace(strings.TrimPrefix(raw, bearerPrefix)))
		if err != nil {
			if !errors.Is(err, domain.ErrUnauthorized) {
				h.log.Warnf(c.Request.Context(), "token parse failed: %v", err)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ctxUserKey, username)
		c.Request = c.Request.WithContext(ctxmeta.WithUser(c.Request.Context(), username))
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(ctxUserKey)
}
