package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/Gunvolt24/cart-service/internal/domain"
	"github.com/gin-gonic/gin"
)

const msgInternal = "internal server error"

// statusFor - HTTP-статус для ошибки; 0 означает «вне таксономии» (500).
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrCartNotFound),
		errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	}
	return 0
}

func (h *Handler) writeError(c *gin.Context, op string, err error) {
	if status := statusFor(err); status != 0 {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if errors.Is(err, context.DeadlineExceeded) {
		h.log.Errorf(ctx, "%s timed out: %v", op, err)
	} else {
		h.log.Errorf(ctx, "%s failed: %v", op, err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
}
