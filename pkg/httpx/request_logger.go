package httpx

import (
	"net/http"
	"time"

	"github.com/Gunvolt24/cart-service/internal/ports"
	"github.com/Gunvolt24/cart-service/pkg/ctxmeta"
	"github.com/gin-gonic/gin"
)

// RequestLogger - access log; /metrics и /ping не пишутся.
// Ответы 5xx пишутся как Errorf, 4xx как Warnf.
func RequestLogger(log ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		switch path {
		case "/metrics", "/ping":
			return
		case "":
			path = c.Request.URL.Path
		}

		ctx := c.Request.Context()
		tr, _ := ctxmeta.TraceIDFromContext(ctx)
		sp, _ := ctxmeta.SpanIDFromContext(ctx)
		status := c.Writer.Status()

		logf := log.Infof
		switch {
		case status >= http.StatusInternalServerError:
			logf = log.Errorf
		case status >= http.StatusBadRequest:
			logf = log.Warnf
		}

		// request_id и user логгер берёт из контекста сам
		logf(ctx,
			"request trace=%s span=%s method=%s path=%s status=%d ip=%s duration=%s size=%d",
			tr, sp,
			c.Request.Method,
			path,
			status,
			c.ClientIP(),
			time.Since(start),
			c.Writer.Size(),
		)
	}
}
