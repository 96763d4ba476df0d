package httpx

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// HandlerTimeout — ограничивает время обработки запроса дедлайном контекста.
// d <= 0 — без ограничения.
func HandlerTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
