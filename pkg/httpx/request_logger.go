package httpx

import (
	"time"

	"github.com/Gunvolt24/statshub/internal/ports"
	"github.com/gin-gonic/gin"
)

// quietPaths — служебные маршруты, которые не логируются.
var quietPaths = map[string]struct{}{
	"/metrics": {},
	"/ping":    {},
}

// RequestLogger — middleware для логирования HTTP-запросов.
// request_id и trace_id логгер берёт из контекста запроса сам.
func RequestLogger(log ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if _, quiet := quietPaths[path]; quiet {
			return
		}
		if path == "" {
			path = c.Request.URL.Path
		}

		status := c.Writer.Status()
		logf := log.Infof
		if status >= 500 {
			logf = log.Warnf
		}
		logf(
			c.Request.Context(),
			"request method=%s path=%s status=%d ip=%s duration=%s size=%d",
			c.Request.Method, path, status, c.ClientIP(), time.Since(start), c.Writer.Size(),
		)
	}
}
