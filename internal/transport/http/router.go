package rest

import (
	"net/http"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Gunvolt24/statshub/pkg/httpx"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// NewRouter — gin-роутер API статистики.
// otelServiceName пустой — без трейсинга; staticDir пустой — без SPA.
func NewRouter(h *Handler, staticDir, otelServiceName string) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(httpx.RequestIDMiddleware())
	if otelServiceName != "" {
		r.Use(otelgin.Middleware(otelServiceName))
	}
	r.Use(httpx.RequestLogger(h.log))

	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// таймаут только на запросы к данным: SSE-поток живёт, пока клиент подключён
	orders := r.Group("/orders", httpx.HandlerTimeout(h.timeout))
	orders.POST("/sync", h.syncOrders)
	orders.GET("/stats", h.brandStats)
	orders.GET("/daily-stats", h.dailyStats)

	r.GET("/hubs/revenue", h.revenueStream)

	if staticDir != "" {
		r.Static("/static", staticDir)
		r.StaticFile("/", filepath.Join(staticDir, "index.html"))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		if allow := allowedMethods(r.Routes(), c.Request.URL.Path); allow != "" {
			c.Header("Allow", allow)
		}
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	return r
}

// allowedMethods — методы, зарегистрированные для пути (маршруты без параметров).
func allowedMethods(routes gin.RoutesInfo, path string) string {
	var methods []string
	for _, ri := range routes {
		if ri.Path == path {
			methods = append(methods, ri.Method)
		}
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
