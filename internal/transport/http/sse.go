package rest

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// revenueStream — GET /hubs/revenue: Server-Sent Events.
// Каждое обновление хаба уходит событием "update" с дневным агрегатом в data.
func (h *Handler) revenueStream(c *gin.Context) {
	ctx := c.Request.Context()

	updates, unsubscribe := h.hub.Subscribe(h.topic)
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	h.log.Infof(ctx, "revenue stream opened topic=%s", h.topic)
	defer h.log.Infof(ctx, "revenue stream closed topic=%s", h.topic)

	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-updates:
			if !ok {
				return
			}
			c.SSEvent("update", string(payload))
		case <-heartbeat.C:
			// комментарий держит соединение живым через прокси
			if _, err := io.WriteString(c.Writer, ": ping\n\n"); err != nil {
				return
			}
		}
		c.Writer.Flush()
	}
}
