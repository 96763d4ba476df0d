package rest

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Gunvolt24/statshub/internal/ports"
	"github.com/Gunvolt24/statshub/pkg/httpx"
	"github.com/Gunvolt24/statshub/pkg/validate"
	"github.com/gin-gonic/gin"
)

// maxSyncBody — предел размера тела POST /orders/sync.
const maxSyncBody = 10 << 20

// RevenueHub — источник живых обновлений выручки для SSE.
type RevenueHub interface {
	Subscribe(topic string) (<-chan []byte, func())
}

// Handler — HTTP-обработчики API статистики заказов.
type Handler struct {
	svc     ports.StatsService
	hub     RevenueHub
	log     ports.Logger
	timeout time.Duration

	topic     string
	heartbeat time.Duration
}

// HandlerOption — настройка Handler.
type HandlerOption func(*Handler)

// WithRevenueTopic — топик хаба, который транслирует /hubs/revenue.
func WithRevenueTopic(topic string) HandlerOption {
	return func(h *Handler) {
		if topic != "" {
			h.topic = topic
		}
	}
}

// WithHeartbeat — период комментариев-пингов в SSE-потоке.
func WithHeartbeat(d time.Duration) HandlerOption {
	return func(h *Handler) {
		if d > 0 {
			h.heartbeat = d
		}
	}
}

// NewHandler — timeout ограничивает запросы к данным (0 — без ограничения).
func NewHandler(svc ports.StatsService, hub RevenueHub, log ports.Logger, timeout time.Duration, opts ...HandlerOption) *Handler {
	h := &Handler{
		svc:       svc,
		hub:       hub,
		log:       log,
		timeout:   timeout,
		topic:     "revenue.update",
		heartbeat: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// syncOrders — POST /orders/sync: тело — JSON-массив заказов, ответ — число новых.
func (h *Handler) syncOrders(c *gin.Context) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxSyncBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.WriteProblem(c, httpx.Problem{
				Status: http.StatusRequestEntityTooLarge,
				Detail: "request body too large",
			})
			return
		}
		h.writeError(c, err)
		return
	}

	batch, err := validate.DecodeBatch(raw)
	if err != nil {
		httpx.WriteProblem(c, httpx.Problem{
			Type:   httpx.ProblemTypeBadRequest,
			Title:  "Invalid JSON",
			Status: http.StatusBadRequest,
			Detail: err.Error(),
		})
		return
	}

	inserted, err := h.svc.Sync(c.Request.Context(), batch)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, inserted)
}

// brandStats — GET /orders/stats: выручка по брендам.
func (h *Handler) brandStats(c *gin.Context) {
	brands, err := h.svc.BrandRevenue(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, brands)
}

// dailyStats — GET /orders/daily-stats: выручка по дням.
func (h *Handler) dailyStats(c *gin.Context) {
	points, err := h.svc.DailyRevenue(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

// writeError — единая точка отображения ошибок в HTTP-ответ.
func (h *Handler) writeError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var fe *validate.FieldError
	switch {
	case errors.As(err, &fe):
		httpx.WriteProblem(c, httpx.Problem{
			Type:   httpx.ProblemTypeBadRequest,
			Title:  "Validation Failed",
			Status: http.StatusBadRequest,
			Errors: validate.ValidationErrors(err),
		})
	case errors.Is(err, validate.ErrInvalidOrder):
		httpx.WriteProblem(c, httpx.Problem{
			Type:   httpx.ProblemTypeBadRequest,
			Title:  "Invalid JSON",
			Status: http.StatusBadRequest,
			Detail: err.Error(),
		})
	default:
		h.log.Errorf(ctx, "request failed method=%s path=%s err=%v", c.Request.Method, c.Request.URL.Path, err)
		httpx.WriteProblem(c, httpx.Problem{
			Type:   httpx.ProblemTypeInternal,
			Title:  "Internal Server Error",
			Status: http.StatusInternalServerError,
			Detail: "internal server error",
		})
	}
}
