package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Gunvolt24/statshub/internal/broadcast"
	"github.com/Gunvolt24/statshub/internal/domain"
	"github.com/Gunvolt24/statshub/internal/ports/mocks"
	rest "github.com/Gunvolt24/statshub/internal/transport/http"
	"github.com/Gunvolt24/statshub/pkg/httpx"
	"github.com/Gunvolt24/statshub/pkg/validate"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
)

type noopLogger struct{}

func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

const validBatch = `[{"orderId":"A","sku":"S1","price":"100","quantity":2,"createdAt":"2024-01-01T10:00:00Z","brandName":"Nike"}]`

func newRouter(t *testing.T) (*gin.Engine, *mocks.MockStatsService, *broadcast.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockStatsService(ctrl)
	hub := broadcast.NewHub(4)
	h := rest.NewHandler(svc, hub, noopLogger{}, time.Second, rest.WithHeartbeat(time.Hour))
	return rest.NewRouter(h, "", ""), svc, hub
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) httpx.Problem {
	t.Helper()
	if ct := w.Header().Get("Content-Type"); ct != httpx.ContentTypeProblem {
		t.Fatalf("unexpected content type %q", ct)
	}
	var p httpx.Problem
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("invalid problem json: %v body=%s", err, w.Body.String())
	}
	return p
}

func TestSyncOrders_OK(t *testing.T) {
	r, svc, _ := newRouter(t)

	svc.EXPECT().Sync(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, batch []domain.Order) (int, error) {
			if len(batch) != 1 || batch[0].OrderID != "A" || !batch[0].UnitPrice.Equal(decimal.NewFromInt(100)) {
				t.Fatalf("unexpected batch: %+v", batch)
			}
			if _, ok := ctx.Deadline(); !ok {
				t.Fatalf("handler timeout must be applied")
			}
			return 1, nil
		})

	w := serve(r, http.MethodPost, "/orders/sync", validBatch)
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "1" {
		t.Fatalf("want 200 with count 1, got %d body=%s", w.Code, w.Body.String())
	}
	if w.Header().Get(httpx.HeaderRequestID) == "" {
		t.Fatalf("response must carry request id")
	}
}

func TestSyncOrders_CreatedAtForms(t *testing.T) {
	want := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name      string
		createdAt string
	}{
		{"utc", "2024-01-01T10:00:00Z"},
		{"offset", "2024-01-01T13:00:00+03:00"},
		{"no offset read as utc", "2024-01-01T10:00:00"},
		{"no offset with fraction", "2024-01-01T10:00:00.000"},
	}
	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r, svc, _ := newRouter(t)
			svc.EXPECT().Sync(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, batch []domain.Order) (int, error) {
					if len(batch) != 1 || !batch[0].CreatedAt.Equal(want) {
						t.Errorf("createdAt %q decoded as %v, want %v", tt.createdAt, batch[0].CreatedAt, want)
					}
					return 1, nil
				})

			body := strings.Replace(validBatch, "2024-01-01T10:00:00Z", tt.createdAt, 1)
			w := serve(r, http.MethodPost, "/orders/sync", body)
			if w.Code != http.StatusOK {
				t.Fatalf("want 200, got %d body=%s", w.Code, w.Body.String())
			}
		})
	}
}

func TestSyncOrders_InvalidJSON(t *testing.T) {
	r, svc, _ := newRouter(t)
	svc.EXPECT().Sync(gomock.Any(), gomock.Any()).Times(0)

	badDate := strings.Replace(validBatch, "2024-01-01T10:00:00Z", "01.01.2024", 1)
	for _, body := range []string{"{", `{"orderId":"A"}`, `[{"unknown":1}]`, "", badDate} {
		w := serve(r, http.MethodPost, "/orders/sync", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: want 400, got %d", body, w.Code)
		}
		if p := decodeProblem(t, w); p.Title != "Invalid JSON" || p.Detail == "" {
			t.Fatalf("body %q: unexpected problem %+v", body, p)
		}
	}
}

func TestSyncOrders_ValidationFailed(t *testing.T) {
	r, svc, _ := newRouter(t)

	fe := &validate.FieldError{Index: 1, Field: "price", Reason: "price должен быть больше нуля"}
	svc.EXPECT().Sync(gomock.Any(), gomock.Any()).Return(0, fmt.Errorf("validate batch: %w", fe))

	w := serve(r, http.MethodPost, "/orders/sync", validBatch)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", w.Code)
	}
	p := decodeProblem(t, w)
	if p.Type != httpx.ProblemTypeBadRequest || p.Title != "Validation Failed" || p.Status != http.StatusBadRequest {
		t.Fatalf("unexpected problem: %+v", p)
	}
	if got := p.Errors["[1].price"]; len(got) != 1 || got[0] != fe.Reason {
		t.Fatalf("unexpected errors map: %v", p.Errors)
	}
}

func TestSyncOrders_InternalError(t *testing.T) {
	r, svc, _ := newRouter(t)
	svc.EXPECT().Sync(gomock.Any(), gomock.Any()).Return(0, errors.New("bulk insert orders: db down"))

	w := serve(r, http.MethodPost, "/orders/sync", validBatch)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", w.Code)
	}
	p := decodeProblem(t, w)
	if p.Title != "Internal Server Error" || p.Detail != "internal server error" {
		t.Fatalf("internal details must not leak: %+v", p)
	}
}

func TestBrandStats(t *testing.T) {
	r, svc, _ := newRouter(t)
	svc.EXPECT().BrandRevenue(gomock.Any()).Return(domain.BrandRevenue{
		"Nike":   decimal.RequireFromString("260.00"),
		"Adidas": decimal.RequireFromString("240"),
	}, nil)

	w := serve(r, http.MethodGet, "/orders/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	if got := w.Body.String(); got != `{"Adidas":240,"Nike":260}` {
		t.Fatalf("unexpected body: %s", got)
	}
}

func TestDailyStats(t *testing.T) {
	r, svc, _ := newRouter(t)
	svc.EXPECT().DailyRevenue(gomock.Any()).Return([]domain.DailyRevenuePoint{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Revenue: decimal.RequireFromString("250")},
	}, nil)

	w := serve(r, http.MethodGet, "/orders/daily-stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	if got := w.Body.String(); got != `[{"date":"2024-01-01","revenue":250}]` {
		t.Fatalf("unexpected body: %s", got)
	}
}

func TestDailyStats_Error(t *testing.T) {
	r, svc, _ := newRouter(t)
	svc.EXPECT().DailyRevenue(gomock.Any()).Return(nil, errors.New("db down"))

	if w := serve(r, http.MethodGet, "/orders/daily-stats", ""); w.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", w.Code)
	}
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	r, _, _ := newRouter(t)

	w := serve(r, http.MethodGet, "/nope", "")
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "route not found") {
		t.Fatalf("want 404 route not found, got %d body=%s", w.Code, w.Body.String())
	}

	w = serve(r, http.MethodGet, "/orders/sync", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("want 405, got %d", w.Code)
	}
	if allow := w.Header().Get("Allow"); allow != http.MethodPost {
		t.Fatalf("want Allow: POST, got %q", allow)
	}
}

func TestPing(t *testing.T) {
	r, _, _ := newRouter(t)
	if w := serve(r, http.MethodGet, "/ping", ""); w.Code != http.StatusOK || w.Body.String() != "pong" {
		t.Fatalf("unexpected ping response: %d %s", w.Code, w.Body.String())
	}
}

func TestRevenueStream_ForwardsHubUpdates(t *testing.T) {
	r, _, hub := newRouter(t)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/hubs/revenue", http.NoBody).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.ServeHTTP(w, req)
	}()

	deadline := time.Now().Add(time.Second)
	for hub.Subscribers("revenue.update") == 0 {
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("stream did not subscribe")
		}
		time.Sleep(5 * time.Millisecond)
	}

	payload := `[{"date":"2024-01-01","revenue":"300"}]`
	_ = hub.Publish(context.Background(), "revenue.update", []byte(payload))
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("stream did not stop after client disconnect")
	}

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "event:update\n") || !strings.Contains(body, "data:"+payload+"\n") {
		t.Fatalf("update event not found in stream: %q", body)
	}
	if hub.Subscribers("revenue.update") != 0 {
		t.Fatalf("subscription must be released on disconnect")
	}
}
