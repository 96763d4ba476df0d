//go:build integration

package rest_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/statshub/internal/broadcast"
	cachemem "github.com/Gunvolt24/statshub/internal/cache/memory"
	"github.com/Gunvolt24/statshub/internal/domain"
	pgrepo "github.com/Gunvolt24/statshub/internal/repo/postgres"
	"github.com/Gunvolt24/statshub/internal/testutil"
	rest "github.com/Gunvolt24/statshub/internal/transport/http"
	"github.com/Gunvolt24/statshub/internal/usecase"
	"github.com/Gunvolt24/statshub/pkg/logger"
	"github.com/Gunvolt24/statshub/pkg/validate"
	"github.com/Gunvolt24/statshub/pkg/workerpool"
)

// Полный путь: POST /orders/sync → Postgres → агрегаты → SSE-событие.
func TestHTTP_SyncStatsAndStream_TC(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg, stop, err := testutil.StartPostgresTC(ctx)
	require.NoError(t, err)
	defer func() { _ = stop(context.Background()) }()
	require.NoError(t, testutil.ApplyMigrationsGoose(pg.DSN))

	logg, cleanup, err := logger.NewZapLogger(false)
	require.NoError(t, err)
	defer func() { _ = cleanup() }()

	cache, err := cachemem.New(16)
	require.NoError(t, err)
	pool := workerpool.New(1, 8)
	defer func() { _ = pool.Close() }()

	store := pgrepo.NewOrderStore(pg.Pool)
	hub := broadcast.NewHub(4)
	aggregates := usecase.NewAggregateService(store, cache, logg, time.Minute)
	notifier := usecase.NewBroadcastNotifier(aggregates, hub, pool, logg, "", 5*time.Second)
	syncSvc := usecase.NewSyncService(store, validate.NewOrderValidator(), usecase.NewCacheInvalidator(cache), notifier, logg)

	h := rest.NewHandler(usecase.NewStats(syncSvc, aggregates), hub, logg, 5*time.Second)
	ts := httptest.NewServer(rest.NewRouter(h, "", ""))
	defer ts.Close()

	// подписываемся на поток до синхронизации
	streamReq, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/hubs/revenue", http.NoBody)
	require.NoError(t, err)
	stream, err := http.DefaultClient.Do(streamReq)
	require.NoError(t, err)
	defer stream.Body.Close()
	require.Equal(t, "text/event-stream", stream.Header.Get("Content-Type"))
	require.Eventually(t, func() bool { return hub.Subscribers(notifier.Topic()) == 1 }, 5*time.Second, 20*time.Millisecond)

	batch := `[
		{"orderId":"O1","sku":"S1","price":"100.00","quantity":2,"createdAt":"2024-01-01T09:00:00Z","brandName":"Nike"},
		{"orderId":"O2","sku":"S2","price":"50.00","quantity":1,"createdAt":"2024-01-01T12:00:00Z","brandName":"Nike"},
		{"orderId":"O3","sku":"S3","price":"80.00","quantity":3,"createdAt":"2024-01-02T08:00:00Z","brandName":"Adidas"}
	]`
	require.Equal(t, "3", postSync(t, ts.URL, batch))
	require.Equal(t, "0", postSync(t, ts.URL, batch))

	// суммы — JSON-числа
	var brands map[string]json.Number
	getJSON(t, ts.URL+"/orders/stats", &brands)
	require.Equal(t, map[string]json.Number{"Nike": "250", "Adidas": "240"}, brands)

	var daily []struct {
		Date    string      `json:"date"`
		Revenue json.Number `json:"revenue"`
	}
	getJSON(t, ts.URL+"/orders/daily-stats", &daily)
	require.Len(t, daily, 2)
	require.Equal(t, "2024-01-01", daily[0].Date)
	require.Equal(t, json.Number("250"), daily[0].Revenue)
	require.Equal(t, "2024-01-02", daily[1].Date)
	require.Equal(t, json.Number("240"), daily[1].Revenue)

	// первое событие потока — дневной агрегат после первой синхронизации
	reader := bufio.NewReader(stream.Body)
	var event, data string
	for event == "" || data == "" {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimPrefix(line, "event:")
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimPrefix(line, "data:")
		}
	}
	require.Equal(t, "update", event)

	var points []domain.DailyRevenuePoint
	require.NoError(t, json.Unmarshal([]byte(data), &points))
	require.Len(t, points, 2)
	require.Equal(t, "250", points[0].Revenue.String())
}

func TestHTTP_SyncRejectsInvalidBatch_TC(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pg, stop, err := testutil.StartPostgresTC(ctx)
	require.NoError(t, err)
	defer func() { _ = stop(context.Background()) }()
	require.NoError(t, testutil.ApplyMigrationsGoose(pg.DSN))

	cache, err := cachemem.New(16)
	require.NoError(t, err)
	store := pgrepo.NewOrderStore(pg.Pool)
	aggregates := usecase.NewAggregateService(store, cache, noopLogger{}, time.Minute)
	hub := broadcast.NewHub(1)
	notifier := usecase.NewBroadcastNotifier(aggregates, hub, workerpool.New(1, 1), noopLogger{}, "", time.Second)
	syncSvc := usecase.NewSyncService(store, validate.NewOrderValidator(), usecase.NewCacheInvalidator(cache), notifier, noopLogger{})

	ts := httptest.NewServer(rest.NewRouter(rest.NewHandler(usecase.NewStats(syncSvc, aggregates), hub, noopLogger{}, time.Second), "", ""))
	defer ts.Close()

	body := `[{"orderId":"O1","sku":"S1","price":"0","quantity":1,"createdAt":"2024-01-01T09:00:00Z","brandName":"Nike"}]`
	resp, err := http.Post(ts.URL+"/orders/sync", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var problem struct {
		Title  string              `json:"title"`
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&problem))
	require.Equal(t, "Validation Failed", problem.Title)
	require.Contains(t, problem.Errors, "[0].price")

	keys, err := store.ExistingKeys(ctx, []string{"O1"})
	require.NoError(t, err)
	require.Empty(t, keys)
}

func postSync(t *testing.T, baseURL, body string) string {
	t.Helper()
	resp, err := http.Post(baseURL+"/orders/sync", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	return strings.TrimSpace(string(raw))
}

func getJSON(t *testing.T, url string, dst any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}
