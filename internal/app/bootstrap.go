package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Gunvolt24/statshub/config"
	"github.com/Gunvolt24/statshub/internal/broadcast"
	cachemem "github.com/Gunvolt24/statshub/internal/cache/memory"
	"github.com/Gunvolt24/statshub/internal/cache/rediscache"
	"github.com/Gunvolt24/statshub/internal/kafka"
	"github.com/Gunvolt24/statshub/internal/ports"
	"github.com/Gunvolt24/statshub/internal/repo/postgres"
	"github.com/Gunvolt24/statshub/internal/scheduler"
	rest "github.com/Gunvolt24/statshub/internal/transport/http"
	"github.com/Gunvolt24/statshub/internal/usecase"
	"github.com/Gunvolt24/statshub/pkg/logger"
	"github.com/Gunvolt24/statshub/pkg/metrics"
	"github.com/Gunvolt24/statshub/pkg/telemetry"
	"github.com/Gunvolt24/statshub/pkg/validate"
	"github.com/Gunvolt24/statshub/pkg/workerpool"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

const (
	backendMemory = "memory"
	backendRedis  = "redis"
	backendKafka  = "kafka"
	backendLocal  = "local"
)

// NamedRunner — фоновый компонент с именем для логов.
type NamedRunner struct {
	Name string
	ports.Runner
}

// App — собранное приложение и его внешние интерфейсы (HTTP, фоновые компоненты).
type App struct {
	Logger          ports.Logger  // логгер
	HTTPServer      *http.Server  // HTTP-сервер API
	MetricsServer   *http.Server  // отдельный порт метрик; nil — только /metrics основного сервера
	Runners         []NamedRunner // консьюмер, relay, планировщик
	gracefulTimeout time.Duration // время ожидания завершения HTTP-сервера
}

// Cleanup — функция освобождения ресурсов.
type Cleanup func()

// applyGinMode — устанавливает режим Gin по строке;
// неизвестное значение → debug и предупреждение в лог.
func applyGinMode(ctx context.Context, mode string, log ports.Logger) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	case "", "debug":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.DebugMode)
		log.Warnf(ctx, "unknown GIN_MODE=%q, fallback to debug", mode)
	}
}

// checkBackends — выбор бэкендов проверяется до подключения к внешним системам.
func checkBackends(cfg *config.Config) error {
	switch strings.ToLower(cfg.Cache.Backend) {
	case backendMemory, backendRedis:
	default:
		return fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
	switch strings.ToLower(cfg.Broadcast.Backend) {
	case backendLocal, backendRedis, backendKafka:
	default:
		return fmt.Errorf("unknown broadcast backend %q", cfg.Broadcast.Backend)
	}
	return nil
}

func needsRedis(cfg *config.Config) bool {
	return strings.EqualFold(cfg.Cache.Backend, backendRedis) || strings.EqualFold(cfg.Broadcast.Backend, backendRedis)
}

// closers — освобождение ресурсов в обратном порядке регистрации.
type closers struct {
	mu  sync.Mutex
	fns []func()
}

func (c *closers) add(fn func()) {
	c.mu.Lock()
	c.fns = append(c.fns, fn)
	c.mu.Unlock()
}

func (c *closers) run() {
	c.mu.Lock()
	fns := c.fns
	c.fns = nil
	c.mu.Unlock()
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

// Bootstrap — собирает зависимости и возвращает приложение, функцию очистки и ошибку.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, Cleanup, error) {
	if err := checkBackends(cfg); err != nil {
		return nil, func() {}, err
	}

	// Логгер (dev/prod режим задаётся конфигурацией).
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		return nil, func() {}, err
	}

	var cl closers
	cl.add(func() {
		if cErr := cleanupLogger(); cErr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cErr)
		}
	})
	fail := func(err error) (*App, Cleanup, error) {
		cl.run()
		return nil, func() {}, err
	}

	// Регистрация метрик (Prometheus).
	metrics.MustRegister()

	// Схема БД и пул подключений Postgres.
	if cfg.Postgres.Migrate {
		if err := postgres.Migrate(ctx, cfg.Postgres.DSN); err != nil {
			return fail(fmt.Errorf("migrate: %w", err))
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		return fail(err)
	}
	cl.add(pool.Close)

	// Трейсинг OTEL (при выключенной конфигурации — no-op).
	shutdownTrace, err := telemetry.SetupTracing(ctx, telemetry.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		logg.Warnf(ctx, "failed to setup tracing: %v", err)
	} else {
		if cfg.Tracing.Enabled {
			logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
				cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		}
		cl.add(func() {
			if tErr := shutdownTrace(context.Background()); tErr != nil {
				logg.Warnf(ctx, "shutdown tracing: %v", tErr)
			}
		})
	}

	// Redis нужен только выбранным бэкендам.
	var redisClient *redis.Client
	if needsRedis(cfg) {
		redisClient, err = rediscache.NewClient(ctx, rediscache.Config{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			UseTLS:       cfg.Redis.UseTLS,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return fail(err)
		}
		cl.add(func() {
			if rErr := redisClient.Close(); rErr != nil && !errors.Is(rErr, redis.ErrClosed) {
				logg.Warnf(ctx, "redis close: %v", rErr)
			}
		})
	}

	// Кэш агрегатов.
	var cache ports.AggregateCache
	if strings.EqualFold(cfg.Cache.Backend, backendRedis) {
		cache = rediscache.NewAggregateCache(redisClient)
	} else {
		mem, mErr := cachemem.New(cfg.Cache.Capacity)
		if mErr != nil {
			return fail(fmt.Errorf("memory cache: %w", mErr))
		}
		cache = mem
	}

	// Доменный слой: чтение агрегатов.
	store := postgres.NewOrderStore(pool)
	orderValidator := validate.NewOrderValidator()
	invalidator := usecase.NewCacheInvalidator(cache)
	aggregates := usecase.NewAggregateService(store, cache, logg, cfg.Cache.TTL,
		usecase.WithInvalidationCounter(invalidator))

	// Рассылка: локальный хаб + выбранный транспорт.
	hub := broadcast.NewHub(cfg.Broadcast.SubscriberBuffer)
	cl.add(func() { _ = hub.Close() })

	var runners []NamedRunner
	var broadcaster ports.Broadcaster = hub
	switch strings.ToLower(cfg.Broadcast.Backend) {
	case backendRedis:
		broadcaster = broadcast.NewRedisPublisher(redisClient)
		relay := broadcast.NewRedisRelay(redisClient, cfg.Broadcast.Topic, hub, logg)
		runners = append(runners, NamedRunner{Name: "redis relay", Runner: relay})
	case backendKafka:
		// хаб получает обновления через relay, как и остальные экземпляры
		kp := broadcast.NewKafkaPublisher(broadcast.KafkaPublisherConfig{
			Brokers: cfg.Broadcast.Brokers,
		}, logg)
		cl.add(func() {
			if kErr := kp.Close(); kErr != nil {
				logg.Warnf(ctx, "kafka publisher close: %v", kErr)
			}
		})
		broadcaster = kp
		relay := broadcast.NewKafkaRelay(broadcast.KafkaRelayConfig{
			Brokers: cfg.Broadcast.Brokers,
			Topic:   cfg.Broadcast.Topic,
		}, hub, logg)
		runners = append(runners, NamedRunner{Name: "kafka relay", Runner: relay})
	}

	// Пул фоновых задач уведомлений; при очистке дожидаемся принятых задач.
	tasks := workerpool.New(cfg.Broadcast.Workers, cfg.Broadcast.QueueSize,
		workerpool.WithPanicHandler(func(taskCtx context.Context, recovered any) {
			logg.Errorf(taskCtx, "background task panic: %v", recovered)
		}))
	cl.add(func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.GracefulTimeout)
		defer cancel()
		if pErr := tasks.Shutdown(drainCtx); pErr != nil {
			logg.Warnf(ctx, "task pool drain: %v", pErr)
		}
	})

	notifier := usecase.NewBroadcastNotifier(aggregates, broadcaster, tasks, logg, cfg.Broadcast.Topic, cfg.Broadcast.Timeout)
	syncService := usecase.NewSyncService(store, orderValidator, invalidator, notifier, logg,
		usecase.WithInvalidateTimeout(cfg.Cache.InvalidateTimeout))
	stats := usecase.NewStats(syncService, aggregates)

	// Прогрев кэша.
	if cfg.Cache.WarmUp {
		if err := aggregates.WarmUp(ctx); err != nil {
			logg.Warnf(ctx, "warm-up cache failed: %v", err)
		}
	}

	// Режим Gin.
	applyGinMode(ctx, cfg.HTTP.GinMode, logg)

	// Имя сервиса для otelgin (только при включённом трейсинге).
	otelServiceName := ""
	if cfg.Tracing.Enabled {
		otelServiceName = cfg.Tracing.ServiceName
	}

	// Роутер и HTTP-сервер.
	httpHandler := rest.NewHandler(stats, hub, logg, cfg.HTTP.HandlerTimeout,
		rest.WithRevenueTopic(notifier.Topic()),
		rest.WithHeartbeat(cfg.HTTP.Heartbeat),
	)
	router := rest.NewRouter(httpHandler, cfg.HTTP.StaticDir, otelServiceName)

	// При остановке хаб закрывается первым: SSE-обработчики выходят, Shutdown не ждёт таймаута.
	httpSrv := newHTTPServer(cfg.HTTP, router, hub)

	var metricsSrv *http.Server
	if cfg.Metrics.Addr != "" && cfg.Metrics.Addr != cfg.HTTP.Addr {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		}
	}

	// Консьюмер Kafka.
	if cfg.Kafka.Enabled {
		consumer := kafka.NewConsumer(&kafka.ConsumerConfig{
			Brokers:        cfg.Kafka.Brokers,
			GroupID:        cfg.Kafka.GroupID,
			Topic:          cfg.Kafka.Topic,
			StartOffset:    cfg.Kafka.StartOffset,
			ProcessTimeout: cfg.Kafka.ProcessTimeout,
			RetryInitial:   cfg.Kafka.RetryInitial,
			RetryMax:       cfg.Kafka.RetryMax,
		}, syncService, logg)
		runners = append(runners, NamedRunner{Name: "kafka consumer", Runner: consumer})
	}

	// Плановый прогрев агрегатов.
	refresher := scheduler.NewCacheRefresher(aggregates, logg, cfg.Cache.RefreshCron, cfg.Cache.RefreshTimeout)
	runners = append(runners, NamedRunner{Name: "cache refresher", Runner: refresher})

	// Фоновые компоненты закрываются первыми.
	cl.add(func() {
		for i := len(runners) - 1; i >= 0; i-- {
			if rErr := runners[i].Close(); rErr != nil {
				logg.Warnf(ctx, "%s close error: %v", runners[i].Name, rErr)
			}
		}
	})

	app := &App{
		Logger:          logg,
		HTTPServer:      httpSrv,
		MetricsServer:   metricsSrv,
		Runners:         runners,
		gracefulTimeout: cfg.HTTP.GracefulTimeout,
	}
	return app, cl.run, nil
}

// Run — запускает HTTP-сервер и фоновые компоненты; ждёт отмены контекста или
// фатальной ошибки, затем останавливает всё. Возвращает фатальную ошибку, если она была.
func (a *App) Run(ctx context.Context) error {
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	errCh := make(chan error, len(a.Runners)+2)
	var wg sync.WaitGroup

	// Запуск фоновых компонентов; отмена контекста — штатная остановка.
	for _, r := range a.Runners {
		wg.Add(1)
		go func(r NamedRunner) {
			defer wg.Done()
			a.Logger.Infof(ctx, "%s starting", r.Name)
			err := r.Run(runCtx)
			switch {
			case err == nil, errors.Is(err, context.Canceled), runCtx.Err() != nil && errors.Is(err, runCtx.Err()):
				a.Logger.Infof(ctx, "%s stopped", r.Name)
			default:
				errCh <- fmt.Errorf("%s: %w", r.Name, err)
			}
		}(r)
	}

	// Запуск HTTP-серверов.
	for _, srv := range []*http.Server{a.HTTPServer, a.MetricsServer} {
		if srv == nil {
			continue
		}
		go func(srv *http.Server) {
			a.Logger.Infof(ctx, "http server starting (addr=%s)", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("http server %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	// Ожидание сигнала остановки или фоновой ошибки.
	var runErr error
	select {
	case <-ctx.Done():
		a.Logger.Infof(ctx, "shutdown requested, starting graceful shutdown")
	case runErr = <-errCh:
		a.Logger.Errorf(ctx, "background error: %v", runErr)
	}
	cancelRun()

	gt := a.gracefulTimeout
	if gt <= 0 {
		gt = 5 * time.Second
	}

	// Корректная остановка HTTP-серверов.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gt)
	defer cancel()

	for _, srv := range []*http.Server{a.HTTPServer, a.MetricsServer} {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warnf(ctx, "http server shutdown failed addr=%s: %v", srv.Addr, err)
		} else {
			a.Logger.Infof(ctx, "http server stopped gracefully addr=%s", srv.Addr)
		}
	}

	// Остановка фоновых компонентов.
	for _, r := range a.Runners {
		if err := r.Close(); err != nil {
			a.Logger.Warnf(ctx, "%s close error: %v", r.Name, err)
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		a.Logger.Warnf(ctx, "background components did not stop in %s", gt)
	}

	a.Logger.Infof(ctx, "service stopped")
	return runErr
}
