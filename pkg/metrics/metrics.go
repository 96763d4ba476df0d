package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Kafka-консьюмер пачек заказов.
var (
	KafkaMessagesConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_consumed_total",
			Help: "Number of messages fetched from Kafka",
		},
		[]string{"topic"},
	)
	KafkaMessagesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_processed_total",
			Help: "Number of messages processed successfully",
		},
		[]string{"topic"},
	)
	KafkaMessagesFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_failed_total",
			Help: "Number of messages failed to process",
		},
		[]string{"topic"},
	)
)

// In-process кэш агрегатов (бэкенд memory).
var (
	CacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Cache operations",
		},
		[]string{"op"}, // hit|miss|evicted|expired
	)
	CacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_size",
			Help: "Number of items currently in cache",
		},
	)
)

// Синхронизация заказов.
var (
	SyncBatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statshub_sync_batches_total",
			Help: "Sync batches by outcome",
		},
		[]string{"result"}, // inserted|noop|invalid|error
	)
	OrdersSynced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "statshub_orders_synced_total",
			Help: "Orders actually written to the store",
		},
	)
)

// Агрегаты и рассылка.
var (
	AggregateCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statshub_aggregate_cache_total",
			Help: "Aggregate cache lookups by kind and result",
		},
		[]string{"kind", "result"}, // hit|miss|error|corrupt|stale
	)
	AggregateRecompute = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "statshub_aggregate_recompute_seconds",
			Help:    "Aggregate recomputation latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	Broadcasts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statshub_broadcast_total",
			Help: "Daily aggregate broadcasts by outcome",
		},
		[]string{"result"}, // ok|error|dropped
	)
	HubDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "statshub_hub_dropped_total",
			Help: "Updates dropped for slow live subscribers",
		},
	)
	HubSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "statshub_hub_subscribers",
			Help: "Live subscribers connected to this instance",
		},
	)
)

var registerOnce sync.Once

// MustRegister — регистрирует метрики в default registry; повторный вызов ничего не делает.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			KafkaMessagesConsumed, KafkaMessagesProcessed, KafkaMessagesFailed,
			CacheOps, CacheSize,
			SyncBatches, OrdersSynced,
			AggregateCache, AggregateRecompute,
			Broadcasts, HubDropped, HubSubscribers,
		)
	})
}
