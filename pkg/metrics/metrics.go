package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

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

var (
	CacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Cache operations",
		},
		[]string{"cache", "op"}, // cache: carts|products; op: hit|miss|evicted|expired|invalidated|stale
	)
	CacheSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_size",
			Help: "Number of items currently in cache",
		},
		[]string{"cache"},
	)
)

var (
	// CartOps - операции над корзинами; result: ok|<тип ошибки>.
	CartOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_operations_total",
			Help: "Cart operations by result",
		},
		[]string{"op", "result"},
	)

	SweeperRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cart_sweeper_runs_total",
			Help: "Number of completed sweeper passes",
		},
	)
	SweeperCleared = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cart_sweeper_cleared_total",
			Help: "Number of idle carts cleared",
		},
	)
	SweeperFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cart_sweeper_failed_total",
			Help: "Number of idle carts the sweeper failed to clear",
		},
	)
)

var registerOnce sync.Once

// MustRegister - регистрирует метрики в default-реестре; повторные вызовы безопасны.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			KafkaMessagesConsumed, KafkaMessagesProcessed, KafkaMessagesFailed,
			CacheOps, CacheSize,
			CartOps, SweeperRuns, SweeperCleared, SweeperFailed,
		)
	})
}
