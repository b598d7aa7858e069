package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PagesFetched counts upstream sale line pages fetched by status
	PagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_pages_fetched_total",
			Help: "Total number of Lightspeed sale line pages fetched",
		},
		[]string{"status"},
	)

	// SalesProcessed counts sales assembled from fetched lines
	SalesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_sales_processed_total",
			Help: "Total number of sales assembled from sale lines",
		},
	)

	// UpstreamRequestDuration tracks upstream API request latency
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sync_upstream_request_duration_seconds",
			Help:    "Lightspeed API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// ItemCacheHits counts item detail cache hits
	ItemCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_item_cache_hits_total",
			Help: "Total number of item detail cache hits",
		},
	)

	// ItemCacheMisses counts item detail cache misses
	ItemCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_item_cache_misses_total",
			Help: "Total number of item detail cache misses",
		},
	)

	// TokenRefreshes counts access token refresh attempts by status
	TokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_token_refreshes_total",
			Help: "Total number of access token refresh attempts",
		},
		[]string{"status"},
	)

	// SalesPersisted counts new sale documents written by the dedup writer
	SalesPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_sales_persisted_total",
			Help: "Total number of new sale documents persisted",
		},
	)

	// PersistenceErrors counts failed persistence operations by stage
	PersistenceErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_persistence_errors_total",
			Help: "Total number of persistence errors",
		},
		[]string{"stage"},
	)

	// BackgroundTasks tracks background persistence tasks by outcome
	BackgroundTasks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_background_tasks_total",
			Help: "Total number of background persistence tasks",
		},
		[]string{"outcome"},
	)

	// SyncRuns counts sync runs by outcome
	SyncRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_runs_total",
			Help: "Total number of sales sync runs",
		},
		[]string{"outcome"},
	)

	// SyncRunDuration tracks end-to-end sync run latency
	SyncRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sync_run_duration_seconds",
			Help:    "Sales sync run duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
