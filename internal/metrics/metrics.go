package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   prometheus.CounterVec
	HTTPRequestDuration prometheus.HistogramVec

	// Ingestion pipeline metrics
	IngestDuration   prometheus.HistogramVec
	IngestTotal      prometheus.CounterVec
	IngestQueueDepth prometheus.GaugeVec
	PeaksExtracted   prometheus.HistogramVec
	HashesGenerated  prometheus.HistogramVec

	// Identification metrics
	IdentifyDuration prometheus.HistogramVec
	IdentifyTotal    prometheus.CounterVec
	MatchConfidence  prometheus.HistogramVec

	// Store metrics
	StoreQueryDuration prometheus.HistogramVec
	StoreBatchSize     prometheus.HistogramVec

	// Database metrics (GORM callback hooks)
	DatabaseQueryDuration prometheus.HistogramVec
	DatabaseQueriesTotal  prometheus.CounterVec

	// Cache metrics
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.CounterVec

	// Redis operation metrics (cache.RedisClient instrumentation)
	RedisOperationDuration prometheus.HistogramVec
	RedisOperationsTotal   prometheus.CounterVec

	// Error metrics
	ErrorsTotal prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics. Safe to call
// repeatedly; registration happens once.
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),

			IngestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "ingest_duration_seconds",
					Help:    "Time to decode, fingerprint, and persist a recording",
					Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
				},
				[]string{"status"},
			),
			IngestTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ingest_total",
					Help: "Total number of ingestion attempts",
				},
				[]string{"status"},
			),
			IngestQueueDepth: *promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "ingest_queue_depth",
					Help: "Number of recordings waiting in the ingestion worker pool",
				},
				[]string{},
			),
			PeaksExtracted: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "ingest_peaks_extracted",
					Help:    "Number of spectral peaks extracted per recording",
					Buckets: prometheus.ExponentialBuckets(10, 2, 12),
				},
				[]string{},
			),
			HashesGenerated: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "ingest_hashes_generated",
					Help:    "Number of pair hashes generated per recording",
					Buckets: prometheus.ExponentialBuckets(10, 2, 12),
				},
				[]string{},
			),

			IdentifyDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "identify_duration_seconds",
					Help:    "Time to decode, fingerprint, and match a query clip",
					Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
				},
				[]string{"result"},
			),
			IdentifyTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "identify_total",
					Help: "Total number of identify requests",
				},
				[]string{"result"},
			),
			MatchConfidence: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "identify_match_confidence",
					Help:    "Confidence score of the winning candidate, when one is found",
					Buckets: []float64{.1, .2, .3, .4, .5, .6, .7, .8, .9, 1.0},
				},
				[]string{},
			),

			StoreQueryDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "store_query_duration_seconds",
					Help:    "Store ingest/lookup latency in seconds",
					Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
				},
				[]string{"operation"},
			),
			StoreBatchSize: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "store_batch_size",
					Help:    "Size of ingest/lookup batches sent to the store",
					Buckets: prometheus.ExponentialBuckets(10, 2, 10),
				},
				[]string{"operation"},
			),

			DatabaseQueryDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "database_query_duration_seconds",
					Help:    "Database query latency in seconds",
					Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"query_type", "table"},
			),
			DatabaseQueriesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "database_queries_total",
					Help: "Total number of database queries",
				},
				[]string{"query_type", "table", "status"},
			),

			CacheHitsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_hits_total",
					Help: "Total number of lookup cache hits",
				},
				[]string{"cache_name"},
			),
			CacheMissesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_misses_total",
					Help: "Total number of lookup cache misses",
				},
				[]string{"cache_name"},
			),

			RedisOperationDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "redis_operation_duration_seconds",
					Help:    "Redis operation latency in seconds",
					Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
				},
				[]string{"operation", "key_pattern"},
			),
			RedisOperationsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "redis_operations_total",
					Help: "Total number of Redis operations",
				},
				[]string{"operation", "status"},
			),

			ErrorsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "errors_total",
					Help: "Total number of errors by type",
				},
				[]string{"error_type", "endpoint"},
			),
		}
	})
	return instance
}

// Get returns the global metrics instance, initializing it if needed.
func Get() *Metrics {
	if instance == nil {
		return Initialize()
	}
	return instance
}
