package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webmedia_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webmedia_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "webmedia_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webmedia_thumbnail_requests_total",
			Help: "Total number of thumbnail process calls by outcome",
		},
		[]string{"outcome"},
	)

	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webmedia_thumbnail_generations_total",
			Help: "Total number of derivative regenerations",
		},
		[]string{"method", "status"},
	)

	ThumbnailGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webmedia_thumbnail_generation_duration_seconds",
			Help:    "Derivative regeneration duration in seconds by phase",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "phase"},
	)

	ThumbnailCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webmedia_thumbnail_cache_hits_total",
			Help: "Total number of fresh derivatives reused",
		},
	)

	ThumbnailCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webmedia_thumbnail_cache_misses_total",
			Help: "Total number of missing or stale derivatives",
		},
	)

	ThumbnailCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "webmedia_thumbnail_cache_size_bytes",
			Help: "Total size of the derivative cache in bytes",
		},
	)

	ThumbnailCacheCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "webmedia_thumbnail_cache_count",
			Help: "Number of derivative files in the cache",
		},
	)

	ThumbnailSharedRegenerations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webmedia_thumbnail_shared_regenerations_total",
			Help: "Process calls that shared an in-flight refresh of the same derivative",
		},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webmedia_filesystem_operation_duration_seconds",
			Help:    "Filesystem operation duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webmedia_filesystem_operation_errors_total",
			Help: "Total number of failed filesystem operations",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webmedia_filesystem_retry_attempts_total",
			Help: "Total number of filesystem retries after stale NFS handles",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webmedia_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webmedia_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webmedia_filesystem_stale_errors_total",
			Help: "Total number of ESTALE errors observed",
		},
		[]string{"operation", "volume"},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "webmedia_memory_usage_ratio",
			Help: "Heap allocation as a ratio of the memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "webmedia_memory_paused",
			Help: "Whether image work is paused for memory pressure (1 = paused)",
		},
	)

	MemoryPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webmedia_memory_pauses_total",
			Help: "Total number of times image work was paused for memory pressure",
		},
	)
)

// Warm-up metrics
var (
	WarmJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webmedia_warm_jobs_total",
			Help: "Total number of warm-up jobs by status",
		},
		[]string{"status"},
	)

	WarmWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "webmedia_warm_workers",
			Help: "Number of workers used by the last warm-up run",
		},
	)
)

// Pruning metrics
var (
	ThumbnailPrunedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webmedia_thumbnail_pruned_total",
			Help: "Total number of orphaned derivatives removed",
		},
		[]string{"trigger"},
	)

	WatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webmedia_watcher_events_total",
			Help: "Total number of media directory events handled by the watcher",
		},
		[]string{"op"},
	)

	WatchedDirectories = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "webmedia_watched_directories",
			Help: "Number of media directories being watched",
		},
	)
)

// Application info metric
var AppInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "webmedia_app_info",
		Help: "Application information",
	},
	[]string{"version", "commit", "go_version"},
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
