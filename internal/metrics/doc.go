// Package metrics provides Prometheus instrumentation for webmedia.
//
// All metrics are prefixed with "webmedia_".
//
// # Thumbnail Metrics
//
//   - ThumbnailRequestsTotal: Process calls by outcome (skipped_empty,
//     skipped_external, skipped_outside_root, passthrough, cache_hit,
//     generated, error)
//   - ThumbnailGenerationsTotal: regenerations by method and status
//   - ThumbnailGenerationDuration: regeneration latency by method and phase
//     (decode, resize, encode)
//   - ThumbnailCacheHits / ThumbnailCacheMisses: freshness check results
//   - ThumbnailCacheSize / ThumbnailCacheCount: derivative files on disk,
//     refreshed by the Collector
//   - ThumbnailSharedRegenerations: calls that joined an in-flight refresh
//     of the same derivative (LOCK_REGENERATION)
//
//   - ThumbnailPrunedTotal: orphaned derivatives removed, by trigger (watch,
//     sweep)
//
// # Warm-up, Memory and Watcher Metrics
//
//   - WarmJobsTotal by status, WarmWorkers for the last batch
//   - MemoryUsageRatio, MemoryPaused, MemoryPauses from the memory
//     monitor
//   - WatcherEventsTotal by op, WatchedDirectories
//   - AppInfo carries version, commit and Go version labels
//
// # HTTP Metrics
//
//   - HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight
//
// # Filesystem Metrics
//
// Recorded through the filesystem.Observer implemented in observer.go:
//
//   - FilesystemOperationDuration / FilesystemOperationErrors by volume and
//     operation
//   - FilesystemRetryAttempts / FilesystemRetrySuccess /
//     FilesystemRetryFailures / FilesystemStaleErrors for ESTALE handling
//
// Call InitializeMetrics once at startup so every label combination is
// exported from the first scrape.
package metrics
