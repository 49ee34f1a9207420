package metrics

// Outcomes reported by ThumbnailRequestsTotal.
const (
	OutcomeSkippedEmpty       = "skipped_empty"
	OutcomeSkippedExternal    = "skipped_external"
	OutcomeSkippedOutsideRoot = "skipped_outside_root"
	OutcomePassthrough        = "passthrough"
	OutcomeCacheHit           = "cache_hit"
	OutcomeGenerated          = "generated"
	OutcomeError              = "error"
)

// Triggers reported by ThumbnailPrunedTotal.
const (
	TriggerWatch = "watch"
	TriggerSweep = "sweep"
)

// InitializeMetrics pre-populates expected label combinations so that every
// metric is exported from the first scrape.
func InitializeMetrics() {
	for _, outcome := range []string{
		OutcomeSkippedEmpty, OutcomeSkippedExternal, OutcomeSkippedOutsideRoot,
		OutcomePassthrough, OutcomeCacheHit, OutcomeGenerated, OutcomeError,
	} {
		ThumbnailRequestsTotal.WithLabelValues(outcome)
	}

	for _, method := range []string{"crop", "fit"} {
		ThumbnailGenerationsTotal.WithLabelValues(method, "success")
		ThumbnailGenerationsTotal.WithLabelValues(method, "error")
		for _, phase := range []string{"decode", "resize", "encode"} {
			ThumbnailGenerationDuration.WithLabelValues(method, phase)
		}
	}

	for _, status := range []string{"success", "error", "cancelled"} {
		WarmJobsTotal.WithLabelValues(status)
	}

	for _, trigger := range []string{TriggerWatch, TriggerSweep} {
		ThumbnailPrunedTotal.WithLabelValues(trigger)
	}
	for _, op := range []string{"create", "remove", "rename"} {
		WatcherEventsTotal.WithLabelValues(op)
	}

	volumes := []string{"media", "thumbnails", "unknown"}
	for _, vol := range volumes {
		for _, op := range []string{"stat", "open", "mkdir", "write"} {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
		}
		for _, op := range []string{"stat", "open"} {
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
		}
	}
}
