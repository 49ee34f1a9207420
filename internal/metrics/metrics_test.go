package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeProvider struct {
	stats CacheStats
	err   error
}

func (f *fakeProvider) CacheStats() (CacheStats, error) {
	return f.stats, f.err
}

func TestCollectorCollect(t *testing.T) {
	c := NewCollector(&fakeProvider{stats: CacheStats{Files: 7, Bytes: 4096}}, time.Hour)
	c.collect()

	if got := testutil.ToFloat64(ThumbnailCacheCount); got != 7 {
		t.Errorf("ThumbnailCacheCount = %v, want 7", got)
	}
	if got := testutil.ToFloat64(ThumbnailCacheSize); got != 4096 {
		t.Errorf("ThumbnailCacheSize = %v, want 4096", got)
	}

	// A failing provider leaves the gauges alone
	NewCollector(&fakeProvider{err: errors.New("walk failed")}, time.Hour).collect()
	if got := testutil.ToFloat64(ThumbnailCacheCount); got != 7 {
		t.Errorf("ThumbnailCacheCount after error = %v, want 7", got)
	}
}

func TestCollectorNilProvider(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("collect panicked with nil provider: %v", r)
		}
	}()
	NewCollector(nil, time.Hour).collect()
}

func TestCollectorStartStop(t *testing.T) {
	c := NewCollector(&fakeProvider{stats: CacheStats{Files: 1}}, 10*time.Millisecond)
	c.Start()
	time.Sleep(25 * time.Millisecond)
	c.Stop()
}

func TestFilesystemObserver(t *testing.T) {
	obs := NewFilesystemObserver()

	before := testutil.ToFloat64(FilesystemOperationErrors.WithLabelValues("media", "stat"))
	obs.ObserveOperation("media", "stat", 0.001, errors.New("boom"))
	obs.ObserveOperation("media", "stat", 0.001, nil)
	if got := testutil.ToFloat64(FilesystemOperationErrors.WithLabelValues("media", "stat")); got != before+1 {
		t.Errorf("FilesystemOperationErrors = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(FilesystemStaleErrors.WithLabelValues("open", "thumbnails"))
	obs.ObserveStaleError("open", "thumbnails")
	if got := testutil.ToFloat64(FilesystemStaleErrors.WithLabelValues("open", "thumbnails")); got != before+1 {
		t.Errorf("FilesystemStaleErrors = %v, want %v", got, before+1)
	}

	obs.ObserveRetryAttempt("open", "thumbnails")
	obs.ObserveRetrySuccess("open", "thumbnails")
	obs.ObserveRetryFailure("open", "thumbnails")
}

func TestInitializeMetrics(t *testing.T) {
	InitializeMetrics()

	if n := testutil.CollectAndCount(ThumbnailRequestsTotal); n < 7 {
		t.Errorf("ThumbnailRequestsTotal series = %d, want at least 7", n)
	}
	if n := testutil.CollectAndCount(ThumbnailGenerationsTotal); n < 4 {
		t.Errorf("ThumbnailGenerationsTotal series = %d, want at least 4", n)
	}
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("1.0.0", "abc123", "go1.25")
	if got := testutil.ToFloat64(AppInfo.WithLabelValues("1.0.0", "abc123", "go1.25")); got != 1 {
		t.Errorf("AppInfo = %v, want 1", got)
	}
}
