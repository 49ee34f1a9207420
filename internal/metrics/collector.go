package metrics

import (
	"time"

	"webmedia/internal/logging"
)

// CacheStats describes the derivative cache on disk.
type CacheStats struct {
	Files int
	Bytes int64
}

// CacheStatsProvider reports the current cache contents.
type CacheStatsProvider interface {
	CacheStats() (CacheStats, error)
}

// Collector periodically refreshes the cache size gauges.
type Collector struct {
	provider CacheStatsProvider
	interval time.Duration
	stopChan chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider CacheStatsProvider, interval time.Duration) *Collector {
	return &Collector{
		provider: provider,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the collection loop
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.provider == nil {
		return
	}

	stats, err := c.provider.CacheStats()
	if err != nil {
		logging.Warn("Failed to collect thumbnail cache stats: %v", err)
		return
	}

	ThumbnailCacheCount.Set(float64(stats.Files))
	ThumbnailCacheSize.Set(float64(stats.Bytes))

	logging.Debug("Metrics collected: derivatives=%d, bytes=%d", stats.Files, stats.Bytes)
}
