package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"webmedia/internal/assets"
	"webmedia/internal/filesystem"
	"webmedia/internal/handlers"
	"webmedia/internal/logging"
	"webmedia/internal/memory"
	"webmedia/internal/metrics"
	"webmedia/internal/middleware"
	"webmedia/internal/startup"
	"webmedia/internal/thumbnail"
	"webmedia/internal/watcher"
)

func main() {
	startTime := time.Now()

	// GOMEMLIMIT first, before anything allocates much.
	memResult := memory.ConfigureFromEnv()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}
	startup.LogMemoryConfig(memResult)

	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	filesystem.SetObserver(metrics.NewFilesystemObserver())
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"media":      config.Thumbnail.MediaRoot,
		"thumbnails": config.Thumbnail.ThumbnailRoot,
	}))

	var vipsErr error
	if config.Thumbnail.UseVips {
		vipsErr = thumbnail.InitVips()
	}
	startup.LogEngineInit(config.Thumbnail, vipsErr)

	engine := thumbnail.New(config.Thumbnail)
	dispatcher := assets.NewDispatcher(config.Assets, engine)

	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()

	var collector *metrics.Collector
	if config.MetricsEnabled {
		collector = metrics.NewCollector(engine, config.CacheStatsInterval)
		collector.Start()
	}

	var mediaWatcher *watcher.Watcher
	if config.PruneOrphans {
		mediaWatcher, err = startWatcher(config, engine)
	}
	startup.LogWatcherInit(config.PruneOrphans, config.PruneInterval, err)

	h := handlers.New(engine, dispatcher, monitor)
	router := h.Router(config.MetricsEnabled)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           wrap(router, config),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Warm-up requests can run for minutes.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go handleShutdown(srv, monitor, collector, mediaWatcher)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
}

func startWatcher(config *startup.Config, engine *thumbnail.Engine) (*watcher.Watcher, error) {
	cfg := watcher.DefaultConfig(config.Thumbnail.MediaRoot)
	cfg.SweepInterval = config.PruneInterval

	w, err := watcher.New(cfg, engine)
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		_ = w.Stop()
		return nil, err
	}
	return w, nil
}

// wrap applies the request middleware: metrics innermost, then logging.
func wrap(router http.Handler, config *startup.Config) http.Handler {
	staticPrefixes := []string{config.Thumbnail.ThumbnailURLPrefix, config.Thumbnail.MediaURLPrefix}

	metricsConfig := middleware.DefaultMetricsConfig()
	metricsConfig.CollapsePrefixes = staticPrefixes
	handler := middleware.Metrics(metricsConfig)(router)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.StaticPrefixes = staticPrefixes
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	return middleware.Logger(loggingConfig)(handler)
}

func handleShutdown(srv *http.Server, monitor *memory.Monitor, collector *metrics.Collector, mediaWatcher *watcher.Watcher) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("HTTP server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if mediaWatcher != nil {
		startup.LogShutdownStep("Stopping media watcher")
		if err := mediaWatcher.Stop(); err != nil {
			logging.Warn("media watcher shutdown error: %v", err)
		}
		startup.LogShutdownStepComplete("Media watcher stopped")
	}

	startup.LogShutdownStep("Stopping memory monitor")
	monitor.Stop()
	startup.LogShutdownStepComplete("Memory monitor stopped")

	if collector != nil {
		startup.LogShutdownStep("Stopping metrics collector")
		collector.Stop()
		startup.LogShutdownStepComplete("Metrics collector stopped")
	}

	if thumbnail.IsVipsAvailable() {
		startup.LogShutdownStep("Shutting down libvips")
		thumbnail.ShutdownVips()
		startup.LogShutdownStepComplete("libvips shut down")
	}

	startup.LogShutdownComplete()
}
