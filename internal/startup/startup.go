package startup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"webmedia/internal/assets"
	"webmedia/internal/logging"
	"webmedia/internal/memory"
	"webmedia/internal/thumbnail"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Config holds all application configuration
type Config struct {
	Port            string
	LogStaticFiles  bool
	LogHealthChecks bool
	MetricsEnabled  bool

	// Thumbnail is handed to thumbnail.New as is.
	Thumbnail thumbnail.Config
	// Assets is handed to assets.NewDispatcher as is.
	Assets assets.Config

	// CacheStatsInterval is how often the derivative cache is measured.
	CacheStatsInterval time.Duration

	// PruneOrphans enables the media watcher that removes derivatives of
	// deleted sources. PruneInterval is its full-sweep period, zero for none.
	PruneOrphans  bool
	PruneInterval time.Duration
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	section("CONFIGURATION")

	defaults := thumbnail.DefaultConfig()
	mediaRoot := getEnv("MEDIA_ROOT", defaults.MediaRoot)
	mediaURL := getEnv("MEDIA_URL", defaults.MediaURLPrefix)
	thumbRoot := getEnv("THUMBNAIL_ROOT", defaults.ThumbnailRoot)
	thumbURL := getEnv("THUMBNAIL_URL", defaults.ThumbnailURLPrefix)
	methodStr := getEnv("IMAGE_RESIZE_METHOD", string(defaults.DefaultMethod))
	quality := getEnvInt("IMAGE_QUALITY", defaults.DefaultQuality)
	bmpFallback := getEnvAllowEmpty("AUTO_CONVERT_BMPS", defaults.BMPFallbackFormat)
	lockRegeneration := getEnvBool("LOCK_REGENERATION", false)
	useVips := getEnvBool("USE_VIPS", false)
	maxDimension := getEnvInt("MAX_SOURCE_DIMENSION", 0)
	maxPixels := getEnvInt("MAX_SOURCE_PIXELS", 0)
	filetypes := getEnv("WEBMEDIA_FILETYPES", "")
	filetypeAttrs := getEnvAllowEmpty("WEBMEDIA_FILETYPE_ATTRIBUTES", "flash:wmode=opaque")
	soundPlayerURL := getEnv("SOUND_PLAYER_URL", "")
	port := getEnv("PORT", "8080")
	cacheStatsStr := getEnv("CACHE_STATS_INTERVAL", "5m")
	pruneOrphans := getEnvBool("PRUNE_ORPHANS", false)
	pruneIntervalStr := getEnv("PRUNE_INTERVAL", "1h")
	logStaticFiles := getEnvBool("LOG_STATIC_FILES", false)
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", true)
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)

	logging.Info("  MEDIA_ROOT:                   %s", mediaRoot)
	logging.Info("  MEDIA_URL:                    %s", mediaURL)
	logging.Info("  THUMBNAIL_ROOT:               %s", thumbRoot)
	logging.Info("  THUMBNAIL_URL:                %s", thumbURL)
	logging.Info("  IMAGE_RESIZE_METHOD:          %s", methodStr)
	logging.Info("  IMAGE_QUALITY:                %d", quality)
	logging.Info("  AUTO_CONVERT_BMPS:            %q", bmpFallback)
	logging.Info("  LOCK_REGENERATION:            %v", lockRegeneration)
	logging.Info("  USE_VIPS:                     %v", useVips)
	logging.Info("  MAX_SOURCE_DIMENSION:         %d", maxDimension)
	logging.Info("  MAX_SOURCE_PIXELS:            %d", maxPixels)
	logging.Info("  WEBMEDIA_FILETYPES:           %s", filetypes)
	logging.Info("  WEBMEDIA_FILETYPE_ATTRIBUTES: %s", filetypeAttrs)
	logging.Info("  SOUND_PLAYER_URL:             %s", soundPlayerURL)
	logging.Info("  PORT:                         %s", port)
	logging.Info("  METRICS_ENABLED:              %v", metricsEnabled)
	logging.Info("  CACHE_STATS_INTERVAL:         %s", cacheStatsStr)
	logging.Info("  PRUNE_ORPHANS:                %v", pruneOrphans)
	logging.Info("  PRUNE_INTERVAL:               %s", pruneIntervalStr)
	logging.Info("  LOG_STATIC_FILES:             %v", logStaticFiles)
	logging.Info("  LOG_HEALTH_CHECKS:            %v", logHealthChecks)
	logging.Info("  LOG_LEVEL:                    %s", logging.GetLevel())

	method, err := thumbnail.ParseMethod(methodStr)
	if err != nil {
		return nil, fmt.Errorf("IMAGE_RESIZE_METHOD: %w", err)
	}

	if quality < 1 || quality > 100 {
		logging.Warn("  Invalid IMAGE_QUALITY %d, using default: %d", quality, defaults.DefaultQuality)
		quality = defaults.DefaultQuality
	}

	if bmpFallback != "" {
		bmpFallback = thumbnail.NormalizeFormat(bmpFallback, "", "")
	}

	extensions := assets.DefaultExtensions()
	if filetypes != "" {
		if extensions, err = assets.ParseExtensions(filetypes); err != nil {
			return nil, fmt.Errorf("WEBMEDIA_FILETYPES: %w", err)
		}
	}
	kindDefaults, err := assets.ParseDefaults(filetypeAttrs)
	if err != nil {
		return nil, fmt.Errorf("WEBMEDIA_FILETYPE_ATTRIBUTES: %w", err)
	}

	cacheStatsInterval, err := time.ParseDuration(cacheStatsStr)
	if err != nil || cacheStatsInterval <= 0 {
		logging.Warn("  Invalid CACHE_STATS_INTERVAL, using default: 5m")
		cacheStatsInterval = 5 * time.Minute
	}

	pruneInterval, err := time.ParseDuration(pruneIntervalStr)
	if err != nil || pruneInterval < 0 {
		logging.Warn("  Invalid PRUNE_INTERVAL, using default: 1h")
		pruneInterval = time.Hour
	}

	logging.Info("")
	section("DIRECTORY SETUP")

	if mediaRoot, err = filepath.Abs(mediaRoot); err != nil {
		return nil, fmt.Errorf("MEDIA_ROOT: %w", err)
	}
	if thumbRoot, err = filepath.Abs(thumbRoot); err != nil {
		return nil, fmt.Errorf("THUMBNAIL_ROOT: %w", err)
	}
	logging.Info("  Media:      %s", mediaRoot)
	logging.Info("  Thumbnails: %s", thumbRoot)

	// Media is mounted read-only in most deployments; only check it.
	if err := prepareDir(mediaRoot, false); err != nil {
		logging.Warn("  Media directory issue: %v", err)
	}
	if err := prepareDir(thumbRoot, true); err != nil {
		return nil, fmt.Errorf("THUMBNAIL_ROOT: %w", err)
	}
	if err := probeWrite(thumbRoot); err != nil {
		return nil, fmt.Errorf("THUMBNAIL_ROOT is not writable: %w", err)
	}
	logging.Info("  [OK] Thumbnail cache is writable")

	return &Config{
		Port:               port,
		LogStaticFiles:     logStaticFiles,
		LogHealthChecks:    logHealthChecks,
		MetricsEnabled:     metricsEnabled,
		CacheStatsInterval: cacheStatsInterval,
		PruneOrphans:       pruneOrphans,
		PruneInterval:      pruneInterval,
		Thumbnail: thumbnail.Config{
			MediaRoot:          mediaRoot,
			MediaURLPrefix:     mediaURL,
			ThumbnailRoot:      thumbRoot,
			ThumbnailURLPrefix: thumbURL,
			DefaultMethod:      method,
			DefaultQuality:     quality,
			BMPFallbackFormat:  bmpFallback,
			LockRegeneration:   lockRegeneration,
			UseVips:            useVips,
			MaxSourceDimension: maxDimension,
			MaxSourcePixels:    maxPixels,
		},
		Assets: assets.Config{
			Extensions:     extensions,
			Defaults:       kindDefaults,
			SoundPlayerURL: soundPlayerURL,
		},
	}, nil
}

const rule = "------------------------------------------------------------"

// section starts a titled block of startup output.
func section(title string) {
	logging.Info(rule)
	logging.Info(title)
	logging.Info(rule)
}

func onOff(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogMemoryConfig logs how GOMEMLIMIT was configured.
func LogMemoryConfig(result memory.ConfigResult) {
	logging.Info("")
	section("MEMORY CONFIGURATION")

	if !result.Configured {
		logging.Info("  GOMEMLIMIT: not configured (set MEMORY_LIMIT or GOMEMLIMIT)")
		return
	}
	logging.Info("  Source:          %s", result.Source)
	logging.Info("  GOMEMLIMIT:      %s", memory.FormatBytes(result.GoMemLimit))
	if result.ContainerLimit > 0 {
		logging.Info("  Container limit: %s", memory.FormatBytes(result.ContainerLimit))
		logging.Info("  Heap ratio:      %.0f%%", result.Ratio*100)
	}
}

// LogEngineInit logs the thumbnail engine setup.
func LogEngineInit(cfg thumbnail.Config, vipsErr error) {
	logging.Info("")
	section("THUMBNAIL ENGINE")

	logging.Info("  Default method:    %s", cfg.DefaultMethod)
	logging.Info("  Default quality:   %d", cfg.DefaultQuality)
	if cfg.BMPFallbackFormat != "" {
		logging.Info("  BMP/WEBP output:   %s", cfg.BMPFallbackFormat)
	} else {
		logging.Info("  BMP/WEBP output:   unchanged")
	}
	logging.Info("  Regeneration lock: %s", onOff(cfg.LockRegeneration))

	switch {
	case !cfg.UseVips:
		logging.Info("  libvips:           DISABLED (set USE_VIPS=true to enable)")
	case vipsErr != nil:
		logging.Warn("  libvips unavailable, oversized sources decode in Go: %v", vipsErr)
	default:
		logging.Info("  [OK] libvips shrinks oversized sources on load")
	}
}

// LogWatcherInit logs the orphan pruning setup.
func LogWatcherInit(enabled bool, interval time.Duration, err error) {
	logging.Info("")
	section("ORPHAN PRUNING")

	switch {
	case !enabled:
		logging.Info("  Media watcher: DISABLED (set PRUNE_ORPHANS=true to enable)")
	case err != nil:
		logging.Warn("  Media watcher failed to start: %v", err)
	case interval > 0:
		logging.Info("  [OK] Media watcher running, full sweep every %v", interval)
	default:
		logging.Info("  [OK] Media watcher running, periodic sweep off")
	}
}

// GetRoutes lists every route on router in registration order. Prefix
// routes without a method restriction are reported with method "*".
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo
	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		tmpl, err := route.GetPathTemplate()
		if err != nil {
			return err
		}
		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}
		for _, m := range methods {
			routes = append(routes, RouteInfo{Method: m, Path: tmpl, Name: route.GetName()})
		}
		return nil
	})
	return routes, err
}

// LogHTTPRoutes logs the access log filters and, at debug level, the route
// table grouped by first path segment.
func LogHTTPRoutes(router *mux.Router, logStaticFiles, logHealthChecks bool) {
	logging.Info("")
	section("HTTP SERVER SETUP")

	if logging.IsDebugEnabled() {
		logRouteTable(router)
	}

	logging.Info("  Access log (W3C)")
	logging.Info("    Static files:  %s", onOff(logStaticFiles))
	logging.Info("    Health checks: %s", onOff(logHealthChecks))
}

func logRouteTable(router *mux.Router) {
	routes, err := GetRoutes(router)
	if err != nil {
		logging.Warn("  Could not walk routes: %v", err)
	}
	sort.SliceStable(routes, func(i, j int) bool {
		return getRouteGroup(routes[i].Path) < getRouteGroup(routes[j].Path)
	})

	logging.Debug("  Routes (%d):", len(routes))
	current := "\x00"
	for _, r := range routes {
		if g := getRouteGroup(r.Path); g != current {
			current = g
			if g == "" {
				g = "root"
			}
			logging.Debug("  [%s]", g)
		}
		logging.Debug("    %-6s %s", r.Method, r.Path)
	}
}

// getRouteGroup returns the first path segment, or "api/<name>" below /api.
func getRouteGroup(path string) string {
	first, rest, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if first == "api" && rest != "" {
		name, _, _ := strings.Cut(rest, "/")
		return "api/" + name
	}
	return first
}

// ServerConfig is what LogServerStarted reports.
type ServerConfig struct {
	Port            string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs the listening address and the main endpoints.
func LogServerStarted(config ServerConfig) {
	base := "http://0.0.0.0:" + config.Port

	logging.Info("")
	section("SERVER STARTED")
	logging.Info("  Startup time: %v", config.StartupDuration)
	logging.Info("  Embed:        %s/api/embed?src=...", base)
	logging.Info("  Warm-up:      POST %s/api/warm", base)
	logging.Info("  Health:       %s/healthz", base)
	if config.MetricsEnabled {
		logging.Info("  Metrics:      %s/metrics", base)
	} else {
		logging.Info("  Metrics:      DISABLED")
	}
	logging.Info(rule)
}

// LogShutdownInitiated opens the shutdown block.
func LogShutdownInitiated(signal string) {
	logging.Info("")
	section(fmt.Sprintf("SHUTDOWN (%s)", signal))
}

// LogShutdownStep logs the start of one shutdown step at debug level.
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a finished shutdown step.
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete closes the shutdown block.
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs and exits.
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

const banner = `
------------------------------------------------------------
                 __                       ___
 _      _____  / /_  ____ ___  ___  ____/ (_)___ _
| | /| / / _ \/ __ \/ __ '__ \/ _ \/ __  / / __ '/
| |/ |/ /  __/ /_/ / / / / / /  __/ /_/ / / /_/ /
|__/|__/\___/_.___/_/ /_/ /_/\___/\__,_/_/\__,_/

------------------------------------------------------------`

func printBanner() {
	fmt.Println(banner)
	logging.Info("  webmedia %s (%s), built %s", Version, Commit, BuildTime)
	logging.Info("  Started %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	section("SYSTEM INFORMATION")

	procs, cpus := runtime.GOMAXPROCS(0), runtime.NumCPU()
	logging.Info("  Go %s on %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	if procs < cpus {
		logging.Info("  CPUs: %d of %d (container limit)", procs, cpus)
	} else {
		logging.Info("  CPUs: %d", procs)
	}
	if wd, err := os.Getwd(); err == nil {
		logging.Debug("  Working dir: %s", wd)
	}
	if host, err := os.Hostname(); err == nil {
		logging.Debug("  Hostname:    %s", host)
	}
	logging.Info("")
}

// prepareDir checks that path is a directory, creating it when create is
// set and it does not exist yet.
func prepareDir(path string, create bool) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && create:
		if err := os.MkdirAll(path, 0o755); err != nil {
			return err
		}
		logging.Debug("  Created %s", path)
		return nil
	case err != nil:
		return err
	case !info.IsDir():
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// probeWrite creates and removes a marker file in dir.
func probeWrite(dir string) error {
	f, err := os.CreateTemp(dir, ".write-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	if err := os.Remove(name); err != nil {
		logging.Warn("  Could not remove %s: %v", name, err)
	}
	return nil
}

// Environment lookups. Values are trimmed; unset or blank falls back to the
// default except for getEnvAllowEmpty, where only unset does.

func getEnv(key, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultValue
}

func getEnvAllowEmpty(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	return parseEnv(key, defaultValue, strconv.ParseBool)
}

func getEnvInt(key string, defaultValue int) int {
	return parseEnv(key, defaultValue, strconv.Atoi)
}

func parseEnv[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := parse(raw)
	if err != nil {
		logging.Warn("Invalid value for %s: %q, using default: %v", key, raw, defaultValue)
		return defaultValue
	}
	return v
}
