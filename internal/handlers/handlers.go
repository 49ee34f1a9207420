package handlers

import (
	"net/http"
	"strings"
	"time"

	"webmedia/internal/assets"
	"webmedia/internal/memory"
	"webmedia/internal/thumbnail"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers serves the embed, warm-up and file endpoints.
type Handlers struct {
	engine     *thumbnail.Engine
	dispatcher *assets.Dispatcher
	monitor    *memory.Monitor
	started    time.Time

	// WarmWorkers bounds the warm-up pool. Zero means one per CPU.
	WarmWorkers int
}

// New creates the handlers. monitor may be nil.
func New(engine *thumbnail.Engine, dispatcher *assets.Dispatcher, monitor *memory.Monitor) *Handlers {
	return &Handlers{
		engine:     engine,
		dispatcher: dispatcher,
		monitor:    monitor,
		started:    time.Now(),
	}
}

// Router registers every route. /metrics is only added when metricsEnabled.
func (h *Handlers) Router(metricsEnabled bool) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")
	if metricsEnabled {
		// Default registry, where the metrics package registers everything.
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/embed", h.Embed).Methods("GET")
	api.HandleFunc("/warm", h.Warm).Methods("POST")

	cfg := h.engine.Config()
	if prefix, ok := localPrefix(cfg.ThumbnailURLPrefix); ok {
		r.PathPrefix(prefix).Handler(http.StripPrefix(prefix, fileServer(cfg.ThumbnailRoot, "public, max-age=86400"))).Methods("GET", "HEAD")
	}
	if prefix, ok := localPrefix(cfg.MediaURLPrefix); ok {
		r.PathPrefix(prefix).Handler(http.StripPrefix(prefix, fileServer(cfg.MediaRoot, ""))).Methods("GET", "HEAD")
	}

	return r
}

// localPrefix reports whether a URL prefix is served by this process, as
// opposed to a CDN or another host.
func localPrefix(prefix string) (string, bool) {
	if prefix == "" || !strings.HasPrefix(prefix, "/") || strings.HasPrefix(prefix, "//") {
		return "", false
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix, prefix != "/"
}
