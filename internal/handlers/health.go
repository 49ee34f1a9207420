package handlers

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"webmedia/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// MemoryStatus is the memory monitor's last sample.
type MemoryStatus struct {
	Used   int64   `json:"used"`
	Limit  int64   `json:"limit"`
	Usage  float64 `json:"usage"`
	Paused bool    `json:"paused"`
}

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`

	Memory *MemoryStatus `json:"memory,omitempty"`
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	ready := h.ready()
	response := HealthResponse{
		Status:       statusHealthy,
		Ready:        ready,
		Version:      startup.Version,
		Uptime:       time.Since(h.started).Round(time.Second).String(),
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	if h.monitor != nil {
		used, limit, usage := h.monitor.GetStats()
		response.Memory = &MemoryStatus{Used: used, Limit: limit, Usage: usage, Paused: h.monitor.IsPaused()}
		if response.Memory.Paused {
			response.Status = statusDegraded
		}
	}

	status := http.StatusOK
	if !ready {
		response.Status = statusDegraded
		status = http.StatusServiceUnavailable
	}
	writeJSONStatus(w, status, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{"status": "alive"})
	}
}

// ReadinessCheck returns 200 only when derivatives can be written.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if h.ready() {
		writeJSONStatus(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	writeJSONStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
}

// ready reports whether the thumbnail root is an existing directory.
func (h *Handlers) ready() bool {
	info, err := os.Stat(h.engine.Config().ThumbnailRoot)
	return err == nil && info.IsDir()
}
