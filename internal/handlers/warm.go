package handlers

import (
	"encoding/json"
	"net/http"

	"webmedia/internal/logging"
	"webmedia/internal/thumbnail"
	"webmedia/internal/workers"
)

// maxWarmSources caps one warm-up request.
const maxWarmSources = 10000

// WarmRequest lists sources to pre-generate with shared attributes.
type WarmRequest struct {
	Sources []string        `json:"sources"`
	Attrs   thumbnail.Attrs `json:"attrs"`
}

// WarmItem is one entry of a WarmResponse.
type WarmItem struct {
	thumbnail.WarmResult
	Error string `json:"error,omitempty"`
}

// WarmResponse reports every source in request order.
type WarmResponse struct {
	Succeeded int        `json:"succeeded"`
	Failed    int        `json:"failed"`
	Results   []WarmItem `json:"results"`
}

// Warm generates the derivatives for a batch of sources.
//
//	POST /api/warm {"sources": ["a.jpg", "b.png"], "attrs": {"width": "200"}}
func (h *Handlers) Warm(w http.ResponseWriter, r *http.Request) {
	var req WarmRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 8<<20)).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Sources) == 0 {
		writeJSONError(w, "sources is required", http.StatusBadRequest)
		return
	}
	if len(req.Sources) > maxWarmSources {
		writeJSONError(w, "too many sources", http.StatusRequestEntityTooLarge)
		return
	}

	jobs := make([]thumbnail.WarmJob, len(req.Sources))
	for i, src := range req.Sources {
		jobs[i] = thumbnail.WarmJob{Source: src, Attrs: req.Attrs.Clone()}
	}

	numWorkers := h.WarmWorkers
	if numWorkers <= 0 {
		numWorkers = workers.ForWarm(len(jobs), 0)
	}

	var gate thumbnail.Gate
	if h.monitor != nil {
		gate = h.monitor
	}

	results := thumbnail.WarmGated(r.Context(), h.engine, jobs, numWorkers, gate)

	resp := WarmResponse{Results: make([]WarmItem, len(results))}
	for i, res := range results {
		resp.Results[i] = WarmItem{WarmResult: res}
		if res.Err != nil {
			resp.Failed++
			resp.Results[i].Error = res.Err.Error()
			continue
		}
		resp.Succeeded++
	}
	logging.Info("warm-up: %d generated or fresh, %d failed", resp.Succeeded, resp.Failed)

	writeJSONStatus(w, http.StatusOK, resp)
}
