package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"webmedia/internal/assets"
	"webmedia/internal/logging"
	"webmedia/internal/thumbnail"
)

// EmbedResponse is the resolved form of one media reference.
type EmbedResponse struct {
	assets.Result
	NoCache string `json:"nocache,omitempty"`
}

// Embed resolves src and the remaining query parameters into the URL and
// attributes to embed.
//
//	GET /api/embed?src=photos/a.jpg&width=200&method=crop
func (h *Handlers) Embed(w http.ResponseWriter, r *http.Request) {
	src, attrs, err := parseEmbedQuery(r.URL.RawQuery)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(src) == "" {
		writeJSONError(w, "src is required", http.StatusBadRequest)
		return
	}

	result, err := h.dispatcher.Process(src, attrs)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			logging.Error("embed %q failed: %v", src, err)
		} else {
			logging.Debug("embed %q rejected: %v", src, err)
		}
		writeJSONError(w, err.Error(), status)
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	writeJSONStatus(w, http.StatusOK, EmbedResponse{
		Result:  result,
		NoCache: h.engine.ModifiedToken(src),
	})
}

// parseEmbedQuery splits a raw query into src and the other parameters,
// keeping their order. url.Values would lose it.
func parseEmbedQuery(raw string) (string, thumbnail.Attrs, error) {
	var (
		src   string
		attrs thumbnail.Attrs
	)
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return "", nil, fmt.Errorf("invalid query key %q: %w", k, err)
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return "", nil, fmt.Errorf("invalid value for %q: %w", key, err)
		}
		if key == "src" {
			src = value
			continue
		}
		attrs = attrs.Set(key, value)
	}
	return src, attrs, nil
}
