package handlers

import (
	"net/http"
	"strings"
)

// fileServer serves files below root without directory listings.
func fileServer(root, cacheControl string) http.Handler {
	fs := http.FileServer(http.Dir(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		if cacheControl != "" {
			w.Header().Set("Cache-Control", cacheControl)
		}
		fs.ServeHTTP(w, r)
	})
}
