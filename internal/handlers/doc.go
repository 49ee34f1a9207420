// Package handlers provides the webmedia HTTP API.
//
// It includes handlers for:
//   - Resolving a media reference to the URL and attributes to embed (/api/embed)
//   - Pre-generating derivatives for a batch of sources (/api/warm)
//   - Serving derivatives and media files under their URL prefixes
//   - Health, readiness, version and Prometheus metrics
//
// Processing errors map to 400 for bad attributes, formats or sources, 404
// for a missing source and 500 otherwise.
package handlers
