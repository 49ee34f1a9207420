// Package main is the entry point of the webmedia server.
//
// webmedia resolves references to media files into the URL and attributes to
// embed them with. Image references that ask for a width or height are
// served from a cache of resized derivatives that is regenerated whenever the
// source changes.
//
// # Startup
//
//  1. GOMEMLIMIT from GOMEMLIMIT or MEMORY_LIMIT/MEMORY_RATIO
//  2. Configuration from the environment (see package startup)
//  3. Metrics, filesystem observer and volume labels
//  4. Optional libvips (USE_VIPS)
//  5. Thumbnail engine, asset dispatcher and memory monitor
//  6. Media watcher for orphan pruning (PRUNE_ORPHANS)
//  7. HTTP server with request logging and metrics middleware
//
// SIGINT and SIGTERM drain in-flight requests for up to 30 seconds before
// the background services are stopped.
//
// # Endpoints
//
//   - GET  /api/embed?src=...&key=value...
//   - POST /api/warm
//   - GET  THUMBNAIL_URL..., MEDIA_URL...
//   - GET  /healthz, /livez, /readyz, /version, /metrics
package main
