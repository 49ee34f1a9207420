// Package middleware provides the HTTP middleware wrapped around the webmedia
// router.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics with bounded path labels
//   - Configurable filtering for static files and health checks
package middleware
