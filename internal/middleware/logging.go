package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"webmedia/internal/logging"
)

// responseWriter records the status and body size of a response.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// LoggingConfig selects which requests reach the access log.
type LoggingConfig struct {
	// SkipPaths are path prefixes that are never logged.
	SkipPaths []string
	// StaticPrefixes are the URL prefixes media and derivatives are served
	// under. Requests below them count as static files.
	StaticPrefixes []string
	// SkipExtensions also mark a request as static.
	SkipExtensions  []string
	LogStaticFiles  bool
	LogHealthChecks bool
}

// DefaultLoggingConfig logs health checks but not static files.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipExtensions: []string{
			".css", ".js", ".ico", ".png", ".jpg", ".jpeg", ".gif", ".bmp",
			".tif", ".tiff", ".webp", ".svg", ".swf", ".mp3",
		},
		LogHealthChecks: true,
	}
}

var healthCheckPaths = map[string]bool{
	"/healthz": true,
	"/livez":   true,
	"/readyz":  true,
}

// Logger writes one W3C Extended Log Format line per request through the
// logging package.
func Logger(config LoggingConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.skip(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			logging.Println(accessLine(r, rw, time.Since(start), time.Now().UTC()))
		})
	}
}

// accessLine renders the fields
// date time c-ip cs-method cs-uri-stem cs-uri-query sc-status sc-bytes time-taken cs(User-Agent) cs(Referer)
func accessLine(r *http.Request, rw *responseWriter, took time.Duration, now time.Time) string {
	return fmt.Sprintf("%s %s %s %s %s %d %d %d %s %s",
		now.Format("2006-01-02 15:04:05"),
		w3cField(clientIP(r)),
		w3cField(r.Method),
		w3cField(r.URL.Path),
		w3cField(r.URL.RawQuery),
		rw.statusCode,
		rw.bytesWritten,
		took.Milliseconds(),
		w3cField(r.Header.Get("User-Agent")),
		w3cField(r.Header.Get("Referer")),
	)
}

func (c LoggingConfig) skip(path string) bool {
	for _, p := range c.SkipPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	if healthCheckPaths[path] {
		return !c.LogHealthChecks
	}
	if c.LogStaticFiles {
		return false
	}
	for _, p := range c.StaticPrefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	lower := strings.ToLower(path)
	for _, ext := range c.SkipExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// peer address without its port.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// w3cField makes a request value safe for one log column: control
// characters go, line breaks become spaces, an empty value is "-" and a
// value with blanks or quotes is quoted with inner quotes doubled.
func w3cField(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r':
			b.WriteByte(' ')
		case r == '\t':
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
		default:
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" {
		return "-"
	}
	if strings.ContainsAny(out, " \t\"") {
		return `"` + strings.ReplaceAll(out, `"`, `""`) + `"`
	}
	return out
}
