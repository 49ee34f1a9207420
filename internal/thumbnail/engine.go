package thumbnail

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"webmedia/internal/filesystem"
	"webmedia/internal/logging"
	"webmedia/internal/metrics"
	"webmedia/internal/pathcodec"

	"github.com/disintegration/imaging"
)

// ErrInvalidSource is returned for a resize request on a source without a
// file extension.
var ErrInvalidSource = errors.New("invalid source")

// Engine turns source references into derivative references.
type Engine struct {
	cfg       Config
	mediaRoot string
	mediaURL  string
	codec     *pathcodec.Codec
	regen     regenGroup
	retry     filesystem.RetryConfig
}

// New creates an engine for cfg. Zero-valued method and quality fall back to
// the defaults.
func New(cfg Config) *Engine {
	defaults := DefaultConfig()
	if cfg.DefaultMethod == "" {
		cfg.DefaultMethod = defaults.DefaultMethod
	}
	if cfg.DefaultQuality <= 0 || cfg.DefaultQuality > 100 {
		cfg.DefaultQuality = defaults.DefaultQuality
	}

	mediaURL := cfg.MediaURLPrefix
	if mediaURL != "" && !strings.HasSuffix(mediaURL, "/") {
		mediaURL += "/"
	}

	return &Engine{
		cfg:       cfg,
		mediaRoot: filepath.Clean(cfg.MediaRoot),
		mediaURL:  mediaURL,
		codec:     pathcodec.New(cfg.ThumbnailRoot, cfg.ThumbnailURLPrefix),
		retry:     filesystem.DefaultRetryConfig(),
	}
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Process returns the reference to use for source under attrs, and the
// completed attributes.
//
// Empty, external and out-of-root references, and requests with neither
// width nor height, return source itself. Otherwise the derivative is
// regenerated when it is missing or older than the source, and its public
// URL is returned with width and height set to its real pixel size.
func (e *Engine) Process(source string, attrs Attrs) (string, Attrs, error) {
	ref, out, outcome, err := e.process(source, attrs)
	metrics.ThumbnailRequestsTotal.WithLabelValues(outcome).Inc()
	if err != nil {
		return "", nil, err
	}
	return ref, out, nil
}

func (e *Engine) process(source string, attrs Attrs) (string, Attrs, string, error) {
	rel, skip := e.resolve(source)
	if skip != "" {
		logging.Debug("thumbnail: %s %q", skip, source)
		return source, attrs, skip, nil
	}

	req, err := ParseRequest(rel, attrs, e.cfg)
	if err != nil {
		return "", nil, metrics.OutcomeError, err
	}
	srcPath := e.sourcePath(rel)

	if !req.HasResize() {
		return source, e.naturalSize(srcPath, req.Attrs), metrics.OutcomePassthrough, nil
	}

	if path.Ext(rel) == "" {
		return "", nil, metrics.OutcomeError, fmt.Errorf("%w: %q has no file extension", ErrInvalidSource, source)
	}
	if _, err := encoderFor(req.Format); err != nil {
		return "", nil, metrics.OutcomeError, err
	}

	asset := e.codec.Asset(rel, pathcodec.Params{
		Width:  req.Width,
		Height: req.Height,
		Method: string(req.Method),
		Format: req.Format,
	})

	dims, generated, err := e.ensure(srcPath, asset, req)
	if err != nil {
		return "", nil, metrics.OutcomeError, err
	}

	out := req.Attrs.SetInt(AttrWidth, dims.Width).SetInt(AttrHeight, dims.Height)
	if generated {
		return asset.PublicURL, out, metrics.OutcomeGenerated, nil
	}
	return asset.PublicURL, out, metrics.OutcomeCacheHit, nil
}

// ensure makes the derivative current and returns its size. generated
// reports whether this call, or the shared call it joined, wrote it.
func (e *Engine) ensure(srcPath string, asset pathcodec.Asset, req Request) (Dimensions, bool, error) {
	if !e.cfg.LockRegeneration {
		return e.refresh(srcPath, asset, req)
	}
	return e.regen.do(asset.StoragePath, func() (Dimensions, bool, error) {
		return e.refresh(srcPath, asset, req)
	})
}

func (e *Engine) refresh(srcPath string, asset pathcodec.Asset, req Request) (dims Dimensions, generated bool, err error) {
	fresh, err := e.isFresh(srcPath, asset.StoragePath)
	if err != nil {
		return Dimensions{}, false, err
	}

	if fresh {
		dims, err := ReadDimensions(asset.StoragePath)
		if err == nil {
			metrics.ThumbnailCacheHits.Inc()
			logging.Debug("thumbnail: reusing %s", asset.RelPath)
			return dims, false, nil
		}
		logging.Warn("thumbnail: unreadable derivative %s, regenerating: %v", asset.StoragePath, err)
	}

	metrics.ThumbnailCacheMisses.Inc()
	dims, err = e.generate(srcPath, asset, req)
	if err != nil {
		metrics.ThumbnailGenerationsTotal.WithLabelValues(string(req.Method), "error").Inc()
		return Dimensions{}, false, err
	}
	metrics.ThumbnailGenerationsTotal.WithLabelValues(string(req.Method), "success").Inc()
	return dims, true, nil
}

// isFresh reports whether the derivative exists and is not older than the
// source. A missing source is an error.
func (e *Engine) isFresh(srcPath, derivPath string) (bool, error) {
	src, err := filesystem.StatWithRetry(srcPath, e.retry)
	if err != nil {
		return false, fmt.Errorf("failed to stat source %s: %w", srcPath, err)
	}

	deriv, err := filesystem.StatWithRetry(derivPath, e.retry)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat derivative %s: %w", derivPath, err)
	}
	return !src.ModTime().After(deriv.ModTime()), nil
}

// generate writes the derivative for req and returns its size.
func (e *Engine) generate(srcPath string, asset pathcodec.Asset, req Request) (Dimensions, error) {
	begin := time.Now()
	method := string(req.Method)
	format, err := encoderFor(req.Format)
	if err != nil {
		return Dimensions{}, err
	}

	if err := filesystem.EnsureDir(filepath.Dir(asset.StoragePath)); err != nil {
		return Dimensions{}, err
	}

	start := time.Now()
	img, err := e.loadSource(srcPath)
	if err != nil {
		return Dimensions{}, err
	}
	metrics.ThumbnailGenerationDuration.WithLabelValues(method, "decode").Observe(time.Since(start).Seconds())

	start = time.Now()
	out := transform(img, req.Method, req.Width, req.Height)
	metrics.ThumbnailGenerationDuration.WithLabelValues(method, "resize").Observe(time.Since(start).Seconds())

	start = time.Now()
	opts := encodeOptions(req.Format, req.Quality)
	err = filesystem.WriteFileAtomic(asset.StoragePath, func(w io.Writer) error {
		return imaging.Encode(w, out, format, opts...)
	})
	if err != nil {
		return Dimensions{}, fmt.Errorf("failed to write derivative %s: %w", asset.StoragePath, err)
	}
	metrics.ThumbnailGenerationDuration.WithLabelValues(method, "encode").Observe(time.Since(start).Seconds())

	b := out.Bounds()
	logging.Debug("thumbnail: generated %s (%dx%d, %s) in %v",
		asset.RelPath, b.Dx(), b.Dy(), method, time.Since(begin))
	return Dimensions{Width: b.Dx(), Height: b.Dy()}, nil
}

// naturalSize fills width and height from the source header. A source that
// cannot be read leaves attrs as they are.
func (e *Engine) naturalSize(srcPath string, attrs Attrs) Attrs {
	if attrs.Has(AttrWidth) && attrs.Has(AttrHeight) {
		return attrs
	}
	dims, err := ReadDimensions(srcPath)
	if err != nil {
		logging.Debug("thumbnail: no natural size for %s: %v", srcPath, err)
		return attrs
	}
	attrs = attrs.SetDefault(AttrWidth, strconv.Itoa(dims.Width))
	return attrs.SetDefault(AttrHeight, strconv.Itoa(dims.Height))
}

// resolve maps a source reference to a media-relative slash path. When the
// reference is not processable it returns the skip outcome instead.
func (e *Engine) resolve(ref string) (rel, skip string) {
	if strings.TrimSpace(ref) == "" {
		return "", metrics.OutcomeSkippedEmpty
	}

	if e.mediaURL != "" && strings.HasPrefix(ref, e.mediaURL) {
		return cleanRelative(urlPath(strings.TrimPrefix(ref, e.mediaURL)))
	}
	if isForeignURL(ref) {
		return "", metrics.OutcomeSkippedExternal
	}

	// Anything else is a file path, taken literally.
	p := ref
	if filepath.IsAbs(p) {
		r, err := filepath.Rel(e.mediaRoot, filepath.Clean(p))
		if err != nil {
			return "", metrics.OutcomeSkippedOutsideRoot
		}
		p = r
	}
	return cleanRelative(filepath.ToSlash(p))
}

// isForeignURL reports references that name a resource somewhere other than
// the local media tree: scheme URLs, protocol-relative URLs and data URIs.
func isForeignURL(ref string) bool {
	return strings.Contains(ref, "://") ||
		strings.HasPrefix(ref, "//") ||
		strings.HasPrefix(strings.ToLower(ref), "data:")
}

// urlPath returns the file path named by a URL path below the media prefix.
// Query and fragment are dropped and valid percent escapes decoded; a path
// with an invalid escape is used as written.
func urlPath(s string) string {
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	if p, err := url.PathUnescape(s); err == nil {
		return p
	}
	return s
}

func cleanRelative(p string) (string, string) {
	c := path.Clean(p)
	if c == "." || c == ".." || strings.HasPrefix(c, "../") || path.IsAbs(c) {
		return "", metrics.OutcomeSkippedOutsideRoot
	}
	return c, ""
}

func (e *Engine) sourcePath(rel string) string {
	return filepath.Join(e.mediaRoot, filepath.FromSlash(rel))
}

// ModifiedToken returns a cache-busting token derived from the referenced
// media file's modification time, as "modified=DDD-HHMMSS" (day of year,
// local time). It is empty when the reference cannot be resolved or stat'd.
func (e *Engine) ModifiedToken(ref string) string {
	rel, skip := e.resolve(ref)
	if skip != "" {
		return ""
	}
	info, err := filesystem.StatWithRetry(e.sourcePath(rel), e.retry)
	if err != nil {
		return ""
	}
	t := info.ModTime().Local()
	return fmt.Sprintf("modified=%03d-%s", t.YearDay(), t.Format("150405"))
}

// CacheStats walks the derivative cache. In-flight temporary files are not
// counted. A cache root that does not exist yet is empty.
func (e *Engine) CacheStats() (metrics.CacheStats, error) {
	var stats metrics.CacheStats
	err := filepath.WalkDir(e.codec.Root(), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		stats.Files++
		stats.Bytes += info.Size()
		return nil
	})
	if err != nil {
		return metrics.CacheStats{}, err
	}
	return stats, nil
}
