// Package startup loads configuration and writes the startup and shutdown
// log sections.
//
// # Configuration
//
// [LoadConfig] reads the environment:
//
//   - MEDIA_ROOT, MEDIA_URL: where sources live on disk and the URL prefix they are served under
//   - THUMBNAIL_ROOT, THUMBNAIL_URL: derivative cache directory and its URL prefix
//   - IMAGE_RESIZE_METHOD: crop or fit (default: fit)
//   - IMAGE_QUALITY: JPEG quality 1-100 (default: 85)
//   - AUTO_CONVERT_BMPS: output format for BMP and WEBP sources, empty keeps the source format (default: GIF)
//   - LOCK_REGENERATION: share one regeneration among concurrent callers (default: false)
//   - USE_VIPS, MAX_SOURCE_DIMENSION, MAX_SOURCE_PIXELS: constrained loading of oversized sources
//   - WEBMEDIA_FILETYPES: kind:ext,ext;... overrides of the extension table
//   - WEBMEDIA_FILETYPE_ATTRIBUTES: kind:k=v,...;... per-kind default attributes
//   - SOUND_PLAYER_URL: player movie used for sound assets
//   - PRUNE_ORPHANS, PRUNE_INTERVAL: remove derivatives of deleted sources (default: off, 1h sweep)
//   - PORT, METRICS_ENABLED, CACHE_STATS_INTERVAL
//   - LOG_LEVEL, LOG_STATIC_FILES, LOG_HEALTH_CHECKS
//
// The thumbnail directory is created when missing and must be writable.
// The media directory is only checked.
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
package startup
