// Package thumbnail generates and caches resized derivatives of media images.
//
// Engine.Process takes a source reference and an attribute bag, decides
// whether a derivative is needed, and returns the reference to use plus the
// completed attributes:
//
//	url, attrs, err := engine.Process("/media/photos/a.jpg", thumbnail.Attrs{
//	    {Key: "width", Value: "50"},
//	    {Key: "height", Value: "40"},
//	    {Key: "method", Value: "crop"},
//	    {Key: "alt", Value: "A photo"},
//	})
//	// url   == "/thumbnails/photos/a_jpg__w50_h40_mc.jpg"
//	// attrs == width=50 height=40 alt="A photo"
//
// # Cache validity
//
// A derivative is reused while it exists and its modification time is not
// older than the source's. There is no index beyond the filesystem.
//
// # Concurrency
//
// Process is synchronous and safe for concurrent use. Two callers that find
// the same derivative stale at the same time both regenerate it; each write
// replaces the file atomically, so the last complete write wins. Setting
// Config.LockRegeneration makes concurrent callers share one regeneration
// instead.
//
// # Orphans
//
// Derivatives outlive their sources. PruneSource drops the derivatives of
// one deleted source and PruneOrphans sweeps the whole cache; the watcher
// package drives both.
//
// # Errors
//
// Empty, external, and out-of-root references, and requests without a width
// or height, are passed through unchanged. Malformed attributes return an
// *AttributeError, unknown output formats ErrUnsupportedFormat, and I/O or
// decode failures are returned wrapped. Nothing falls back to the original.
package thumbnail
