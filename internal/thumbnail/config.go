package thumbnail

// Config is everything the engine needs. It is read once by New; the engine
// never consults the environment.
type Config struct {
	// MediaRoot is the directory source references resolve under.
	MediaRoot string
	// MediaURLPrefix is the URL media files are served from, e.g. "/media/".
	MediaURLPrefix string
	// ThumbnailRoot is the directory derivatives are written to.
	ThumbnailRoot string
	// ThumbnailURLPrefix is the URL derivatives are served from.
	ThumbnailURLPrefix string

	DefaultMethod  Method
	DefaultQuality int
	// BMPFallbackFormat replaces BMP and WEBP as output format. Empty keeps
	// the source format.
	BMPFallbackFormat string

	// LockRegeneration collapses concurrent refreshes of one derivative into
	// a single regeneration.
	LockRegeneration bool
	// UseVips loads oversized sources through libvips. InitVips must have
	// succeeded; otherwise the pure Go loader is used.
	UseVips bool
	// MaxSourceDimension and MaxSourcePixels bound the decoded source before
	// the transform runs. Zero disables a bound.
	MaxSourceDimension int
	MaxSourcePixels    int
}

// DefaultConfig returns the defaults documented for the service.
func DefaultConfig() Config {
	return Config{
		MediaRoot:          "/media",
		MediaURLPrefix:     "/media/",
		ThumbnailRoot:      "/cache/thumbnails",
		ThumbnailURLPrefix: "/thumbnails/",
		DefaultMethod:      MethodFit,
		DefaultQuality:     85,
		BMPFallbackFormat:  "GIF",
	}
}
