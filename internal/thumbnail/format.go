package thumbnail

import (
	"errors"
	"fmt"
	"image/png"
	"path"
	"strings"

	"github.com/disintegration/imaging"

	// Source decoders beyond the ones imaging registers.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned when no encoder exists for the target
// format.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// reencodeFallback lists source formats that are written in the configured
// fallback format instead of their own. Neither is re-encoded reliably with
// quality options: BMP has none, and there is no WebP encoder.
var reencodeFallback = map[string]bool{
	"BMP":  true,
	"WEBP": true,
}

// NormalizeFormat returns the upper-case output format for a request.
// An empty format means the extension of source. JPEG becomes JPG, and BMP
// or WEBP become fallback when fallback is set.
func NormalizeFormat(format, source, fallback string) string {
	format = strings.TrimSpace(format)
	if format == "" {
		format = strings.TrimPrefix(path.Ext(source), ".")
	}
	format = canonicalFormat(format)
	if reencodeFallback[format] && fallback != "" {
		format = canonicalFormat(fallback)
	}
	return format
}

func canonicalFormat(format string) string {
	format = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(format), "."))
	switch format {
	case "JPEG":
		return "JPG"
	case "TIF":
		return "TIFF"
	}
	return format
}

var encoders = map[string]imaging.Format{
	"JPG":  imaging.JPEG,
	"PNG":  imaging.PNG,
	"GIF":  imaging.GIF,
	"TIFF": imaging.TIFF,
	"BMP":  imaging.BMP,
}

// encoderFor returns the imaging format for a normalized format name.
func encoderFor(format string) (imaging.Format, error) {
	f, ok := encoders[format]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return f, nil
}

// encodeOptions returns the encoder options for format. Quality applies to
// JPG. Every format except GIF is optimized; for PNG that means the best
// compression level, GIF only gets full-palette quantization.
func encodeOptions(format string, quality int) []imaging.EncodeOption {
	opts := []imaging.EncodeOption{imaging.JPEGQuality(quality)}
	if format == "GIF" {
		return append(opts, imaging.GIFNumColors(256))
	}
	return append(opts, imaging.PNGCompressionLevel(png.BestCompression))
}
