package thumbnail

import (
	"fmt"
	"image"
	"math"

	// Source decoders for the standard formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"webmedia/internal/filesystem"
	"webmedia/internal/logging"

	"github.com/disintegration/imaging"
)

// Dimensions is an image's pixel size.
type Dimensions struct {
	Width  int
	Height int
}

// ReadDimensions returns an image's size from its header without decoding
// the pixel data.
func ReadDimensions(path string) (Dimensions, error) {
	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return Dimensions{}, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Dimensions{}, fmt.Errorf("failed to read image header %s: %w", path, err)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

// openImage decodes path with EXIF orientation applied.
func openImage(path string) (image.Image, error) {
	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open source %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode source %s: %w", path, err)
	}
	return img, nil
}

// constrainedSize returns the size an image of w x h is pre-shrunk to so
// that it stays within maxDimension and maxPixels. ok is false when the
// image already fits. A zero limit is ignored.
func constrainedSize(w, h, maxDimension, maxPixels int) (tw, th int, ok bool) {
	tooWide := maxDimension > 0 && (w > maxDimension || h > maxDimension)
	tooMany := maxPixels > 0 && w*h > maxPixels
	if !tooWide && !tooMany {
		return w, h, false
	}

	tw, th = w, h
	if tooWide {
		if w > h {
			tw = maxDimension
			th = h * maxDimension / w
		} else {
			th = maxDimension
			tw = w * maxDimension / h
		}
	}

	if maxPixels > 0 && tw*th > maxPixels {
		scale := float64(maxPixels) / float64(tw*th)
		// Pixel count scales with the square of the side.
		side := math.Sqrt(scale)
		tw = int(float64(tw) * side)
		th = int(float64(th) * side)
	}
	return max(1, tw), max(1, th), true
}

// loadSource decodes a source image, pre-shrinking it when it exceeds the
// configured bounds. Oversized sources go through libvips when enabled.
func (e *Engine) loadSource(path string) (image.Image, error) {
	maxDim, maxPix := e.cfg.MaxSourceDimension, e.cfg.MaxSourcePixels
	if maxDim <= 0 && maxPix <= 0 {
		return openImage(path)
	}

	dims, err := ReadDimensions(path)
	if err != nil {
		logging.Debug("Could not get image dimensions for %s: %v, loading unconstrained", path, err)
		return openImage(path)
	}

	tw, th, needsConstraint := constrainedSize(dims.Width, dims.Height, maxDim, maxPix)
	if !needsConstraint {
		return openImage(path)
	}

	logging.Info("Constraining large image %s (%dx%d)", path, dims.Width, dims.Height)

	if e.cfg.UseVips && IsVipsAvailable() {
		// The header size ignores EXIF orientation. A square box on the long
		// side bounds the rotated image the same way.
		side := max(tw, th)
		img, err := LoadImageWithVips(path, side, side)
		if err == nil {
			return img, nil
		}
		logging.Warn("vips load failed for %s, falling back to Go decoder: %v", path, err)
	}

	img, err := openImage(path)
	if err != nil {
		return nil, err
	}
	// Size the shrink from the decoded bitmap, which is already rotated.
	b := img.Bounds()
	if tw, th, ok := constrainedSize(b.Dx(), b.Dy(), maxDim, maxPix); ok {
		img = imaging.Resize(img, tw, th, resizeFilter)
	}
	return img, nil
}
