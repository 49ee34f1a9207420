package thumbnail

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// resizeFilter is used for every downscale.
var resizeFilter = imaging.Lanczos

// transform applies method to img for a width x height box. A zero bound
// means the source size on that axis.
func transform(img image.Image, method Method, width, height int) image.Image {
	if method == MethodCrop {
		return cropToFill(img, width, height)
	}
	return fitWithin(img, width, height)
}

// fitWithin shrinks img to fit inside the box, keeping its aspect ratio.
// It never enlarges.
func fitWithin(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	if maxW <= 0 {
		maxW = b.Dx()
	}
	if maxH <= 0 {
		maxH = b.Dy()
	}
	return imaging.Fit(img, maxW, maxH, resizeFilter)
}

// cropToFill scales img to cover the box, never enlarging, and cuts the
// centered box out of the result. The box is clamped to the scaled image, so
// a source smaller than the box on both axes comes back at its own size.
func cropToFill(img image.Image, boxW, boxH int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return img
	}
	if boxW <= 0 {
		boxW = w
	}
	if boxH <= 0 {
		boxH = h
	}

	scale := math.Max(float64(boxW)/float64(w), float64(boxH)/float64(h))
	if scale < 1 {
		nw := max(1, int(math.Round(float64(w)*scale)))
		nh := max(1, int(math.Round(float64(h)*scale)))
		img = imaging.Resize(img, nw, nh, resizeFilter)
		b = img.Bounds()
		w, h = nw, nh
	}

	boxW = min(boxW, w)
	boxH = min(boxH, h)
	left := b.Min.X + (w-boxW)/2
	top := b.Min.Y + (h-boxH)/2
	return imaging.Crop(img, image.Rect(left, top, left+boxW, top+boxH))
}
