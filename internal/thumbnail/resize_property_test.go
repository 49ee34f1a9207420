//go:build property
// +build property

package thumbnail

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestResizeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	side := gen.IntRange(1, 300)

	// Property: fit stays inside the box and never enlarges
	properties.Property("fit bounds", prop.ForAll(
		func(sw, sh, bw, bh int) bool {
			b := fitWithin(gradient(sw, sh), bw, bh).Bounds()
			return b.Dx() <= bw && b.Dy() <= bh && b.Dx() <= sw && b.Dy() <= sh
		},
		side, side, side, side,
	))

	// Property: fit touches a bound, or keeps the source when it already fits
	properties.Property("fit is tight", prop.ForAll(
		func(sw, sh, bw, bh int) bool {
			b := fitWithin(gradient(sw, sh), bw, bh).Bounds()
			if sw <= bw && sh <= bh {
				return b.Dx() == sw && b.Dy() == sh
			}
			return b.Dx() == bw || b.Dy() == bh
		},
		side, side, side, side,
	))

	// Property: fit keeps the aspect ratio within one pixel of rounding
	properties.Property("fit aspect", prop.ForAll(
		func(sw, sh, bw, bh int) bool {
			b := fitWithin(gradient(sw, sh), bw, bh).Bounds()
			wantH := float64(b.Dx()) * float64(sh) / float64(sw)
			wantW := float64(b.Dy()) * float64(sw) / float64(sh)
			return math.Abs(wantH-float64(b.Dy())) <= 1 || math.Abs(wantW-float64(b.Dx())) <= 1
		},
		side, side, side, side,
	))

	// Property: crop output is the box clamped to the pre-scaled source
	properties.Property("crop size", prop.ForAll(
		func(sw, sh, bw, bh int) bool {
			b := cropToFill(gradient(sw, sh), bw, bh).Bounds()
			ew, eh := sw, sh
			if scale := math.Max(float64(bw)/float64(sw), float64(bh)/float64(sh)); scale < 1 {
				ew = max(1, int(math.Round(float64(sw)*scale)))
				eh = max(1, int(math.Round(float64(sh)*scale)))
			}
			return b.Dx() == min(bw, ew) && b.Dy() == min(bh, eh)
		},
		side, side, side, side,
	))

	// Property: a source at least as large as the box is cropped to exactly the box
	properties.Property("crop fills the box", prop.ForAll(
		func(bw, bh, extraW, extraH int) bool {
			b := cropToFill(gradient(bw+extraW, bh+extraH), bw, bh).Bounds()
			return b.Dx() == bw && b.Dy() == bh
		},
		side, side, gen.IntRange(0, 200), gen.IntRange(0, 200),
	))

	properties.TestingRun(t)
}
