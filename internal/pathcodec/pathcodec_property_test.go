//go:build property
// +build property

package pathcodec

import (
	"path"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestDeriveProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	methods := gen.OneConstOf("crop", "fit")
	formats := gen.OneConstOf("JPG", "PNG", "GIF")

	// Property: derivation is deterministic
	properties.Property("deterministic", prop.ForAll(
		func(base string, w, h int, method, format string) bool {
			src := base + ".jpg"
			p := Params{Width: w, Height: h, Method: method, Format: format}
			return Derive(src, p) == Derive(src, p)
		},
		gen.RegexMatch(`^[a-z][a-z0-9_]{0,12}$`),
		gen.IntRange(0, 4000),
		gen.IntRange(0, 4000),
		methods,
		formats,
	))

	// Property: the derived file stays in the source directory and ends with the format
	properties.Property("directory and extension", prop.ForAll(
		func(dir, base string, w int, format string) bool {
			src := dir + "/" + base + ".png"
			got := Derive(src, Params{Width: w, Method: "fit", Format: format})
			return path.Dir(got) == dir && strings.HasSuffix(got, "."+strings.ToLower(format))
		},
		gen.RegexMatch(`^[a-z]{1,8}(/[a-z]{1,8}){0,2}$`),
		gen.RegexMatch(`^[a-z]{1,10}$`),
		gen.IntRange(1, 4000),
		formats,
	))

	// Property: distinct dimension pairs never collide for the same source
	properties.Property("dimension tags are injective", prop.ForAll(
		func(w1, h1, w2, h2 int) bool {
			if w1 == w2 && h1 == h2 {
				return true
			}
			a := Derive("photo.jpg", Params{Width: w1, Height: h1, Method: "crop", Format: "JPG"})
			b := Derive("photo.jpg", Params{Width: w2, Height: h2, Method: "crop", Format: "JPG"})
			return a != b
		},
		gen.IntRange(1, 2000),
		gen.IntRange(1, 2000),
		gen.IntRange(1, 2000),
		gen.IntRange(1, 2000),
	))

	properties.TestingRun(t)
}
