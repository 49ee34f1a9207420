package thumbnail

import (
	"image"
	"image/color"
	"testing"
)

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name         string
		srcW, srcH   int
		boxW, boxH   int
		wantW, wantH int
	}{
		{"square into landscape box", 100, 100, 50, 40, 40, 40},
		{"landscape", 200, 100, 50, 50, 50, 25},
		{"portrait", 100, 200, 50, 50, 25, 50},
		{"width only", 200, 100, 50, 0, 50, 25},
		{"height only", 200, 100, 0, 20, 40, 20},
		{"smaller than box is not enlarged", 30, 20, 50, 40, 30, 20},
		{"exact fit", 50, 40, 50, 40, 50, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := fitWithin(gradient(tt.srcW, tt.srcH), tt.boxW, tt.boxH)
			if b := out.Bounds(); b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("fitWithin(%dx%d, %d, %d) = %dx%d, want %dx%d",
					tt.srcW, tt.srcH, tt.boxW, tt.boxH, b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestCropToFill(t *testing.T) {
	tests := []struct {
		name         string
		srcW, srcH   int
		boxW, boxH   int
		wantW, wantH int
	}{
		{"square into landscape box", 100, 100, 50, 40, 50, 40},
		{"landscape into square", 300, 100, 50, 50, 50, 50},
		{"portrait into square", 100, 300, 50, 50, 50, 50},
		{"smaller on both axes", 30, 20, 50, 40, 30, 20},
		{"smaller on one axis", 100, 30, 50, 40, 50, 30},
		{"exact", 50, 40, 50, 40, 50, 40},
		{"width only", 200, 100, 50, 0, 50, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := cropToFill(gradient(tt.srcW, tt.srcH), tt.boxW, tt.boxH)
			if b := out.Bounds(); b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("cropToFill(%dx%d, %d, %d) = %dx%d, want %dx%d",
					tt.srcW, tt.srcH, tt.boxW, tt.boxH, b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestCropToFill_Centered(t *testing.T) {
	// Three 10px vertical bands: red, green, blue.
	img := image.NewRGBA(image.Rect(0, 0, 30, 10))
	bands := []color.RGBA{{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 255}}
	for y := 0; y < 10; y++ {
		for x := 0; x < 30; x++ {
			img.Set(x, y, bands[x/10])
		}
	}

	out := cropToFill(img, 10, 10)
	b := out.Bounds()
	if b.Dx() != 10 || b.Dy() != 10 {
		t.Fatalf("size = %dx%d, want 10x10", b.Dx(), b.Dy())
	}
	for _, p := range []image.Point{{0, 0}, {9, 9}, {5, 5}} {
		r, g, bl, _ := out.At(b.Min.X+p.X, b.Min.Y+p.Y).RGBA()
		if r != 0 || g != 0xffff || bl != 0 {
			t.Errorf("pixel %v = (%d,%d,%d), want pure green", p, r>>8, g>>8, bl>>8)
		}
	}
}

func TestCropToFill_NonZeroOrigin(t *testing.T) {
	sub := gradient(200, 200).SubImage(image.Rect(50, 50, 150, 150))

	out := cropToFill(sub, 40, 20)
	if b := out.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Errorf("size = %dx%d, want 40x20", b.Dx(), b.Dy())
	}
}

func TestTransform_Dispatch(t *testing.T) {
	src := gradient(100, 100)

	if b := transform(src, MethodCrop, 50, 40).Bounds(); b.Dx() != 50 || b.Dy() != 40 {
		t.Errorf("crop = %dx%d, want 50x40", b.Dx(), b.Dy())
	}
	if b := transform(src, MethodFit, 50, 40).Bounds(); b.Dx() != 40 || b.Dy() != 40 {
		t.Errorf("fit = %dx%d, want 40x40", b.Dx(), b.Dy())
	}
}

func TestConstrainedSize(t *testing.T) {
	tests := []struct {
		name           string
		w, h           int
		maxDim, maxPix int
		wantW, wantH   int
		wantConstraint bool
	}{
		{"within limits", 800, 600, 4096, 20_000_000, 800, 600, false},
		{"limits disabled", 10000, 8000, 0, 0, 10000, 8000, false},
		{"too wide", 8000, 4000, 4000, 0, 4000, 2000, true},
		{"too tall", 3000, 6000, 3000, 0, 1500, 3000, true},
		{"too many pixels", 4000, 4000, 0, 4_000_000, 2000, 2000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, ok := constrainedSize(tt.w, tt.h, tt.maxDim, tt.maxPix)
			if ok != tt.wantConstraint || w != tt.wantW || h != tt.wantH {
				t.Errorf("constrainedSize(%d, %d, %d, %d) = %d, %d, %v; want %d, %d, %v",
					tt.w, tt.h, tt.maxDim, tt.maxPix, w, h, ok, tt.wantW, tt.wantH, tt.wantConstraint)
			}
		})
	}
}

func TestLoadSource_Constrained(t *testing.T) {
	env := newTestEnv(t, func(c *Config) {
		c.MaxSourceDimension = 100
	})
	writeTestImage(t, env.media("big.png"), 400, 200, "png")

	img, err := env.engine.loadSource(env.media("big.png"))
	if err != nil {
		t.Fatalf("loadSource failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("loaded size = %dx%d, want 100x50", b.Dx(), b.Dy())
	}
}

func TestLoadSource_ConstrainedRotated(t *testing.T) {
	tests := []struct {
		name         string
		configure    func(*Config)
		wantW, wantH int
	}{
		{"max dimension", func(c *Config) { c.MaxSourceDimension = 20 }, 10, 20},
		{"max pixels", func(c *Config) { c.MaxSourcePixels = 200 }, 10, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.configure)
			// Stored landscape, displayed portrait (rotate 90 CW).
			src := env.media("rotated.jpg")
			writeOrientedJPEG(t, src, 40, 20, 6)

			if d, err := ReadDimensions(src); err != nil || d.Width != 40 || d.Height != 20 {
				t.Fatalf("header size = %+v, %v; want 40x20", d, err)
			}

			img, err := env.engine.loadSource(src)
			if err != nil {
				t.Fatalf("loadSource failed: %v", err)
			}
			if b := img.Bounds(); b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("loaded size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestProcess_RotatedSourceKeepsAspect(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.MaxSourceDimension = 20 })
	writeOrientedJPEG(t, env.media("rotated.jpg"), 40, 20, 6)

	_, attrs, err := env.engine.Process("rotated.jpg", kv("width", "100", "height", "100"))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	w, _ := attrs.Get("width")
	h, _ := attrs.Get("height")
	if w != "10" || h != "20" {
		t.Errorf("derivative size = %sx%s, want 10x20", w, h)
	}
}
