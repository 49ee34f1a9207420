package thumbnail

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

// gradient returns a w x h image whose colour varies on both axes.
func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 255) / max(1, w)),
				G: uint8((y * 255) / max(1, h)),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

// writeTestImage writes a gradient image of the given size and format.
func writeTestImage(t testing.TB, path string, w, h int, format string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test image file: %v", err)
	}
	defer f.Close()

	img := gradient(w, h)
	switch format {
	case "jpg", "jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	case "png":
		err = png.Encode(f, img)
	case "gif":
		err = gif.Encode(f, img, nil)
	case "bmp":
		err = bmp.Encode(f, img)
	default:
		t.Fatalf("Unsupported test image format: %s", format)
	}
	if err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
}

// writeOrientedJPEG writes a w x h JPEG carrying an EXIF orientation tag.
func writeOrientedJPEG(t testing.TB, path string, w, h int, orientation uint16) {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, gradient(w, h), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}

	// Big-endian TIFF header and a single IFD holding the orientation.
	var exif bytes.Buffer
	exif.WriteString("Exif\x00\x00")
	exif.WriteString("MM\x00\x2a")
	_ = binary.Write(&exif, binary.BigEndian, uint32(8))
	_ = binary.Write(&exif, binary.BigEndian, uint16(1))
	_ = binary.Write(&exif, binary.BigEndian, []uint16{0x0112, 3})
	_ = binary.Write(&exif, binary.BigEndian, uint32(1))
	_ = binary.Write(&exif, binary.BigEndian, []uint16{orientation, 0})
	_ = binary.Write(&exif, binary.BigEndian, uint32(0))

	var out bytes.Buffer
	out.Write(buf.Bytes()[:2]) // SOI
	out.Write([]byte{0xff, 0xe1})
	_ = binary.Write(&out, binary.BigEndian, uint16(exif.Len()+2))
	out.Write(exif.Bytes())
	out.Write(buf.Bytes()[2:])

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		t.Fatalf("Failed to write test image: %v", err)
	}
}

// decodeFile returns the size and format of an image file.
func decodeFile(t testing.TB, path string) (int, int, string) {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("Failed to decode %s: %v", path, err)
	}
	return cfg.Width, cfg.Height, format
}

type testEnv struct {
	engine    *Engine
	mediaRoot string
	thumbRoot string
}

func (e testEnv) media(rel string) string {
	return filepath.Join(e.mediaRoot, filepath.FromSlash(rel))
}

func (e testEnv) thumb(rel string) string {
	return filepath.Join(e.thumbRoot, filepath.FromSlash(rel))
}

func newTestEnv(t testing.TB, tweak ...func(*Config)) testEnv {
	t.Helper()

	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.MediaRoot = filepath.Join(root, "media")
	cfg.ThumbnailRoot = filepath.Join(root, "thumbnails")
	for _, fn := range tweak {
		fn(&cfg)
	}
	if err := os.MkdirAll(cfg.MediaRoot, 0o755); err != nil {
		t.Fatalf("Failed to create media root: %v", err)
	}

	return testEnv{
		engine:    New(cfg),
		mediaRoot: cfg.MediaRoot,
		thumbRoot: cfg.ThumbnailRoot,
	}
}

func kv(pairs ...string) Attrs {
	var a Attrs
	for i := 0; i+1 < len(pairs); i += 2 {
		a = append(a, Attr{Key: pairs[i], Value: pairs[i+1]})
	}
	return a
}
