package loaders

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"

	"github.com/df07/go-pathtracer/pkg/core"
)

func encodeJPEG(f *os.File, img image.Image) error {
	return jpeg.Encode(f, img, &jpeg.Options{Quality: 100})
}

// writeSolidImage writes an 8x8 image of one color; JPEG subsamples chroma, so lossy
// formats are tested without per-pixel detail
func writeSolidImage(t *testing.T, path string, c color.RGBA, encode func(*os.File, image.Image) error) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	defer f.Close()
	if err := encode(f, img); err != nil {
		t.Fatalf("Failed to encode image: %v", err)
	}
}

func writeTestImage(t *testing.T, path string, encode func(*os.File, image.Image) error) {
	t.Helper()

	// Create a simple 2x2 test image
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255}) // Top-left: white
	img.Set(1, 0, color.RGBA{R: 255, G: 0, B: 0, A: 255})     // Top-right: red
	img.Set(0, 1, color.RGBA{R: 0, G: 255, B: 0, A: 255})     // Bottom-left: green
	img.Set(1, 1, color.RGBA{R: 0, G: 0, B: 255, A: 255})     // Bottom-right: blue

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	defer f.Close()
	if err := encode(f, img); err != nil {
		t.Fatalf("Failed to encode image: %v", err)
	}
}

// TestLoadImage creates test images and verifies loading
func TestLoadImage(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		encode func(*os.File, image.Image) error
	}{
		{"png", "test.png", func(f *os.File, img image.Image) error { return png.Encode(f, img) }},
		{"uppercase extension", "TEST.PNG", func(f *os.File, img image.Image) error { return png.Encode(f, img) }},
		{"bmp", "test.bmp", func(f *os.File, img image.Image) error { return bmp.Encode(f, img) }},
		{"tga", "test.tga", func(f *os.File, img image.Image) error { return tga.Encode(f, img) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testFile := filepath.Join(t.TempDir(), tt.file)
			writeTestImage(t, testFile, tt.encode)

			imageData, err := LoadImage(testFile)
			if err != nil {
				t.Fatalf("LoadImage failed: %v", err)
			}
			if imageData.Width != 2 || imageData.Height != 2 {
				t.Fatalf("Expected 2x2 image, got %dx%d", imageData.Width, imageData.Height)
			}
			if len(imageData.Pixels) != 4 {
				t.Fatalf("Expected 4 pixels, got %d", len(imageData.Pixels))
			}

			checkColor := func(name string, got, expected core.Vec3) {
				const tolerance = 0.01
				if math.Abs(got.X-expected.X) > tolerance ||
					math.Abs(got.Y-expected.Y) > tolerance ||
					math.Abs(got.Z-expected.Z) > tolerance {
					t.Errorf("%s: expected %v, got %v", name, expected, got)
				}
			}

			// Row-major, top row first
			checkColor("Top-left (white)", imageData.Pixels[0], core.NewVec3(1, 1, 1))
			checkColor("Top-right (red)", imageData.Pixels[1], core.NewVec3(1, 0, 0))
			checkColor("Bottom-left (green)", imageData.Pixels[2], core.NewVec3(0, 1, 0))
			checkColor("Bottom-right (blue)", imageData.Pixels[3], core.NewVec3(0, 0, 1))
		})
	}
}

// TestLoadImageNotFound verifies error handling for missing files
func TestLoadImageNotFound(t *testing.T) {
	_, err := LoadImage("nonexistent.png")
	if err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}
}

func TestLoadImageNotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadImage(path); err == nil {
		t.Error("Expected decode error")
	}
}

func TestLoadImageJPEG(t *testing.T) {
	for _, file := range []string{"red.jpg", "red.jpeg"} {
		path := filepath.Join(t.TempDir(), file)
		writeSolidImage(t, path, color.RGBA{R: 255, A: 255}, encodeJPEG)

		data, err := LoadImage(path)
		if err != nil {
			t.Fatalf("%s: LoadImage failed: %v", file, err)
		}
		if data.Width != 8 || data.Height != 8 {
			t.Fatalf("%s: expected 8x8 image, got %dx%d", file, data.Width, data.Height)
		}
		for i, p := range data.Pixels {
			if p.X < 0.95 || p.Y > 0.05 || p.Z > 0.05 {
				t.Fatalf("%s: pixel %d expected red, got %v", file, i, p)
			}
		}
	}
}

func TestLoadImageUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "texture.xyz")
	writeTestImage(t, path, func(f *os.File, img image.Image) error { return png.Encode(f, img) })
	if _, err := LoadImage(path); err == nil {
		t.Error("Expected error for unknown extension")
	}
}
