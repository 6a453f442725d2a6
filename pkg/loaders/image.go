package loaders

import (
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/df07/go-pathtracer/pkg/core"
)

// ImageData contains loaded image data as Vec3 color array
type ImageData struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major, row 0 at the top
}

// decoders maps a lowercase file extension to its decoder. TGA files have no magic
// number, so the tga package registers a pattern that matches any input; sniffing with
// image.Decode would hand PNG and JPEG files to it.
var decoders = map[string]func(io.Reader) (image.Image, error){
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".gif":  gif.Decode,
	".bmp":  bmp.Decode,
	".tif":  tiff.Decode,
	".tiff": tiff.Decode,
	".webp": webp.Decode,
	".tga":  tga.Decode,
}

// LoadImage loads an image file and converts it to a Vec3 color array. The decoder is
// chosen by file extension.
func LoadImage(filename string) (*ImageData, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	decode, ok := decoders[ext]
	if !ok {
		return nil, errors.Errorf("unsupported image format %q for %s", ext, filename)
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open image file")
	}
	defer file.Close()

	img, err := decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode image %s", filename)
	}

	return FromImage(img), nil
}

// FromImage converts a decoded image to a Vec3 color array in [0, 1]
func FromImage(img image.Image) *ImageData {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// RGBA returns uint32 in [0, 65535], convert to [0, 1]
			pixels[y*width+x] = core.NewVec3(
				float64(r)/65535.0,
				float64(g)/65535.0,
				float64(b)/65535.0,
			)
		}
	}

	return &ImageData{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}
