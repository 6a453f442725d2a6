package renderer

import (
	"image"
	"image/color"
	"time"

	"github.com/df07/go-pathtracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels     int           // Total number of pixels rendered
	TotalSamples    int           // Total number of samples taken
	RejectedSamples int           // Samples dropped for being NaN, infinite or negative
	AverageSamples  float64       // Average samples per pixel
	Workers         int           // Goroutines that shared the frame
	Duration        time.Duration // Wall time of the render
}

// PixelStats tracks sampling statistics for a single pixel
type PixelStats struct {
	ColorAccum       core.Vec3 // RGB accumulator for final result
	LuminanceAccum   float64   // Luminance accumulator for noise estimates
	LuminanceSqAccum float64   // Luminance squared for variance
	SampleCount      int       // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	luminance := color.Luminance()
	ps.LuminanceAccum += luminance
	ps.LuminanceSqAccum += luminance * luminance
	ps.SampleCount++
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{}
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}

// Variance returns the sample variance of the pixel's luminance
func (ps *PixelStats) Variance() float64 {
	if ps.SampleCount < 2 {
		return 0
	}
	n := float64(ps.SampleCount)
	mean := ps.LuminanceAccum / n
	return max(0, (ps.LuminanceSqAccum/n-mean*mean)*n/(n-1))
}

// Framebuffer holds one PixelStats per pixel in row-major order, row 0 at the top.
// Workers write disjoint pixels, so no locking is done here.
type Framebuffer struct {
	Width, Height int
	pixels        []PixelStats
}

// NewFramebuffer allocates an empty framebuffer
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		pixels: make([]PixelStats, width*height),
	}
}

// Bounds returns the framebuffer rectangle
func (fb *Framebuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, fb.Width, fb.Height)
}

// At returns the accumulator of pixel (x, y)
func (fb *Framebuffer) At(x, y int) *PixelStats {
	return &fb.pixels[y*fb.Width+x]
}

// Resolve returns the display color of pixel (x, y): the sample mean, gamma corrected
// with gamma 2 and clamped to [0, 1]
func (fb *Framebuffer) Resolve(x, y int) core.Vec3 {
	return fb.At(x, y).GetColor().GammaCorrect(2.0).Clamp(0.0, 1.0)
}

// Image converts the resolved framebuffer to 8-bit color
func (fb *Framebuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(fb.Bounds())
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			c := fb.Resolve(x, y)
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(255*c.X + 0.5),
				G: uint8(255*c.Y + 0.5),
				B: uint8(255*c.Z + 0.5),
				A: 255,
			})
		}
	}
	return img
}

// AverageLuminance returns the mean resolved luminance over rect
func (fb *Framebuffer) AverageLuminance(rect image.Rectangle) float64 {
	rect = rect.Intersect(fb.Bounds())
	if rect.Empty() {
		return 0
	}
	var sum float64
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			sum += fb.Resolve(x, y).Luminance()
		}
	}
	return sum / float64(rect.Dx()*rect.Dy())
}
