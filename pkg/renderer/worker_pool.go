package renderer

import (
	"image"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/df07/go-pathtracer/pkg/core"
)

// DefaultStripeHeight is the number of rows in one stripe
const DefaultStripeHeight = 4

// WorkerPool splits the framebuffer into row stripes and renders them in parallel.
// Worker k owns stripes k, k+N, k+2N... so each of the N workers writes a fixed,
// disjoint set of pixels and dense regions of the image are spread across all of them.
type WorkerPool struct {
	numWorkers   int
	stripeHeight int
}

// NewWorkerPool creates a worker pool. Zero or negative values select the defaults:
// one worker per CPU and DefaultStripeHeight rows per stripe.
func NewWorkerPool(numWorkers, stripeHeight int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if stripeHeight <= 0 {
		stripeHeight = DefaultStripeHeight
	}
	return &WorkerPool{
		numWorkers:   numWorkers,
		stripeHeight: stripeHeight,
	}
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// Stripes returns the rectangles owned by one worker of a width×height frame
func (wp *WorkerPool) Stripes(worker, width, height int) []image.Rectangle {
	var stripes []image.Rectangle
	for y := worker * wp.stripeHeight; y < height; y += wp.numWorkers * wp.stripeHeight {
		stripes = append(stripes, image.Rect(0, y, width, min(y+wp.stripeHeight, height)))
	}
	return stripes
}

// Render runs every worker over its stripes and returns once all of them are done.
// The framebuffer is safe to read after Render returns.
func (wp *WorkerPool) Render(tr *TileRenderer, fb *Framebuffer) (RenderStats, error) {
	var pixels, samples, rejected atomic.Int64

	var g errgroup.Group
	for k := 0; k < wp.numWorkers; k++ {
		stripes := wp.Stripes(k, fb.Width, fb.Height)
		g.Go(func() error {
			// Seeds come from the pixel index, so the initial state is irrelevant
			sampler := core.NewRandomSampler(0)
			for _, stripe := range stripes {
				stats, err := tr.RenderTileBounds(stripe, fb, sampler)
				if err != nil {
					return err
				}
				pixels.Add(int64(stats.TotalPixels))
				samples.Add(int64(stats.TotalSamples))
				rejected.Add(int64(stats.RejectedSamples))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RenderStats{}, err
	}

	stats := RenderStats{
		TotalPixels:     int(pixels.Load()),
		TotalSamples:    int(samples.Load()),
		RejectedSamples: int(rejected.Load()),
		Workers:         wp.numWorkers,
	}
	if stats.TotalPixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	}
	return stats, nil
}
