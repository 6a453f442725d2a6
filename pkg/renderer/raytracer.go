package renderer

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/exp/slog"

	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// Config contains the settings that control how a frame is scheduled
type Config struct {
	NumWorkers   int          // Parallel workers (0 = use CPU count)
	StripeHeight int          // Rows per stripe (0 = DefaultStripeHeight)
	Seed         uint64       // Base seed every pixel seed is derived from
	Logger       *slog.Logger // nil = slog.Default()
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		NumWorkers:   0,
		StripeHeight: DefaultStripeHeight,
		Seed:         1,
	}
}

// Raytracer renders a preprocessed scene into a framebuffer
type Raytracer struct {
	scene      *scene.Scene
	config     Config
	integrator integrator.Integrator
	workerPool *WorkerPool
	logger     *slog.Logger
}

// NewRaytracer creates a raytracer for s using the path tracing integrator
func NewRaytracer(s *scene.Scene, config Config) *Raytracer {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Raytracer{
		scene:      s,
		config:     config,
		integrator: integrator.NewPathTracingIntegrator(s.SamplingConfig),
		workerPool: NewWorkerPool(config.NumWorkers, config.StripeHeight),
		logger:     logger,
	}
}

// SetIntegrator replaces the light transport algorithm
func (rt *Raytracer) SetIntegrator(integratorInst integrator.Integrator) {
	rt.integrator = integratorInst
}

// Render renders the full frame. The scene is only read; the returned framebuffer
// belongs to the caller.
func (rt *Raytracer) Render() (*Framebuffer, RenderStats, error) {
	if err := rt.validate(); err != nil {
		return nil, RenderStats{}, err
	}

	config := rt.scene.SamplingConfig
	logger := rt.logger.With("render_id", uuid.NewString())
	logger.Info("render started",
		"width", config.Width,
		"height", config.Height,
		"samples", config.SamplesPerPixel,
		"max_depth", config.MaxDepth,
		"importance_sampling", config.UseImportanceSampling,
		"workers", rt.workerPool.GetNumWorkers(),
		"seed", rt.config.Seed)

	start := time.Now()
	fb := NewFramebuffer(config.Width, config.Height)
	tileRenderer := NewTileRenderer(rt.scene, rt.integrator, rt.config.Seed)
	stats, err := rt.workerPool.Render(tileRenderer, fb)
	if err != nil {
		return nil, RenderStats{}, errors.Wrap(err, "rendering frame")
	}
	stats.Duration = time.Since(start)

	if stats.RejectedSamples > 0 {
		logger.Warn("rejected non-finite or negative samples", "count", stats.RejectedSamples)
	}
	logger.Info("render finished",
		"pixels", stats.TotalPixels,
		"samples", stats.TotalSamples,
		"duration", stats.Duration)
	return fb, stats, nil
}

func (rt *Raytracer) validate() error {
	if rt.scene.Camera == nil {
		return errors.New("scene has no camera")
	}
	if rt.scene.Aggregate == nil {
		return errors.New("scene has not been preprocessed")
	}
	config := rt.scene.SamplingConfig
	if config.Width <= 0 || config.Height <= 0 {
		return errors.Errorf("invalid resolution %dx%d", config.Width, config.Height)
	}
	if config.SamplesPerPixel <= 0 {
		return errors.Errorf("invalid samples per pixel %d", config.SamplesPerPixel)
	}
	return nil
}
