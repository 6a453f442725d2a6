package config

import (
	"bytes"
	"os"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/exp/slog"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-pathtracer/pkg/scene"
)

// Config holds the render settings that live outside the scene description.
// Zero values mean "use the scene's value" for the sampling overrides.
type Config struct {
	// Scheduling
	Workers      int    `yaml:"workers"`
	StripeHeight int    `yaml:"stripe_height"`
	Seed         uint64 `yaml:"seed"`

	// Sampling overrides
	Width                int `yaml:"width"`
	Height               int `yaml:"height"`
	Samples              int `yaml:"samples"`
	MaxDepth             int `yaml:"max_depth"`
	RussianRouletteDepth int `yaml:"russian_roulette_depth"`

	// Paths
	ScenesDir string `yaml:"scenes_dir"`
	Output    string `yaml:"output"` // Local path or bucket URL

	LogLevel string `yaml:"log_level"`
}

// Load reads a YAML settings file. Unknown keys are rejected so typos surface early.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, errors.Wrapf(err, "config: parse %s", path)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override settings file values when non-zero
type Flags struct {
	Workers      int
	StripeHeight int
	Seed         uint64
	Width        int
	Height       int
	Samples      int
	ScenesDir    string
	Output       string
	LogLevel     string
}

// Resolve applies flag overrides, then fills any remaining empty fields with defaults
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.StripeHeight > 0 {
		c.StripeHeight = flags.StripeHeight
	}
	if flags.Seed > 0 {
		c.Seed = flags.Seed
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Samples > 0 {
		c.Samples = flags.Samples
	}
	if flags.ScenesDir != "" {
		c.ScenesDir = flags.ScenesDir
	}
	if flags.Output != "" {
		c.Output = flags.Output
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.StripeHeight <= 0 {
		c.StripeHeight = 4
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
	if c.ScenesDir == "" {
		c.ScenesDir = "scenes"
	}
	if c.Output == "" {
		c.Output = "render.png"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Level parses LogLevel ("debug", "info", "warn", "error", optionally with an offset
// such as "info+2")
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, errors.Wrapf(err, "config: log level %q", c.LogLevel)
	}
	return level, nil
}

// ApplyTo copies the non-zero sampling overrides into sampling and reports whether the
// resolution changed
func (c Config) ApplyTo(sampling *scene.SamplingConfig) (resized bool) {
	if c.Width > 0 && c.Width != sampling.Width {
		sampling.Width = c.Width
		resized = true
	}
	if c.Height > 0 && c.Height != sampling.Height {
		sampling.Height = c.Height
		resized = true
	}
	if c.Samples > 0 {
		sampling.SamplesPerPixel = c.Samples
	}
	if c.MaxDepth > 0 {
		sampling.MaxDepth = c.MaxDepth
	}
	if c.RussianRouletteDepth > 0 {
		sampling.RussianRouletteDepth = c.RussianRouletteDepth
	}
	return resized
}
