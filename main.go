package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/slog"

	"github.com/df07/go-pathtracer/pkg/config"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/output"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("pathtracer", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var flags config.Flags
	sceneName := fs.String("scene", "cornell", "Built-in scene name, scene name in the scenes directory, or path to a .json/.yaml scene")
	settingsPath := fs.String("config", "", "Optional YAML settings file")
	list := fs.Bool("list", false, "List available scenes and exit")
	fs.IntVar(&flags.Workers, "workers", 0, "Number of parallel workers (default: CPU count)")
	fs.IntVar(&flags.StripeHeight, "stripe", 0, "Rows per scheduling stripe (default 4)")
	fs.Uint64Var(&flags.Seed, "seed", 0, "Base random seed (default 1)")
	fs.IntVar(&flags.Width, "width", 0, "Override the scene's horizontal resolution")
	fs.IntVar(&flags.Height, "height", 0, "Override the scene's vertical resolution")
	fs.IntVar(&flags.Samples, "samples", 0, "Override the scene's samples per pixel")
	fs.StringVar(&flags.ScenesDir, "scenes", "", "Directory searched for scene files (default scenes)")
	fs.StringVar(&flags.Output, "out", "", "Output .png or .webp path, or bucket URL such as file:///tmp/renders/out.png (default render.png)")
	fs.StringVar(&flags.LogLevel, "log-level", "", "debug, info, warn or error (default info)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var cfg config.Config
	if *settingsPath != "" {
		loaded, err := config.Load(*settingsPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg.Resolve(flags)

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if *list {
		return listScenes(stdout, cfg.ScenesDir)
	}

	s, err := createScene(*sceneName, cfg.ScenesDir, logger)
	if err != nil {
		return err
	}
	if cfg.ApplyTo(&s.SamplingConfig) {
		// Keep pixels square when the resolution is overridden
		s.CameraConfig.AspectRatio = float64(s.SamplingConfig.Width) / float64(s.SamplingConfig.Height)
		s.Camera = geometry.NewCamera(s.CameraConfig)
	}

	logger.Info("scene ready",
		"scene", *sceneName,
		"primitives", s.Stats.Shapes,
		"lights", s.Stats.Lights,
		"aggregate", s.AggregateKind)

	raytracer := renderer.NewRaytracer(s, renderer.Config{
		NumWorkers:   cfg.Workers,
		StripeHeight: cfg.StripeHeight,
		Seed:         cfg.Seed,
		Logger:       logger,
	})
	fb, stats, err := raytracer.Render()
	if err != nil {
		return err
	}

	if err := output.Write(ctx, fb.Image(), cfg.Output); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Rendered %dx%d at %.0f spp in %v -> %s\n",
		fb.Width, fb.Height, stats.AverageSamples, stats.Duration.Round(time.Millisecond), cfg.Output)
	return nil
}

// createScene resolves name as a built-in scene, then as a scene in scenesDir, then as a
// path to a scene file
func createScene(name, scenesDir string, logger *slog.Logger) (*scene.Scene, error) {
	if name == "" {
		return nil, errors.New("no scene given")
	}
	if s, err := scene.Builtin(name); err == nil {
		return s, nil
	}

	if _, err := scene.FormatFromPath(name); err != nil {
		files, listErr := scene.ListSceneFiles(scenesDir)
		if listErr != nil {
			return nil, listErr
		}
		for _, info := range files {
			if info.Name == name {
				return scene.Load(info.FilePath, logger)
			}
		}
		return nil, errors.Errorf("unknown scene %q (use -list to see available scenes)", name)
	}
	return scene.Load(name, logger)
}

func listScenes(w io.Writer, scenesDir string) error {
	scenes, err := scene.ListAllScenes(scenesDir)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Available scenes:")
	for _, info := range scenes {
		line := fmt.Sprintf("  %-14s %s", info.Name, info.DisplayName)
		if info.Description != "" {
			line += " - " + info.Description
		}
		if info.FilePath != "" {
			line += " (" + filepath.ToSlash(info.FilePath) + ")"
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
	return nil
}
