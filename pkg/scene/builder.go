package scene

import (
	"maps"
	"math"
	"path/filepath"
	"slices"

	"github.com/pkg/errors"
	"golang.org/x/exp/slog"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/loaders"
	"github.com/df07/go-pathtracer/pkg/material"
)

var (
	// ErrUnresolvedReference is returned when a material or texture name is not declared
	ErrUnresolvedReference = errors.New("unresolved reference")
	// ErrInvalidValue is returned for out-of-range parameters
	ErrInvalidValue = errors.New("invalid value")
	// ErrUnknownType is returned for unrecognized variant tags
	ErrUnknownType = errors.New("unknown type")
)

// Resources supplies the external files a scene refers to. Paths are as written in the
// scene file; *loaders.Cache is the usual implementation.
type Resources interface {
	Mesh(path string) (*loaders.MeshData, error)
	Image(path string) (*loaders.ImageData, error)
}

// Builder turns a Description into a render-ready Scene. Names are resolved exactly once;
// a Builder is single use.
type Builder struct {
	resources Resources
	logger    *slog.Logger

	desc      *Description
	textures  map[string]material.Texture
	resolving map[string]bool
	materials map[string]material.Material
	stats     BuildStats
}

// NewBuilder creates a builder. A nil logger falls back to slog.Default().
func NewBuilder(resources Resources, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		resources: resources,
		logger:    logger,
		textures:  make(map[string]material.Texture),
		resolving: make(map[string]bool),
		materials: make(map[string]material.Material),
	}
}

// Build validates the description and assembles the scene, including its aggregate
func (b *Builder) Build(desc *Description) (*Scene, error) {
	b.desc = desc

	sampling, err := buildSampling(desc.Logistics)
	if err != nil {
		return nil, errors.Wrap(err, "Logistics")
	}
	cameraConfig, err := buildCameraConfig(desc.Camera, sampling)
	if err != nil {
		return nil, errors.Wrap(err, "Camera")
	}

	for _, name := range slices.Sorted(maps.Keys(desc.Textures)) {
		if _, err := b.texture(name); err != nil {
			return nil, err
		}
	}
	for _, name := range slices.Sorted(maps.Keys(desc.Materials)) {
		if _, err := b.material(name); err != nil {
			return nil, err
		}
	}

	kind := desc.Aggregate
	if kind == "" {
		kind = AggregateBVH
	}
	if kind != AggregateBVH && kind != AggregateList {
		return nil, errors.Wrapf(ErrUnknownType, "aggregate %q", desc.Aggregate)
	}

	shapes := make([]geometry.Shape, 0, len(desc.Shapes))
	for i := range desc.Shapes {
		shape, err := b.shape(&desc.Shapes[i], nil)
		if err != nil {
			return nil, errors.Wrapf(err, "Shapes[%d]", i)
		}
		shapes = append(shapes, shape)
	}

	s := &Scene{
		Camera:         geometry.NewCamera(cameraConfig),
		Shapes:         shapes,
		AggregateKind:  kind,
		SamplingConfig: sampling,
		CameraConfig:   cameraConfig,
		Stats:          b.stats,
	}
	if err := s.Preprocess(); err != nil {
		return nil, err
	}

	b.logger.Info("scene built",
		"shapes", s.Stats.Shapes,
		"lights", s.Stats.Lights,
		"skipped_degenerates", s.Stats.SkippedDegenerates,
		"aggregate", kind,
		"bvh_nodes", s.Stats.BVH.Nodes,
		"bvh_depth", s.Stats.BVH.MaxDepth)
	return s, nil
}

func buildSampling(l LogisticsDesc) (SamplingConfig, error) {
	config := DefaultSamplingConfig()
	if l.ResolutionX <= 0 || l.ResolutionY <= 0 {
		return config, errors.Wrapf(ErrInvalidValue, "resolution %dx%d", l.ResolutionX, l.ResolutionY)
	}
	if l.Samples <= 0 {
		return config, errors.Wrapf(ErrInvalidValue, "samples %d", l.Samples)
	}
	if l.MaxDepth < 0 {
		return config, errors.Wrapf(ErrInvalidValue, "max_depth %d", l.MaxDepth)
	}

	config.Width = l.ResolutionX
	config.Height = l.ResolutionY
	config.SamplesPerPixel = l.Samples
	config.UseImportanceSampling = l.UseImportanceSampling
	if l.MaxDepth > 0 {
		config.MaxDepth = l.MaxDepth
	}
	if l.Background != nil {
		config.Background = l.Background.Vec3()
	}
	return config, nil
}

func buildCameraConfig(c CameraDesc, sampling SamplingConfig) (geometry.CameraConfig, error) {
	config := geometry.CameraConfig{
		Position:      c.Position.Vec3(),
		LookAt:        c.LookAt.Vec3(),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          c.FOV,
		AspectRatio:   c.AspectRatio,
		Aperture:      c.Aperture,
		FocusDistance: c.FocusDistance,
	}
	if c.Up != nil {
		config.Up = c.Up.Vec3()
	}
	if config.AspectRatio == 0 {
		config.AspectRatio = float64(sampling.Width) / float64(sampling.Height)
	}

	switch {
	case config.VFov <= 0 || config.VFov >= 180:
		return config, errors.Wrapf(ErrInvalidValue, "fov %g", config.VFov)
	case config.AspectRatio < 0:
		return config, errors.Wrapf(ErrInvalidValue, "aspect_ratio %g", config.AspectRatio)
	case config.Aperture < 0:
		return config, errors.Wrapf(ErrInvalidValue, "aperture %g", config.Aperture)
	}
	forward := config.LookAt.Subtract(config.Position)
	if forward.LengthSquared() == 0 {
		return config, errors.Wrap(ErrInvalidValue, "position equals look_at")
	}
	if forward.Cross(config.Up).LengthSquared() < 1e-12 {
		return config, errors.Wrap(ErrInvalidValue, "up is parallel to the view direction")
	}
	return config, nil
}

// texture resolves a texture name, building it on first use
func (b *Builder) texture(name string) (material.Texture, error) {
	if tex, ok := b.textures[name]; ok {
		return tex, nil
	}
	desc, ok := b.desc.Textures[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnresolvedReference, "texture %q", name)
	}
	if b.resolving[name] {
		return nil, errors.Wrapf(ErrInvalidValue, "texture %q refers to itself", name)
	}
	b.resolving[name] = true
	defer delete(b.resolving, name)

	tex, err := b.buildTexture(desc)
	if err != nil {
		return nil, errors.Wrapf(err, "texture %q", name)
	}
	b.textures[name] = tex
	return tex, nil
}

func (b *Builder) buildTexture(desc TextureDesc) (material.Texture, error) {
	switch desc.Type {
	case "Constant":
		if desc.Color == nil {
			return nil, errors.Wrap(ErrInvalidValue, "missing color")
		}
		return material.NewConstantTexture(desc.Color.Vec3()), nil

	case "Checker":
		odd, err := b.texture(desc.Odd)
		if err != nil {
			return nil, err
		}
		even, err := b.texture(desc.Even)
		if err != nil {
			return nil, err
		}
		repeat := desc.Repeat
		if repeat == 0 {
			repeat = 1
		}
		return material.NewCheckerTexture(repeat, odd, even), nil

	case "Noise":
		scale, err := textureScale(desc.Scale)
		if err != nil {
			return nil, err
		}
		return material.NewNoiseTexture(scale), nil

	case "Turbulence":
		scale, err := textureScale(desc.Scale)
		if err != nil {
			return nil, err
		}
		depth := desc.Depth
		if depth == 0 {
			depth = 7
		}
		if depth < 0 {
			return nil, errors.Wrapf(ErrInvalidValue, "depth %d", desc.Depth)
		}
		if desc.Omega < 0 || desc.Omega > 1 || math.IsNaN(desc.Omega) {
			return nil, errors.Wrapf(ErrInvalidValue, "omega %g outside [0, 1]", desc.Omega)
		}
		return material.NewTurbulenceTexture(scale, depth, desc.Omega), nil

	case "Image":
		if desc.FilePath == "" {
			return nil, errors.Wrap(ErrInvalidValue, "missing file_path")
		}
		img, err := b.resources.Image(desc.FilePath)
		if err != nil {
			return nil, err
		}
		return material.NewImageTexture(img.Width, img.Height, img.Pixels), nil

	case "Test":
		return material.NewTestTexture(), nil

	default:
		return nil, errors.Wrapf(ErrUnknownType, "texture type %q", desc.Type)
	}
}

// textureScale defaults an unset scale to 1
func textureScale(scale float64) (float64, error) {
	switch {
	case scale == 0:
		return 1, nil
	case scale < 0 || math.IsNaN(scale):
		return 0, errors.Wrapf(ErrInvalidValue, "scale %g", scale)
	}
	return scale, nil
}

// material resolves a material name, building it on first use
func (b *Builder) material(name string) (material.Material, error) {
	if mat, ok := b.materials[name]; ok {
		return mat, nil
	}
	desc, ok := b.desc.Materials[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnresolvedReference, "material %q", name)
	}
	mat, err := b.buildMaterial(desc)
	if err != nil {
		return nil, errors.Wrapf(err, "material %q", name)
	}
	b.materials[name] = mat
	return mat, nil
}

func (b *Builder) buildMaterial(desc MaterialDesc) (material.Material, error) {
	switch desc.Type {
	case "Lambert":
		albedo, err := b.texture(desc.Albedo)
		if err != nil {
			return nil, err
		}
		var bump material.Texture
		if desc.BumpMap != "" {
			if bump, err = b.texture(desc.BumpMap); err != nil {
				return nil, err
			}
		}
		return material.NewTexturedLambertian(albedo, bump), nil

	case "Metal":
		albedo, err := b.texture(desc.Albedo)
		if err != nil {
			return nil, err
		}
		return material.NewTexturedMetal(albedo, desc.Roughness), nil

	case "Dielectric":
		if !(desc.RefractiveIndex > 0) {
			return nil, errors.Wrapf(ErrInvalidValue, "refractive_index %g", desc.RefractiveIndex)
		}
		return material.NewDielectric(desc.RefractiveIndex), nil

	case "DiffuseLight":
		emission, err := b.texture(desc.Emission)
		if err != nil {
			return nil, err
		}
		return material.NewTexturedDiffuseLight(emission), nil

	case "Isotropic":
		albedo, err := b.texture(desc.Albedo)
		if err != nil {
			return nil, err
		}
		return material.NewIsotropic(albedo), nil

	default:
		return nil, errors.Wrapf(ErrUnknownType, "material type %q", desc.Type)
	}
}

// shape builds one shape. fallback supplies the material of a medium boundary that
// names none.
func (b *Builder) shape(desc *ShapeDesc, fallback material.Material) (geometry.Shape, error) {
	var mat material.Material
	switch {
	case desc.Material != "":
		var err error
		if mat, err = b.material(desc.Material); err != nil {
			return nil, err
		}
	case fallback != nil:
		mat = fallback
	default:
		return nil, errors.Wrap(ErrUnresolvedReference, "missing material")
	}
	transform := desc.Transform.Transform()

	switch desc.Type {
	case "Sphere":
		if desc.Radius == 0 || math.IsNaN(desc.Radius) {
			return nil, errors.Wrapf(ErrInvalidValue, "radius %g", desc.Radius)
		}
		sphere, err := geometry.NewTransformedSphere(desc.Radius, transform, mat)
		if err != nil {
			return nil, err
		}
		return sphere, nil

	case "Mesh":
		if desc.FilePath == "" {
			return nil, errors.Wrap(ErrInvalidValue, "missing file_path")
		}
		data, err := b.resources.Mesh(desc.FilePath)
		if err != nil {
			return nil, err
		}
		mesh, err := geometry.NewMesh(data.Vertices, data.Faces, mat, geometry.MeshOptions{
			Normals:   data.Normals,
			UVs:       data.UVs,
			Cull:      desc.EnableBackfaceCulling,
			Transform: transform,
		})
		if err != nil {
			return nil, errors.Wrap(err, desc.FilePath)
		}
		if mesh.Skipped > 0 {
			b.logger.Warn("skipped degenerate triangles", "file", desc.FilePath, "count", mesh.Skipped)
			b.stats.SkippedDegenerates += mesh.Skipped
		}
		return mesh, nil

	case "Medium":
		phase, ok := mat.(*material.Isotropic)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidValue, "medium material %q is not Isotropic", desc.Material)
		}
		if !(desc.Density > 0) {
			return nil, errors.Wrapf(ErrInvalidValue, "density %g", desc.Density)
		}
		if desc.Boundary == nil {
			return nil, errors.Wrap(ErrInvalidValue, "medium without boundary")
		}
		if desc.Boundary.Type == "Medium" {
			return nil, errors.Wrap(ErrInvalidValue, "medium boundary cannot be a medium")
		}
		boundary, err := b.shape(desc.Boundary, mat)
		if err != nil {
			return nil, errors.Wrap(err, "boundary")
		}
		return geometry.NewConstantMedium(boundary, desc.Density, phase)

	default:
		return nil, errors.Wrapf(ErrUnknownType, "shape type %q", desc.Type)
	}
}

// Load decodes the scene file at path and builds it, resolving mesh and image paths
// relative to the file's directory
func Load(path string, logger *slog.Logger) (*Scene, error) {
	desc, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := NewBuilder(loaders.NewCache(filepath.Dir(path)), logger).Build(desc)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return s, nil
}
