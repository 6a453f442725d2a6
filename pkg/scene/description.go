package scene

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-pathtracer/pkg/core"
)

// Description is the decoded form of a scene file. Textures and materials are named;
// materials and shapes refer to them by name until the Builder resolves them.
type Description struct {
	Logistics LogisticsDesc           `json:"Logistics" yaml:"Logistics"`
	Camera    CameraDesc              `json:"Camera" yaml:"Camera"`
	Textures  map[string]TextureDesc  `json:"Textures,omitempty" yaml:"Textures,omitempty"`
	Materials map[string]MaterialDesc `json:"Materials" yaml:"Materials"`
	Aggregate string                  `json:"Aggregate,omitempty" yaml:"Aggregate,omitempty"`
	Shapes    []ShapeDesc             `json:"Shapes" yaml:"Shapes"`
}

// Vec3Desc is a vector written as {"x", "y", "z"}
type Vec3Desc struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Vec3 converts the description to a core vector
func (v Vec3Desc) Vec3() core.Vec3 {
	return core.NewVec3(v.X, v.Y, v.Z)
}

// ColorDesc is a linear RGB color written as {"r", "g", "b"}
type ColorDesc struct {
	R float64 `json:"r" yaml:"r"`
	G float64 `json:"g" yaml:"g"`
	B float64 `json:"b" yaml:"b"`
}

// Vec3 converts the color to a core vector
func (c ColorDesc) Vec3() core.Vec3 {
	return core.NewVec3(c.R, c.G, c.B)
}

// LogisticsDesc holds image and sampling settings
type LogisticsDesc struct {
	ResolutionX           int        `json:"resolution_x" yaml:"resolution_x"`
	ResolutionY           int        `json:"resolution_y" yaml:"resolution_y"`
	Samples               int        `json:"samples" yaml:"samples"`
	UseImportanceSampling bool       `json:"use_importance_sampling,omitempty" yaml:"use_importance_sampling,omitempty"`
	MaxDepth              int        `json:"max_depth,omitempty" yaml:"max_depth,omitempty"`
	Background            *ColorDesc `json:"background,omitempty" yaml:"background,omitempty"`
}

// CameraDesc describes the camera placement and lens
type CameraDesc struct {
	Position      Vec3Desc  `json:"position" yaml:"position"`
	LookAt        Vec3Desc  `json:"look_at" yaml:"look_at"`
	Up            *Vec3Desc `json:"up,omitempty" yaml:"up,omitempty"`
	FOV           float64   `json:"fov" yaml:"fov"`
	AspectRatio   float64   `json:"aspect_ratio,omitempty" yaml:"aspect_ratio,omitempty"`
	Aperture      float64   `json:"aperture,omitempty" yaml:"aperture,omitempty"`
	FocusDistance float64   `json:"focus_distance,omitempty" yaml:"focus_distance,omitempty"`
}

// TextureDesc is one texture variant, selected by Type:
// Constant, Checker, Noise, Turbulence, Image or Test
type TextureDesc struct {
	Type     string     `json:"type" yaml:"type"`
	Color    *ColorDesc `json:"color,omitempty" yaml:"color,omitempty"`         // Constant
	Repeat   float64    `json:"repeat,omitempty" yaml:"repeat,omitempty"`       // Checker
	Odd      string     `json:"odd,omitempty" yaml:"odd,omitempty"`             // Checker
	Even     string     `json:"even,omitempty" yaml:"even,omitempty"`           // Checker
	Scale    float64    `json:"scale,omitempty" yaml:"scale,omitempty"`         // Noise, Turbulence
	Depth    int        `json:"depth,omitempty" yaml:"depth,omitempty"`         // Turbulence
	Omega    float64    `json:"omega,omitempty" yaml:"omega,omitempty"`         // Turbulence
	FilePath string     `json:"file_path,omitempty" yaml:"file_path,omitempty"` // Image
}

// MaterialDesc is one material variant, selected by Type:
// Lambert, Metal, Dielectric, DiffuseLight or Isotropic
type MaterialDesc struct {
	Type            string  `json:"type" yaml:"type"`
	Albedo          string  `json:"albedo,omitempty" yaml:"albedo,omitempty"`     // Lambert, Metal, Isotropic
	BumpMap         string  `json:"bump_map,omitempty" yaml:"bump_map,omitempty"` // Lambert
	Roughness       float64 `json:"roughness,omitempty" yaml:"roughness,omitempty"`
	RefractiveIndex float64 `json:"refractive_index,omitempty" yaml:"refractive_index,omitempty"`
	Emission        string  `json:"emission,omitempty" yaml:"emission,omitempty"` // DiffuseLight
}

// TransformDesc places a shape; missing parts default to identity
type TransformDesc struct {
	Translate *Vec3Desc `json:"translate,omitempty" yaml:"translate,omitempty"`
	Rotate    *Vec3Desc `json:"rotate,omitempty" yaml:"rotate,omitempty"` // Degrees about x, y, z
	Scale     *Vec3Desc `json:"scale,omitempty" yaml:"scale,omitempty"`
}

// Transform converts the description, filling identity defaults
func (t *TransformDesc) Transform() core.Transform {
	transform := core.IdentityTransform()
	if t == nil {
		return transform
	}
	if t.Translate != nil {
		transform.Translate = t.Translate.Vec3()
	}
	if t.Rotate != nil {
		transform.Rotate = t.Rotate.Vec3()
	}
	if t.Scale != nil {
		transform.Scale = t.Scale.Vec3()
	}
	return transform
}

// ShapeDesc is one shape variant, selected by Type: Sphere, Mesh or Medium
type ShapeDesc struct {
	Type                  string         `json:"type" yaml:"type"`
	Material              string         `json:"material" yaml:"material"`
	Transform             *TransformDesc `json:"transform,omitempty" yaml:"transform,omitempty"`
	Radius                float64        `json:"radius,omitempty" yaml:"radius,omitempty"`                                   // Sphere
	FilePath              string         `json:"file_path,omitempty" yaml:"file_path,omitempty"`                             // Mesh
	EnableBackfaceCulling bool           `json:"enable_backface_culling,omitempty" yaml:"enable_backface_culling,omitempty"` // Mesh
	Density               float64        `json:"density,omitempty" yaml:"density,omitempty"`                                 // Medium
	Boundary              *ShapeDesc     `json:"boundary,omitempty" yaml:"boundary,omitempty"`                               // Medium
}

// Format selects the scene file syntax
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, errors.Wrapf(ErrUnknownType, "scene file extension %q", ext)
	}
}

// LoadFile reads and decodes a scene file
func LoadFile(path string) (*Description, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scene file")
	}
	desc, err := Decode(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return desc, nil
}

// Decode parses a scene description. Unknown fields are rejected so typos surface
// as errors instead of silently falling back to defaults.
func Decode(data []byte, format Format) (*Description, error) {
	desc := &Description{}
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, desc, json.RejectUnknownMembers(true)); err != nil {
			return nil, errors.Wrap(err, "failed to decode JSON scene")
		}
	case FormatYAML:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(desc); err != nil {
			return nil, errors.Wrap(err, "failed to decode YAML scene")
		}
	default:
		return nil, errors.Wrapf(ErrUnknownType, "scene format %d", format)
	}
	return desc, nil
}
