package loaders

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// ErrMalformedMesh is returned for mesh files that cannot be parsed
var ErrMalformedMesh = errors.New("malformed mesh file")

// MeshData contains indexed triangle data read from a mesh file, in object space
type MeshData struct {
	Vertices []core.Vec3
	Normals  []core.Vec3 // Referenced by MeshFace.Normal; may be empty
	UVs      []core.Vec2 // Referenced by MeshFace.UV; may be empty
	Faces    []geometry.MeshFace
}

// LoadMesh loads an OBJ or PLY file, chosen by extension
func LoadMesh(filename string) (*MeshData, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".obj":
		return LoadOBJ(filename)
	case ".ply":
		return LoadPLY(filename)
	default:
		return nil, errors.Errorf("unsupported mesh format %q: %s", ext, filename)
	}
}

// noIndex marks absent normal or UV references
var noIndex = [3]int{-1, -1, -1}

// fan splits a polygon into triangles sharing its first corner
func fan(vertex, normal, uv []int) []geometry.MeshFace {
	faces := make([]geometry.MeshFace, 0, len(vertex)-2)
	for i := 1; i+1 < len(vertex); i++ {
		face := geometry.MeshFace{
			Vertex: [3]int{vertex[0], vertex[i], vertex[i+1]},
			Normal: noIndex,
			UV:     noIndex,
		}
		if normal != nil {
			face.Normal = [3]int{normal[0], normal[i], normal[i+1]}
		}
		if uv != nil {
			face.UV = [3]int{uv[0], uv[i], uv[i+1]}
		}
		faces = append(faces, face)
	}
	return faces
}
