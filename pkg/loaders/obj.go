package loaders

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/df07/go-pathtracer/pkg/core"
)

// LoadOBJ loads a Wavefront OBJ file
func LoadOBJ(filename string) (*MeshData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open OBJ file")
	}
	defer file.Close()

	mesh, err := ParseOBJ(file)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", filename)
	}
	return mesh, nil
}

// ParseOBJ reads vertex positions, texture coordinates, normals and faces. Polygons are
// triangulated as fans; groups, objects and material statements are ignored.
func ParseOBJ(r io.Reader) (*MeshData, error) {
	mesh := &MeshData{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "v":
			var v core.Vec3
			v, err = parseVec3(fields[1:])
			mesh.Vertices = append(mesh.Vertices, v)
		case "vn":
			var n core.Vec3
			n, err = parseVec3(fields[1:])
			mesh.Normals = append(mesh.Normals, n)
		case "vt":
			var uv core.Vec2
			uv, err = parseVec2(fields[1:])
			mesh.UVs = append(mesh.UVs, uv)
		case "f":
			err = mesh.parseFace(fields[1:])
		}
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedMesh, "line %d: %v", lineNumber, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading OBJ")
	}

	return mesh, nil
}

// parseFace reads the corners of an "f" statement. Corners are v, v/vt, v//vn or v/vt/vn;
// every corner of a face must use the same form.
func (mesh *MeshData) parseFace(corners []string) error {
	if len(corners) < 3 {
		return errors.Errorf("face needs at least 3 corners, got %d", len(corners))
	}

	vertex := make([]int, len(corners))
	var normal, uv []int

	for i, corner := range corners {
		parts := strings.Split(corner, "/")
		if len(parts) > 3 {
			return errors.Errorf("invalid face corner %q", corner)
		}

		idx, err := resolveIndex(parts[0], len(mesh.Vertices))
		if err != nil {
			return errors.Wrapf(err, "vertex of corner %q", corner)
		}
		vertex[i] = idx

		hasUV := len(parts) > 1 && parts[1] != ""
		hasNormal := len(parts) > 2 && parts[2] != ""
		if i == 0 {
			if hasUV {
				uv = make([]int, len(corners))
			}
			if hasNormal {
				normal = make([]int, len(corners))
			}
		} else if hasUV != (uv != nil) || hasNormal != (normal != nil) {
			return errors.Errorf("inconsistent face corner %q", corner)
		}

		if hasUV {
			if uv[i], err = resolveIndex(parts[1], len(mesh.UVs)); err != nil {
				return errors.Wrapf(err, "texture coordinate of corner %q", corner)
			}
		}
		if hasNormal {
			if normal[i], err = resolveIndex(parts[2], len(mesh.Normals)); err != nil {
				return errors.Wrapf(err, "normal of corner %q", corner)
			}
		}
	}

	mesh.Faces = append(mesh.Faces, fan(vertex, normal, uv)...)
	return nil
}

// resolveIndex converts a 1-based (or negative, relative) OBJ index into a 0-based one
func resolveIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Errorf("invalid index %q", s)
	}
	idx := n - 1
	if n < 0 {
		idx = count + n
	}
	if n == 0 || idx < 0 || idx >= count {
		return 0, errors.Errorf("index %d out of range (%d defined)", n, count)
	}
	return idx, nil
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, errors.Errorf("expected %d values, got %d", n, len(fields))
	}
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, errors.Errorf("invalid number %q", fields[i])
		}
		values[i] = v
	}
	return values, nil
}

func parseVec3(fields []string) (core.Vec3, error) {
	v, err := parseFloats(fields, 3)
	if err != nil {
		return core.Vec3{}, err
	}
	return core.NewVec3(v[0], v[1], v[2]), nil
}

func parseVec2(fields []string) (core.Vec2, error) {
	// The v coordinate is optional in "vt u [v [w]]"
	if len(fields) == 1 {
		fields = append(fields, "0")
	}
	v, err := parseFloats(fields, 2)
	if err != nil {
		return core.Vec2{}, err
	}
	return core.NewVec2(v[0], v[1]), nil
}
