package loaders

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// plyProperty is one property of a PLY element
type plyProperty struct {
	Name      string
	Type      string // Scalar type, or the element type of a list
	CountType string // List count type; empty for scalar properties
}

// plyElement is an element declaration from the PLY header
type plyElement struct {
	Name       string
	Count      int
	Properties []plyProperty
}

// plyHeader represents the parsed header of a PLY file
type plyHeader struct {
	Format   string // "ascii", "binary_little_endian" or "binary_big_endian"
	Elements []plyElement
}

// plyScalarSize maps PLY scalar types to their binary size in bytes
var plyScalarSize = map[string]int{
	"char": 1, "int8": 1, "uchar": 1, "uint8": 1,
	"short": 2, "int16": 2, "ushort": 2, "uint16": 2,
	"int": 4, "int32": 4, "uint": 4, "uint32": 4,
	"float": 4, "float32": 4, "double": 8, "float64": 8,
}

// LoadPLY loads an ASCII or binary PLY file
func LoadPLY(filename string) (*MeshData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PLY file")
	}
	defer file.Close()

	mesh, err := ParsePLY(file)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", filename)
	}
	return mesh, nil
}

// ParsePLY reads the vertex and face elements of a PLY stream. Vertex normals (nx, ny, nz)
// and texture coordinates (u/v, s/t or texture_u/texture_v) are kept when present.
func ParsePLY(r io.Reader) (*MeshData, error) {
	reader := bufio.NewReaderSize(r, 1024*1024)

	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedMesh, "header: %v", err)
	}

	var values plyValueReader
	switch header.Format {
	case "ascii":
		values = &plyASCIIReader{reader: reader}
	case "binary_little_endian":
		values = &plyBinaryReader{reader: reader, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &plyBinaryReader{reader: reader, order: binary.BigEndian}
	default:
		return nil, errors.Wrapf(ErrMalformedMesh, "unsupported PLY format %q", header.Format)
	}

	mesh := &MeshData{}
	hasNormals, hasUVs := false, false
	for _, element := range header.Elements {
		switch element.Name {
		case "vertex":
			hasNormals, hasUVs, err = readPLYVertices(values, element, mesh)
		case "face":
			err = readPLYFaces(values, element, mesh)
		default:
			err = skipPLYElement(values, element)
		}
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedMesh, "element %s: %v", element.Name, err)
		}
	}

	// PLY shares one index per corner for position, normal and UV
	for i := range mesh.Faces {
		face := &mesh.Faces[i]
		for _, idx := range face.Vertex {
			if idx < 0 || idx >= len(mesh.Vertices) {
				return nil, errors.Wrapf(ErrMalformedMesh, "face %d: vertex index %d out of range", i, idx)
			}
		}
		if hasNormals {
			face.Normal = face.Vertex
		}
		if hasUVs {
			face.UV = face.Vertex
		}
	}
	if !hasNormals {
		mesh.Normals = nil
	}
	if !hasUVs {
		mesh.UVs = nil
	}

	return mesh, nil
}

// parsePLYHeader reads header lines up to and including end_header
func parsePLYHeader(reader *bufio.Reader) (*plyHeader, error) {
	header := &plyHeader{}

	for lineNumber := 0; ; lineNumber++ {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, errors.Wrap(err, "unterminated header")
		}
		parts := strings.Fields(line)
		if lineNumber == 0 {
			if len(parts) != 1 || parts[0] != "ply" {
				return nil, errors.New("missing ply magic number")
			}
			continue
		}
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "end_header":
			return header, nil
		case "format":
			if len(parts) < 3 {
				return nil, errors.Errorf("invalid format line %q", strings.TrimSpace(line))
			}
			header.Format = parts[1]
		case "element":
			if len(parts) < 3 {
				return nil, errors.Errorf("invalid element line %q", strings.TrimSpace(line))
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, errors.Errorf("invalid element count: %s", parts[2])
			}
			header.Elements = append(header.Elements, plyElement{Name: parts[1], Count: count})
		case "property":
			if len(header.Elements) == 0 {
				return nil, errors.New("property before any element")
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, err
			}
			last := &header.Elements[len(header.Elements)-1]
			last.Properties = append(last.Properties, prop)
		}
	}
}

// parsePLYProperty parses the fields after "property"
func parsePLYProperty(parts []string) (plyProperty, error) {
	if len(parts) >= 4 && parts[0] == "list" {
		prop := plyProperty{CountType: parts[1], Type: parts[2], Name: parts[3]}
		if _, ok := plyScalarSize[prop.CountType]; !ok {
			return prop, errors.Errorf("unsupported list count type: %s", prop.CountType)
		}
		if _, ok := plyScalarSize[prop.Type]; !ok {
			return prop, errors.Errorf("unsupported data type: %s", prop.Type)
		}
		return prop, nil
	}
	if len(parts) < 2 || parts[0] == "list" {
		return plyProperty{}, errors.New("invalid property definition")
	}
	if _, ok := plyScalarSize[parts[0]]; !ok {
		return plyProperty{}, errors.Errorf("unsupported data type: %s", parts[0])
	}
	return plyProperty{Type: parts[0], Name: parts[1]}, nil
}

func readPLYVertices(values plyValueReader, element plyElement, mesh *MeshData) (hasNormals, hasUVs bool, err error) {
	for _, prop := range element.Properties {
		switch prop.Name {
		case "nx", "ny", "nz":
			hasNormals = true
		case "u", "s", "texture_u", "v", "t", "texture_v":
			hasUVs = true
		}
	}

	mesh.Vertices = make([]core.Vec3, 0, element.Count)
	mesh.Normals = make([]core.Vec3, 0, element.Count)
	mesh.UVs = make([]core.Vec2, 0, element.Count)

	for i := 0; i < element.Count; i++ {
		var p, n core.Vec3
		var uv core.Vec2
		for _, prop := range element.Properties {
			if prop.CountType != "" {
				if err := skipPLYList(values, prop); err != nil {
					return false, false, err
				}
				continue
			}
			value, err := values.scalar(prop.Type)
			if err != nil {
				return false, false, errors.Wrapf(err, "vertex %d", i)
			}
			switch prop.Name {
			case "x":
				p.X = value
			case "y":
				p.Y = value
			case "z":
				p.Z = value
			case "nx":
				n.X = value
			case "ny":
				n.Y = value
			case "nz":
				n.Z = value
			case "u", "s", "texture_u":
				uv.X = value
			case "v", "t", "texture_v":
				uv.Y = value
			}
		}
		mesh.Vertices = append(mesh.Vertices, p)
		mesh.Normals = append(mesh.Normals, n)
		mesh.UVs = append(mesh.UVs, uv)
	}
	return hasNormals, hasUVs, nil
}

func readPLYFaces(values plyValueReader, element plyElement, mesh *MeshData) error {
	mesh.Faces = make([]geometry.MeshFace, 0, element.Count)
	for i := 0; i < element.Count; i++ {
		for _, prop := range element.Properties {
			isIndices := prop.CountType != "" && (prop.Name == "vertex_indices" || prop.Name == "vertex_index")
			if !isIndices {
				if err := skipPLYProperty(values, prop); err != nil {
					return errors.Wrapf(err, "face %d", i)
				}
				continue
			}

			count, err := values.scalar(prop.CountType)
			if err != nil {
				return errors.Wrapf(err, "face %d", i)
			}
			if count < 3 {
				return errors.Errorf("face %d has %d vertices", i, int(count))
			}
			indices := make([]int, int(count))
			for k := range indices {
				value, err := values.scalar(prop.Type)
				if err != nil {
					return errors.Wrapf(err, "face %d", i)
				}
				indices[k] = int(value)
			}
			mesh.Faces = append(mesh.Faces, fan(indices, nil, nil)...)
		}
	}
	return nil
}

func skipPLYElement(values plyValueReader, element plyElement) error {
	for i := 0; i < element.Count; i++ {
		for _, prop := range element.Properties {
			if err := skipPLYProperty(values, prop); err != nil {
				return err
			}
		}
	}
	return nil
}

func skipPLYProperty(values plyValueReader, prop plyProperty) error {
	if prop.CountType != "" {
		return skipPLYList(values, prop)
	}
	_, err := values.scalar(prop.Type)
	return err
}

func skipPLYList(values plyValueReader, prop plyProperty) error {
	count, err := values.scalar(prop.CountType)
	if err != nil {
		return err
	}
	for k := 0; k < int(count); k++ {
		if _, err := values.scalar(prop.Type); err != nil {
			return err
		}
	}
	return nil
}

// plyValueReader reads successive scalar values of the body
type plyValueReader interface {
	scalar(dataType string) (float64, error)
}

// plyASCIIReader reads whitespace-separated values
type plyASCIIReader struct {
	reader *bufio.Reader
	fields []string
}

func (a *plyASCIIReader) scalar(dataType string) (float64, error) {
	for len(a.fields) == 0 {
		line, err := a.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return 0, errors.Wrap(err, "unexpected end of data")
		}
		a.fields = strings.Fields(line)
	}
	field := a.fields[0]
	a.fields = a.fields[1:]

	value, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, errors.Errorf("invalid %s value %q", dataType, field)
	}
	return value, nil
}

// plyBinaryReader decodes fixed-size binary values in the given byte order
type plyBinaryReader struct {
	reader *bufio.Reader
	order  binary.ByteOrder
	buf    [8]byte
}

func (b *plyBinaryReader) scalar(dataType string) (float64, error) {
	size, ok := plyScalarSize[dataType]
	if !ok {
		return 0, errors.Errorf("unsupported data type: %s", dataType)
	}
	data := b.buf[:size]
	if _, err := io.ReadFull(b.reader, data); err != nil {
		return 0, errors.Wrap(err, "unexpected end of data")
	}

	switch dataType {
	case "char", "int8":
		return float64(int8(data[0])), nil
	case "uchar", "uint8":
		return float64(data[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(data))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(data)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(data))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(data)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(data))), nil
	default:
		return math.Float64frombits(b.order.Uint64(data)), nil
	}
}
