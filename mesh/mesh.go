package mesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrEmptyMesh     = errors.New("mesh: empty mesh")
	ErrMalformedMesh = errors.New("mesh: malformed mesh")
)

// Mesh is an indexed triangle list in object space. Indices holds one
// triple per triangle. Normals is optional; when present it is parallel to
// Positions.
type Mesh struct {
	Indices   []int
	Positions []mgl64.Vec3
	Normals   []mgl64.Vec3
}

// TriangleCount returns the number of complete index triples.
func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Indices) / 3
}

// Triangle returns the vertex indices of triangle i.
func (m *Mesh) Triangle(i int) (int, int, int) {
	return m.Indices[i*3], m.Indices[i*3+1], m.Indices[i*3+2]
}

// HasNormals reports whether every vertex carries a normal.
func (m *Mesh) HasNormals() bool {
	return m != nil && len(m.Normals) > 0 && len(m.Normals) == len(m.Positions)
}

// Validate checks that the mesh is non-empty and internally consistent.
func (m *Mesh) Validate() error {
	if m == nil || len(m.Indices) == 0 || len(m.Positions) == 0 {
		return ErrEmptyMesh
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices is not a multiple of 3", ErrMalformedMesh, len(m.Indices))
	}
	if len(m.Normals) > 0 && len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("%w: %d normals for %d positions", ErrMalformedMesh, len(m.Normals), len(m.Positions))
	}
	for i, idx := range m.Indices {
		if idx < 0 || idx >= len(m.Positions) {
			return fmt.Errorf("%w: index %d at %d out of range [0,%d)", ErrMalformedMesh, idx, i, len(m.Positions))
		}
	}
	return nil
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	if m == nil {
		return nil
	}
	return &Mesh{
		Indices:   append([]int(nil), m.Indices...),
		Positions: append([]mgl64.Vec3(nil), m.Positions...),
		Normals:   append([]mgl64.Vec3(nil), m.Normals...),
	}
}

// RemoveTriangle returns a copy of the mesh without triangle i.
func (m *Mesh) RemoveTriangle(i int) *Mesh {
	out := m.Clone()
	if out == nil || i < 0 || i >= out.TriangleCount() {
		return out
	}
	out.Indices = append(out.Indices[:i*3], out.Indices[i*3+3:]...)
	return out
}
