package registry

import (
	"github.com/google/uuid"
	"github.com/milk9111/grindkit/mesh"
)

// Affordance marks which features a source should be scanned for.
type Affordance uint8

const (
	Grindable Affordance = 1 << iota
	Climbable

	AllAffordances = Grindable | Climbable
)

func (a Affordance) Has(flag Affordance) bool {
	return a&flag != 0
}

// Source is an object whose mesh can be scanned for features.
type Source interface {
	SourceID() uuid.UUID
	Geometry() (*mesh.Mesh, mesh.Transform)
	Affordances() Affordance
}

// StaticSource is a Source with a fixed mesh and transform.
type StaticSource struct {
	ID        uuid.UUID
	Name      string
	Mesh      *mesh.Mesh
	Transform mesh.Transform
	Affords   Affordance
}

func NewStaticSource(name string, m *mesh.Mesh, xf mesh.Transform, affords Affordance) *StaticSource {
	return &StaticSource{
		ID:        uuid.New(),
		Name:      name,
		Mesh:      m,
		Transform: xf,
		Affords:   affords,
	}
}

func (s *StaticSource) SourceID() uuid.UUID { return s.ID }

func (s *StaticSource) Geometry() (*mesh.Mesh, mesh.Transform) { return s.Mesh, s.Transform }

func (s *StaticSource) Affordances() Affordance { return s.Affords }
