package extract

import (
	"errors"

	"github.com/milk9111/grindkit/mesh"
)

// ErrMalformedMesh is returned for nil, empty or inconsistent input meshes.
var ErrMalformedMesh = errors.New("extract: malformed mesh")

// Settings tune feature extraction.
type Settings struct {
	MinGrindEdgeLength   float64
	MinClimbSurfaceArea  float64
	MinClimbSurfaceAngle float64
	MaxClimbSurfaceAngle float64
	MergeDistance        float64
	MergeNormalDot       float64
}

func DefaultSettings() Settings {
	return Settings{
		MinGrindEdgeLength:   5,
		MinClimbSurfaceArea:  10,
		MinClimbSurfaceAngle: 45,
		MaxClimbSurfaceAngle: 85,
		MergeDistance:        5,
		MergeNormalDot:       0.8,
	}
}

func validate(m *mesh.Mesh) error {
	if err := m.Validate(); err != nil {
		return errors.Join(ErrMalformedMesh, err)
	}
	return nil
}
