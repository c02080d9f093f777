package scene

import (
	"fmt"

	"github.com/milk9111/grindkit/mesh"
	"gopkg.in/yaml.v3"
)

type CubeSpec struct {
	Size float64 `yaml:"size"`
}

type CylinderSpec struct {
	Radius   float64 `yaml:"radius"`
	Chord    float64 `yaml:"chord"`
	Height   float64 `yaml:"height"`
	Segments int     `yaml:"segments"`
}

type SlopeSpec struct {
	Width  float64 `yaml:"width"`
	Length float64 `yaml:"length"`
	Angle  float64 `yaml:"angle"`
	Cells  int     `yaml:"cells"`
}

// DecodeParams re-decodes a loosely typed params map into T.
func DecodeParams[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

// BuildMesh builds one of the fixture meshes by name.
func BuildMesh(kind string, params map[string]any) (*mesh.Mesh, error) {
	switch kind {
	case "cube":
		spec, err := DecodeParams[CubeSpec](params)
		if err != nil {
			return nil, err
		}
		if spec.Size <= 0 {
			return nil, fmt.Errorf("cube: size must be > 0")
		}
		return mesh.Cube(spec.Size), nil
	case "cylinder":
		spec, err := DecodeParams[CylinderSpec](params)
		if err != nil {
			return nil, err
		}
		if spec.Segments < 3 {
			spec.Segments = 8
		}
		radius := spec.Radius
		if radius <= 0 && spec.Chord > 0 {
			radius = mesh.ChordRadius(spec.Chord, spec.Segments)
		}
		if radius <= 0 || spec.Height <= 0 {
			return nil, fmt.Errorf("cylinder: radius (or chord) and height must be > 0")
		}
		return mesh.OpenCylinder(radius, spec.Height, spec.Segments), nil
	case "slope":
		spec, err := DecodeParams[SlopeSpec](params)
		if err != nil {
			return nil, err
		}
		if spec.Width <= 0 || spec.Length <= 0 {
			return nil, fmt.Errorf("slope: width and length must be > 0")
		}
		return mesh.Slope(spec.Width, spec.Length, spec.Angle, spec.Cells), nil
	default:
		return nil, fmt.Errorf("unknown mesh %q", kind)
	}
}
