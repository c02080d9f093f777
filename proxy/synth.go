package proxy

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/grindkit/common"
	"github.com/milk9111/grindkit/feature"
)

type Settings struct {
	Enabled            bool
	GrindEdgeThickness float64
	SurfaceThickness   float64
	GrindFriction      float64
	ClimbFriction      float64
}

func DefaultSettings() Settings {
	return Settings{
		Enabled:            true,
		GrindEdgeThickness: 0.5,
		SurfaceThickness:   0.1,
		GrindFriction:      0.05,
		ClimbFriction:      0.9,
	}
}

// Synthesizer turns extracted features into backend colliders.
type Synthesizer struct {
	backend  Backend
	settings Settings
}

func NewSynthesizer(backend Backend, settings Settings) *Synthesizer {
	return &Synthesizer{backend: backend, settings: settings}
}

// Enabled reports whether proxies are built at all.
func (s *Synthesizer) Enabled() bool {
	return s != nil && s.backend != nil && s.settings.Enabled
}

func (s *Synthesizer) Settings() Settings {
	return s.settings
}

func (s *Synthesizer) ForEdge(e feature.GrindEdge) (feature.ColliderID, error) {
	if !s.Enabled() {
		return 0, nil
	}
	id, err := s.backend.Create(EdgeDescriptor(e, s.settings))
	if err != nil {
		return 0, fmt.Errorf("proxy: edge %d: %w", e.Index, err)
	}
	return id, nil
}

func (s *Synthesizer) ForSurface(sf feature.ClimbSurface) (feature.ColliderID, error) {
	if !s.Enabled() {
		return 0, nil
	}
	id, err := s.backend.Create(SurfaceDescriptor(sf, s.settings))
	if err != nil {
		return 0, fmt.Errorf("proxy: surface %d: %w", sf.Index, err)
	}
	return id, nil
}

func (s *Synthesizer) Destroy(id feature.ColliderID) {
	if s == nil || s.backend == nil || id == 0 {
		return
	}
	s.backend.Destroy(id)
}

// EdgeDescriptor is a low-friction capsule lying along the edge.
func EdgeDescriptor(e feature.GrindEdge, s Settings) Descriptor {
	return Descriptor{
		Shape:    ShapeCapsule,
		Center:   e.Center(),
		Axis:     e.Direction,
		Up:       e.Normal,
		Length:   e.Length,
		Radius:   s.GrindEdgeThickness,
		Category: CategoryGrindable,
		Friction: s.GrindFriction,
	}
}

// SurfaceDescriptor is a thin high-friction box facing along the surface
// normal, sized to cover the surface bounds.
func SurfaceDescriptor(sf feature.ClimbSurface, s Settings) Descriptor {
	d := Descriptor{
		Shape:    ShapeBox,
		Center:   sf.Center,
		Axis:     sf.Normal,
		Up:       sf.Up,
		Category: CategoryClimbable,
		Friction: s.ClimbFriction,
	}
	tangent := d.Tangent()
	var halfW, halfH float64
	for _, c := range boundsCorners(sf.Bounds) {
		rel := c.Sub(sf.Center)
		halfW = math.Max(halfW, math.Abs(rel.Dot(tangent)))
		halfH = math.Max(halfH, math.Abs(rel.Dot(sf.Up)))
	}
	d.HalfExtents = mgl64.Vec3{halfW, halfH, s.SurfaceThickness / 2}
	return d
}

func boundsCorners(b feature.Bounds) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, 0, 8)
	for _, x := range []float64{b.Min.X(), b.Max.X()} {
		for _, y := range []float64{b.Min.Y(), b.Max.Y()} {
			for _, z := range []float64{b.Min.Z(), b.Max.Z()} {
				out = append(out, mgl64.Vec3{x, y, z})
			}
		}
	}
	if !common.Finite(b.Min) || !common.Finite(b.Max) {
		return nil
	}
	return out
}
