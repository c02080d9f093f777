package feature

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// ColliderID identifies a synthesized proxy collider inside a physics
// backend. Zero means no collider.
type ColliderID uint64

// Handle names one feature of one registered source without holding a
// pointer into registry storage.
type Handle struct {
	Source uuid.UUID
	Index  int
}

// GrindEdge is a boundary edge long enough to slide along.
type GrindEdge struct {
	Start     mgl64.Vec3
	End       mgl64.Vec3
	Direction mgl64.Vec3
	Normal    mgl64.Vec3
	Length    float64

	Source   uuid.UUID
	Index    int
	Collider ColliderID
}

func (e GrindEdge) Center() mgl64.Vec3 {
	return e.Start.Add(e.End).Mul(0.5)
}

func (e GrindEdge) Handle() Handle {
	return Handle{Source: e.Source, Index: e.Index}
}

// PointAt returns Start + Direction*t.
func (e GrindEdge) PointAt(t float64) mgl64.Vec3 {
	return e.Start.Add(e.Direction.Mul(t))
}

// Bounds is an axis-aligned box.
type Bounds struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// BoundsOf returns the smallest box containing every point.
func BoundsOf(points []mgl64.Vec3) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		for i := 0; i < 3; i++ {
			if p[i] < b.Min[i] {
				b.Min[i] = p[i]
			}
			if p[i] > b.Max[i] {
				b.Max[i] = p[i]
			}
		}
	}
	return b
}

func (b Bounds) Size() mgl64.Vec3 {
	return b.Max.Sub(b.Min)
}

func (b Bounds) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// ClimbSurface is a clustered patch of steep, near-coplanar triangles.
type ClimbSurface struct {
	Center mgl64.Vec3
	Normal mgl64.Vec3
	Up     mgl64.Vec3
	Area   float64
	Bounds Bounds

	Source   uuid.UUID
	Index    int
	Collider ColliderID
}

func (s ClimbSurface) Handle() Handle {
	return Handle{Source: s.Source, Index: s.Index}
}
