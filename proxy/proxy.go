package proxy

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/grindkit/feature"
)

var ErrInvalidDescriptor = errors.New("proxy: invalid collider descriptor")

// Category is a collision category bitmask used for layer filtering.
type Category uint

const (
	CategoryGrindable Category = 1 << iota
	CategoryClimbable
	CategoryTerrain

	CategoryAll Category = ^Category(0)
)

func (c Category) String() string {
	switch c {
	case CategoryGrindable:
		return "Grindable"
	case CategoryClimbable:
		return "Climbable"
	case CategoryTerrain:
		return "Terrain"
	case CategoryAll:
		return "All"
	default:
		return "Mixed"
	}
}

type Shape int

const (
	ShapeCapsule Shape = iota + 1
	ShapeBox
)

func (s Shape) String() string {
	switch s {
	case ShapeCapsule:
		return "capsule"
	case ShapeBox:
		return "box"
	default:
		return "unknown"
	}
}

// Descriptor is everything a backend needs to allocate one proxy.
//
// Capsules run Length along Axis with the given Radius. Boxes use Axis as
// the face normal and Up as the in-plane vertical; HalfExtents holds the
// half sizes along (tangent, Up, Axis).
type Descriptor struct {
	Shape       Shape
	Center      mgl64.Vec3
	Axis        mgl64.Vec3
	Up          mgl64.Vec3
	Length      float64
	Radius      float64
	HalfExtents mgl64.Vec3
	Category    Category
	Friction    float64
}

// Endpoints returns the capsule segment ends.
func (d Descriptor) Endpoints() (mgl64.Vec3, mgl64.Vec3) {
	half := d.Axis.Mul(d.Length / 2)
	return d.Center.Sub(half), d.Center.Add(half)
}

// Tangent is the box axis perpendicular to both Up and Axis.
func (d Descriptor) Tangent() mgl64.Vec3 {
	t := d.Up.Cross(d.Axis)
	if l := t.Len(); l > 0 {
		return t.Mul(1 / l)
	}
	return t
}

// Corners returns the eight box corners.
func (d Descriptor) Corners() []mgl64.Vec3 {
	tx := d.Tangent().Mul(d.HalfExtents.X())
	uy := d.Up.Mul(d.HalfExtents.Y())
	nz := d.Axis.Mul(d.HalfExtents.Z())
	out := make([]mgl64.Vec3, 0, 8)
	for _, sx := range []float64{-1, 1} {
		for _, sy := range []float64{-1, 1} {
			for _, sz := range []float64{-1, 1} {
				out = append(out, d.Center.Add(tx.Mul(sx)).Add(uy.Mul(sy)).Add(nz.Mul(sz)))
			}
		}
	}
	return out
}

// Validate rejects shapes a physics backend cannot build.
func (d Descriptor) Validate() error {
	if !finite(d.Center) || !finite(d.Axis) || !finite(d.Up) || !finite(d.HalfExtents) {
		return ErrInvalidDescriptor
	}
	if d.Axis.Len() < 1e-6 || math.IsNaN(d.Friction) || d.Friction < 0 {
		return ErrInvalidDescriptor
	}
	switch d.Shape {
	case ShapeCapsule:
		if !(d.Radius > 0) || !(d.Length >= 0) || math.IsInf(d.Length, 0) || math.IsInf(d.Radius, 0) {
			return ErrInvalidDescriptor
		}
	case ShapeBox:
		if d.Up.Len() < 1e-6 || d.Tangent().Len() < 1e-6 {
			return ErrInvalidDescriptor
		}
		for _, e := range d.HalfExtents {
			if !(e > 0) {
				return ErrInvalidDescriptor
			}
		}
	default:
		return ErrInvalidDescriptor
	}
	return nil
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Hit is the result of a raycast.
type Hit struct {
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
	Collider feature.ColliderID
	Category Category
}

// Backend is the physics engine side of proxy synthesis.
type Backend interface {
	Create(d Descriptor) (feature.ColliderID, error)
	Destroy(id feature.ColliderID)
	RaycastDown(from mgl64.Vec3, maxDistance float64, mask Category) (Hit, bool)
	OverlapSphere(center mgl64.Vec3, radius float64, mask Category) []feature.ColliderID
}
