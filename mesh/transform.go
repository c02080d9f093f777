package mesh

import "github.com/go-gl/mathgl/mgl64"

// Transform places an object in the world: scale, then rotate, then
// translate. A zero Rotation or Scale is read as identity.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

func Identity() Transform {
	return Transform{Rotation: mgl64.QuatIdent(), Scale: mgl64.Vec3{1, 1, 1}}
}

// At returns an unrotated, unscaled transform at p.
func At(p mgl64.Vec3) Transform {
	t := Identity()
	t.Position = p
	return t
}

func (t Transform) rotation() mgl64.Quat {
	if t.Rotation.W == 0 && t.Rotation.V == (mgl64.Vec3{}) {
		return mgl64.QuatIdent()
	}
	return t.Rotation.Normalize()
}

func (t Transform) scale() mgl64.Vec3 {
	if t.Scale == (mgl64.Vec3{}) {
		return mgl64.Vec3{1, 1, 1}
	}
	return t.Scale
}

// Point maps an object-space position to world space.
func (t Transform) Point(p mgl64.Vec3) mgl64.Vec3 {
	s := t.scale()
	scaled := mgl64.Vec3{p[0] * s[0], p[1] * s[1], p[2] * s[2]}
	return t.rotation().Rotate(scaled).Add(t.Position)
}

// Normal maps an object-space normal to a unit world-space normal using the
// inverse-transpose of the scale.
func (t Transform) Normal(n mgl64.Vec3) mgl64.Vec3 {
	s := t.scale()
	inv := mgl64.Vec3{safeDiv(n[0], s[0]), safeDiv(n[1], s[1]), safeDiv(n[2], s[2])}
	out := t.rotation().Rotate(inv)
	if l := out.Len(); l > 0 {
		return out.Mul(1 / l)
	}
	return out
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return a
	}
	return a / b
}
