package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// World axes. Y is up.
var (
	WorldUp      = mgl64.Vec3{0, 1, 0}
	WorldForward = mgl64.Vec3{0, 0, 1}
	WorldRight   = mgl64.Vec3{1, 0, 0}
)

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-6

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// SafeNormalize returns v scaled to unit length, or false when v is too
// short to have a direction.
func SafeNormalize(v mgl64.Vec3) (mgl64.Vec3, bool) {
	l := v.Len()
	if l < Epsilon || math.IsNaN(l) || math.IsInf(l, 0) {
		return mgl64.Vec3{}, false
	}
	return v.Mul(1 / l), true
}

// PerpendicularTo returns normalize(cross(v, primary)), falling back to
// normalize(cross(v, fallback)) when v is parallel to primary.
func PerpendicularTo(v, primary, fallback mgl64.Vec3) mgl64.Vec3 {
	if n, ok := SafeNormalize(v.Cross(primary)); ok {
		return n
	}
	if n, ok := SafeNormalize(v.Cross(fallback)); ok {
		return n
	}
	return mgl64.Vec3{}
}

// AngleDeg returns the angle between a and b in degrees. Zero-length inputs
// yield 0.
func AngleDeg(a, b mgl64.Vec3) float64 {
	an, ok := SafeNormalize(a)
	if !ok {
		return 0
	}
	bn, ok := SafeNormalize(b)
	if !ok {
		return 0
	}
	return mgl64.RadToDeg(math.Acos(Clamp(an.Dot(bn), -1, 1)))
}

// AngleToHorizontalDeg is the unsigned elevation of dir above or below the
// horizontal plane, in [0, 90].
func AngleToHorizontalDeg(dir mgl64.Vec3) float64 {
	d, ok := SafeNormalize(dir)
	if !ok {
		return 0
	}
	return mgl64.RadToDeg(math.Asin(Clamp(math.Abs(d.Dot(WorldUp)), 0, 1)))
}

// ProjectOnSegment returns the signed distance of p along the segment
// start + dir*t. dir must be unit length. The result is not clamped.
func ProjectOnSegment(p, start, dir mgl64.Vec3) float64 {
	return p.Sub(start).Dot(dir)
}

// MoveTowards moves from current to target by at most maxStep.
func MoveTowards(current, target mgl64.Vec3, maxStep float64) mgl64.Vec3 {
	delta := target.Sub(current)
	dist := delta.Len()
	if dist <= maxStep || dist < Epsilon {
		return target
	}
	return current.Add(delta.Mul(maxStep / dist))
}

// EaseInOut samples a smoothstep curve from start at t=0 to 1 at t>=1.
func EaseInOut(t, start float64) float64 {
	t = Clamp01(t)
	s := t * t * (3 - 2*t)
	return Lerp(start, 1, s)
}

// Finite reports whether every component of v is a real number.
func Finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Horizontal drops the vertical component of v.
func Horizontal(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X(), 0, v.Z()}
}
