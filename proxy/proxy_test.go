package proxy

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/grindkit/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func horizontalEdge() feature.GrindEdge {
	return feature.GrindEdge{
		Start:     mgl64.Vec3{-5, 0, 0},
		End:       mgl64.Vec3{5, 0, 0},
		Direction: mgl64.Vec3{1, 0, 0},
		Normal:    mgl64.Vec3{0, 0, -1},
		Length:    10,
	}
}

func steepSurface() feature.ClimbSurface {
	n := mgl64.Vec3{0, math.Cos(mgl64.DegToRad(60)), -math.Sin(mgl64.DegToRad(60))}
	return feature.ClimbSurface{
		Center: mgl64.Vec3{0, 4, 2},
		Normal: n,
		Up:     mgl64.Vec3{0, n.Z(), -n.Y()},
		Area:   100,
		Bounds: feature.Bounds{Min: mgl64.Vec3{-5, 0, -1}, Max: mgl64.Vec3{5, 8, 5}},
	}
}

func TestEdgeDescriptor(t *testing.T) {
	d := EdgeDescriptor(horizontalEdge(), DefaultSettings())
	require.NoError(t, d.Validate())

	a, b := d.Endpoints()
	assert.Equal(t, ShapeCapsule, d.Shape)
	assert.True(t, a.ApproxEqual(mgl64.Vec3{-5, 0, 0}))
	assert.True(t, b.ApproxEqual(mgl64.Vec3{5, 0, 0}))
	assert.Equal(t, 0.5, d.Radius)
	assert.Equal(t, CategoryGrindable, d.Category)
	assert.Less(t, d.Friction, DefaultSettings().ClimbFriction)
}

func TestSurfaceDescriptor(t *testing.T) {
	d := SurfaceDescriptor(steepSurface(), DefaultSettings())
	require.NoError(t, d.Validate())

	assert.Equal(t, ShapeBox, d.Shape)
	assert.Equal(t, CategoryClimbable, d.Category)
	assert.InDelta(t, 0.05, d.HalfExtents.Z(), 1e-12)
	assert.InDelta(t, 5, d.HalfExtents.X(), 1e-9)
	assert.Greater(t, d.HalfExtents.Y(), 0.0)
	assert.Len(t, d.Corners(), 8)
	assert.Greater(t, d.Friction, DefaultSettings().GrindFriction)
}

func TestDescriptorValidate(t *testing.T) {
	good := EdgeDescriptor(horizontalEdge(), DefaultSettings())
	cases := []struct {
		name   string
		mutate func(d *Descriptor)
	}{
		{"nan_center", func(d *Descriptor) { d.Center = mgl64.Vec3{math.NaN(), 0, 0} }},
		{"zero_radius", func(d *Descriptor) { d.Radius = 0 }},
		{"zero_axis", func(d *Descriptor) { d.Axis = mgl64.Vec3{} }},
		{"negative_friction", func(d *Descriptor) { d.Friction = -1 }},
		{"unknown_shape", func(d *Descriptor) { d.Shape = 0 }},
		{"flat_box", func(d *Descriptor) {
			d.Shape = ShapeBox
			d.HalfExtents = mgl64.Vec3{1, 0, 1}
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := good
			c.mutate(&d)
			assert.ErrorIs(t, d.Validate(), ErrInvalidDescriptor)
		})
	}
}

func TestChipmunkBackendQueries(t *testing.T) {
	b := NewChipmunkBackend(nil)
	s := NewSynthesizer(b, DefaultSettings())

	edgeID, err := s.ForEdge(horizontalEdge())
	require.NoError(t, err)
	require.NotZero(t, edgeID)
	assert.Equal(t, 1, b.Len())

	hit, ok := b.RaycastDown(mgl64.Vec3{0, 10, 0}, 20, CategoryGrindable)
	require.True(t, ok)
	assert.Equal(t, edgeID, hit.Collider)
	assert.Equal(t, CategoryGrindable, hit.Category)
	assert.InDelta(t, 0.5, hit.Point.Y(), 1e-6)
	assert.InDelta(t, 1, hit.Normal.Y(), 1e-6)
	assert.InDelta(t, 9.5, hit.Distance, 1e-6)

	_, ok = b.RaycastDown(mgl64.Vec3{0, 10, 0}, 20, CategoryClimbable)
	assert.False(t, ok, "mask filters out grind proxies")

	_, ok = b.RaycastDown(mgl64.Vec3{0, 10, 0}, 5, CategoryAll)
	assert.False(t, ok, "ray too short")

	assert.Equal(t, []feature.ColliderID{edgeID}, b.OverlapSphere(mgl64.Vec3{0, 1, 0}, 1, CategoryAll))
	assert.Empty(t, b.OverlapSphere(mgl64.Vec3{0, 30, 0}, 1, CategoryAll))

	b.Destroy(edgeID)
	b.Destroy(edgeID)
	assert.Equal(t, 0, b.Len())
	_, ok = b.RaycastDown(mgl64.Vec3{0, 10, 0}, 20, CategoryAll)
	assert.False(t, ok)
}

func TestChipmunkBackendSurfaceProxy(t *testing.T) {
	b := NewChipmunkBackend(nil)
	id, err := NewSynthesizer(b, DefaultSettings()).ForSurface(steepSurface())
	require.NoError(t, err)
	assert.True(t, b.Has(id))

	hit, ok := b.RaycastDown(mgl64.Vec3{0, 50, 2}, 100, CategoryClimbable)
	require.True(t, ok)
	assert.Equal(t, id, hit.Collider)
}

func TestChipmunkBackendRejectsMalformed(t *testing.T) {
	b := NewChipmunkBackend(nil)
	e := horizontalEdge()
	e.Start = mgl64.Vec3{math.Inf(1), 0, 0}

	_, err := NewSynthesizer(b, DefaultSettings()).ForEdge(e)
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
	assert.Equal(t, 0, b.Len())
}

func TestChipmunkBackendTerrain(t *testing.T) {
	b := NewChipmunkBackend(nil)
	id := b.AddTerrain(mgl64.Vec3{-100, 0, 0}, mgl64.Vec3{100, 0, 0}, 0.1)
	require.NotZero(t, id)

	hit, ok := b.RaycastDown(mgl64.Vec3{3, 2, 0}, 5, CategoryTerrain)
	require.True(t, ok)
	assert.Equal(t, CategoryTerrain, hit.Category)
	_, ok = b.RaycastDown(mgl64.Vec3{3, 2, 0}, 5, CategoryGrindable)
	assert.False(t, ok)
}

type failingBackend struct {
	Backend
	created int
}

func (f *failingBackend) Create(Descriptor) (feature.ColliderID, error) {
	f.created++
	return 0, errors.New("backend full")
}

func TestSynthesizer(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		fb := &failingBackend{}
		settings := DefaultSettings()
		settings.Enabled = false
		s := NewSynthesizer(fb, settings)

		id, err := s.ForEdge(horizontalEdge())
		assert.NoError(t, err)
		assert.Zero(t, id)
		assert.False(t, s.Enabled())
		assert.Zero(t, fb.created)
	})
	t.Run("nil_backend", func(t *testing.T) {
		s := NewSynthesizer(nil, DefaultSettings())
		id, err := s.ForSurface(steepSurface())
		assert.NoError(t, err)
		assert.Zero(t, id)
	})
	t.Run("backend_error", func(t *testing.T) {
		fb := &failingBackend{}
		s := NewSynthesizer(fb, DefaultSettings())
		_, err := s.ForEdge(horizontalEdge())
		assert.ErrorContains(t, err, "backend full")
		assert.Equal(t, 1, fb.created)
	})
}
