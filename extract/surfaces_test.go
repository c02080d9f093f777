package extract

import (
	"testing"

	"github.com/milk9111/grindkit/common"
	"github.com/milk9111/grindkit/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClimbSurfacesAngleBand(t *testing.T) {
	cases := []struct {
		name  string
		angle float64
		want  bool
	}{
		{"flat_ground", 0, false},
		{"gentle", 30, false},
		{"just_above_lower_bound", 46, true},
		{"steep", 60, true},
		{"just_below_upper_bound", 84, true},
		{"near_vertical", 89, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			surfaces, err := ClimbSurfaces(mesh.Slope(10, 10, c.angle, 1), mesh.Identity(), DefaultSettings())
			require.NoError(t, err)
			if !c.want {
				assert.Empty(t, surfaces)
				return
			}
			require.Len(t, surfaces, 1)
			s := surfaces[0]
			assert.InDelta(t, c.angle, common.AngleDeg(s.Normal, common.WorldUp), 1e-6)
			assert.InDelta(t, 100, s.Area, 1e-6)
		})
	}
}

func TestClimbSurfacesFrame(t *testing.T) {
	surfaces, err := ClimbSurfaces(mesh.Slope(10, 10, 60, 1), mesh.Identity(), DefaultSettings())
	require.NoError(t, err)
	require.Len(t, surfaces, 1)
	s := surfaces[0]

	assert.InDelta(t, 1, s.Normal.Len(), 1e-9)
	assert.InDelta(t, 1, s.Up.Len(), 1e-9)
	assert.InDelta(t, 0, s.Up.Dot(s.Normal), 1e-9)
	assert.InDelta(t, 10, s.Bounds.Size().X(), 1e-9)
	assert.True(t, s.Center.ApproxEqualThreshold(s.Bounds.Center(), 1e-6))
}

func TestClimbSurfacesAreaFilter(t *testing.T) {
	small := mesh.Slope(2, 2, 60, 1)
	surfaces, err := ClimbSurfaces(small, mesh.Identity(), DefaultSettings())
	require.NoError(t, err)
	assert.Empty(t, surfaces)

	s := DefaultSettings()
	s.MinClimbSurfaceArea = 1
	surfaces, err = ClimbSurfaces(small, mesh.Identity(), s)
	require.NoError(t, err)
	require.Len(t, surfaces, 1)
	for _, surf := range surfaces {
		assert.GreaterOrEqual(t, surf.Area, s.MinClimbSurfaceArea)
	}
}

func TestClimbSurfacesInvariantsOnGrid(t *testing.T) {
	s := DefaultSettings()
	m := mesh.Slope(40, 40, 70, 8)
	surfaces, err := ClimbSurfaces(m, mesh.Identity(), s)
	require.NoError(t, err)
	require.NotEmpty(t, surfaces)

	total := 0.0
	for i, surf := range surfaces {
		assert.Equal(t, i, surf.Index)
		assert.GreaterOrEqual(t, surf.Area, s.MinClimbSurfaceArea)
		angle := common.AngleDeg(surf.Normal, common.WorldUp)
		assert.GreaterOrEqual(t, angle, 45.0)
		assert.LessOrEqual(t, angle, s.MaxClimbSurfaceAngle)
		total += surf.Area
	}
	assert.LessOrEqual(t, total, 1600+1e-6)
}

func TestClimbSurfacesIdempotent(t *testing.T) {
	m := mesh.Slope(40, 40, 55, 6)
	first, err := ClimbSurfaces(m, mesh.Identity(), DefaultSettings())
	require.NoError(t, err)
	second, err := ClimbSurfaces(m, mesh.Identity(), DefaultSettings())
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	sum := func(xs []float64) float64 {
		out := 0.0
		for _, x := range xs {
			out += x
		}
		return out
	}
	var a, b []float64
	for i := range first {
		a = append(a, first[i].Area)
		b = append(b, second[i].Area)
	}
	assert.InDelta(t, sum(a), sum(b), 1e-9)
	assert.Equal(t, first, second)
}

func TestClimbSurfacesFaceNormalFallback(t *testing.T) {
	withNormals := mesh.Slope(10, 10, 60, 1)
	withoutNormals := withNormals.Clone()
	withoutNormals.Normals = nil

	a, err := ClimbSurfaces(withNormals, mesh.Identity(), DefaultSettings())
	require.NoError(t, err)
	b, err := ClimbSurfaces(withoutNormals, mesh.Identity(), DefaultSettings())
	require.NoError(t, err)
	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.True(t, a[0].Normal.ApproxEqualThreshold(b[0].Normal, 1e-9))
}

func TestClimbSurfacesCubeWalls(t *testing.T) {
	surfaces, err := ClimbSurfaces(mesh.Cube(10), mesh.Identity(), DefaultSettings())
	require.NoError(t, err)
	for _, s := range surfaces {
		angle := common.AngleDeg(s.Normal, common.WorldUp)
		assert.GreaterOrEqual(t, angle, 45.0)
		assert.LessOrEqual(t, angle, 85.0)
	}
}

func TestClimbSurfacesMalformed(t *testing.T) {
	_, err := ClimbSurfaces(nil, mesh.Identity(), DefaultSettings())
	assert.ErrorIs(t, err, ErrMalformedMesh)
}
