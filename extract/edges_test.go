package extract

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/grindkit/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lowThreshold() Settings {
	s := DefaultSettings()
	s.MinGrindEdgeLength = 0.01
	return s
}

func TestBoundaryEdgesClosedMesh(t *testing.T) {
	cases := []struct {
		name string
		m    *mesh.Mesh
	}{
		{"unit_cube", mesh.Cube(1)},
		{"welded_unit_cube", mesh.Weld(mesh.Cube(1), 1e-6)},
		{"large_cube", mesh.Cube(40)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			edges, err := BoundaryEdges(c.m, mesh.Identity(), lowThreshold())
			require.NoError(t, err)
			assert.Empty(t, edges)
		})
	}
}

func TestBoundaryEdgesSingleHole(t *testing.T) {
	cube := mesh.Cube(10)
	for tri := 0; tri < cube.TriangleCount(); tri++ {
		open := cube.RemoveTriangle(tri)
		edges, err := BoundaryEdges(open, mesh.Identity(), lowThreshold())
		require.NoError(t, err)
		require.Len(t, edges, 3, "triangle %d", tri)

		a, b, c := cube.Triangle(tri)
		want := map[edgeKey]bool{makeEdgeKey(a, b): true, makeEdgeKey(b, c): true, makeEdgeKey(c, a): true}
		for _, e := range edges {
			found := false
			for k := range want {
				ps, pe := cube.Positions[k.lo], cube.Positions[k.hi]
				if (e.Start.ApproxEqual(ps) && e.End.ApproxEqual(pe)) || (e.Start.ApproxEqual(pe) && e.End.ApproxEqual(ps)) {
					found = true
				}
			}
			assert.True(t, found, "edge %v-%v is not on the removed triangle", e.Start, e.End)
		}
	}
}

func TestBoundaryEdgesOpenCylinder(t *testing.T) {
	const segments = 8
	cyl := mesh.OpenCylinder(mesh.ChordRadius(8, segments), 2, segments)

	edges, err := BoundaryEdges(cyl, mesh.Identity(), DefaultSettings())
	require.NoError(t, err)
	require.Len(t, edges, 2*segments)

	top, bottom := 0, 0
	for _, e := range edges {
		assert.InDelta(t, 8, e.Length, 1e-9)
		assert.InDelta(t, 0, e.Direction.Y(), 1e-9, "ring edges are horizontal")
		switch {
		case math.Abs(e.Start.Y()-2) < 1e-9:
			top++
		case math.Abs(e.Start.Y()) < 1e-9:
			bottom++
		}
	}
	assert.Equal(t, segments, top)
	assert.Equal(t, segments, bottom)
}

func TestBoundaryEdgesLengthFilter(t *testing.T) {
	cyl := mesh.OpenCylinder(mesh.ChordRadius(8, 8), 2, 8)
	for _, minLen := range []float64{0.5, 2, 5, 8, 9} {
		s := DefaultSettings()
		s.MinGrindEdgeLength = minLen
		edges, err := BoundaryEdges(cyl, mesh.Identity(), s)
		require.NoError(t, err)
		for _, e := range edges {
			assert.GreaterOrEqual(t, e.Length, minLen)
		}
		if minLen > 8 {
			assert.Empty(t, edges)
		}
		if minLen <= 2 {
			assert.Len(t, edges, 18, "seam edges of length 2 are included")
		}
	}
}

func TestBoundaryEdgesFrame(t *testing.T) {
	tri := &mesh.Mesh{
		Indices: []int{0, 1, 2},
		Positions: []mgl64.Vec3{
			{0, 0, 0}, {10, 0, 0}, {0, 10, 0},
		},
	}
	edges, err := BoundaryEdges(tri, mesh.Identity(), DefaultSettings())
	require.NoError(t, err)
	require.Len(t, edges, 3)
	for i, e := range edges {
		assert.Equal(t, i, e.Index)
		assert.InDelta(t, 1, e.Direction.Len(), 1e-9)
		assert.InDelta(t, 1, e.Normal.Len(), 1e-9, "vertical edges use the forward fallback")
		assert.InDelta(t, 0, e.Direction.Dot(e.Normal), 1e-9)
		assert.True(t, e.Start.Add(e.Direction.Mul(e.Length)).ApproxEqualThreshold(e.End, 1e-9))
	}
}

func TestBoundaryEdgesTransform(t *testing.T) {
	cyl := mesh.OpenCylinder(mesh.ChordRadius(8, 8), 2, 8)
	xf := mesh.At(mgl64.Vec3{100, 5, -30})
	xf.Scale = mgl64.Vec3{2, 2, 2}

	edges, err := BoundaryEdges(cyl, xf, DefaultSettings())
	require.NoError(t, err)
	require.NotEmpty(t, edges)
	for _, e := range edges {
		assert.GreaterOrEqual(t, e.Start.Y(), 5.0-1e-9)
		assert.InDelta(t, 16, e.Length, 1e-9)
	}
	assert.Len(t, edges, 16, "seams scale to length 4 and stay filtered")
}

func TestBoundaryEdgesMalformed(t *testing.T) {
	cases := []struct {
		name string
		m    *mesh.Mesh
	}{
		{"nil", nil},
		{"empty", &mesh.Mesh{}},
		{"partial_triangle", &mesh.Mesh{Indices: []int{0, 1}, Positions: []mgl64.Vec3{{}, {1, 0, 0}}}},
		{"out_of_range", &mesh.Mesh{Indices: []int{0, 1, 7}, Positions: []mgl64.Vec3{{}, {1, 0, 0}, {0, 1, 0}}}},
		{"negative_index", &mesh.Mesh{Indices: []int{0, -1, 2}, Positions: []mgl64.Vec3{{}, {1, 0, 0}, {0, 1, 0}}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			edges, err := BoundaryEdges(c.m, mesh.Identity(), DefaultSettings())
			assert.ErrorIs(t, err, ErrMalformedMesh)
			assert.Empty(t, edges)
		})
	}
}
