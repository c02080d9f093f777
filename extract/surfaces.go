package extract

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/grindkit/common"
	"github.com/milk9111/grindkit/feature"
	"github.com/milk9111/grindkit/mesh"
)

type surfaceGroup struct {
	centroid  mgl64.Vec3
	normalSum mgl64.Vec3
	area      float64
	vertices  []mgl64.Vec3
	processed bool
}

func (g *surfaceGroup) normal() mgl64.Vec3 {
	n, _ := common.SafeNormalize(g.normalSum)
	return n
}

func (g *surfaceGroup) merge(o *surfaceGroup) {
	total := g.area + o.area
	if total > 0 {
		g.centroid = g.centroid.Mul(g.area / total).Add(o.centroid.Mul(o.area / total))
	}
	g.normalSum = g.normalSum.Add(o.normalSum)
	g.area = total
	g.vertices = append(g.vertices, o.vertices...)
	o.processed = true
}

// ClimbSurfaces groups triangles whose normal lies within the climbable
// angle band into surfaces and returns those with enough area.
//
// Clustering is greedy and quadratic in the number of candidate triangles.
// It runs once per source at registration.
func ClimbSurfaces(m *mesh.Mesh, xf mesh.Transform, s Settings) ([]feature.ClimbSurface, error) {
	if err := validate(m); err != nil {
		return nil, err
	}

	groups := candidateGroups(m, xf, s)
	clusterGroups(groups, s)

	var surfaces []feature.ClimbSurface
	for _, g := range groups {
		if g.processed || g.area < s.MinClimbSurfaceArea {
			continue
		}
		n := g.normal()
		if n == (mgl64.Vec3{}) {
			continue
		}
		angle := common.AngleDeg(n, common.WorldUp)
		if angle < s.MinClimbSurfaceAngle || angle > s.MaxClimbSurfaceAngle {
			continue
		}
		surfaces = append(surfaces, feature.ClimbSurface{
			Center: g.centroid,
			Normal: n,
			Up:     common.PerpendicularTo(n, common.WorldRight, common.WorldForward),
			Area:   g.area,
			Bounds: feature.BoundsOf(g.vertices),
			Index:  len(surfaces),
		})
	}
	return surfaces, nil
}

func candidateGroups(m *mesh.Mesh, xf mesh.Transform, s Settings) []*surfaceGroup {
	var groups []*surfaceGroup
	hasNormals := m.HasNormals()
	for t := 0; t < m.TriangleCount(); t++ {
		a, b, c := m.Triangle(t)
		v0, v1, v2 := xf.Point(m.Positions[a]), xf.Point(m.Positions[b]), xf.Point(m.Positions[c])
		cross := v1.Sub(v0).Cross(v2.Sub(v0))

		var n mgl64.Vec3
		var ok bool
		if hasNormals {
			n, ok = common.SafeNormalize(xf.Normal(m.Normals[a]))
		} else {
			n, ok = common.SafeNormalize(cross)
		}
		if !ok {
			continue
		}

		angle := common.AngleDeg(n, common.WorldUp)
		if angle < s.MinClimbSurfaceAngle || angle > s.MaxClimbSurfaceAngle {
			continue
		}

		area := cross.Len() * 0.5
		weight := area
		if weight <= 0 {
			weight = common.Epsilon
		}
		groups = append(groups, &surfaceGroup{
			centroid:  v0.Add(v1).Add(v2).Mul(1.0 / 3.0),
			normalSum: n.Mul(weight),
			area:      area,
			vertices:  []mgl64.Vec3{v0, v1, v2},
		})
	}
	return groups
}

// clusterGroups merges later groups into earlier ones when their centroids
// are close and their normals agree. Comparisons use each group's state at
// the time of the scan, so an absorbing group's centroid drifts as it grows.
func clusterGroups(groups []*surfaceGroup, s Settings) {
	for i, g := range groups {
		if g.processed {
			continue
		}
		for _, o := range groups[i+1:] {
			if o.processed {
				continue
			}
			if g.centroid.Sub(o.centroid).Len() >= s.MergeDistance {
				continue
			}
			if g.normal().Dot(o.normal()) <= s.MergeNormalDot {
				continue
			}
			g.merge(o)
		}
	}
}
