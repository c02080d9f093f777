package extract

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/grindkit/common"
	"github.com/milk9111/grindkit/feature"
	"github.com/milk9111/grindkit/mesh"
)

// edgeKey is an undirected vertex pair with lo <= hi.
type edgeKey struct {
	lo, hi int
}

func makeEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{lo: a, hi: b}
}

type edgeInfo struct {
	start, end mgl64.Vec3
	length     float64
	count      int
}

// BoundaryEdges returns the mesh edges used by exactly one triangle whose
// world-space length is at least s.MinGrindEdgeLength. Edges are returned in
// the order their keys were first seen. Index on each edge is its position
// in the returned slice; Source is left for the caller to fill.
func BoundaryEdges(m *mesh.Mesh, xf mesh.Transform, s Settings) ([]feature.GrindEdge, error) {
	if err := validate(m); err != nil {
		return nil, err
	}

	infos := make(map[edgeKey]*edgeInfo, len(m.Indices))
	order := make([]edgeKey, 0, len(m.Indices))
	visit := func(a, b int) {
		if a == b {
			return
		}
		k := makeEdgeKey(a, b)
		if info, ok := infos[k]; ok {
			info.count++
			return
		}
		start := xf.Point(m.Positions[k.lo])
		end := xf.Point(m.Positions[k.hi])
		infos[k] = &edgeInfo{start: start, end: end, length: end.Sub(start).Len(), count: 1}
		order = append(order, k)
	}

	for t := 0; t < m.TriangleCount(); t++ {
		a, b, c := m.Triangle(t)
		visit(a, b)
		visit(b, c)
		visit(c, a)
	}

	var edges []feature.GrindEdge
	for _, k := range order {
		info := infos[k]
		if info.count != 1 || info.length < s.MinGrindEdgeLength {
			continue
		}
		dir, ok := common.SafeNormalize(info.end.Sub(info.start))
		if !ok {
			continue
		}
		edges = append(edges, feature.GrindEdge{
			Start:     info.start,
			End:       info.end,
			Direction: dir,
			Normal:    common.PerpendicularTo(dir, common.WorldUp, common.WorldForward),
			Length:    info.length,
			Index:     len(edges),
		})
	}
	return edges, nil
}
