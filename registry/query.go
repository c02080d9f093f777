package registry

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/grindkit/feature"
)

// NearbyEdges returns copies of every registered edge whose center lies
// within radius of pos. This is a linear scan over all features and result
// order is unspecified; it is meant for scenes with dozens to a few hundred
// features.
func (r *Registry) NearbyEdges(pos mgl64.Vec3, radius float64) []feature.GrindEdge {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []feature.GrindEdge
	for _, id := range r.order {
		for _, e := range r.sources[id].Edges {
			if e.Center().Sub(pos).Len() <= radius {
				out = append(out, e)
			}
		}
	}
	return out
}

// NearbySurfaces is NearbyEdges for climb surfaces.
func (r *Registry) NearbySurfaces(pos mgl64.Vec3, radius float64) []feature.ClimbSurface {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []feature.ClimbSurface
	for _, id := range r.order {
		for _, s := range r.sources[id].Surfaces {
			if s.Center.Sub(pos).Len() <= radius {
				out = append(out, s)
			}
		}
	}
	return out
}

// Stats counts what the registry holds.
type Stats struct {
	Sources   int
	Edges     int
	Surfaces  int
	Colliders int
}

func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st := Stats{Sources: len(r.sources)}
	for _, data := range r.sources {
		st.Edges += len(data.Edges)
		st.Surfaces += len(data.Surfaces)
		st.Colliders += len(data.Colliders)
	}
	return st
}
