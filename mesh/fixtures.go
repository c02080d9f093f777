package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Cube returns a closed, welded cube of edge length size centered on the
// origin: 8 vertices, 12 outward-wound triangles.
func Cube(size float64) *Mesh {
	h := size / 2
	pos := []mgl64.Vec3{
		{-h, -h, -h}, {h, -h, -h}, {h, h, -h}, {-h, h, -h},
		{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h},
	}
	idx := []int{
		0, 2, 1, 0, 3, 2, // back
		4, 5, 6, 4, 6, 7, // front
		0, 1, 5, 0, 5, 4, // bottom
		3, 7, 6, 3, 6, 2, // top
		0, 4, 7, 0, 7, 3, // left
		1, 2, 6, 1, 6, 5, // right
	}
	normals := make([]mgl64.Vec3, len(pos))
	for i, p := range pos {
		normals[i] = p.Normalize()
	}
	return &Mesh{Indices: idx, Positions: pos, Normals: normals}
}

// OpenCylinder returns the side wall of a cylinder with no caps. The seam
// column is duplicated (segments+1 columns) the way UV-mapped cylinders are
// built, so the seam shows up as two boundary edges of length height.
func OpenCylinder(radius, height float64, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	m := &Mesh{}
	for i := 0; i <= segments; i++ {
		a := 2 * math.Pi * float64(i%segments) / float64(segments)
		x, z := math.Cos(a)*radius, math.Sin(a)*radius
		n := mgl64.Vec3{math.Cos(a), 0, math.Sin(a)}
		m.Positions = append(m.Positions, mgl64.Vec3{x, 0, z}, mgl64.Vec3{x, height, z})
		m.Normals = append(m.Normals, n, n)
	}
	for i := 0; i < segments; i++ {
		b0, t0 := i*2, i*2+1
		b1, t1 := (i+1)*2, (i+1)*2+1
		m.Indices = append(m.Indices, b0, t0, t1, b0, t1, b1)
	}
	return m
}

// ChordRadius returns the radius at which a regular polygon with the given
// number of segments has edges of length chord.
func ChordRadius(chord float64, segments int) float64 {
	return chord / (2 * math.Sin(math.Pi/float64(segments)))
}

// Slope returns a flat, welded width x length rectangle subdivided into
// cells x cells quads and tilted so that its normal makes angleDeg with the
// world up axis. The rectangle rises along +Z and is centered on the origin.
func Slope(width, length, angleDeg float64, cells int) *Mesh {
	if cells < 1 {
		cells = 1
	}
	rot := mgl64.QuatRotate(mgl64.DegToRad(-angleDeg), mgl64.Vec3{1, 0, 0})
	normal := rot.Rotate(mgl64.Vec3{0, 1, 0})
	m := &Mesh{}
	for r := 0; r <= cells; r++ {
		for c := 0; c <= cells; c++ {
			p := mgl64.Vec3{
				-width/2 + width*float64(c)/float64(cells),
				0,
				-length/2 + length*float64(r)/float64(cells),
			}
			m.Positions = append(m.Positions, rot.Rotate(p))
			m.Normals = append(m.Normals, normal)
		}
	}
	stride := cells + 1
	for r := 0; r < cells; r++ {
		for c := 0; c < cells; c++ {
			i0 := r*stride + c
			i1 := i0 + 1
			i2 := i0 + stride
			i3 := i2 + 1
			m.Indices = append(m.Indices, i0, i2, i1, i1, i2, i3)
		}
	}
	return m
}

// Weld merges vertices closer than eps and remaps indices. Normals of merged
// vertices are averaged.
func Weld(m *Mesh, eps float64) *Mesh {
	if m == nil || eps <= 0 {
		return m.Clone()
	}
	type cell [3]int64
	key := func(p mgl64.Vec3) cell {
		return cell{int64(math.Round(p[0] / eps)), int64(math.Round(p[1] / eps)), int64(math.Round(p[2] / eps))}
	}
	out := &Mesh{}
	remap := make([]int, len(m.Positions))
	seen := make(map[cell]int, len(m.Positions))
	hasNormals := m.HasNormals()
	for i, p := range m.Positions {
		k := key(p)
		if j, ok := seen[k]; ok {
			remap[i] = j
			if hasNormals {
				out.Normals[j] = out.Normals[j].Add(m.Normals[i])
			}
			continue
		}
		seen[k] = len(out.Positions)
		remap[i] = len(out.Positions)
		out.Positions = append(out.Positions, p)
		if hasNormals {
			out.Normals = append(out.Normals, m.Normals[i])
		}
	}
	for i, n := range out.Normals {
		if l := n.Len(); l > 0 {
			out.Normals[i] = n.Mul(1 / l)
		}
	}
	out.Indices = make([]int, len(m.Indices))
	for i, idx := range m.Indices {
		if idx < 0 || idx >= len(remap) {
			out.Indices[i] = idx
			continue
		}
		out.Indices[i] = remap[idx]
	}
	return out
}
