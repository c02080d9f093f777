package proxy

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/grindkit/feature"
	"go.uber.org/zap"
)

const (
	collisionTypeGrindable cp.CollisionType = iota + 1
	collisionTypeClimbable
	collisionTypeTerrain
)

// ChipmunkBackend keeps proxies as static shapes in a Chipmunk space. The
// space is a side view: world X and Y map to the Chipmunk plane and Z is
// dropped, so queries answer for the projection of the scene onto XY.
type ChipmunkBackend struct {
	space  *cp.Space
	shapes map[feature.ColliderID]*cp.Shape
	cats   map[feature.ColliderID]Category
	nextID feature.ColliderID
	logger *zap.Logger
}

// NewChipmunkBackend creates an empty space.
func NewChipmunkBackend(logger *zap.Logger) *ChipmunkBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: 0, Y: -9.81})
	return &ChipmunkBackend{
		space:  space,
		shapes: make(map[feature.ColliderID]*cp.Shape),
		cats:   make(map[feature.ColliderID]Category),
		logger: logger.Named("chipmunk"),
	}
}

// Space returns the underlying Chipmunk space.
func (b *ChipmunkBackend) Space() *cp.Space {
	if b == nil {
		return nil
	}
	return b.space
}

// Len returns the number of live colliders.
func (b *ChipmunkBackend) Len() int {
	if b == nil {
		return 0
	}
	return len(b.shapes)
}

// Has reports whether id names a live collider.
func (b *ChipmunkBackend) Has(id feature.ColliderID) bool {
	_, ok := b.shapes[id]
	return ok
}

// Create builds a static shape for d.
func (b *ChipmunkBackend) Create(d Descriptor) (feature.ColliderID, error) {
	if b == nil || b.space == nil {
		return 0, ErrInvalidDescriptor
	}
	if err := d.Validate(); err != nil {
		return 0, err
	}

	var shape *cp.Shape
	switch d.Shape {
	case ShapeCapsule:
		a, e := d.Endpoints()
		shape = cp.NewSegment(b.space.StaticBody, toCP(a), toCP(e), d.Radius)
	case ShapeBox:
		corners := d.Corners()
		verts := make([]cp.Vector, len(corners))
		first := toCP(corners[0])
		bb := cp.BB{L: first.X, B: first.Y, R: first.X, T: first.Y}
		for i, c := range corners {
			v := toCP(c)
			verts[i] = v
			bb.L, bb.R = math.Min(bb.L, v.X), math.Max(bb.R, v.X)
			bb.B, bb.T = math.Min(bb.B, v.Y), math.Max(bb.T, v.Y)
		}
		if bb.R-bb.L < 1e-6 || bb.T-bb.B < 1e-6 {
			return 0, ErrInvalidDescriptor
		}
		shape = cp.NewPolyShape(b.space.StaticBody, len(verts), verts, cp.NewTransformIdentity(), 0)
	}

	shape.SetFriction(d.Friction)
	shape.SetCollisionType(collisionTypeFor(d.Category))
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, uint(d.Category), cp.ALL_CATEGORIES))

	b.nextID++
	id := b.nextID
	shape.UserData = id
	b.space.AddShape(shape)
	b.shapes[id] = shape
	b.cats[id] = d.Category

	b.logger.Debug("created proxy",
		zap.Uint64("id", uint64(id)),
		zap.Stringer("shape", d.Shape),
		zap.Stringer("category", d.Category),
		zap.Float64("friction", d.Friction))
	return id, nil
}

// AddTerrain adds a static ground segment that is not a proxy. Agents use
// it for airborne checks.
func (b *ChipmunkBackend) AddTerrain(from, to mgl64.Vec3, radius float64) feature.ColliderID {
	id, err := b.Create(Descriptor{
		Shape:    ShapeCapsule,
		Center:   from.Add(to).Mul(0.5),
		Axis:     axisOrUp(to.Sub(from)),
		Length:   to.Sub(from).Len(),
		Radius:   radius,
		Category: CategoryTerrain,
		Friction: 0.8,
	})
	if err != nil {
		b.logger.Warn("terrain segment rejected", zap.Error(err))
		return 0
	}
	return id
}

// Destroy removes a collider. Unknown ids are ignored.
func (b *ChipmunkBackend) Destroy(id feature.ColliderID) {
	if b == nil {
		return
	}
	shape, ok := b.shapes[id]
	if !ok {
		return
	}
	b.space.RemoveShape(shape)
	delete(b.shapes, id)
	delete(b.cats, id)
}

// RaycastDown casts from `from` straight down (negative Y) up to maxDistance.
func (b *ChipmunkBackend) RaycastDown(from mgl64.Vec3, maxDistance float64, mask Category) (Hit, bool) {
	if b == nil || b.space == nil || maxDistance <= 0 {
		return Hit{}, false
	}
	start := toCP(from)
	end := cp.Vector{X: start.X, Y: start.Y - maxDistance}
	info := b.space.SegmentQueryFirst(start, end, 0, queryFilter(mask))
	if info.Shape == nil {
		return Hit{}, false
	}
	id, _ := info.Shape.UserData.(feature.ColliderID)
	return Hit{
		Point:    mgl64.Vec3{info.Point.X, info.Point.Y, from.Z()},
		Normal:   mgl64.Vec3{info.Normal.X, info.Normal.Y, 0},
		Distance: info.Alpha * maxDistance,
		Collider: id,
		Category: b.cats[id],
	}, true
}

// OverlapSphere returns colliders within radius of center.
func (b *ChipmunkBackend) OverlapSphere(center mgl64.Vec3, radius float64, mask Category) []feature.ColliderID {
	if b == nil || b.space == nil {
		return nil
	}
	var out []feature.ColliderID
	b.space.PointQuery(toCP(center), radius, queryFilter(mask), func(shape *cp.Shape, point cp.Vector, distance float64, gradient cp.Vector, data interface{}) {
		if id, ok := shape.UserData.(feature.ColliderID); ok {
			out = append(out, id)
		}
	}, nil)
	return out
}

func queryFilter(mask Category) cp.ShapeFilter {
	return cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, uint(mask))
}

func collisionTypeFor(c Category) cp.CollisionType {
	switch c {
	case CategoryGrindable:
		return collisionTypeGrindable
	case CategoryClimbable:
		return collisionTypeClimbable
	default:
		return collisionTypeTerrain
	}
}

func toCP(v mgl64.Vec3) cp.Vector {
	return cp.Vector{X: v.X(), Y: v.Y()}
}

func axisOrUp(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < 1e-9 || math.IsNaN(l) {
		return mgl64.Vec3{0, 1, 0}
	}
	return v.Mul(1 / l)
}
