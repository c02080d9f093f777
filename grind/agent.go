package grind

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/grindkit/feature"
)

// Agent is the controller-side view of the moving body. Velocity access can
// fail on hosts that reach into another system's state; a failed access
// skips the tick.
type Agent interface {
	Position() mgl64.Vec3
	SetPosition(p mgl64.Vec3)
	Velocity() (mgl64.Vec3, error)
	SetVelocity(v mgl64.Vec3) error
	Forward() mgl64.Vec3
	Airborne() bool
}

// EdgeSource answers nearby-edge queries and reports whether an edge is
// still registered.
type EdgeSource interface {
	NearbyEdges(pos mgl64.Vec3, radius float64) []feature.GrindEdge
	EdgeAlive(h feature.Handle) bool
}

// Input is sampled once per variable-step update.
type Input struct {
	Engage  bool
	Exit    bool
	Lateral float64
}
