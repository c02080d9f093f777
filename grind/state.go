package grind

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/grindkit/feature"
)

// State is either Idle or *Engaged.
type State interface {
	Name() string
	isState()
}

// Idle means the agent is not on an edge.
type Idle struct{}

func (Idle) Name() string { return "idle" }
func (Idle) isState()     {}

// Engaged holds a copy of the edge the agent is riding.
type Engaged struct {
	Edge      feature.GrindEdge
	StartTime float64
	Elapsed   float64
	// Speed is the current grind speed after the ease curve.
	Speed float64
	// Momentum is the agent's speed at the moment of engagement.
	Momentum  float64
	Direction mgl64.Vec3

	initial  float64
	rawSpeed float64
	applied  mgl64.Vec3
	lateral  float64
	// tangent is the edge direction in the direction of travel; steer is
	// the accumulated sideways offset from it.
	tangent mgl64.Vec3
	steer   float64
}

func (*Engaged) Name() string { return "engaged" }
func (*Engaged) isState()     {}

// ExitReason says why a traversal ended.
type ExitReason int

const (
	ExitInput ExitReason = iota + 1
	ExitInvalid
	ExitSourceRemoved
)

func (r ExitReason) String() string {
	switch r {
	case ExitInput:
		return "input"
	case ExitInvalid:
		return "invalid"
	case ExitSourceRemoved:
		return "source_removed"
	default:
		return "unknown"
	}
}

// ExitEvent describes a finished traversal.
type ExitEvent struct {
	Reason ExitReason
	Edge   feature.GrindEdge
	// Speed is the grind speed carried out of the edge.
	Speed float64
	// Velocity is direction*speed + forward*exitForce.
	Velocity mgl64.Vec3
	// Applied is what was handed to the agent after vertical blending.
	Applied  mgl64.Vec3
	Duration float64
}
