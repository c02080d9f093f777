package sim

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/grindkit/common"
	"github.com/milk9111/grindkit/proxy"
)

var ErrDetached = errors.New("sim: agent detached")

const (
	DefaultGravity = 20.0

	groundProbe    = 1.0
	groundSkin     = 0.05
	groundFriction = 0.5
)

// KinematicAgent is a point body with gravity and a terrain check. It is the
// stand-in for a host character controller.
type KinematicAgent struct {
	pos    mgl64.Vec3
	vel    mgl64.Vec3
	facing mgl64.Vec3

	Gravity float64

	ground   proxy.Backend
	grounded bool
	detached bool
}

func NewKinematicAgent(pos, vel mgl64.Vec3, ground proxy.Backend) *KinematicAgent {
	a := &KinematicAgent{
		pos:     pos,
		vel:     vel,
		facing:  common.WorldRight,
		Gravity: DefaultGravity,
		ground:  ground,
	}
	a.updateFacing()
	return a
}

func (a *KinematicAgent) Position() mgl64.Vec3     { return a.pos }
func (a *KinematicAgent) SetPosition(p mgl64.Vec3) { a.pos = p }

func (a *KinematicAgent) Velocity() (mgl64.Vec3, error) {
	if a.detached {
		return mgl64.Vec3{}, ErrDetached
	}
	return a.vel, nil
}

func (a *KinematicAgent) SetVelocity(v mgl64.Vec3) error {
	if a.detached {
		return ErrDetached
	}
	a.vel = v
	a.updateFacing()
	return nil
}

// Forward is the last horizontal direction of travel.
func (a *KinematicAgent) Forward() mgl64.Vec3 { return a.facing }

func (a *KinematicAgent) Airborne() bool { return !a.grounded }

func (a *KinematicAgent) Grounded() bool { return a.grounded }

// Detach makes velocity access fail, as when the host body is torn down
// mid-frame. Attach undoes it.
func (a *KinematicAgent) Detach() { a.detached = true }
func (a *KinematicAgent) Attach() { a.detached = false }

// Integrate applies gravity and moves the agent. Riding agents skip the
// terrain check; the grind controller owns their height.
func (a *KinematicAgent) Integrate(dt float64, riding bool) {
	if a.detached {
		return
	}
	a.vel[1] -= a.Gravity * dt
	a.pos = a.pos.Add(a.vel.Mul(dt))
	a.grounded = false
	if riding || a.ground == nil {
		return
	}

	probe := a.pos.Add(common.WorldUp.Mul(groundProbe))
	hit, ok := a.ground.RaycastDown(probe, groundProbe+groundSkin, proxy.CategoryTerrain)
	if !ok || a.pos.Y() > hit.Point.Y()+groundSkin {
		return
	}
	a.pos[1] = hit.Point.Y()
	if a.vel.Y() < 0 {
		a.vel[1] = 0
	}
	damp := common.Clamp01(1 - groundFriction*dt)
	a.vel[0] *= damp
	a.vel[2] *= damp
	a.grounded = true
	a.updateFacing()
}

func (a *KinematicAgent) updateFacing() {
	if f, ok := common.SafeNormalize(common.Horizontal(a.vel)); ok {
		a.facing = f
	}
}
