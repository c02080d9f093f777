package grind

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/milk9111/grindkit/common"
	"github.com/milk9111/grindkit/feature"
	"github.com/milk9111/grindkit/logging"
	"go.uber.org/zap"
)

var idle State = Idle{}

// Controller drives one agent between Idle and Engaged. Update runs on the
// variable step and owns detection and input; FixedUpdate runs on the fixed
// step and owns movement. Both are meant to be called from one goroutine.
type Controller struct {
	agent    Agent
	edges    EdgeSource
	settings Settings
	logger   *zap.Logger

	state State
	clock float64

	sinceDetect    float64
	candidate      feature.GrindEdge
	candidateScore float64
	hasCandidate   bool

	onEngage func(Engaged)
	onExit   func(ExitEvent)
}

type ControllerOption func(*Controller)

func WithLogger(l *zap.Logger) ControllerOption {
	return func(c *Controller) { c.logger = logging.OrNop(l).Named("grind") }
}

// OnEngage registers a callback fired after the agent latches onto an edge.
func OnEngage(fn func(Engaged)) ControllerOption {
	return func(c *Controller) { c.onEngage = fn }
}

// OnExit registers a callback fired after every exit, whatever the reason.
func OnExit(fn func(ExitEvent)) ControllerOption {
	return func(c *Controller) { c.onExit = fn }
}

func NewController(agent Agent, edges EdgeSource, settings Settings, opts ...ControllerOption) *Controller {
	c := &Controller{
		agent:    agent,
		edges:    edges,
		settings: settings,
		logger:   logging.Nop(),
		state:    idle,
		// detect on the first update
		sinceDetect: settings.DetectionInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() State { return c.state }

// Engaged returns a copy of the traversal state, if any.
func (c *Controller) Engaged() (Engaged, bool) {
	if s, ok := c.state.(*Engaged); ok {
		return *s, true
	}
	return Engaged{}, false
}

// Candidate returns the best edge found by the last detection pass.
func (c *Controller) Candidate() (feature.GrindEdge, float64, bool) {
	return c.candidate, c.candidateScore, c.hasCandidate
}

func (c *Controller) Settings() Settings { return c.settings }

// SetSettings swaps tuning values. An active traversal keeps running under
// the new values.
func (c *Controller) SetSettings(s Settings) { c.settings = s }

// Update advances the clock, runs throttled detection while idle and applies
// engage, exit and steering input.
func (c *Controller) Update(dt float64, in Input) {
	c.clock += dt

	switch s := c.state.(type) {
	case Idle:
		c.sinceDetect += dt
		if c.sinceDetect >= c.settings.DetectionInterval {
			c.sinceDetect = 0
			c.Detect()
		}
		if in.Engage {
			c.tryEngage()
		}
	case *Engaged:
		if in.Exit {
			c.exit(ExitInput)
			return
		}
		s.lateral = common.Clamp(in.Lateral, -1, 1)
	}
}

// Detect refreshes the cached candidate from the edge source.
func (c *Controller) Detect() (feature.GrindEdge, bool) {
	c.hasCandidate = false
	if c.edges == nil || c.agent == nil {
		return feature.GrindEdge{}, false
	}
	vel, err := c.agent.Velocity()
	if err != nil {
		c.logger.Warn("velocity unavailable, skipping detection", zap.Error(err))
		return feature.GrindEdge{}, false
	}
	pos := c.agent.Position()
	nearby := c.edges.NearbyEdges(pos, c.settings.DetectionRadius)
	best, score, ok := SelectBestCandidate(pos, vel, c.settings.DetectionRadius, nearby)
	if !ok {
		return feature.GrindEdge{}, false
	}
	c.candidate, c.candidateScore, c.hasCandidate = best, score, true
	return best, true
}

func (c *Controller) tryEngage() bool {
	if !c.hasCandidate || c.agent == nil || !c.agent.Airborne() {
		return false
	}
	if !c.edges.EdgeAlive(c.candidate.Handle()) {
		c.hasCandidate = false
		return false
	}
	vel, err := c.agent.Velocity()
	if err != nil {
		c.logger.Warn("velocity unavailable, engage skipped", zap.Error(err))
		return false
	}
	speed := vel.Len()
	if speed < c.settings.MinEngageSpeed {
		return false
	}

	e := c.candidate
	dir := e.Direction
	if vel.Dot(dir) < 0 {
		dir = dir.Mul(-1)
	}
	initial := math.Min(math.Max(c.settings.BaseGrindSpeed, speed*c.settings.MomentumTransferFactor), c.settings.MaxGrindSpeed)

	s := &Engaged{
		Edge:      e,
		StartTime: c.clock,
		Speed:     initial,
		Momentum:  speed,
		Direction: dir,
		initial:   initial,
		rawSpeed:  initial,
		tangent:   dir,
		applied:   vel,
	}
	c.state = s
	c.hasCandidate = false

	c.logger.Debug("engaged",
		zap.Stringer("source", e.Source),
		zap.Int("edge", e.Index),
		zap.Float64("momentum", speed),
		zap.Float64("speed", initial))
	if c.onEngage != nil {
		c.onEngage(*s)
	}
	return true
}

// FixedUpdate integrates speed, steering, snapping and gravity damping for
// an engaged agent. It exits first when the edge is gone or the agent has
// left it.
func (c *Controller) FixedUpdate(dt float64) {
	s, ok := c.state.(*Engaged)
	if !ok {
		return
	}
	e := s.Edge
	if !c.edges.EdgeAlive(e.Handle()) {
		c.exit(ExitSourceRemoved)
		return
	}

	vel, err := c.agent.Velocity()
	if err != nil {
		c.logger.Warn("velocity unavailable, skipping tick", zap.Error(err))
		return
	}

	pos := c.agent.Position()
	t := common.ProjectOnSegment(pos, e.Start, e.Direction)
	if !c.onEdge(pos, t, e) {
		c.exit(ExitInvalid)
		return
	}

	st := c.settings
	s.Elapsed += dt
	s.rawSpeed = math.Min(s.rawSpeed+st.GrindAcceleration*dt, st.MaxGrindSpeed)
	curve := 1.0
	if st.SpeedCurveDuration > 0 {
		curve = common.EaseInOut(s.Elapsed/st.SpeedCurveDuration, st.SpeedCurveStart)
	}
	// The curve shapes only the speed gained since engaging.
	s.Speed = s.initial + (s.rawSpeed-s.initial)*curve

	if s.lateral != 0 {
		limit := math.Tan(mgl64.DegToRad(common.Clamp(st.MaxSteerAngle, 0, 89)))
		s.steer = common.Clamp(s.steer+s.lateral*st.SteerStrength*dt, -limit, limit)
		side := common.PerpendicularTo(common.WorldUp, s.tangent, common.WorldRight)
		if dir, ok := common.SafeNormalize(s.tangent.Add(side.Mul(s.steer))); ok {
			s.Direction = dir
		}
	}

	// Overshoot past an endpoint is kept so the snap only corrects sideways
	// drift; the endpoint tolerance ends the ride.
	clamped := common.Clamp(t, 0, e.Length)
	target := e.PointAt(clamped).Add(e.Direction.Mul(t - clamped)).Add(e.Normal.Mul(st.EdgeOffset))
	c.agent.SetPosition(common.MoveTowards(pos, target, st.EdgeSnapDistance))

	// Gravity the host added since the last tick survives, scaled down.
	sag := (vel.Y() - s.applied.Y()) * (1 - st.GravityReduction)
	next := s.Direction.Mul(s.Speed)
	next[1] += sag
	if err := c.agent.SetVelocity(next); err != nil {
		c.logger.Warn("velocity write failed", zap.Error(err))
		return
	}
	s.applied = next
}

func (c *Controller) onEdge(pos mgl64.Vec3, t float64, e feature.GrindEdge) bool {
	if pos.Sub(e.Center()).Len() > c.settings.ValidityRadiusFactor*c.settings.DetectionRadius {
		return false
	}
	tol := c.settings.EndpointTolerance
	return t >= -tol && t <= e.Length+tol
}

// Exit leaves the current edge on request. It reports false when idle.
func (c *Controller) Exit() (ExitEvent, bool) {
	if _, ok := c.state.(*Engaged); !ok {
		return ExitEvent{}, false
	}
	return c.exit(ExitInput), true
}

// SourceRemoved drops every reference to features of id. An agent riding
// one of them exits at once.
func (c *Controller) SourceRemoved(id uuid.UUID) {
	if c.hasCandidate && c.candidate.Source == id {
		c.hasCandidate = false
	}
	if s, ok := c.state.(*Engaged); ok && s.Edge.Source == id {
		c.exit(ExitSourceRemoved)
	}
}

func (c *Controller) exit(reason ExitReason) ExitEvent {
	s := c.state.(*Engaged)

	out := s.Direction.Mul(s.Speed).Add(c.agent.Forward().Mul(c.settings.ExitForce))
	cur, err := c.agent.Velocity()
	if err != nil {
		c.logger.Warn("velocity unavailable on exit", zap.Error(err))
		cur = out
	}
	applied := mgl64.Vec3{out.X(), common.Lerp(cur.Y(), out.Y(), 0.5), out.Z()}
	if err := c.agent.SetVelocity(applied); err != nil {
		c.logger.Warn("velocity write failed on exit", zap.Error(err))
	}

	evt := ExitEvent{
		Reason:   reason,
		Edge:     s.Edge,
		Speed:    s.Speed,
		Velocity: out,
		Applied:  applied,
		Duration: s.Elapsed,
	}
	c.state = idle
	c.sinceDetect = 0

	c.logger.Debug("exited",
		zap.Stringer("reason", reason),
		zap.Stringer("source", s.Edge.Source),
		zap.Float64("speed", s.Speed),
		zap.Float64("duration", s.Elapsed))
	if c.onExit != nil {
		c.onExit(evt)
	}
	return evt
}
