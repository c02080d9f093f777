package sim

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/grindkit/config"
	"github.com/milk9111/grindkit/grind"
	"github.com/milk9111/grindkit/logging"
	"github.com/milk9111/grindkit/proxy"
	"github.com/milk9111/grindkit/registry"
	"github.com/milk9111/grindkit/scene"
	"github.com/milk9111/grindkit/script"
	"go.uber.org/zap"
)

// Stats summarizes one rider's traversals.
type Stats struct {
	Engagements  int
	Exits        map[grind.ExitReason]int
	GrindTime    float64
	LongestGrind float64
	MaxSpeed     float64
}

// Rider couples a body, its grind controller and whatever produces its
// input.
type Rider struct {
	Name       string
	Body       *KinematicAgent
	Controller *grind.Controller
	Driver     *script.Driver
	// Input overrides Driver when set.
	Input func(v script.View) grind.Input

	Stats Stats
}

// World owns the registry, the physics backend and every rider.
type World struct {
	Registry *registry.Registry
	Backend  *proxy.ChipmunkBackend
	Riders   []*Rider

	Sources []*registry.StaticSource

	cfg    config.Config
	logger *zap.Logger

	frame *Scheduler
	fixed *Scheduler
	loop  *Loop

	time  float64
	ticks int
}

type Option func(*World)

func WithLogger(l *zap.Logger) Option {
	return func(w *World) { w.logger = logging.OrNop(l) }
}

// NewWorld builds an empty world from cfg. Add sources and riders, or use
// FromScene.
func NewWorld(cfg config.Config, opts ...Option) *World {
	w := &World{cfg: cfg, logger: logging.Nop()}
	for _, opt := range opts {
		opt(w)
	}

	w.Backend = proxy.NewChipmunkBackend(w.logger)
	w.Registry = registry.New(
		registry.WithExtractSettings(cfg.ExtractSettings()),
		registry.WithSynthesizer(proxy.NewSynthesizer(w.Backend, cfg.ProxySettings())),
		registry.WithLogger(w.logger),
	)
	w.Registry.Subscribe(w.onRegistryEvent)

	w.frame = NewScheduler(InputSystem{}, EventSystem{})
	w.fixed = NewScheduler(GrindSystem{}, MotionSystem{})
	w.loop = NewLoop(cfg.Loop.FixedStep(), cfg.Loop.MaxFixedSteps)
	return w
}

// FromScene builds a world holding everything sc describes.
func FromScene(cfg config.Config, sc scene.Scene, opts ...Option) (*World, error) {
	w := NewWorld(cfg, opts...)
	for _, t := range sc.Terrain {
		if w.Backend.AddTerrain(t.From.Vec(), t.To.Vec(), t.Radius) == 0 {
			return nil, fmt.Errorf("sim: terrain %v -> %v rejected", t.From, t.To)
		}
	}
	sources, err := sc.BuildSources()
	if err != nil {
		return nil, err
	}
	for _, src := range sources {
		w.AddSource(src)
	}
	for _, a := range sc.Agents {
		var driver *script.Driver
		if a.Script != "" {
			driver, err = script.LoadDriver(a.Script, w.logger)
			if err != nil {
				return nil, err
			}
		}
		w.AddRider(a.Name, a.Position.Vec(), a.Velocity.Vec(), driver)
	}
	return w, nil
}

func (w *World) Config() config.Config { return w.cfg }
func (w *World) Time() float64         { return w.time }
func (w *World) Ticks() int            { return w.ticks }
func (w *World) Logger() *zap.Logger   { return w.logger }

// AddSource registers src and keeps it for re-registration on reconfigure.
func (w *World) AddSource(src *registry.StaticSource) registry.InteractionData {
	w.Sources = append(w.Sources, src)
	return w.Registry.Register(src)
}

// RemoveSource unregisters the source with the given name.
func (w *World) RemoveSource(name string) bool {
	for i, src := range w.Sources {
		if src.Name == name {
			w.Sources = append(w.Sources[:i], w.Sources[i+1:]...)
			return w.Registry.Unregister(src.ID)
		}
	}
	return false
}

func (w *World) AddRider(name string, pos, vel mgl64.Vec3, driver *script.Driver) *Rider {
	r := &Rider{
		Name:   name,
		Body:   NewKinematicAgent(pos, vel, w.Backend),
		Driver: driver,
		Stats:  Stats{Exits: map[grind.ExitReason]int{}},
	}
	log := w.logger.With(zap.String("rider", name))
	r.Controller = grind.NewController(r.Body, w.Registry, w.cfg.GrindSettings(),
		grind.WithLogger(log),
		grind.OnEngage(func(e grind.Engaged) {
			r.Stats.Engagements++
			log.Info("engaged",
				zap.Stringer("source", e.Edge.Source),
				zap.Int("edge", e.Edge.Index),
				zap.Float64("speed", e.Speed))
		}),
		grind.OnExit(func(e grind.ExitEvent) {
			r.Stats.Exits[e.Reason]++
			r.Stats.GrindTime += e.Duration
			if e.Duration > r.Stats.LongestGrind {
				r.Stats.LongestGrind = e.Duration
			}
			log.Info("exited",
				zap.Stringer("reason", e.Reason),
				zap.Float64("speed", e.Speed),
				zap.Float64("duration", e.Duration),
				logging.Vec("velocity", e.Applied))
		}),
	)
	w.Riders = append(w.Riders, r)
	return r
}

// Rider returns the rider with the given name.
func (w *World) Rider(name string) (*Rider, bool) {
	for _, r := range w.Riders {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// Step runs one variable-rate frame and every fixed step it owes.
func (w *World) Step(dt float64) int {
	w.time += dt
	w.ticks++
	w.frame.Update(w, dt)
	return w.loop.Advance(dt, func(step float64) {
		w.fixed.Update(w, step)
	})
}

// ApplyConfig swaps tuning values. Extraction or proxy changes re-register
// every source, which drops riders off their edges.
func (w *World) ApplyConfig(cfg config.Config) {
	prev := w.cfg
	w.cfg = cfg
	for _, r := range w.Riders {
		r.Controller.SetSettings(cfg.GrindSettings())
	}
	w.loop.FixedStep = cfg.Loop.FixedStep()
	w.loop.MaxSteps = max(cfg.Loop.MaxFixedSteps, 1)

	if prev.Extraction == cfg.Extraction && prev.Proxy == cfg.Proxy {
		w.logger.Info("config applied")
		return
	}
	w.Registry.Clear()
	w.Registry.Reconfigure(cfg.ExtractSettings(), proxy.NewSynthesizer(w.Backend, cfg.ProxySettings()))
	for _, src := range w.Sources {
		w.Registry.Register(src)
	}
	w.logger.Info("config applied, sources rebuilt", zap.Int("sources", len(w.Sources)))
}

// ReloadScript recompiles every driver loaded from name. A script that
// fails to compile leaves the old drivers in place.
func (w *World) ReloadScript(name string) (int, error) {
	reloaded := 0
	for _, r := range w.Riders {
		if r.Driver == nil || r.Driver.Name() != name {
			continue
		}
		d, err := script.LoadDriver(name, w.logger)
		if err != nil {
			return reloaded, err
		}
		r.Driver = d
		reloaded++
	}
	return reloaded, nil
}

func (w *World) onRegistryEvent(evt registry.Event) {
	if evt.Kind != registry.EventUnregistered {
		return
	}
	for _, r := range w.Riders {
		r.Controller.SourceRemoved(evt.Source)
	}
}

// View builds what a script sees of r this frame.
func (w *World) View(r *Rider) script.View {
	vel, _ := r.Body.Velocity()
	_, score, ok := r.Controller.Candidate()
	pos := r.Body.Position()
	return script.View{
		Tick:           w.ticks,
		Time:           w.time,
		Position:       pos,
		Velocity:       vel,
		State:          r.Controller.State().Name(),
		Airborne:       r.Body.Airborne(),
		HasCandidate:   ok,
		CandidateScore: score,
		NearClimbable:  len(w.Backend.OverlapSphere(pos, nearClimbRadius, proxy.CategoryClimbable)) > 0,
	}
}
