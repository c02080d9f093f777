package sim

import (
	"github.com/milk9111/grindkit/grind"
	"go.uber.org/zap"
)

const nearClimbRadius = 1.5

// InputSystem samples each rider's script or override and feeds the grind
// controller's variable-step update.
type InputSystem struct{}

func (InputSystem) Update(w *World, dt float64) {
	for _, r := range w.Riders {
		var in grind.Input
		switch {
		case r.Input != nil:
			in = r.Input(w.View(r))
		case r.Driver != nil:
			var err error
			in, err = r.Driver.Decide(w.View(r))
			if err != nil {
				w.logger.Warn("script failed", zap.String("rider", r.Name), zap.Error(err))
				in = grind.Input{}
			}
		}
		r.Controller.Update(dt, in)
	}
}

// EventSystem drains registry events into the log.
type EventSystem struct{}

func (EventSystem) Update(w *World, dt float64) {
	for _, evt := range w.Registry.DrainEvents() {
		w.logger.Debug("registry event",
			zap.String("kind", string(evt.Kind)),
			zap.Stringer("source", evt.Source),
			zap.Int("edges", evt.Edges),
			zap.Int("surfaces", evt.Surfaces))
	}
}

// GrindSystem runs the fixed-step half of every grind controller.
type GrindSystem struct{}

func (GrindSystem) Update(w *World, dt float64) {
	for _, r := range w.Riders {
		r.Controller.FixedUpdate(dt)
		if s, ok := r.Controller.Engaged(); ok && s.Speed > r.Stats.MaxSpeed {
			r.Stats.MaxSpeed = s.Speed
		}
	}
}

// MotionSystem integrates every body.
type MotionSystem struct{}

func (MotionSystem) Update(w *World, dt float64) {
	for _, r := range w.Riders {
		_, riding := r.Controller.Engaged()
		r.Body.Integrate(dt, riding)
	}
}
