package sim

// Loop splits variable frame time into fixed steps.
type Loop struct {
	FixedStep float64
	MaxSteps  int

	acc float64
}

func NewLoop(fixedStep float64, maxSteps int) *Loop {
	if maxSteps < 1 {
		maxSteps = 1
	}
	return &Loop{FixedStep: fixedStep, MaxSteps: maxSteps}
}

// Advance adds frame time and runs fixed for every whole step owed, up to
// MaxSteps. Backlog beyond that is dropped. It returns the steps run.
func (l *Loop) Advance(dt float64, fixed func(step float64)) int {
	if l.FixedStep <= 0 || dt <= 0 {
		return 0
	}
	l.acc += dt
	steps := 0
	for l.acc >= l.FixedStep && steps < l.MaxSteps {
		fixed(l.FixedStep)
		l.acc -= l.FixedStep
		steps++
	}
	if steps == l.MaxSteps && l.acc >= l.FixedStep {
		l.acc = 0
	}
	return steps
}

// Alpha is the fraction of a fixed step left in the accumulator.
func (l *Loop) Alpha() float64 {
	if l.FixedStep <= 0 {
		return 0
	}
	return l.acc / l.FixedStep
}
