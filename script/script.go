package script

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/grindkit/grind"
	"github.com/milk9111/grindkit/logging"
	"go.uber.org/zap"
)

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

// DefaultScript is the embedded rider used when no script is given.
const DefaultScript = "rider.tengo"

const dispatchScript = `
__out := decide(__engine, __memory)
`

// View is what a script can see of its agent each frame.
type View struct {
	Tick           int
	Time           float64
	Position       mgl64.Vec3
	Velocity       mgl64.Vec3
	State          string
	Airborne       bool
	HasCandidate   bool
	CandidateScore float64
	NearClimbable  bool
}

// Driver runs a tengo script that turns a View into grind input. The
// script must define decide(engine, memory) returning a map with optional
// engage, exit and lateral keys. memory persists between frames.
type Driver struct {
	name     string
	compiled *tengo.Compiled
	memory   *tengo.Map
	logger   *zap.Logger
}

// Load reads a script from disk, falling back to the embedded scripts.
func Load(name string) ([]byte, error) {
	if name == "" {
		name = DefaultScript
	}
	if data, err := os.ReadFile(name); err == nil {
		return data, nil
	}
	return ScriptsFS.ReadFile("scripts/" + filepath.Base(filepath.ToSlash(name)))
}

// LoadDriver loads and compiles the named script.
func LoadDriver(name string, logger *zap.Logger) (*Driver, error) {
	if name == "" {
		name = DefaultScript
	}
	src, err := Load(name)
	if err != nil {
		return nil, fmt.Errorf("script: load %s: %w", name, err)
	}
	return NewDriver(name, src, logger)
}

func NewDriver(name string, src []byte, logger *zap.Logger) (*Driver, error) {
	full := string(src) + "\n" + dispatchScript
	s := tengo.NewScript([]byte(full))
	_ = s.Add("__engine", map[string]any{})
	_ = s.Add("__memory", map[string]any{})
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}
	return &Driver{
		name:     name,
		compiled: compiled,
		memory:   &tengo.Map{Value: map[string]tengo.Object{}},
		logger:   logging.OrNop(logger).Named("script").With(zap.String("script", name)),
	}, nil
}

func (d *Driver) Name() string { return d.name }

// Reset clears the script memory.
func (d *Driver) Reset() {
	d.memory = &tengo.Map{Value: map[string]tengo.Object{}}
}

// Decide runs one frame of the script.
func (d *Driver) Decide(v View) (grind.Input, error) {
	if d == nil || d.compiled == nil {
		return grind.Input{}, fmt.Errorf("script: nil driver")
	}
	if err := d.compiled.Set("__engine", d.engine(v)); err != nil {
		return grind.Input{}, err
	}
	if err := d.compiled.Set("__memory", d.memory); err != nil {
		return grind.Input{}, err
	}
	if err := d.compiled.Run(); err != nil {
		return grind.Input{}, fmt.Errorf("script: run %s: %w", d.name, err)
	}

	out, ok := d.compiled.Get("__out").Value().(map[string]interface{})
	if !ok {
		return grind.Input{}, fmt.Errorf("script: %s: decide must return a map", d.name)
	}
	return grind.Input{
		Engage:  asBool(out["engage"]),
		Exit:    asBool(out["exit"]),
		Lateral: asFloat(out["lateral"]),
	}, nil
}

func (d *Driver) engine(v View) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["tick"] = &tengo.UserFunction{Name: "tick", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(v.Tick)}, nil
	}}
	values["time"] = &tengo.UserFunction{Name: "time", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: v.Time}, nil
	}}
	values["position"] = &tengo.UserFunction{Name: "position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return vecObject(v.Position), nil
	}}
	values["velocity"] = &tengo.UserFunction{Name: "velocity", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return vecObject(v.Velocity), nil
	}}
	values["speed"] = &tengo.UserFunction{Name: "speed", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: v.Velocity.Len()}, nil
	}}
	values["state"] = &tengo.UserFunction{Name: "state", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.String{Value: v.State}, nil
	}}
	values["airborne"] = &tengo.UserFunction{Name: "airborne", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(v.Airborne), nil
	}}
	values["has_candidate"] = &tengo.UserFunction{Name: "has_candidate", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(v.HasCandidate), nil
	}}
	values["candidate_score"] = &tengo.UserFunction{Name: "candidate_score", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: v.CandidateScore}, nil
	}}
	values["near_climbable"] = &tengo.UserFunction{Name: "near_climbable", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(v.NearClimbable), nil
	}}
	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		d.logger.Info(strings.Join(parts, " "), zap.Int("tick", v.Tick))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func vecObject(v mgl64.Vec3) tengo.Object {
	return &tengo.Array{Value: []tengo.Object{
		&tengo.Float{Value: v.X()},
		&tengo.Float{Value: v.Y()},
		&tengo.Float{Value: v.Z()},
	}}
}

func boolObject(b bool) tengo.Object {
	if b {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}
