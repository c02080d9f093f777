package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/milk9111/grindkit/extract"
	"github.com/milk9111/grindkit/grind"
	"github.com/milk9111/grindkit/proxy"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("config: invalid")

//go:embed default.yaml
var defaultYAML []byte

type Extraction struct {
	MinGrindEdgeLength   float64 `yaml:"min_grind_edge_length"`
	MinClimbSurfaceArea  float64 `yaml:"min_climb_surface_area"`
	MinClimbSurfaceAngle float64 `yaml:"min_climb_surface_angle"`
	MaxClimbSurfaceAngle float64 `yaml:"max_climb_surface_angle"`
	MergeDistance        float64 `yaml:"merge_distance"`
	MergeNormalDot       float64 `yaml:"merge_normal_dot"`
}

type Proxy struct {
	Enabled          bool    `yaml:"enable_proxy_colliders"`
	EdgeThickness    float64 `yaml:"grind_edge_thickness"`
	SurfaceThickness float64 `yaml:"surface_proxy_thickness"`
	GrindFriction    float64 `yaml:"grind_friction"`
	ClimbFriction    float64 `yaml:"climb_friction"`
}

type Grind struct {
	DetectionInterval      float64 `yaml:"detection_interval_seconds"`
	DetectionRadius        float64 `yaml:"detection_radius"`
	MinEngageSpeed         float64 `yaml:"min_engage_speed"`
	BaseGrindSpeed         float64 `yaml:"base_grind_speed"`
	MaxGrindSpeed          float64 `yaml:"max_grind_speed"`
	GrindAcceleration      float64 `yaml:"grind_acceleration"`
	MomentumTransferFactor float64 `yaml:"momentum_transfer_factor"`
	GravityReduction       float64 `yaml:"gravity_reduction"`
	EdgeSnapDistance       float64 `yaml:"edge_snap_distance"`
	EdgeOffset             float64 `yaml:"edge_offset"`
	ExitForce              float64 `yaml:"exit_force"`
	SteerStrength          float64 `yaml:"steer_strength"`
	MaxSteerAngle          float64 `yaml:"max_steer_angle"`
	SpeedCurveStart        float64 `yaml:"speed_curve_start"`
	SpeedCurveSeconds      float64 `yaml:"speed_curve_seconds"`
}

type Loop struct {
	FixedRate     float64 `yaml:"fixed_rate_hz"`
	MaxFixedSteps int     `yaml:"max_fixed_steps"`
}

// FixedStep is the fixed update interval in seconds.
func (l Loop) FixedStep() float64 {
	if l.FixedRate <= 0 {
		return 0
	}
	return 1 / l.FixedRate
}

type Log struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

// Config is the full tuning surface.
type Config struct {
	Extraction Extraction `yaml:"extraction"`
	Proxy      Proxy      `yaml:"proxy"`
	Grind      Grind      `yaml:"grind"`
	Loop       Loop       `yaml:"loop"`
	Log        Log        `yaml:"log"`
}

// Default returns the embedded defaults.
func Default() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		panic(fmt.Sprintf("config: embedded default.yaml: %v", err))
	}
	return cfg
}

// Load reads path over the defaults. An empty path yields the defaults.
// Keys missing from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	return Parse(data, cfg)
}

// Parse unmarshals data over base and validates the result.
func Parse(data []byte, base Config) (Config, error) {
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	check := func(name string, ok bool) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidConfig, name))
		}
	}
	positive := func(name string, v float64) {
		check(name+" must be > 0", v > 0 && !math.IsInf(v, 0))
	}
	nonNegative := func(name string, v float64) {
		check(name+" must be >= 0", v >= 0 && !math.IsInf(v, 0))
	}
	unit := func(name string, v float64) {
		check(name+" must be in [0, 1]", v >= 0 && v <= 1)
	}

	e := c.Extraction
	nonNegative("min_grind_edge_length", e.MinGrindEdgeLength)
	nonNegative("min_climb_surface_area", e.MinClimbSurfaceArea)
	check("climb surface angles must satisfy 0 <= min <= max <= 180",
		e.MinClimbSurfaceAngle >= 0 && e.MinClimbSurfaceAngle <= e.MaxClimbSurfaceAngle && e.MaxClimbSurfaceAngle <= 180)
	nonNegative("merge_distance", e.MergeDistance)
	check("merge_normal_dot must be in [-1, 1]", e.MergeNormalDot >= -1 && e.MergeNormalDot <= 1)

	p := c.Proxy
	positive("grind_edge_thickness", p.EdgeThickness)
	positive("surface_proxy_thickness", p.SurfaceThickness)
	nonNegative("grind_friction", p.GrindFriction)
	nonNegative("climb_friction", p.ClimbFriction)

	g := c.Grind
	positive("detection_interval_seconds", g.DetectionInterval)
	positive("detection_radius", g.DetectionRadius)
	nonNegative("min_engage_speed", g.MinEngageSpeed)
	positive("base_grind_speed", g.BaseGrindSpeed)
	check("max_grind_speed must be >= base_grind_speed", g.MaxGrindSpeed >= g.BaseGrindSpeed)
	nonNegative("grind_acceleration", g.GrindAcceleration)
	nonNegative("momentum_transfer_factor", g.MomentumTransferFactor)
	unit("gravity_reduction", g.GravityReduction)
	nonNegative("edge_snap_distance", g.EdgeSnapDistance)
	nonNegative("edge_offset", g.EdgeOffset)
	nonNegative("exit_force", g.ExitForce)
	nonNegative("steer_strength", g.SteerStrength)
	check("max_steer_angle must be in [0, 90)", g.MaxSteerAngle >= 0 && g.MaxSteerAngle < 90)
	unit("speed_curve_start", g.SpeedCurveStart)
	nonNegative("speed_curve_seconds", g.SpeedCurveSeconds)

	positive("fixed_rate_hz", c.Loop.FixedRate)
	check("max_fixed_steps must be >= 1", c.Loop.MaxFixedSteps >= 1)

	return errors.Join(errs...)
}

func (c Config) ExtractSettings() extract.Settings {
	e := c.Extraction
	return extract.Settings{
		MinGrindEdgeLength:   e.MinGrindEdgeLength,
		MinClimbSurfaceArea:  e.MinClimbSurfaceArea,
		MinClimbSurfaceAngle: e.MinClimbSurfaceAngle,
		MaxClimbSurfaceAngle: e.MaxClimbSurfaceAngle,
		MergeDistance:        e.MergeDistance,
		MergeNormalDot:       e.MergeNormalDot,
	}
}

func (c Config) ProxySettings() proxy.Settings {
	p := c.Proxy
	return proxy.Settings{
		Enabled:            p.Enabled,
		GrindEdgeThickness: p.EdgeThickness,
		SurfaceThickness:   p.SurfaceThickness,
		GrindFriction:      p.GrindFriction,
		ClimbFriction:      p.ClimbFriction,
	}
}

func (c Config) GrindSettings() grind.Settings {
	g := c.Grind
	s := grind.DefaultSettings()
	s.DetectionInterval = g.DetectionInterval
	s.DetectionRadius = g.DetectionRadius
	s.MinEngageSpeed = g.MinEngageSpeed
	s.BaseGrindSpeed = g.BaseGrindSpeed
	s.MaxGrindSpeed = g.MaxGrindSpeed
	s.GrindAcceleration = g.GrindAcceleration
	s.MomentumTransferFactor = g.MomentumTransferFactor
	s.GravityReduction = g.GravityReduction
	s.EdgeSnapDistance = g.EdgeSnapDistance
	s.EdgeOffset = g.EdgeOffset
	s.ExitForce = g.ExitForce
	s.SteerStrength = g.SteerStrength
	s.MaxSteerAngle = g.MaxSteerAngle
	s.SpeedCurveStart = g.SpeedCurveStart
	s.SpeedCurveDuration = g.SpeedCurveSeconds
	return s
}
