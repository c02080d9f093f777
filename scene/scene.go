package scene

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/grindkit/mesh"
	"github.com/milk9111/grindkit/registry"
	"gopkg.in/yaml.v3"
)

//go:embed scenes/*.yaml
var ScenesFS embed.FS

// DefaultScene is the embedded scene used when none is given.
const DefaultScene = "park.yaml"

type Vec3Spec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (v Vec3Spec) Vec() mgl64.Vec3 { return mgl64.Vec3{v.X, v.Y, v.Z} }

// TransformSpec places a source. Angles are degrees, applied roll, pitch,
// then yaw. Zero scale components mean 1.
type TransformSpec struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Z      float64 `yaml:"z"`
	Yaw    float64 `yaml:"yaw"`
	Pitch  float64 `yaml:"pitch"`
	Roll   float64 `yaml:"roll"`
	ScaleX float64 `yaml:"scale_x"`
	ScaleY float64 `yaml:"scale_y"`
	ScaleZ float64 `yaml:"scale_z"`
}

func (t TransformSpec) Transform() mesh.Transform {
	yaw := mgl64.QuatRotate(mgl64.DegToRad(t.Yaw), mgl64.Vec3{0, 1, 0})
	pitch := mgl64.QuatRotate(mgl64.DegToRad(t.Pitch), mgl64.Vec3{1, 0, 0})
	roll := mgl64.QuatRotate(mgl64.DegToRad(t.Roll), mgl64.Vec3{0, 0, 1})
	return mesh.Transform{
		Position: mgl64.Vec3{t.X, t.Y, t.Z},
		Rotation: yaw.Mul(pitch).Mul(roll),
		Scale:    mgl64.Vec3{orOne(t.ScaleX), orOne(t.ScaleY), orOne(t.ScaleZ)},
	}
}

type TerrainSpec struct {
	From   Vec3Spec `yaml:"from"`
	To     Vec3Spec `yaml:"to"`
	Radius float64  `yaml:"radius"`
}

type SourceSpec struct {
	Name        string         `yaml:"name"`
	Mesh        string         `yaml:"mesh"`
	Params      map[string]any `yaml:"params"`
	Transform   TransformSpec  `yaml:"transform"`
	Affordances []string       `yaml:"affordances"`
}

type AgentSpec struct {
	Name     string   `yaml:"name"`
	Position Vec3Spec `yaml:"position"`
	Velocity Vec3Spec `yaml:"velocity"`
	Script   string   `yaml:"script"`
}

// Scene lists everything a simulation starts with.
type Scene struct {
	Name    string        `yaml:"name"`
	Terrain []TerrainSpec `yaml:"terrain"`
	Sources []SourceSpec  `yaml:"sources"`
	Agents  []AgentSpec   `yaml:"agents"`
}

// Load reads a scene from disk, falling back to the embedded scenes.
func Load(name string) (Scene, error) {
	if name == "" {
		name = DefaultScene
	}
	data, err := os.ReadFile(name)
	if err != nil {
		data, err = ScenesFS.ReadFile("scenes/" + filepath.Base(filepath.ToSlash(name)))
		if err != nil {
			return Scene{}, fmt.Errorf("scene: load %s: %w", name, err)
		}
	}
	return Parse(data)
}

func Parse(data []byte) (Scene, error) {
	var sc Scene
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scene{}, fmt.Errorf("scene: unmarshal: %w", err)
	}
	return sc, nil
}

// BuildSources turns every source spec into a registry source. The first
// bad spec aborts the build.
func (sc Scene) BuildSources() ([]*registry.StaticSource, error) {
	out := make([]*registry.StaticSource, 0, len(sc.Sources))
	for i, spec := range sc.Sources {
		src, err := spec.Build()
		if err != nil {
			return nil, fmt.Errorf("scene: source %d (%s): %w", i, spec.Name, err)
		}
		out = append(out, src)
	}
	return out, nil
}

func (s SourceSpec) Build() (*registry.StaticSource, error) {
	m, err := BuildMesh(s.Mesh, s.Params)
	if err != nil {
		return nil, err
	}
	affords, err := ParseAffordances(s.Affordances)
	if err != nil {
		return nil, err
	}
	return registry.NewStaticSource(s.Name, m, s.Transform.Transform(), affords), nil
}

func ParseAffordances(names []string) (registry.Affordance, error) {
	var a registry.Affordance
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "grindable":
			a |= registry.Grindable
		case "climbable":
			a |= registry.Climbable
		default:
			return 0, fmt.Errorf("unknown affordance %q", n)
		}
	}
	return a, nil
}

func orOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
