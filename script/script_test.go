package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/grindkit/grind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRider(t *testing.T) {
	d, err := LoadDriver("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultScript, d.Name())

	in, err := d.Decide(View{State: "idle", Airborne: true, HasCandidate: true})
	require.NoError(t, err)
	assert.Equal(t, grind.Input{Engage: true}, in)

	in, err = d.Decide(View{State: "idle", Airborne: false, HasCandidate: true})
	require.NoError(t, err)
	assert.False(t, in.Engage)

	in, err = d.Decide(View{State: "engaged", Time: 2, Tick: 10})
	require.NoError(t, err)
	assert.False(t, in.Exit)
	assert.InDelta(t, 0.25, in.Lateral, 1e-12)

	in, err = d.Decide(View{State: "engaged", Time: 3.6, Tick: 70})
	require.NoError(t, err)
	assert.True(t, in.Exit, "rides for 1.5 seconds")
	assert.InDelta(t, -0.25, in.Lateral, 1e-12)
}

func TestDriverReadsView(t *testing.T) {
	src := []byte(`
decide := func(engine, memory) {
	p := engine.position()
	v := engine.velocity()
	memory.calls = is_undefined(memory.calls) ? 1 : memory.calls + 1
	return {
		engage: p[1] > 1.0 && engine.speed() > 4.0,
		exit: memory.calls >= 3,
		lateral: v[0],
	}
}
`)
	d, err := NewDriver("inline", src, nil)
	require.NoError(t, err)

	view := View{Position: mgl64.Vec3{0, 2, 0}, Velocity: mgl64.Vec3{-0.5, 0, 6}}
	in, err := d.Decide(view)
	require.NoError(t, err)
	assert.True(t, in.Engage)
	assert.False(t, in.Exit)
	assert.InDelta(t, -0.5, in.Lateral, 1e-12)

	_, _ = d.Decide(view)
	in, err = d.Decide(view)
	require.NoError(t, err)
	assert.True(t, in.Exit, "memory persists across frames")

	d.Reset()
	in, err = d.Decide(view)
	require.NoError(t, err)
	assert.False(t, in.Exit)
}

func TestDriverIntLateral(t *testing.T) {
	d, err := NewDriver("int", []byte(`decide := func(e, m) { return {lateral: 1} }`), nil)
	require.NoError(t, err)
	in, err := d.Decide(View{})
	require.NoError(t, err)
	assert.Equal(t, 1.0, in.Lateral)
}

func TestDriverErrors(t *testing.T) {
	_, err := NewDriver("no_decide", []byte(`x := 1`), nil)
	assert.ErrorContains(t, err, "script: compile no_decide")

	_, err = NewDriver("syntax", []byte(`decide := func(e, m) {`), nil)
	assert.Error(t, err)

	d, err := NewDriver("not_map", []byte(`decide := func(e, m) { return 3 }`), nil)
	require.NoError(t, err)
	_, err = d.Decide(View{})
	assert.ErrorContains(t, err, "must return a map")

	d, err = NewDriver("runtime", []byte(`decide := func(e, m) { return e.missing() }`), nil)
	require.NoError(t, err)
	_, err = d.Decide(View{})
	assert.ErrorContains(t, err, "script: run runtime")

	var nilDriver *Driver
	_, err = nilDriver.Decide(View{})
	assert.Error(t, err)

	_, err = LoadDriver(filepath.Join(t.TempDir(), "absent.tengo"), nil)
	assert.ErrorContains(t, err, "script: load")
}

func TestLoadPrefersDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rider.tengo")
	require.NoError(t, os.WriteFile(path, []byte(`decide := func(e, m) { return {exit: true} }`), 0o644))

	d, err := LoadDriver(path, nil)
	require.NoError(t, err)
	in, err := d.Decide(View{State: "engaged"})
	require.NoError(t, err)
	assert.True(t, in.Exit)
}
