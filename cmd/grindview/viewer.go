package main

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/grindkit/feature"
	"github.com/milk9111/grindkit/grind"
	"github.com/milk9111/grindkit/script"
	"github.com/milk9111/grindkit/sim"
	"golang.org/x/image/colornames"
)

const (
	screenWidth  = 1280
	screenHeight = 720
)

type viewer struct {
	world  *sim.World
	cam    camera
	paused bool
	proxy  bool

	engage bool
	exit   bool
}

func newViewer(w *sim.World, zoom float64, manual bool) *viewer {
	v := &viewer{
		world: w,
		cam:   camera{zoom: zoom, width: screenWidth, height: screenHeight},
		proxy: true,
	}
	if manual && len(w.Riders) > 0 {
		w.Riders[0].Input = v.keyboardInput
	}
	return v
}

func (v *viewer) keyboardInput(script.View) grind.Input {
	in := grind.Input{Engage: v.engage, Exit: v.exit}
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		in.Lateral -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		in.Lateral += 1
	}
	return in
}

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		v.paused = !v.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		v.proxy = !v.proxy
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		v.cam.zoom *= 1.25
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		v.cam.zoom /= 1.25
	}
	v.engage = inpututil.IsKeyJustPressed(ebiten.KeySpace)
	v.exit = inpututil.IsKeyJustPressed(ebiten.KeyX)

	if !v.paused {
		v.world.Step(1.0 / float64(ebiten.TPS()))
	}
	if len(v.world.Riders) > 0 {
		v.cam.follow(v.world.Riders[0].Body.Position())
	}
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Black)

	if v.proxy {
		cp.DrawSpace(v.world.Backend.Space(), &proxyDrawer{screen: screen, cam: v.cam})
	}
	for _, id := range v.world.Registry.Sources() {
		data, ok := v.world.Registry.Lookup(id)
		if !ok {
			continue
		}
		for _, s := range data.Surfaces {
			v.drawSurface(screen, s)
		}
		for _, e := range data.Edges {
			v.drawEdge(screen, e, colornames.Orange)
		}
	}
	for _, r := range v.world.Riders {
		v.drawRider(screen, r)
	}
	ebitenutil.DebugPrintAt(screen, v.status(), 10, 10)
}

func (v *viewer) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return screenWidth, screenHeight
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func (v *viewer) drawEdge(screen *ebiten.Image, e feature.GrindEdge, clr color.Color) {
	x0, y0 := v.cam.toScreen(e.Start)
	x1, y1 := v.cam.toScreen(e.End)
	vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), 2, clr, true)
}

func (v *viewer) drawSurface(screen *ebiten.Image, s feature.ClimbSurface) {
	x0, y0 := v.cam.toScreen(s.Bounds.Min)
	x1, y1 := v.cam.toScreen(s.Bounds.Max)
	vector.StrokeRect(screen, float32(min(x0, x1)), float32(min(y0, y1)), float32(abs(x1-x0)), float32(abs(y1-y0)), 1, colornames.Deepskyblue, false)

	cx, cy := v.cam.toScreen(s.Center)
	nx, ny := v.cam.toScreen(s.Center.Add(s.Normal.Mul(2)))
	vector.StrokeLine(screen, float32(cx), float32(cy), float32(nx), float32(ny), 1, colornames.Lightskyblue, true)
}

func (v *viewer) drawRider(screen *ebiten.Image, r *sim.Rider) {
	pos := r.Body.Position()
	x, y := v.cam.toScreen(pos)
	clr := colornames.Crimson
	if s, ok := r.Controller.Engaged(); ok {
		clr = colornames.Lime
		v.drawEdge(screen, s.Edge, colornames.Yellow)
	} else if e, _, ok := r.Controller.Candidate(); ok {
		v.drawEdge(screen, e, colornames.Gold)
	}
	vector.DrawFilledCircle(screen, float32(x), float32(y), 5, clr, true)

	vel, err := r.Body.Velocity()
	if err != nil {
		return
	}
	vx, vy := v.cam.toScreen(pos.Add(vel.Mul(0.25)))
	vector.StrokeLine(screen, float32(x), float32(y), float32(vx), float32(vy), 1, colornames.Lightgrey, true)
}

func (v *viewer) status() string {
	var b strings.Builder
	st := v.world.Registry.Stats()
	fmt.Fprintf(&b, "t=%.2fs  FPS: %.1f  sources=%d edges=%d surfaces=%d colliders=%d\n",
		v.world.Time(), ebiten.ActualFPS(), st.Sources, st.Edges, st.Surfaces, st.Colliders)
	for _, r := range v.world.Riders {
		pos := r.Body.Position()
		fmt.Fprintf(&b, "%s: %s  pos=(%.1f, %.1f, %.1f)  engaged=%d",
			r.Name, r.Controller.State().Name(), pos.X(), pos.Y(), pos.Z(), r.Stats.Engagements)
		if s, ok := r.Controller.Engaged(); ok {
			fmt.Fprintf(&b, "  speed=%.1f", s.Speed)
		}
		b.WriteString("\n")
	}
	b.WriteString("space: engage  x: exit  a/d: lean  p: pause  c: proxies  +/-: zoom")
	return b.String()
}

// camera maps the world XY plane to the screen, Y up.
type camera struct {
	center mgl64.Vec3
	zoom   float64
	width  float64
	height float64
}

func (c *camera) follow(p mgl64.Vec3) {
	c.center = p
}

func (c camera) toScreen(p mgl64.Vec3) (float64, float64) {
	return (p.X()-c.center.X())*c.zoom + c.width/2, c.height/2 - (p.Y()-c.center.Y())*c.zoom
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
