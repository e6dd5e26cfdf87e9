// Package viewport drives a stage: it owns the framebuffer and rasterizer,
// runs the frame loop and presents each frame on a surface.
package viewport

import (
	"context"
	"fmt"
	"time"

	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/render"
	"github.com/taigrr/diorama/pkg/scene"
	"github.com/taigrr/diorama/pkg/stage"
)

// State is the frame loop's lifecycle state.
type State int

const (
	Idle    State = iota // No frame rendered yet
	Running              // At least one frame rendered
)

// String returns the state name.
func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// DisplayMode selects whether the scene is re-rasterized every frame.
type DisplayMode int

const (
	DisplayInteractive DisplayMode = iota // Rasterize every frame
	DisplayStatic                         // Re-present the last rendered frame
)

// Surface shows finished frames. The overlay is already styled and empty
// when nothing should be shown; surfaces that cannot show text ignore it.
type Surface interface {
	Present(fb *render.Framebuffer, overlay Overlay) error
}

// inputBuffer is how many inputs may queue between frames.
const inputBuffer = 64

// Orbit target marker, in world units.
const targetSize = 0.3

var targetColor = render.RGB(255, 220, 0)

// Harness is the frame loop. Everything except Send must be called from the
// goroutine that runs the loop.
type Harness struct {
	Display DisplayMode
	Mode    scene.RenderMode
	ShowHUD bool

	stage   *stage.Stage
	surface Surface
	fb      *render.Framebuffer
	raster  *render.Rasterizer
	hud     *HUD

	state    State
	rendered bool // fb holds a frame for the current size
	quit     bool
	inputs   chan Input

	aiming       bool
	pendingLight math3d.Vec3
}

// New creates a harness rendering st at width × height pixels onto surface.
func New(st *stage.Stage, surface Surface, width, height int) *Harness {
	fb := render.NewFramebuffer(width, height)
	h := &Harness{
		stage:   st,
		surface: surface,
		fb:      fb,
		raster:  render.NewRasterizer(st.Camera, fb),
		hud:     NewHUD(st.Preset.Name),
		inputs:  make(chan Input, inputBuffer),
	}
	h.Resize(width, height)
	return h
}

// State returns the loop state.
func (h *Harness) State() State {
	return h.state
}

// Framebuffer returns the buffer frames are rendered into.
func (h *Harness) Framebuffer() *render.Framebuffer {
	return h.fb
}

// Stats returns the rasterizer counters of the last rendered frame.
func (h *Harness) Stats() render.FrameStats {
	return h.raster.Stats
}

// Resize sets the framebuffer to width × height and the camera aspect ratio
// to width/height. It takes effect immediately, not at the next tick.
func (h *Harness) Resize(width, height int) {
	h.fb.Resize(width, height)
	h.raster.Resize()
	if width > 0 && height > 0 {
		h.stage.Camera.SetAspectRatio(float64(width) / float64(height))
	}
	h.rendered = false
}

// Send queues an input for the frame loop. It is safe to call from any
// goroutine and reports false when the queue is full and the input was
// dropped.
func (h *Harness) Send(in Input) bool {
	select {
	case h.inputs <- in:
		return true
	default:
		return false
	}
}

// Frame runs one iteration of the loop: apply queued input, attach loaded
// assets, advance the orbit damping, update the camera, then rasterize and
// present.
func (h *Harness) Frame() error {
	h.drainInputs()

	if n := h.stage.Mounter.Drain(h.stage.Root); n > 0 {
		h.stage.Logger.Debug("assets attached", "count", n)
		h.rendered = false
	}

	h.stage.Controls.Update()
	h.stage.Controls.Apply(h.stage.Camera)

	if h.Display == DisplayInteractive || !h.rendered {
		h.render()
	}

	h.hud.Tick()
	var overlay Overlay
	switch {
	case h.aiming:
		overlay = h.hud.AimOverlay(h.fb.Width)
	case h.ShowHUD:
		overlay = h.hud.Overlay(h.fb.Width, h.info())
	}
	if err := h.surface.Present(h.fb, overlay); err != nil {
		return fmt.Errorf("present frame: %w", err)
	}
	h.state = Running
	return nil
}

// Light returns the light the next frame is drawn with.
func (h *Harness) Light() render.Light {
	light := h.stage.Light
	if h.aiming {
		light.Direction = h.pendingLight
	}
	return light
}

func (h *Harness) render() {
	h.raster.BeginFrame(h.stage.Background)
	scene.Draw(h.raster, h.stage.Root, h.Light(), h.Mode)
	if h.ShowHUD {
		h.raster.DrawPoint(h.stage.Controls.Target, targetSize, targetColor)
	}
	h.rendered = true
}

// fitView frames every mesh in the scene without changing the viewing angle.
func (h *Harness) fitView() {
	box, ok := h.stage.Root.WorldBounds()
	if !ok {
		return
	}
	h.stage.Controls.Fit(box.Center(), box.Size().Len()/2, h.stage.Camera.FOV)
	h.rendered = false
}

func (h *Harness) info() Info {
	nodes, _, tris := h.stage.Root.Counts()
	return Info{
		Nodes:     nodes,
		Triangles: tris,
		Drawn:     h.raster.Stats.MeshesDrawn,
		Pending:   h.stage.Mounter.Pending(),
		Wireframe: h.Mode == scene.RenderWireframe,
		Static:    h.Display == DisplayStatic,
		Aiming:    h.aiming,
	}
}

// Run renders frames at the stage's FPS until ctx is cancelled or a Quit
// input arrives. Input is applied as soon as it arrives.
func (h *Harness) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(max(h.stage.FPS(), 1)))
	defer ticker.Stop()

	if err := h.Frame(); err != nil {
		return err
	}
	for !h.quit {
		select {
		case <-ctx.Done():
			return nil
		case in := <-h.inputs:
			in.apply(h)
		case <-ticker.C:
			if err := h.Frame(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *Harness) drainInputs() {
	for {
		select {
		case in := <-h.inputs:
			in.apply(h)
		default:
			return
		}
	}
}
