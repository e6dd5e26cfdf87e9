package viewport

import (
	"math"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/scene"
)

// Input is one user action, applied on the frame loop.
type Input interface {
	apply(h *Harness)
}

// Rotate adds orbit velocity in radians per frame.
type Rotate struct{ Azimuth, Polar float64 }

// Zoom adds dolly velocity; positive moves closer.
type Zoom struct{ Delta float64 }

// Pan moves the orbit target in the view plane.
type Pan struct{ Right, Up float64 }

// SetSize resizes the framebuffer, in pixels.
type SetSize struct{ Width, Height int }

// Command is an input without parameters.
type Command int

const (
	Reset Command = iota
	ToggleWireframe
	ToggleStatic
	ToggleHUD
	AimLight
	CancelLight
	FitView
	Quit
)

// LightDirection previews a light direction while aiming. With Commit set
// it becomes the stage light and aiming ends.
type LightDirection struct {
	Direction math3d.Vec3
	Commit    bool
}

func (l LightDirection) apply(h *Harness) {
	if l.Commit {
		h.stage.Light.Direction = l.Direction
		h.aiming = false
	} else {
		h.pendingLight = l.Direction
	}
	h.rendered = false
}

func (r Rotate) apply(h *Harness)  { h.stage.Controls.Rotate(r.Azimuth, r.Polar) }
func (z Zoom) apply(h *Harness)    { h.stage.Controls.Zoom(z.Delta) }
func (p Pan) apply(h *Harness)     { h.stage.Controls.Pan(p.Right, p.Up) }
func (s SetSize) apply(h *Harness) { h.Resize(s.Width, s.Height) }

func (c Command) apply(h *Harness) {
	switch c {
	case Reset:
		h.stage.Controls.Reset()
	case ToggleWireframe:
		if h.Mode == scene.RenderWireframe {
			h.Mode = scene.RenderSolid
		} else {
			h.Mode = scene.RenderWireframe
		}
		h.rendered = false
	case ToggleStatic:
		if h.Display == DisplayStatic {
			h.Display = DisplayInteractive
		} else {
			h.Display = DisplayStatic
		}
	case ToggleHUD:
		h.ShowHUD = !h.ShowHUD
		h.rendered = false
	case AimLight:
		h.aiming = true
		h.pendingLight = h.stage.Light.Direction
		h.rendered = false
	case CancelLight:
		h.aiming = false
		h.rendered = false
	case FitView:
		h.fitView()
	case Quit:
		h.quit = true
	}
}

const (
	keyRotate  = 0.02  // radians per frame per key press
	dragRotate = 0.004 // radians per frame per cell dragged
	keyZoom    = 0.15
	wheelZoom  = 0.25
	keyPan     = 0.004
)

// Translator turns terminal events into inputs. It remembers the mouse
// drag and the terminal size between events.
type Translator struct {
	dragging      bool
	lastX, lastY  int
	width, height int
	aiming        bool
}

// Aiming reports whether mouse motion currently aims the light.
func (t *Translator) Aiming() bool {
	return t.aiming
}

// Translate maps one terminal event to an input, or nil if the event is
// not bound.
func (t *Translator) Translate(ev uv.Event) Input {
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		t.width, t.height = ev.Width, ev.Height
		// Each cell shows two pixels stacked vertically.
		return SetSize{Width: ev.Width, Height: ev.Height * 2}

	case uv.KeyPressEvent:
		if t.aiming && ev.MatchString("escape") {
			t.aiming = false
			return CancelLight
		}
		in := translateKey(ev)
		if in == AimLight {
			t.aiming = true
		}
		return in

	case uv.MouseClickEvent:
		if t.aiming {
			t.aiming = false
			return LightDirection{Direction: t.lightAt(ev.X, ev.Y), Commit: true}
		}
		t.dragging = true
		t.lastX, t.lastY = ev.X, ev.Y

	case uv.MouseReleaseEvent:
		t.dragging = false

	case uv.MouseMotionEvent:
		if t.aiming {
			return LightDirection{Direction: t.lightAt(ev.X, ev.Y)}
		}
		if !t.dragging {
			return nil
		}
		dx, dy := ev.X-t.lastX, ev.Y-t.lastY
		t.lastX, t.lastY = ev.X, ev.Y
		if dx == 0 && dy == 0 {
			return nil
		}
		return Rotate{Azimuth: -float64(dx) * dragRotate, Polar: -float64(dy) * dragRotate}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			return Zoom{Delta: wheelZoom}
		case uv.MouseWheelDown:
			return Zoom{Delta: -wheelZoom}
		}
	}
	return nil
}

// lightAt maps a cell to a direction on the upper hemisphere: the screen
// centre is straight up, the edges are the horizon.
func (t *Translator) lightAt(x, y int) math3d.Vec3 {
	if t.width <= 0 || t.height <= 0 {
		return math3d.V3(0, 1, 0)
	}
	nx := float64(x)/float64(t.width)*2 - 1
	nz := float64(y)/float64(t.height)*2 - 1
	if d := math.Hypot(nx, nz); d > 1 {
		nx /= d
		nz /= d
	}
	ny := math.Sqrt(max(0, 1-nx*nx-nz*nz))
	return math3d.V3(nx, ny, nz).Normalize()
}

func translateKey(ev uv.KeyPressEvent) Input {
	switch {
	case ev.MatchString("escape", "ctrl+c"):
		return Quit
	case ev.MatchString("shift+left"):
		return Pan{Right: -keyPan}
	case ev.MatchString("shift+right"):
		return Pan{Right: keyPan}
	case ev.MatchString("shift+up"):
		return Pan{Up: keyPan}
	case ev.MatchString("shift+down"):
		return Pan{Up: -keyPan}
	case ev.MatchString("a", "left"):
		return Rotate{Azimuth: -keyRotate}
	case ev.MatchString("d", "right"):
		return Rotate{Azimuth: keyRotate}
	case ev.MatchString("w", "up"):
		return Rotate{Polar: -keyRotate}
	case ev.MatchString("s", "down"):
		return Rotate{Polar: keyRotate}
	case ev.Text == "+" || ev.MatchString("="): // "+" is the modifier separator
		return Zoom{Delta: keyZoom}
	case ev.MatchString("-", "_"):
		return Zoom{Delta: -keyZoom}
	case ev.MatchString("r"):
		return Reset
	case ev.MatchString("x"):
		return ToggleWireframe
	case ev.MatchString("l"):
		return AimLight
	case ev.MatchString("f"):
		return FitView
	case ev.MatchString("i"):
		return ToggleStatic
	case ev.MatchString("?"):
		return ToggleHUD
	}
	return nil
}
