package viewport

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
)

// Overlay is the text drawn over the first and last terminal rows.
type Overlay struct {
	Top, Bottom string
}

// Empty reports whether there is nothing to draw.
func (o Overlay) Empty() bool {
	return o.Top == "" && o.Bottom == ""
}

// Info is the per-frame data the HUD shows.
type Info struct {
	Nodes     int
	Triangles int
	Drawn     int // Meshes that survived culling
	Pending   int // Assets still loading
	Wireframe bool
	Static    bool
	Aiming    bool
}

var (
	hudBase   = lipgloss.NewStyle().Background(lipgloss.Color("#000000")).Foreground(lipgloss.Color("#f0f0f0"))
	hudFPS    = hudBase.Foreground(lipgloss.Color("#5fff87"))
	hudTitle  = hudBase.Bold(true)
	hudCount  = hudBase.Foreground(lipgloss.Color("#5fd7ff")).Bold(true)
	hudLoad   = hudBase.Foreground(lipgloss.Color("#ffd75f"))
	hudHint   = hudBase.Foreground(lipgloss.Color("#8a8a8a"))
	hudAiming = hudBase.Foreground(lipgloss.Color("#ffd75f")).Bold(true)
)

// HUD measures the frame rate and formats the overlay.
type HUD struct {
	title  string
	fps    float64
	frames int
	since  time.Time
	now    func() time.Time
}

// NewHUD creates a HUD titled with the preset name.
func NewHUD(title string) *HUD {
	return &HUD{title: title, since: time.Now(), now: time.Now}
}

// Tick counts a frame. The rate is recomputed every half second.
func (h *HUD) Tick() {
	h.frames++
	elapsed := h.now().Sub(h.since)
	if elapsed >= 500*time.Millisecond {
		h.fps = float64(h.frames) / elapsed.Seconds()
		h.frames = 0
		h.since = h.now()
	}
}

// FPS returns the last measured frame rate.
func (h *HUD) FPS() float64 {
	return h.fps
}

// Overlay lays out the HUD for a screen width columns wide.
func (h *HUD) Overlay(width int, info Info) Overlay {
	fps := hudFPS.Render(fmt.Sprintf(" %.0f FPS ", h.fps))
	title := hudTitle.Render(" " + h.title + " ")
	counts := hudCount.Render(fmt.Sprintf(" %d nodes %d tris %d drawn ", info.Nodes, info.Triangles, info.Drawn))

	modes := hudBase.Render(fmt.Sprintf(" %s X-Ray (wireframe)  %s Static ", check(info.Wireframe), check(info.Static)))
	if info.Pending > 0 {
		modes += hudLoad.Render(fmt.Sprintf(" loading %d ", info.Pending))
	}
	hint := hudHint.Render(" L: aim light  R: reset ")

	return Overlay{
		Top:    spread(width, fps, title, counts),
		Bottom: spread(width, modes, "", hint),
	}
}

// AimOverlay is shown while the light is being aimed, whether or not the
// HUD is on.
func (h *HUD) AimOverlay(width int) Overlay {
	msg := hudAiming.Render(" ◉ LIGHT MODE - Move mouse to position, click to set, Esc to cancel ")
	pad := max((width-lipgloss.Width(msg))/2, 0)
	return Overlay{Bottom: strings.Repeat(" ", pad) + msg}
}

func check(on bool) string {
	if on {
		return "[✓]"
	}
	return "[ ]"
}

// spread places left at the start, middle centred and right at the end of
// a line width cells wide. Parts that do not fit are dropped from the
// middle out.
func spread(width int, left, middle, right string) string {
	lw, mw, rw := lipgloss.Width(left), lipgloss.Width(middle), lipgloss.Width(right)
	if lw+mw+rw > width {
		middle, mw = "", 0
	}
	if lw+rw > width {
		return left
	}
	if mw == 0 {
		return left + strings.Repeat(" ", width-lw-rw) + right
	}
	mid := max((width-mw)/2, lw)
	gap := width - mid - mw - rw
	if gap < 0 {
		return left + strings.Repeat(" ", width-lw-rw) + right
	}
	return left + strings.Repeat(" ", mid-lw) + middle + strings.Repeat(" ", gap) + right
}
