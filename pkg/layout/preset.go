package layout

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/primitive"
	"github.com/taigrr/diorama/pkg/render"
	"github.com/taigrr/diorama/pkg/room"
)

// ErrUnknownPreset is returned by Lookup for an unregistered name.
var ErrUnknownPreset = errors.New("unknown preset")

// Item places one catalog assembly.
type Item struct {
	Assembly string
	Placement
}

// Picture is a framed image hung on a wall. The pose is that of the frame's
// back face, which lies flat against the wall.
type Picture struct {
	Path           string
	Width, Height  float64
	FrameThickness float64
	Pose           Placement
}

// Framing is the initial camera rig: projection, pose and orbit limits.
// Angles are in radians except FOV, which is in degrees.
type Framing struct {
	Position, Target         math3d.Vec3
	FOV                      float64
	Near, Far                float64
	MinDistance, MaxDistance float64
	MinPolar, MaxPolar       float64
}

// Preset is everything needed to build and frame one room.
type Preset struct {
	Name        string
	Description string
	Room        room.Shell
	Camera      Framing
	Background  render.Color
	Light       render.Light
	Items       []Item
	Pictures    []Picture
}

var presets = map[string]func() Preset{
	"classic": Classic,
	"modular": Modular,
}

// Lookup returns the named preset.
func Lookup(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("preset %q: %w", name, ErrUnknownPreset)
	}
	return p(), nil
}

// Names returns the preset names in sorted order.
func Names() []string {
	return slices.Sorted(maps.Keys(presets))
}

const (
	quarter = math.Pi / 2
	eighth  = math.Pi / 4
)

// Classic is the warm living room with a bed corner and a window in the
// left wall.
func Classic() Preset {
	return Preset{
		Name:        "classic",
		Description: "warm living room with a bed corner and a window",
		Room: room.Shell{
			Width: 10, Depth: 9, Height: 4,
			Thickness:  0.2,
			FloorColor: primitive.MustHex("#a0764a"),
			WallColor:  primitive.MustHex("#e9dcc3"),
			Opening:    &room.Opening{Offset: 0.5, Sill: 1.0, Width: 2.4, Height: 1.6},
		},
		Camera: Framing{
			Position:    math3d.V3(8, 7, 12),
			Target:      math3d.V3(0, 1, 0),
			FOV:         45,
			Near:        0.1,
			Far:         100,
			MinDistance: 5,
			MaxDistance: 25,
			MinPolar:    0.1,
			MaxPolar:    quarter - 0.05,
		},
		Background: primitive.MustHex("#2b2118"),
		Light:      render.DefaultLight(),
		Items: []Item{
			{"rug", At(3.0, 0, 3.5, quarter)},
			{"sofa", At(1.8, 0, 3.5, quarter)},
			{"coffee-table", At(3.0, 0, 3.5, quarter)},
			{"tv-stand", At(4.2, 0, 3.5, -quarter)},
			{"floor-lamp", At(1.5, 0, 1.9, 0)},
			{"bed", At(-3.8, 0, -3.4, 0)},
			{"bookshelf", At(0.5, 0, -4.3, 0)},
			{"plant", At(4.4, 0, -4.0, 0)},
			{"chair", At(2.2, 0, -1.6, -eighth)},
			{"cat", At(1.8, 0.52, 3.0, quarter)},
			{"dog", At(3.2, 0.02, 1.6, -3*eighth)},
		},
		Pictures: []Picture{
			{"pictures/landscape.jpg", 1.4, 1.0, 0.06, At(-2.5, 2.6, -4.5, 0)},
			{"pictures/portrait.jpg", 0.6, 0.8, 0.05, At(2.3, 2.4, -4.5, 0)},
			{"pictures/abstract.jpg", 0.8, 0.8, 0.05, At(3.6, 2.4, -4.5, 0)},
			{"pictures/family.jpg", 0.9, 0.7, 0.05, At(-5, 2.3, -2.6, quarter)},
			{"pictures/pets.jpg", 0.7, 0.5, 0.04, At(-5, 2.3, 3.0, quarter)},
		},
	}
}

// Modular is the compact cool-toned lounge with solid walls.
func Modular() Preset {
	return Preset{
		Name:        "modular",
		Description: "compact cool-toned lounge with solid walls",
		Room: room.Shell{
			Width: 8, Depth: 6, Height: 3.5,
			Thickness:  0.15,
			FloorColor: primitive.MustHex("#8d99a6"),
			WallColor:  primitive.MustHex("#d6e2ea"),
		},
		Camera: Framing{
			Position:    math3d.V3(6, 5, 9),
			Target:      math3d.V3(0, 0.8, 0),
			FOV:         50,
			Near:        0.1,
			Far:         80,
			MinDistance: 4,
			MaxDistance: 18,
			MinPolar:    0.1,
			MaxPolar:    quarter - 0.05,
		},
		Background: primitive.MustHex("#1b2330"),
		Light: render.Light{
			Direction: math3d.V3(-0.3, 1, 0.5).Normalize(),
			Ambient:   0.35,
			Diffuse:   0.65,
		},
		Items: []Item{
			{"rug", At(0.5, 0, -0.6, 0)},
			{"sofa", At(0.5, 0, -2.3, 0)},
			{"coffee-table", At(0.5, 0, -0.8, 0)},
			{"tv-stand", At(0.5, 0, 2.4, math.Pi)},
			{"bookshelf", At(-3.7, 0, -1.0, quarter)},
			{"chair", At(2.8, 0, -0.5, -quarter)},
			{"plant", At(3.5, 0, -2.5, 0)},
			{"floor-lamp", At(-1.3, 0, -2.5, 0)},
			{"cat", At(-0.8, 0.02, 0.6, eighth)},
			{"dog", At(1.8, 0, 1.0, -3*eighth)},
		},
		Pictures: []Picture{
			{"pictures/landscape.jpg", 1.0, 0.7, 0.05, At(-2.3, 2.0, -3, 0)},
			{"pictures/abstract.jpg", 1.2, 0.6, 0.05, At(0.5, 1.9, -3, 0)},
			{"pictures/portrait.jpg", 0.5, 0.7, 0.04, At(2.6, 2.0, -3, 0)},
			{"pictures/family.jpg", 0.8, 0.6, 0.05, At(-4, 2.0, 1.2, quarter)},
			{"pictures/pets.jpg", 0.6, 0.5, 0.04, At(-4, 2.0, -2.2, quarter)},
		},
	}
}
