// Package room builds the open-fronted shell a diorama sits in: a floor and
// two walls meeting in the back-left corner.
package room

import (
	"math"

	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/primitive"
	"github.com/taigrr/diorama/pkg/render"
	"github.com/taigrr/diorama/pkg/scene"
)

// DefaultThickness is used when a Shell leaves Thickness zero.
const DefaultThickness = 0.2

// Opening is a rectangular hole in a wall, such as a window or a doorway.
// Offset is the horizontal distance of the opening's centre from the wall's
// centre; Sill is the height of its bottom edge above the floor.
type Opening struct {
	Offset float64
	Sill   float64
	Width  float64
	Height float64
}

// Shell describes the room. The floor spans Width along X and Depth along Z,
// centred on the origin with its top face at y = 0.
type Shell struct {
	Width, Depth, Height float64
	Thickness            float64
	FloorColor           render.Color
	WallColor            render.Color

	// Opening, if set, is cut into the left wall. Offset is measured along
	// +Z from the middle of the wall.
	Opening *Opening
}

// Build returns the room group: "floor", "wall-back" along -Z and
// "wall-left" along -X.
func (s Shell) Build() *scene.Node {
	t := s.Thickness
	if t == 0 {
		t = DefaultThickness
	}

	floor := primitive.Named(primitive.Box(s.Width, t, s.Depth, s.FloorColor), "floor")
	floor.Position = math3d.V3(0, -t/2, 0)

	back := Wall(s.Width, s.Height, t, s.WallColor, nil)
	back.Name = "wall-back"
	back.Position = math3d.V3(0, 0, -s.Depth/2-t/2)

	// Rotating by +90° turns the wall's length from X onto -Z, so a positive
	// Offset would run toward the back; negate it to keep Offset along +Z.
	var opening *Opening
	if s.Opening != nil {
		o := *s.Opening
		o.Offset = -o.Offset
		opening = &o
	}
	left := Wall(s.Depth+t, s.Height, t, s.WallColor, opening)
	left.Name = "wall-left"
	left.Position = math3d.V3(-s.Width/2-t/2, 0, -t/2)
	left.Rotation = math3d.Yaw(math.Pi / 2)

	return scene.NewGroup("room").MustAdd(floor, back, left)
}

// Wall builds a wall of the given length along X and height along Y, with its
// bottom edge at y = 0 and its thickness centred on z = 0. Without an opening
// the wall is one slab; with one it is up to four slabs framing the hole.
// Slabs with no positive extent are left out.
func Wall(length, height, thickness float64, color render.Color, opening *Opening) *scene.Node {
	wall := scene.NewGroup("wall")
	if opening == nil {
		wall.MustAdd(slab("slab", -length/2, length/2, 0, height, thickness, color))
		return wall
	}

	o := *opening
	left := o.Offset - o.Width/2
	right := o.Offset + o.Width/2
	top := o.Sill + o.Height

	wall.MustAdd(
		slab("slab-left", -length/2, left, 0, height, thickness, color),
		slab("slab-right", right, length/2, 0, height, thickness, color),
		slab("slab-sill", left, right, 0, o.Sill, thickness, color),
		slab("slab-lintel", left, right, top, height, thickness, color),
	)
	return wall
}

// slab spans [x0, x1] × [y0, y1]; it returns nil for an empty span, which
// scene.Node.Add skips.
func slab(name string, x0, x1, y0, y1, thickness float64, color render.Color) *scene.Node {
	if x1 <= x0 || y1 <= y0 {
		return nil
	}
	n := primitive.Named(primitive.Box(x1-x0, y1-y0, thickness, color), name)
	n.Position = math3d.V3((x0+x1)/2, (y0+y1)/2, 0)
	return n
}
