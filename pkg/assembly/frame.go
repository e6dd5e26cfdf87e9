package assembly

import (
	"github.com/taigrr/diorama/pkg/primitive"
	"github.com/taigrr/diorama/pkg/render"
	"github.com/taigrr/diorama/pkg/scene"
)

const frameDepth = 0.05

var (
	frameWood = primitive.MustHex("#3b2a1a")
	backing   = primitive.MustHex("#d8d2c4")
)

// PictureFrame builds a framed picture width × height with a border of
// frameThickness on each side. Unlike floor assemblies its origin is the
// centre of the back face, so it mounts flush against a wall; the picture
// faces +Z. A nil texture leaves a blank mat.
func PictureFrame(width, height, frameThickness float64, tex *render.Texture) *scene.Node {
	t := frameThickness
	hw, hh := width/2, height/2
	z := frameDepth / 2

	g := group("picture-frame",
		at(primitive.Box(width+2*t, t, frameDepth, frameWood), "rail-top", 0, hh+t/2, z),
		at(primitive.Box(width+2*t, t, frameDepth, frameWood), "rail-bottom", 0, -hh-t/2, z),
		at(primitive.Box(t, height, frameDepth, frameWood), "stile-left", -hw-t/2, 0, z),
		at(primitive.Box(t, height, frameDepth, frameWood), "stile-right", hw+t/2, 0, z),
		at(primitive.Box(width, height, 0.01, backing), "backing", 0, 0, 0.005),
	)

	if tex != nil {
		g.MustAdd(at(primitive.TexturedPlane(width, height, tex), "picture", 0, 0, 0.011))
	}
	return g
}
