package assembly

import (
	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/primitive"
	"github.com/taigrr/diorama/pkg/scene"
)

var (
	fabric     = primitive.MustHex("#4a6fa5")
	wood       = primitive.MustHex("#8b5a2b")
	darkWood   = primitive.MustHex("#5c3a1e")
	lightWood  = primitive.MustHex("#c49a6c")
	metal      = primitive.MustHex("#9a9a9a")
	linen      = primitive.MustHex("#f2ede4")
	blanket    = primitive.MustHex("#b5485d")
	screenGray = primitive.MustHex("#1b1d22")
	rugRed     = primitive.MustHex("#a23b3b")
	rugCream   = primitive.MustHex("#e8d8b0")
	terracotta = primitive.MustHex("#c8643c")
	soil       = primitive.MustHex("#3d2b1f")
	leaf       = primitive.MustHex("#3f8f4a")
	lampShade  = primitive.MustHex("#f4e3b5")
	bulb       = primitive.MustHex("#fff6cc")
)

var bookColors = []string{"#7b2d26", "#2e4a62", "#d9b44a", "#4f7942", "#6b4e71", "#c06c3e"}

// Sofa is a three-part couch 2.2 wide. Its seat is the child named "seat"
// at local offset (0, 0.2, 0).
func Sofa() *scene.Node {
	cushion := primitive.Shade(fabric, 0.15)
	return group("sofa",
		at(primitive.Box(2.0, 0.4, 0.9, fabric), "seat", 0, 0.2, 0),
		at(primitive.Box(2.0, 0.6, 0.2, primitive.Shade(fabric, -0.1)), "backrest", 0, 0.7, -0.35),
		at(primitive.Box(0.2, 0.6, 0.9, primitive.Shade(fabric, -0.1)), "arm-left", -1.0, 0.3, 0),
		at(primitive.Box(0.2, 0.6, 0.9, primitive.Shade(fabric, -0.1)), "arm-right", 1.0, 0.3, 0),
		at(primitive.Box(0.9, 0.12, 0.75, cushion), "cushion-left", -0.47, 0.46, 0.05),
		at(primitive.Box(0.9, 0.12, 0.75, cushion), "cushion-right", 0.47, 0.46, 0.05),
	)
}

// CoffeeTable is a low four-legged table.
func CoffeeTable() *scene.Node {
	g := group("coffee-table",
		at(primitive.Box(1.2, 0.06, 0.6, wood), "top", 0, 0.42, 0),
	)
	for i, p := range corners(0.55, 0.25) {
		g.MustAdd(at(primitive.Box(0.05, 0.39, 0.05, darkWood), legName(i), p.X, 0.195, p.Y))
	}
	return g
}

// Chair is a dining chair with round legs and a straight back.
func Chair() *scene.Node {
	g := group("chair",
		at(primitive.Box(0.5, 0.06, 0.5, lightWood), "seat", 0, 0.45, 0),
		at(primitive.Box(0.5, 0.5, 0.05, lightWood), "back", 0, 0.73, -0.225),
	)
	for i, p := range corners(0.22, 0.22) {
		g.MustAdd(at(primitive.Cylinder(0.025, 0.025, 0.42, darkWood), legName(i), p.X, 0.21, p.Y))
	}
	return g
}

// Bed is a double bed with the headboard at the back.
func Bed() *scene.Node {
	return group("bed",
		at(primitive.Box(1.6, 0.3, 2.1, darkWood), "frame", 0, 0.15, 0),
		at(primitive.Box(1.5, 0.2, 2.0, linen), "mattress", 0, 0.4, 0),
		at(primitive.Box(1.6, 0.9, 0.08, darkWood), "headboard", 0, 0.45, -1.01),
		at(primitive.Box(0.6, 0.1, 0.35, linen), "pillow-left", -0.38, 0.55, -0.75),
		at(primitive.Box(0.6, 0.1, 0.35, linen), "pillow-right", 0.38, 0.55, -0.75),
		at(primitive.Box(1.52, 0.04, 1.2, blanket), "blanket", 0, 0.52, 0.35),
	)
}

// Bookshelf is an open shelf unit with rows of books.
func Bookshelf() *scene.Node {
	g := group("bookshelf",
		at(primitive.Box(0.04, 1.8, 0.3, wood), "side-left", -0.48, 0.9, 0),
		at(primitive.Box(0.04, 1.8, 0.3, wood), "side-right", 0.48, 0.9, 0),
		at(primitive.Box(1.0, 1.8, 0.02, darkWood), "back", 0, 0.9, -0.14),
	)

	boards := []float64{0.015, 0.45, 0.9, 1.35, 1.785}
	for i, y := range boards {
		g.MustAdd(at(primitive.Box(0.92, 0.03, 0.28, wood), "shelf", 0, y, 0))
		if i == len(boards)-1 {
			break
		}

		// Books stand on the board and never reach the next one.
		shelf := scene.NewGroup("books")
		shelf.Position = math3d.V3(0, y+0.015, 0)
		x := -0.42
		for j := 0; x < 0.36; j++ {
			w := 0.04 + 0.01*float64((i+j)%3)
			h := 0.26 + 0.03*float64((i*2+j)%4)
			color := primitive.MustHex(bookColors[(i+j)%len(bookColors)])
			shelf.MustAdd(at(primitive.Box(w, h, 0.2, color), "book", x+w/2, h/2, 0))
			x += w + 0.005
		}
		g.MustAdd(shelf)
	}
	return g
}

// FloorLamp is a standing lamp with a drum shade.
func FloorLamp() *scene.Node {
	shade := at(primitive.Cylinder(0.15, 0.25, 0.3, lampShade), "shade", 0, 1.6, 0)
	shade.Material.DoubleSided = true
	return group("floor-lamp",
		at(primitive.Cylinder(0.18, 0.2, 0.04, metal), "base", 0, 0.02, 0),
		at(primitive.Cylinder(0.02, 0.02, 1.5, metal), "pole", 0, 0.79, 0),
		at(primitive.Sphere(0.06, bulb), "bulb", 0, 1.55, 0),
		shade,
	)
}

// TVStand is a low cabinet with a flat screen on top.
func TVStand() *scene.Node {
	return group("tv-stand",
		at(primitive.Box(1.6, 0.5, 0.45, darkWood), "cabinet", 0, 0.25, 0),
		at(primitive.Box(0.7, 0.3, 0.01, wood), "door-left", -0.38, 0.25, 0.23),
		at(primitive.Box(0.7, 0.3, 0.01, wood), "door-right", 0.38, 0.25, 0.23),
		at(primitive.Box(0.4, 0.02, 0.2, screenGray), "tv-foot", 0, 0.51, 0),
		at(primitive.Box(0.06, 0.12, 0.04, screenGray), "tv-neck", 0, 0.58, 0),
		at(primitive.Box(1.3, 0.75, 0.05, screenGray), "tv-panel", 0, 1.015, 0),
		at(primitive.Plane(1.22, 0.67, primitive.Shade(screenGray, 0.1)), "tv-screen", 0, 1.015, 0.026),
	)
}

// Rug is a flat two-tone carpet.
func Rug() *scene.Node {
	return group("rug",
		at(primitive.Box(2.4, 0.02, 1.6, rugRed), "border", 0, 0.01, 0),
		at(primitive.Box(2.1, 0.02, 1.3, rugCream), "field", 0, 0.012, 0),
	)
}

// Plant is a potted shrub.
func Plant() *scene.Node {
	return group("plant",
		at(primitive.Cylinder(0.18, 0.14, 0.3, terracotta), "pot", 0, 0.15, 0),
		at(primitive.Cylinder(0.16, 0.16, 0.02, soil), "soil", 0, 0.3, 0),
		at(primitive.Cylinder(0.02, 0.02, 0.3, darkWood), "stem", 0, 0.45, 0),
		at(primitive.Sphere(0.25, leaf), "foliage", 0, 0.72, 0),
		at(primitive.Sphere(0.15, primitive.Shade(leaf, 0.15)), "foliage", 0.16, 0.62, 0.08),
		at(primitive.Sphere(0.14, primitive.Shade(leaf, -0.15)), "foliage", -0.14, 0.64, -0.06),
		at(primitive.Cone(0.12, 0.3, primitive.Shade(leaf, 0.1)), "sprout", 0, 1.05, 0),
	)
}

// corners returns the four (x, z) corner offsets of a rectangle.
func corners(x, z float64) [4]math3d.Vec2 {
	return [4]math3d.Vec2{
		math3d.V2(-x, -z), math3d.V2(x, -z),
		math3d.V2(-x, z), math3d.V2(x, z),
	}
}

func legName(i int) string {
	return [...]string{"leg-back-left", "leg-back-right", "leg-front-left", "leg-front-right"}[i]
}
