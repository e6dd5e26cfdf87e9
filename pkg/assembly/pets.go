package assembly

import (
	"math"

	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/primitive"
	"github.com/taigrr/diorama/pkg/scene"
)

var (
	catFur  = primitive.MustHex("#e08a3c")
	dogFur  = primitive.MustHex("#c9a27e")
	eyes    = primitive.MustHex("#1a1a1a")
	catNose = primitive.MustHex("#e79aa6")
)

// Cat is a sitting cat about 0.45 tall, looking along +Z.
func Cat() *scene.Node {
	body := at(primitive.Sphere(0.16, catFur), "body", 0, 0.16, 0)
	body.Scale = math3d.V3(0.9, 1, 1.3)

	tail := at(primitive.Cylinder(0.015, 0.025, 0.35, primitive.Shade(catFur, -0.15)), "tail", 0, 0.12, -0.3)
	tail.Rotation = math3d.E(math.Pi/3, 0, 0)

	g := group("cat",
		body,
		at(primitive.Sphere(0.1, catFur), "head", 0, 0.34, 0.18),
		at(primitive.Cone(0.035, 0.08, catFur), "ear-left", -0.05, 0.44, 0.18),
		at(primitive.Cone(0.035, 0.08, catFur), "ear-right", 0.05, 0.44, 0.18),
		at(primitive.Sphere(0.015, eyes), "eye-left", -0.035, 0.36, 0.27),
		at(primitive.Sphere(0.015, eyes), "eye-right", 0.035, 0.36, 0.27),
		at(primitive.Sphere(0.012, catNose), "nose", 0, 0.33, 0.28),
		tail,
	)
	for i, p := range corners(0.07, 0.12) {
		g.MustAdd(at(primitive.Cylinder(0.03, 0.03, 0.1, catFur), legName(i), p.X, 0.05, p.Y))
	}
	return g
}

// Dog is a standing dog about 0.6 tall, looking along +Z.
func Dog() *scene.Node {
	body := at(primitive.Cylinder(0.14, 0.14, 0.5, dogFur), "body", 0, 0.3, 0)
	body.Rotation = math3d.E(math.Pi/2, 0, 0)

	tail := at(primitive.Cylinder(0.015, 0.02, 0.22, dogFur), "tail", 0, 0.38, -0.3)
	tail.Rotation = math3d.E(-math.Pi/4, 0, 0)

	ear := primitive.Shade(dogFur, -0.3)
	g := group("dog",
		body,
		at(primitive.Sphere(0.13, dogFur), "head", 0, 0.48, 0.3),
		at(primitive.Box(0.1, 0.08, 0.12, primitive.Shade(dogFur, 0.1)), "snout", 0, 0.45, 0.44),
		at(primitive.Sphere(0.025, eyes), "nose", 0, 0.47, 0.5),
		at(primitive.Sphere(0.018, eyes), "eye-left", -0.05, 0.52, 0.41),
		at(primitive.Sphere(0.018, eyes), "eye-right", 0.05, 0.52, 0.41),
		at(primitive.Box(0.04, 0.14, 0.08, ear), "ear-left", -0.12, 0.46, 0.28),
		at(primitive.Box(0.04, 0.14, 0.08, ear), "ear-right", 0.12, 0.46, 0.28),
		tail,
	)
	for i, p := range corners(0.09, 0.17) {
		g.MustAdd(at(primitive.Cylinder(0.04, 0.04, 0.2, dogFur), legName(i), p.X, 0.1, p.Y))
	}
	return g
}
