// Package primitive creates the five basic shapes every diorama object is
// built from. Each call returns a fresh node with its own mesh and material.
package primitive

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/taigrr/diorama/pkg/geometry"
	"github.com/taigrr/diorama/pkg/render"
	"github.com/taigrr/diorama/pkg/scene"
)

// Hex parses a "#rrggbb" (or "#rgb") color.
func Hex(s string) (render.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return render.Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return render.RGB(r, g, b), nil
}

// MustHex is Hex for compile-time constants; it panics on a malformed value.
func MustHex(s string) render.Color {
	c, err := Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Shade blends a color toward black (t < 0) or white (t > 0) in Lab space.
// It gives related parts of one object distinct but matching tones.
func Shade(c render.Color, t float64) render.Color {
	if t == 0 {
		return c
	}
	base := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	target := colorful.Color{R: 1, G: 1, B: 1}
	if t < 0 {
		target = colorful.Color{}
		t = -t
	}
	r, g, b := base.BlendLab(target, min(t, 1)).Clamped().RGB255()
	return render.RGB(r, g, b)
}

func node(kind string, mesh *geometry.Mesh, color render.Color) *scene.Node {
	return scene.NewMesh(kind, mesh, &scene.Material{Color: color})
}

// Box returns a box centred on its local origin.
func Box(width, height, depth float64, color render.Color) *scene.Node {
	return node("box", geometry.NewBox(width, height, depth), color)
}

// Sphere returns a sphere with the default tessellation.
func Sphere(radius float64, color render.Color) *scene.Node {
	return SphereSegments(radius, geometry.SphereWidthSegments, geometry.SphereHeightSegments, color)
}

// SphereSegments returns a sphere with explicit tessellation.
func SphereSegments(radius float64, widthSegments, heightSegments int, color render.Color) *scene.Node {
	return node("sphere", geometry.NewSphere(radius, widthSegments, heightSegments), color)
}

// Cone returns a cone with its apex at +height/2 and its base at -height/2.
func Cone(radius, height float64, color render.Color) *scene.Node {
	return node("cone", geometry.NewCone(radius, height, geometry.RadialSegments), color)
}

// Cylinder returns a capped cylinder centred on its local origin.
func Cylinder(radiusTop, radiusBottom, height float64, color render.Color) *scene.Node {
	return node("cylinder", geometry.NewCylinder(radiusTop, radiusBottom, height, geometry.RadialSegments), color)
}

// Plane returns a single-sided rectangle in the XY plane facing +Z.
func Plane(width, height float64, color render.Color) *scene.Node {
	return node("plane", geometry.NewPlane(width, height), color)
}

// TexturedPlane returns a plane showing tex at full brightness.
func TexturedPlane(width, height float64, tex *render.Texture) *scene.Node {
	n := scene.NewMesh("picture", geometry.NewPlane(width, height), &scene.Material{
		Color:   render.ColorWhite,
		Texture: tex,
	})
	return n
}

// Named renames a node and returns it, for terse assembly code.
func Named(n *scene.Node, name string) *scene.Node {
	n.Name = name
	return n
}
