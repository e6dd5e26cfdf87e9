package primitive

import (
	"testing"

	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/render"
	"github.com/taigrr/diorama/pkg/scene"
)

func TestHex(t *testing.T) {
	tests := []struct {
		in      string
		want    render.Color
		wantErr bool
	}{
		{"#8b5a2b", render.RGB(0x8b, 0x5a, 0x2b), false},
		{"#fff", render.RGB(255, 255, 255), false},
		{"8b5a2b", render.Color{}, true},
		{"#zzzzzz", render.Color{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Hex(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Hex(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("Hex(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestMustHexPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustHex should panic on a malformed constant")
		}
	}()
	MustHex("not-a-color")
}

func TestShade(t *testing.T) {
	base := MustHex("#808080")
	darker := Shade(base, -0.3)
	lighter := Shade(base, 0.3)

	if darker.R >= base.R || lighter.R <= base.R {
		t.Errorf("Shade: darker %v, base %v, lighter %v", darker, base, lighter)
	}
	if Shade(base, 0) != base {
		t.Errorf("Shade(c, 0) = %v, want %v", Shade(base, 0), base)
	}
}

func TestPrimitivesAreFresh(t *testing.T) {
	color := MustHex("#336699")
	builders := map[string]func() *scene.Node{
		"box":      func() *scene.Node { return Box(1, 2, 3, color) },
		"sphere":   func() *scene.Node { return Sphere(0.5, color) },
		"cone":     func() *scene.Node { return Cone(0.5, 1, color) },
		"cylinder": func() *scene.Node { return Cylinder(0.2, 0.3, 1, color) },
		"plane":    func() *scene.Node { return Plane(1, 1, color) },
	}

	for name, build := range builders {
		t.Run(name, func(t *testing.T) {
			a, b := build(), build()
			if a.Mesh == nil || a.Material == nil {
				t.Fatal("primitive must carry a mesh and a material")
			}
			if a.Mesh == b.Mesh || a.Material == b.Material {
				t.Error("two calls share a mesh or material")
			}
			if a.Material.Color != color {
				t.Errorf("color = %v, want %v", a.Material.Color, color)
			}
			if a.Scale != math3d.V3(1, 1, 1) {
				t.Errorf("scale = %v, want unit", a.Scale)
			}
			if a.Name != name {
				t.Errorf("name = %q, want %q", a.Name, name)
			}
		})
	}
}

func TestConeApexUp(t *testing.T) {
	c := Cone(0.5, 2, render.ColorWhite)
	min, max := c.Mesh.GetBounds()
	if min.Y != -1 || max.Y != 1 {
		t.Errorf("cone spans y %v..%v, want -1..1", min.Y, max.Y)
	}

	// Only the apex reaches the top.
	for _, v := range c.Mesh.Vertices {
		if v.Position.Y == 1 && (v.Position.X != 0 || v.Position.Z != 0) {
			t.Fatalf("vertex %v at the top is off-axis", v.Position)
		}
	}
}

func TestTexturedPlane(t *testing.T) {
	tex := render.NewTexture(2, 2)
	p := TexturedPlane(1.5, 1, tex)
	if p.Material.Texture != tex {
		t.Error("texture not bound to the material")
	}
	if p.Material.Color != render.ColorWhite {
		t.Errorf("textured plane tint = %v, want white", p.Material.Color)
	}
}
