package layout

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/taigrr/diorama/pkg/assembly"
	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/scene"
)

const eps = 1e-9

func TestPlaceSofaSeat(t *testing.T) {
	root := scene.NewGroup("world")
	sofa := assembly.Sofa()
	if err := Place(root, sofa, At(1.8, 0, 3.5, math.Pi/2)); err != nil {
		t.Fatalf("Place: %v", err)
	}

	seat := sofa.Find("seat")
	got := seat.WorldMatrix().Translation()

	// RotY(90°) * (0, 0.2, 0) + (1.8, 0, 3.5)
	local := math3d.V3(0, 0.2, 0)
	want := math3d.RotateY(math.Pi / 2).MulVec3(local).Add(math3d.V3(1.8, 0, 3.5))
	if !got.ApproxEqual(want, eps) {
		t.Errorf("seat world position = %v, want %v", got, want)
	}
	if !got.ApproxEqual(math3d.V3(1.8, 0.2, 3.5), eps) {
		t.Errorf("seat world position = %v, want (1.8, 0.2, 3.5)", got)
	}

	// An off-axis part shows the rotation: the left cushion moves to +Z.
	cushion := sofa.Find("cushion-left").WorldMatrix().Translation()
	if !cushion.ApproxEqual(math3d.V3(1.85, 0.46, 3.97), eps) {
		t.Errorf("left cushion world position = %v", cushion)
	}
}

func TestPlaceScale(t *testing.T) {
	tests := []struct {
		name  string
		scale math3d.Vec3
		want  math3d.Vec3
	}{
		{"zero is identity", math3d.Vec3{}, math3d.V3(1, 1, 1)},
		{"uniform", math3d.V3(2, 2, 2), math3d.V3(2, 2, 2)},
		{"partial zero", math3d.V3(0, 0.5, 3), math3d.V3(1, 0.5, 3)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n := scene.NewGroup("n")
			if err := Place(scene.NewGroup("world"), n, Placement{Scale: tc.scale}); err != nil {
				t.Fatal(err)
			}
			if n.Scale != tc.want {
				t.Errorf("scale = %v, want %v", n.Scale, tc.want)
			}
		})
	}
}

func TestPlacementMatrixMatchesApply(t *testing.T) {
	p := Placement{Position: math3d.V3(1, 2, 3), RotationY: 0.7, Scale: math3d.V3(2, 0, 1)}
	n := scene.NewGroup("n")
	p.Apply(n)
	if !n.LocalMatrix().ApproxEqual(p.Matrix(), eps) {
		t.Error("Matrix disagrees with Apply")
	}
}

func TestPlaceTwice(t *testing.T) {
	root := scene.NewGroup("world")
	cat := assembly.Cat()
	if err := Place(root, cat, At(0, 0, 0, 0)); err != nil {
		t.Fatal(err)
	}
	err := Place(root, cat, At(1, 0, 0, 0))
	if !errors.Is(err, scene.ErrAttached) {
		t.Fatalf("second Place error = %v, want ErrAttached", err)
	}
	if root.ChildCount() != 1 {
		t.Errorf("root has %d children, want 1", root.ChildCount())
	}
}

func TestSiblingPlacementsIndependent(t *testing.T) {
	root := scene.NewGroup("world")
	a, b := assembly.Chair(), assembly.Chair()
	_ = Place(root, a, At(1, 0, 0, 0))
	_ = Place(root, b, At(-1, 0, 0, math.Pi))

	before := b.Find("seat").WorldMatrix()
	a.Position = math3d.V3(9, 9, 9)
	if !b.Find("seat").WorldMatrix().ApproxEqual(before, eps) {
		t.Error("moving one chair moved the other")
	}
}

func TestLookup(t *testing.T) {
	if got := Names(); !slices.Equal(got, []string{"classic", "modular"}) {
		t.Errorf("Names() = %v", got)
	}

	p, err := Lookup("modular")
	if err != nil {
		t.Fatal(err)
	}
	if p.Room.Width != 8 || p.Room.Depth != 6 || p.Room.Height != 3.5 {
		t.Errorf("modular room = %v × %v × %v", p.Room.Width, p.Room.Depth, p.Room.Height)
	}

	_, err = Lookup("attic")
	if !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("Lookup(attic) error = %v, want ErrUnknownPreset", err)
	}
}

func TestPresets(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			p, _ := Lookup(name)

			root := scene.NewGroup("world")
			if err := Populate(root, p); err != nil {
				t.Fatalf("Populate: %v", err)
			}
			if want := len(p.Items) + 1; root.ChildCount() != want {
				t.Errorf("root has %d children, want %d", root.ChildCount(), want)
			}
			if len(p.Pictures) != 5 {
				t.Errorf("%d pictures, want 5", len(p.Pictures))
			}

			// Every item stands inside the room footprint.
			hw, hd := p.Room.Width/2, p.Room.Depth/2
			for _, item := range p.Items {
				pos := item.Position
				if math.Abs(pos.X) > hw || math.Abs(pos.Z) > hd {
					t.Errorf("%s at %v is outside the room", item.Assembly, pos)
				}
			}

			// Pictures hang on the back (-Z) or left (-X) wall.
			for _, pic := range p.Pictures {
				pos := pic.Pose.Position
				onBack := pos.Z == -hd && pic.Pose.RotationY == 0
				onLeft := pos.X == -hw && pic.Pose.RotationY == math.Pi/2
				if !onBack && !onLeft {
					t.Errorf("%s is not on a wall", pic.Path)
				}
				if pos.Y+pic.Height/2 > p.Room.Height {
					t.Errorf("%s sticks out above the wall", pic.Path)
				}
			}

			dist := p.Camera.Position.Sub(p.Camera.Target).Len()
			if dist < p.Camera.MinDistance || dist > p.Camera.MaxDistance {
				t.Errorf("camera distance %.2f outside [%v, %v]", dist, p.Camera.MinDistance, p.Camera.MaxDistance)
			}
		})
	}
}

func TestPresetsAreFresh(t *testing.T) {
	a, _ := Lookup("classic")
	b, _ := Lookup("classic")
	a.Room.Opening.Width = 99
	if b.Room.Opening.Width == 99 {
		t.Error("presets share an opening")
	}
}
