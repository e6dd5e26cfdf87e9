// Package layout places assemblies in the shared world space and holds the
// presets that describe a whole room.
package layout

import (
	"fmt"

	"github.com/taigrr/diorama/pkg/assembly"
	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/scene"
)

// Placement is a world transform restricted to what a room layout needs:
// a position, a turn about the vertical axis and a scale. A zero scale
// component is treated as 1, so the zero Placement is the identity.
type Placement struct {
	Position  math3d.Vec3
	RotationY float64
	Scale     math3d.Vec3
}

// At is shorthand for a placement with no scaling.
func At(x, y, z, rotationY float64) Placement {
	return Placement{Position: math3d.V3(x, y, z), RotationY: rotationY}
}

// Apply overwrites n's local transform with p.
func (p Placement) Apply(n *scene.Node) {
	n.Position = p.Position
	n.Rotation = math3d.Yaw(p.RotationY)
	n.Scale = math3d.V3(orOne(p.Scale.X), orOne(p.Scale.Y), orOne(p.Scale.Z))
}

// Matrix returns the transform Apply would give a node.
func (p Placement) Matrix() math3d.Mat4 {
	return math3d.Compose(p.Position, math3d.Yaw(p.RotationY),
		math3d.V3(orOne(p.Scale.X), orOne(p.Scale.Y), orOne(p.Scale.Z)))
}

// Place applies p to node and attaches it under root.
func Place(root, node *scene.Node, p Placement) error {
	p.Apply(node)
	if err := root.Add(node); err != nil {
		return fmt.Errorf("place %q: %w", node.Name, err)
	}
	return nil
}

// Populate builds the preset's room and every catalog assembly it lists,
// and attaches them under root. Pictures are left to the mounter.
func Populate(root *scene.Node, preset Preset) error {
	if err := root.Add(preset.Room.Build()); err != nil {
		return fmt.Errorf("populate %s: %w", preset.Name, err)
	}
	for _, item := range preset.Items {
		node, err := assembly.Build(item.Assembly)
		if err != nil {
			return fmt.Errorf("populate %s: %w", preset.Name, err)
		}
		if err := Place(root, node, item.Placement); err != nil {
			return fmt.Errorf("populate %s: %w", preset.Name, err)
		}
	}
	return nil
}

func orOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
