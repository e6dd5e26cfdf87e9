package scene

import (
	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/render"
)

// RenderMode selects how meshes are rasterized.
type RenderMode int

const (
	RenderSolid     RenderMode = iota // Lambert-shaded triangles
	RenderWireframe                   // Triangle edges only, no depth test
)

// String returns the mode name shown in the HUD.
func (m RenderMode) String() string {
	if m == RenderWireframe {
		return "wireframe"
	}
	return "solid"
}

// Draw rasterizes every mesh under root.
func Draw(r *render.Rasterizer, root *Node, light render.Light, mode RenderMode) {
	root.Traverse(func(n *Node, world math3d.Mat4) bool {
		if n.Mesh == nil {
			return true
		}
		paint := n.Material.Paint()
		switch mode {
		case RenderWireframe:
			r.DrawMeshWireframe(n.Mesh, world, paint.Color)
		default:
			r.DrawMesh(n.Mesh, world, paint, light)
		}
		return true
	})
}
