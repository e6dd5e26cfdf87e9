// Package scene implements the retained-mode scene graph: a tree of nodes
// with local transforms, some of which carry a mesh and a material.
package scene

import (
	"errors"
	"fmt"

	"github.com/taigrr/diorama/pkg/geometry"
	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/render"
)

var (
	// ErrAttached is returned when adding a node that already has a parent.
	ErrAttached = errors.New("node already attached")
	// ErrCycle is returned when adding a node under itself or one of its descendants.
	ErrCycle = errors.New("node would become its own ancestor")
)

// Material is a diffuse-only surface description.
type Material struct {
	Color       render.Color
	Texture     *render.Texture
	DoubleSided bool
}

// Paint converts the material into rasterizer input.
func (m *Material) Paint() render.Paint {
	if m == nil {
		return render.Paint{Color: render.ColorWhite}
	}
	return render.Paint{Color: m.Color, Texture: m.Texture, DoubleSided: m.DoubleSided}
}

// Node is one element of the scene graph. A node with a Mesh is drawable;
// a node without one is a group.
//
// The local transform applies Scale, then Rotation (Euler XYZ), then Position.
type Node struct {
	Name     string
	Position math3d.Vec3
	Rotation math3d.Euler
	Scale    math3d.Vec3

	Mesh     *geometry.Mesh
	Material *Material

	parent   *Node
	children []*Node
}

// NewGroup creates an empty group node with unit scale.
func NewGroup(name string) *Node {
	return &Node{Name: name, Scale: math3d.V3(1, 1, 1)}
}

// NewMesh creates a drawable node with unit scale.
func NewMesh(name string, mesh *geometry.Mesh, material *Material) *Node {
	return &Node{Name: name, Scale: math3d.V3(1, 1, 1), Mesh: mesh, Material: material}
}

// Add attaches children in order. It stops at the first child that is
// already attached somewhere or whose attachment would create a cycle.
func (n *Node) Add(children ...*Node) error {
	for _, c := range children {
		if c == nil {
			continue
		}
		for a := n; a != nil; a = a.parent {
			if a == c {
				return fmt.Errorf("add %q to %q: %w", c.Name, n.Name, ErrCycle)
			}
		}
		if c.parent != nil {
			return fmt.Errorf("add %q to %q: %w", c.Name, n.Name, ErrAttached)
		}
		c.parent = n
		n.children = append(n.children, c)
	}
	return nil
}

// MustAdd is Add for trees built from constants; it panics on error.
func (n *Node) MustAdd(children ...*Node) *Node {
	if err := n.Add(children...); err != nil {
		panic(err)
	}
	return n
}

// Parent returns the node's parent, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the node's children in insertion order.
// The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// LocalMatrix returns T * R * S for the node's own transform.
func (n *Node) LocalMatrix() math3d.Mat4 {
	return math3d.Compose(n.Position, n.Rotation, n.Scale)
}

// WorldMatrix composes the local matrices from the root down to n.
func (n *Node) WorldMatrix() math3d.Mat4 {
	if n.parent == nil {
		return n.LocalMatrix()
	}
	return n.parent.WorldMatrix().Mul(n.LocalMatrix())
}

// Traverse visits n and its descendants depth-first in insertion order,
// passing each node's world matrix. Returning false from fn skips the
// node's children.
func (n *Node) Traverse(fn func(node *Node, world math3d.Mat4) bool) {
	var parentWorld math3d.Mat4
	if n.parent != nil {
		parentWorld = n.parent.WorldMatrix()
	} else {
		parentWorld = math3d.Identity()
	}
	n.traverse(parentWorld, fn)
}

func (n *Node) traverse(parentWorld math3d.Mat4, fn func(*Node, math3d.Mat4) bool) {
	world := parentWorld.Mul(n.LocalMatrix())
	if !fn(n, world) {
		return
	}
	for _, c := range n.children {
		c.traverse(world, fn)
	}
}

// Find returns the first node named name in depth-first order, or nil.
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.children {
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// Counts reports how many nodes, drawable meshes and triangles are in the subtree.
func (n *Node) Counts() (nodes, meshes, triangles int) {
	n.Traverse(func(node *Node, _ math3d.Mat4) bool {
		nodes++
		if node.Mesh != nil {
			meshes++
			triangles += node.Mesh.TriangleCount()
		}
		return true
	})
	return nodes, meshes, triangles
}

// WorldBounds returns the world-space bounding box of every mesh in the
// subtree. ok is false when the subtree has no mesh.
func (n *Node) WorldBounds() (box render.AABB, ok bool) {
	n.Traverse(func(node *Node, world math3d.Mat4) bool {
		if node.Mesh == nil || node.Mesh.VertexCount() == 0 {
			return true
		}
		min, max := node.Mesh.GetBounds()
		b := render.AABB{Min: min, Max: max}.Transform(world)
		if ok {
			box = box.Union(b)
		} else {
			box, ok = b, true
		}
		return true
	})
	return box, ok
}
