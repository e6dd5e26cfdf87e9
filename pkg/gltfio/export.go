// Package gltfio writes diorama scenes as binary glTF and loads glTF props
// back into scene nodes.
package gltfio

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/diorama/pkg/render"
	"github.com/taigrr/diorama/pkg/scene"
)

// Export converts the tree under root into a glTF document with one glTF
// node per scene node. Materials are shared between meshes of equal paint.
// Textures are not exported.
func Export(root *scene.Node) *gltf.Document {
	doc := &gltf.Document{
		Asset:  gltf.Asset{Generator: "diorama", Version: "2.0"},
		Scene:  gltf.Index(0),
		Scenes: []*gltf.Scene{{Name: root.Name}},
	}
	e := exporter{doc: doc, materials: make(map[materialKey]int)}
	doc.Scenes[0].Nodes = []int{e.node(root)}
	return doc
}

// Save exports root to path as a .glb file.
func Save(path string, root *scene.Node) error {
	if err := gltf.SaveBinary(Export(root), path); err != nil {
		return fmt.Errorf("save glb %s: %w", path, err)
	}
	return nil
}

type materialKey struct {
	color       render.Color
	doubleSided bool
}

type exporter struct {
	doc       *gltf.Document
	materials map[materialKey]int
}

// node appends n and its subtree, children first, and returns n's index.
func (e *exporter) node(n *scene.Node) int {
	children := make([]int, 0, n.ChildCount())
	for _, c := range n.Children() {
		children = append(children, e.node(c))
	}

	gn := &gltf.Node{
		Name:        n.Name,
		Translation: [3]float64{n.Position.X, n.Position.Y, n.Position.Z},
		Rotation:    n.Rotation.Quat().Array(),
		Scale:       [3]float64{n.Scale.X, n.Scale.Y, n.Scale.Z},
		Children:    children,
	}
	if n.Mesh != nil && n.Mesh.TriangleCount() > 0 {
		gn.Mesh = gltf.Index(e.mesh(n))
	}

	e.doc.Nodes = append(e.doc.Nodes, gn)
	return len(e.doc.Nodes) - 1
}

func (e *exporter) mesh(n *scene.Node) int {
	m := n.Mesh
	positions := make([][3]float32, len(m.Vertices))
	normals := make([][3]float32, len(m.Vertices))
	uvs := make([][2]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		positions[i] = [3]float32{float32(v.Position.X), float32(v.Position.Y), float32(v.Position.Z)}
		normals[i] = [3]float32{float32(v.Normal.X), float32(v.Normal.Y), float32(v.Normal.Z)}
		// glTF puts V=0 at the top of the image.
		uvs[i] = [2]float32{float32(v.UV.X), float32(1 - v.UV.Y)}
	}

	// Faces are stored clockwise; glTF front faces are counter-clockwise.
	indices := make([]uint32, 0, len(m.Faces)*3)
	for _, f := range m.Faces {
		indices = append(indices, uint32(f.V[0]), uint32(f.V[2]), uint32(f.V[1]))
	}

	prim := &gltf.Primitive{
		Attributes: map[string]int{
			gltf.POSITION:   modeler.WritePosition(e.doc, positions),
			gltf.NORMAL:     modeler.WriteNormal(e.doc, normals),
			gltf.TEXCOORD_0: modeler.WriteTextureCoord(e.doc, uvs),
		},
		Indices:  gltf.Index(modeler.WriteIndices(e.doc, indices)),
		Material: gltf.Index(e.material(n.Material)),
	}

	e.doc.Meshes = append(e.doc.Meshes, &gltf.Mesh{Name: m.Name, Primitives: []*gltf.Primitive{prim}})
	return len(e.doc.Meshes) - 1
}

func (e *exporter) material(mat *scene.Material) int {
	paint := mat.Paint()
	key := materialKey{paint.Color, paint.DoubleSided}
	if i, ok := e.materials[key]; ok {
		return i
	}

	// glTF base colors are linear.
	c := paint.Color
	r, g, b := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.LinearRgb()
	metallic, roughness := 0.0, 1.0

	e.doc.Materials = append(e.doc.Materials, &gltf.Material{
		Name:        fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B),
		DoubleSided: paint.DoubleSided,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{r, g, b, 1},
			MetallicFactor:  &metallic,
			RoughnessFactor: &roughness,
		},
	})
	i := len(e.doc.Materials) - 1
	e.materials[key] = i
	return i
}
