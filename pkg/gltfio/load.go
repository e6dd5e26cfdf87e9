package gltfio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/qmuntal/gltf"

	"github.com/taigrr/diorama/pkg/geometry"
	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/render"
	"github.com/taigrr/diorama/pkg/scene"
)

// ErrNodeCycle is returned for a document whose node hierarchy loops.
var ErrNodeCycle = errors.New("gltf node hierarchy has a cycle")

// Load reads a glTF or GLB file into a scene tree that mirrors the file's
// default scene. A primitive without a material gets a nil Material, which
// callers may fill in. A scene with exactly one root node is returned as that
// node; otherwise the roots are grouped under a node named after the file.
func Load(path string) (*scene.Node, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	l := loader{
		doc:      doc,
		dir:      filepath.Dir(path),
		visiting: make(map[int]bool),
		textures: make(map[int]*render.Texture),
	}

	var roots []*scene.Node
	for _, i := range sceneRoots(doc) {
		n, err := l.node(i)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
		}
		roots = append(roots, n)
	}

	// No scene at all: fall back to every mesh at the origin.
	if len(doc.Scenes) == 0 {
		for i := range doc.Meshes {
			prims, err := l.mesh(i)
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
			}
			roots = append(roots, prims...)
		}
	}

	if len(roots) == 1 {
		return roots[0], nil
	}
	return scene.NewGroup(filepath.Base(path)).MustAdd(roots...), nil
}

func sceneRoots(doc *gltf.Document) []int {
	if len(doc.Scenes) == 0 {
		return nil
	}
	s := 0
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		s = *doc.Scene
	}
	return doc.Scenes[s].Nodes
}

type loader struct {
	doc      *gltf.Document
	dir      string
	visiting map[int]bool
	textures map[int]*render.Texture
}

func (l *loader) node(i int) (*scene.Node, error) {
	if i < 0 || i >= len(l.doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", i)
	}
	if l.visiting[i] {
		return nil, ErrNodeCycle
	}
	l.visiting[i] = true
	defer delete(l.visiting, i)

	gn := l.doc.Nodes[i]
	n := scene.NewGroup(gn.Name)
	setTransform(n, gn)

	if gn.Mesh != nil {
		prims, err := l.mesh(*gn.Mesh)
		if err != nil {
			return nil, err
		}
		if len(prims) == 1 {
			n.Mesh, n.Material = prims[0].Mesh, prims[0].Material
		} else {
			n.MustAdd(prims...)
		}
	}

	for _, c := range gn.Children {
		child, err := l.node(c)
		if err != nil {
			return nil, err
		}
		if err := n.Add(child); err != nil {
			return nil, fmt.Errorf("node %q: %w", gn.Name, err)
		}
	}
	return n, nil
}

var identityMatrix = [16]float64(math3d.Identity())

func setTransform(n *scene.Node, gn *gltf.Node) {
	if gn.Matrix != [16]float64{} && gn.Matrix != identityMatrix {
		n.Position, n.Rotation, n.Scale = math3d.Decompose(math3d.Mat4(gn.Matrix))
		return
	}

	t, r, s := gn.Translation, gn.Rotation, gn.Scale
	n.Position = math3d.V3(t[0], t[1], t[2])
	if r != [4]float64{} {
		n.Rotation = math3d.Quat{X: r[0], Y: r[1], Z: r[2], W: r[3]}.Euler()
	}
	if s != [3]float64{} {
		n.Scale = math3d.V3(s[0], s[1], s[2])
	}
}

// mesh returns one drawable node per triangle primitive of mesh i.
func (l *loader) mesh(i int) ([]*scene.Node, error) {
	if i < 0 || i >= len(l.doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", i)
	}
	m := l.doc.Meshes[i]

	var nodes []*scene.Node
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}
		mesh, err := l.primitive(m.Name, prim)
		if err != nil {
			return nil, fmt.Errorf("mesh %q: %w", m.Name, err)
		}
		if mesh == nil {
			continue
		}
		mat, err := l.material(prim.Material)
		if err != nil {
			return nil, fmt.Errorf("mesh %q: %w", m.Name, err)
		}
		nodes = append(nodes, scene.NewMesh(m.Name, mesh, mat))
	}
	return nodes, nil
}

// primitive extracts geometry, or returns nil for a primitive without positions.
func (l *loader) primitive(name string, prim *gltf.Primitive) (*geometry.Mesh, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	positions, err := readVec3Accessor(l.doc, posIdx)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	var normals []math3d.Vec3
	if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err = readVec3Accessor(l.doc, normIdx)
		if err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
	}

	var uvs []math3d.Vec2
	if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err = readVec2Accessor(l.doc, uvIdx)
		if err != nil {
			return nil, fmt.Errorf("read uvs: %w", err)
		}
	}

	mesh := geometry.NewMesh(name)
	for i, p := range positions {
		v := geometry.MeshVertex{Position: p}
		if i < len(normals) {
			v.Normal = normals[i]
		}
		if i < len(uvs) {
			// GLTF uses top-left origin (V=0 at top), flip V for bottom-left origin
			v.UV = math3d.V2(uvs[i].X, 1.0-uvs[i].Y)
		}
		mesh.Vertices = append(mesh.Vertices, v)
	}

	var indices []int
	if prim.Indices != nil {
		indices, err = readIndices(l.doc, *prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
	} else {
		indices = make([]int, len(positions))
		for i := range indices {
			indices[i] = i
		}
	}

	// GLTF uses CCW winding for front faces; AddTriangle stores them CW.
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if max(a, b, c) >= len(positions) || min(a, b, c) < 0 {
			return nil, fmt.Errorf("index out of range at triangle %d", i/3)
		}
		mesh.AddTriangle(a, b, c)
	}

	if len(normals) == 0 {
		mesh.CalculateSmoothNormals()
	}
	mesh.CalculateBounds()
	return mesh, nil
}

func (l *loader) material(idx *int) (*scene.Material, error) {
	if idx == nil {
		return nil, nil
	}
	if *idx < 0 || *idx >= len(l.doc.Materials) {
		return nil, fmt.Errorf("material index %d out of range", *idx)
	}
	gm := l.doc.Materials[*idx]

	mat := &scene.Material{Color: render.ColorWhite, DoubleSided: gm.DoubleSided}
	pbr := gm.PBRMetallicRoughness
	if pbr == nil {
		return mat, nil
	}
	if f := pbr.BaseColorFactor; f != nil {
		r, g, b := colorful.LinearRgb(f[0], f[1], f[2]).Clamped().RGB255()
		mat.Color = render.RGB(r, g, b)
	}
	if pbr.BaseColorTexture != nil {
		mat.Texture = l.texture(pbr.BaseColorTexture.Index)
	}
	return mat, nil
}

// texture decodes texture i, or returns nil if it cannot be read.
func (l *loader) texture(i int) *render.Texture {
	if tex, ok := l.textures[i]; ok {
		return tex
	}
	var tex *render.Texture
	if data := l.imageData(i); len(data) > 0 {
		if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
			tex = render.TextureFromImage(img)
		}
	}
	l.textures[i] = tex
	return tex
}

func (l *loader) imageData(texIdx int) []byte {
	if texIdx < 0 || texIdx >= len(l.doc.Textures) || l.doc.Textures[texIdx].Source == nil {
		return nil
	}
	src := *l.doc.Textures[texIdx].Source
	if src < 0 || src >= len(l.doc.Images) {
		return nil
	}
	img := l.doc.Images[src]

	if img.BufferView != nil {
		data, err := bufferViewData(l.doc, *img.BufferView)
		if err != nil {
			return nil
		}
		return data
	}
	if img.URI != "" {
		// External texture file
		data, err := os.ReadFile(filepath.Join(l.dir, img.URI))
		if err == nil {
			return data
		}
	}
	return nil
}

// readVec3Accessor reads Vec3 data from a GLTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	accessor, err := accessorAt(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}

	data, err := readAccessorData(doc, accessor)
	if err != nil {
		return nil, err
	}

	floats, ok := data.([][3]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected data type for VEC3")
	}

	result := make([]math3d.Vec3, len(floats))
	for i, f := range floats {
		result[i] = math3d.V3(float64(f[0]), float64(f[1]), float64(f[2]))
	}
	return result, nil
}

// readVec2Accessor reads Vec2 data from a GLTF accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	accessor, err := accessorAt(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	if accessor.Type != gltf.AccessorVec2 {
		return nil, fmt.Errorf("expected VEC2, got %v", accessor.Type)
	}

	data, err := readAccessorData(doc, accessor)
	if err != nil {
		return nil, err
	}

	floats, ok := data.([][2]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected data type for VEC2")
	}

	result := make([]math3d.Vec2, len(floats))
	for i, f := range floats {
		result[i] = math3d.V2(float64(f[0]), float64(f[1]))
	}
	return result, nil
}

// readIndices reads index data from a GLTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	accessor, err := accessorAt(doc, accessorIdx)
	if err != nil {
		return nil, err
	}

	data, err := readAccessorData(doc, accessor)
	if err != nil {
		return nil, err
	}

	switch v := data.(type) {
	case []uint8:
		return widen(v), nil
	case []uint16:
		return widen(v), nil
	case []uint32:
		return widen(v), nil
	default:
		return nil, fmt.Errorf("unexpected index type: %T", data)
	}
}

func widen[T uint8 | uint16 | uint32](v []T) []int {
	result := make([]int, len(v))
	for i, x := range v {
		result[i] = int(x)
	}
	return result
}

func accessorAt(doc *gltf.Document, i int) (*gltf.Accessor, error) {
	if i < 0 || i >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", i)
	}
	return doc.Accessors[i], nil
}

// bufferViewData returns the bytes buffer view i covers.
func bufferViewData(doc *gltf.Document, i int) ([]byte, error) {
	if i < 0 || i >= len(doc.BufferViews) {
		return nil, fmt.Errorf("buffer view index %d out of range", i)
	}
	bv := doc.BufferViews[i]
	if bv == nil {
		return nil, fmt.Errorf("buffer view %d is empty", i)
	}
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) || doc.Buffers[bv.Buffer] == nil {
		return nil, fmt.Errorf("buffer index %d out of range", bv.Buffer)
	}

	// gltf.Open resolves external buffer URIs into Data as well.
	data := doc.Buffers[bv.Buffer].Data
	if data == nil {
		return nil, fmt.Errorf("buffer has no data")
	}
	end := bv.ByteOffset + bv.ByteLength
	if bv.ByteOffset < 0 || bv.ByteLength < 0 || end > len(data) {
		return nil, fmt.Errorf("buffer view %d overruns its buffer", i)
	}
	return data[bv.ByteOffset:end], nil
}

// readAccessorData reads raw data from an embedded GLTF buffer.
func readAccessorData(doc *gltf.Document, accessor *gltf.Accessor) (any, error) {
	if accessor.BufferView == nil {
		return nil, fmt.Errorf("accessor has no buffer view")
	}

	bufData, err := bufferViewData(doc, *accessor.BufferView)
	if err != nil {
		return nil, err
	}

	start := accessor.ByteOffset
	stride := doc.BufferViews[*accessor.BufferView].ByteStride
	count := accessor.Count
	if start < 0 || stride < 0 || count < 0 {
		return nil, fmt.Errorf("accessor has a negative offset, stride or count")
	}

	var elem int
	switch accessor.Type {
	case gltf.AccessorVec3:
		elem = 12
	case gltf.AccessorVec2:
		elem = 8
	case gltf.AccessorScalar:
		switch accessor.ComponentType {
		case gltf.ComponentUbyte:
			elem = 1
		case gltf.ComponentUshort:
			elem = 2
		case gltf.ComponentUint:
			elem = 4
		}
	}
	if elem == 0 {
		return nil, fmt.Errorf("unsupported accessor type: %v / %v", accessor.Type, accessor.ComponentType)
	}
	if stride == 0 {
		stride = elem
	}
	if count > 0 && start+(count-1)*stride+elem > len(bufData) {
		return nil, fmt.Errorf("accessor overruns its buffer")
	}

	switch accessor.Type {
	case gltf.AccessorVec3:
		result := make([][3]float32, count)
		for i := range count {
			offset := start + i*stride
			for j := range 3 {
				result[i][j] = readFloat32(bufData[offset+j*4:])
			}
		}
		return result, nil

	case gltf.AccessorVec2:
		result := make([][2]float32, count)
		for i := range count {
			offset := start + i*stride
			for j := range 2 {
				result[i][j] = readFloat32(bufData[offset+j*4:])
			}
		}
		return result, nil
	}

	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		result := make([]uint8, count)
		for i := range count {
			result[i] = bufData[start+i*stride]
		}
		return result, nil
	case gltf.ComponentUshort:
		result := make([]uint16, count)
		for i := range count {
			offset := start + i*stride
			result[i] = uint16(bufData[offset]) | uint16(bufData[offset+1])<<8
		}
		return result, nil
	default:
		result := make([]uint32, count)
		for i := range count {
			offset := start + i*stride
			result[i] = uint32(bufData[offset]) |
				uint32(bufData[offset+1])<<8 |
				uint32(bufData[offset+2])<<16 |
				uint32(bufData[offset+3])<<24
		}
		return result, nil
	}
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float32 {
	return math.Float32frombits(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
}
