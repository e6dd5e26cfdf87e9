package render

import (
	"math"

	"github.com/taigrr/diorama/pkg/math3d"
)

// Vertex is a model-space vertex with the attributes needed for shading.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
}

// Triangle is a model-space triangle, stored clockwise as seen from its front.
type Triangle struct {
	V [3]Vertex
}

// Light is a single directional light with ambient and diffuse terms.
type Light struct {
	Direction math3d.Vec3 // Points from the surface toward the light
	Ambient   float64
	Diffuse   float64
}

// DefaultLight returns a light from above and in front of the room.
func DefaultLight() Light {
	return Light{
		Direction: math3d.V3(0.4, 1, 0.6).Normalize(),
		Ambient:   0.3,
		Diffuse:   0.7,
	}
}

// Intensity returns ambient + diffuse * max(0, n.l) for a unit normal.
func (l Light) Intensity(normal math3d.Vec3) float64 {
	return l.Ambient + l.Diffuse*math.Max(0, normal.Dot(l.Direction.Normalize()))
}

// Paint is the shading input for one mesh: a flat Lambert color, optionally
// modulated by a texture.
type Paint struct {
	Color       Color
	Texture     *Texture
	DoubleSided bool
}

// FrameStats counts the work done for the current frame.
type FrameStats struct {
	MeshesTested int // Meshes tested against the frustum
	MeshesCulled int // Meshes rejected by the frustum test
	MeshesDrawn  int // Meshes that passed culling
	Triangles    int // Triangles that reached the fill stage
}

// MeshRenderer is the read-only mesh view the rasterizer draws.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// BoundedMeshRenderer extends MeshRenderer with bounding box support for frustum culling.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (min, max math3d.Vec3)
}

// Rasterizer handles software triangle rasterization.
type Rasterizer struct {
	camera                 *Camera
	fb                     *Framebuffer
	zbuffer                []float64 // Depth buffer (row-major)
	frustum                Frustum   // Frustum for the current frame
	Stats                  FrameStats
	DisableBackfaceCulling bool // If true, render both sides of every triangle

	clipIn, clipOut []clipVertex
}

// NewRasterizer creates a new rasterizer.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{
		camera:  camera,
		fb:      fb,
		clipIn:  make([]clipVertex, 0, 4),
		clipOut: make([]clipVertex, 0, 4),
	}
	r.Resize()
	r.UpdateFrustum()
	return r
}

// Resize resizes the depth buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
	r.ClearDepth()
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth clears the Z-buffer.
func (r *Rasterizer) ClearDepth() {
	// Use copy-doubling for faster clearing
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// UpdateFrustum recalculates the frustum planes from the camera.
func (r *Rasterizer) UpdateFrustum() {
	r.frustum = NewFrustumFromMatrix(r.camera.ViewProjectionMatrix())
}

// BeginFrame prepares for a new frame: it clears color and depth, refreshes
// the frustum from the camera and resets the stats.
func (r *Rasterizer) BeginFrame(background Color) {
	r.fb.Clear(background)
	r.ClearDepth()
	r.UpdateFrustum()
	r.Stats = FrameStats{}
}

// IsVisible tests if a world-space AABB may be visible.
func (r *Rasterizer) IsVisible(worldBounds AABB) bool {
	return r.frustum.IntersectAABB(worldBounds)
}

// tryFrustumCull reports whether a mesh with bounds lies entirely outside
// the frustum. Meshes without bounds are never culled.
func (r *Rasterizer) tryFrustumCull(mesh MeshRenderer, transform math3d.Mat4) bool {
	bounded, ok := mesh.(BoundedMeshRenderer)
	if !ok {
		return false
	}

	r.Stats.MeshesTested++

	minBounds, maxBounds := bounded.GetBounds()
	local := AABB{Min: minBounds, Max: maxBounds}
	if !r.IsVisible(local.Transform(transform)) {
		r.Stats.MeshesCulled++
		return true
	}

	r.Stats.MeshesDrawn++
	return false
}

// DrawMesh renders a mesh with Gouraud-interpolated Lambert shading.
// Normals are carried to world space with the model's normal matrix.
func (r *Rasterizer) DrawMesh(mesh MeshRenderer, model math3d.Mat4, paint Paint, light Light) {
	if r.tryFrustumCull(mesh, model) {
		return
	}

	mvp := r.camera.ViewProjectionMatrix().Mul(model)
	normalMat := model.NormalMatrix()
	mirrored := model.Determinant() < 0

	for i := 0; i < mesh.TriangleCount(); i++ {
		face := mesh.GetFace(i)
		if mirrored {
			face[1], face[2] = face[2], face[1]
		}

		var tri Triangle
		for k, idx := range face {
			p, n, uv := mesh.GetVertex(idx)
			tri.V[k] = Vertex{Position: p, Normal: n, UV: uv}
		}
		r.drawTriangle(tri, mvp, normalMat, paint, light)
	}
}

// drawTriangle projects a model-space triangle with mvp, carries its normals
// to world space with normalMat, then clips and fills it.
func (r *Rasterizer) drawTriangle(tri Triangle, mvp, normalMat math3d.Mat4, paint Paint, light Light) {
	var cv [3]clipVertex
	for i, v := range tri.V {
		cv[i] = clipVertex{
			pos:    mvp.MulVec4(math3d.V4FromV3(v.Position, 1)),
			normal: normalMat.MulVec3Dir(v.Normal),
			uv:     v.UV,
		}
	}
	r.drawClipped(cv, paint, light)
}

// clipVertex is a vertex in clip space with its shading attributes.
type clipVertex struct {
	pos    math3d.Vec4
	normal math3d.Vec3
	uv     math3d.Vec2
}

func lerpClip(a, b clipVertex, t float64) clipVertex {
	return clipVertex{
		pos:    a.pos.Lerp(b.pos, t),
		normal: a.normal.Lerp(b.normal, t),
		uv:     a.uv.Lerp(b.uv, t),
	}
}

// clipNear clips a convex polygon against the near plane (z >= -w) and
// appends the result to out (Sutherland-Hodgman).
func clipNear(in, out []clipVertex) []clipVertex {
	for i := range in {
		a := in[i]
		b := in[(i+1)%len(in)]
		da := a.pos.Z + a.pos.W
		db := b.pos.Z + b.pos.W

		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			out = append(out, lerpClip(a, b, da/(da-db)))
		}
	}
	return out
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y      float64 // Screen coordinates
	Z         float64 // NDC depth (for Z-buffer)
	InvW      float64 // 1/w (for perspective-correct interpolation)
	Intensity float64 // Lambert intensity at the vertex
	UV        math3d.Vec2
}

func (r *Rasterizer) toScreen(p math3d.Vec4) (x, y, z float64) {
	ndc := p.PerspectiveDivide()
	x = (ndc.X + 1) * 0.5 * float64(r.Width())
	y = (1 - ndc.Y) * 0.5 * float64(r.Height()) // Y flipped
	return x, y, ndc.Z
}

func (r *Rasterizer) drawClipped(tri [3]clipVertex, paint Paint, light Light) {
	// Trivially reject triangles fully behind the near plane.
	inside := 0
	for _, v := range tri {
		if v.pos.Z+v.pos.W >= 0 {
			inside++
		}
	}
	if inside == 0 {
		return
	}

	poly := tri[:]
	if inside < 3 {
		r.clipIn = append(r.clipIn[:0], tri[:]...)
		r.clipOut = clipNear(r.clipIn, r.clipOut[:0])
		poly = r.clipOut
	}
	if len(poly) < 3 {
		return
	}

	sv := make([]screenVertex, len(poly))
	for i, v := range poly {
		sv[i].X, sv[i].Y, sv[i].Z = r.toScreen(v.pos)
		sv[i].InvW = 1 / v.pos.W
		sv[i].UV = v.uv
	}

	// Backface culling (using screen-space winding of the whole polygon)
	var area float64
	for i := range sv {
		j := (i + 1) % len(sv)
		area += sv[i].X*sv[j].Y - sv[j].X*sv[i].Y
	}
	back := area < 0
	if back && !paint.DoubleSided && !r.DisableBackfaceCulling {
		return
	}

	for i, v := range poly {
		n := v.normal.Normalize()
		if back {
			n = n.Negate()
		}
		sv[i].Intensity = light.Intensity(n)
	}

	r.Stats.Triangles++
	for i := 1; i+1 < len(sv); i++ {
		if back {
			r.fillTriangle(sv[0], sv[i+1], sv[i], paint)
		} else {
			r.fillTriangle(sv[0], sv[i], sv[i+1], paint)
		}
	}
}

// edgeCoeffs returns A, B, C for the edge function A*x + B*y + C of the edge
// (x0, y0) -> (x1, y1). It is positive on the inner side of a front face.
func edgeCoeffs(x0, y0, x1, y1 float64) (A, B, C float64) {
	A = y0 - y1
	B = x1 - x0
	C = x0*y1 - x1*y0
	return
}

// fillTriangle fills a screen-space triangle with positive winding using
// incremental edge functions, a depth test and perspective-correct UVs.
func (r *Rasterizer) fillTriangle(v0, v1, v2 screenVertex, paint Paint) {
	area := (v1.X-v0.X)*(v2.Y-v0.Y) - (v1.Y-v0.Y)*(v2.X-v0.X)
	if area <= 0 {
		return
	}
	invArea := 1.0 / area

	// Bounding box (clamped to screen)
	minX := int(math.Max(0, math.Floor(min(v0.X, v1.X, v2.X))))
	maxX := int(math.Min(float64(r.Width()-1), math.Ceil(max(v0.X, v1.X, v2.X))))
	minY := int(math.Max(0, math.Floor(min(v0.Y, v1.Y, v2.Y))))
	maxY := int(math.Min(float64(r.Height()-1), math.Ceil(max(v0.Y, v1.Y, v2.Y))))
	if minX > maxX || minY > maxY {
		return
	}

	// Edge 0: v1 -> v2, Edge 1: v2 -> v0, Edge 2: v0 -> v1
	A0, B0, C0 := edgeCoeffs(v1.X, v1.Y, v2.X, v2.Y)
	A1, B1, C1 := edgeCoeffs(v2.X, v2.Y, v0.X, v0.Y)
	A2, B2, C2 := edgeCoeffs(v0.X, v0.Y, v1.X, v1.Y)

	px := float64(minX) + 0.5
	py := float64(minY) + 0.5
	w0Row := A0*px + B0*py + C0
	w1Row := A1*px + B1*py + C1
	w2Row := A2*px + B2*py + C2

	width := r.Width()
	base := paint.Color
	tex := paint.Texture

	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		rowOffset := y * width

		for x := minX; x <= maxX; x++ {
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				bc0, bc1, bc2 := w0*invArea, w1*invArea, w2*invArea

				// NDC depth is affine in screen space.
				z := bc0*v0.Z + bc1*v1.Z + bc2*v2.Z

				idx := rowOffset + x
				if z < r.zbuffer[idx] {
					p0, p1, p2 := bc0*v0.InvW, bc1*v1.InvW, bc2*v2.InvW
					oneOverW := p0 + p1 + p2

					intensity := (p0*v0.Intensity + p1*v1.Intensity + p2*v2.Intensity) / oneOverW
					c := base
					if tex != nil {
						u := (p0*v0.UV.X + p1*v1.UV.X + p2*v2.UV.X) / oneOverW
						v := (p0*v0.UV.Y + p1*v1.UV.Y + p2*v2.UV.Y) / oneOverW
						c = ModulateColor(tex.Sample(u, v), base)
					}
					c = MultiplyColor(c, intensity)
					c.A = 255

					r.zbuffer[idx] = z
					r.fb.Pixels[idx] = c
				}
			}

			// Step in X direction
			w0 += A0
			w1 += A1
			w2 += A2
		}

		// Step in Y direction
		w0Row += B0
		w1Row += B1
		w2Row += B2
	}
}
