package render

import (
	"math"

	"github.com/taigrr/diorama/pkg/math3d"
)

// DrawMeshWireframe renders every triangle edge of a mesh without depth
// testing, so hidden edges show through.
func (r *Rasterizer) DrawMeshWireframe(mesh MeshRenderer, model math3d.Mat4, color Color) {
	if r.tryFrustumCull(mesh, model) {
		return
	}

	mvp := r.camera.ViewProjectionMatrix().Mul(model)
	clip := make([]math3d.Vec4, mesh.VertexCount())
	for i := range clip {
		p, _, _ := mesh.GetVertex(i)
		clip[i] = mvp.MulVec4(math3d.V4FromV3(p, 1))
	}

	for i := 0; i < mesh.TriangleCount(); i++ {
		face := mesh.GetFace(i)
		r.Stats.Triangles++
		r.drawClipLine(clip[face[0]], clip[face[1]], color)
		r.drawClipLine(clip[face[1]], clip[face[2]], color)
		r.drawClipLine(clip[face[2]], clip[face[0]], color)
	}
}

// DrawLine3D draws a world-space line, clipped at the near plane.
func (r *Rasterizer) DrawLine3D(a, b math3d.Vec3, color Color) {
	viewProj := r.camera.ViewProjectionMatrix()
	r.drawClipLine(
		viewProj.MulVec4(math3d.V4FromV3(a, 1)),
		viewProj.MulVec4(math3d.V4FromV3(b, 1)),
		color,
	)
}

// DrawPoint draws a point as a small cross of three axis-aligned lines.
func (r *Rasterizer) DrawPoint(pos math3d.Vec3, size float64, color Color) {
	h := size / 2
	r.DrawLine3D(pos.Sub(math3d.V3(h, 0, 0)), pos.Add(math3d.V3(h, 0, 0)), color)
	r.DrawLine3D(pos.Sub(math3d.V3(0, h, 0)), pos.Add(math3d.V3(0, h, 0)), color)
	r.DrawLine3D(pos.Sub(math3d.V3(0, 0, h)), pos.Add(math3d.V3(0, 0, h)), color)
}

func (r *Rasterizer) drawClipLine(a, b math3d.Vec4, color Color) {
	da := a.Z + a.W
	db := b.Z + b.W

	// Both endpoints behind the near plane
	if da < 0 && db < 0 {
		return
	}
	if da < 0 {
		a = a.Lerp(b, da/(da-db))
	} else if db < 0 {
		b = b.Lerp(a, db/(db-da))
	}

	x0, y0, _ := r.toScreen(a)
	x1, y1, _ := r.toScreen(b)

	x0, y0, x1, y1, ok := clipLine2D(x0, y0, x1, y1, float64(r.Width()), float64(r.Height()))
	if !ok {
		return
	}

	r.fb.DrawLine(int(x0), int(y0), int(x1), int(y1), color)
}

// clipLine2D clips a screen-space segment to [0, w] x [0, h] (Liang-Barsky).
func clipLine2D(x0, y0, x1, y1, w, h float64) (cx0, cy0, cx1, cy1 float64, ok bool) {
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0

	edges := [4][2]float64{
		{-dx, x0},
		{dx, w - x0},
		{-dy, y0},
		{dy, h - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			t0 = math.Max(t0, t)
		} else {
			t1 = math.Min(t1, t)
		}
		if t0 > t1 {
			return 0, 0, 0, 0, false
		}
	}

	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}
