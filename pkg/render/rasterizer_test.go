package render

import (
	"math"
	"testing"

	"github.com/taigrr/diorama/pkg/math3d"
)

type mockVertex struct {
	pos    math3d.Vec3
	normal math3d.Vec3
	uv     math3d.Vec2
}

// mockMesh implements MeshRenderer for testing.
type mockMesh struct {
	vertices []mockVertex
	faces    [][3]int
}

func (m *mockMesh) VertexCount() int     { return len(m.vertices) }
func (m *mockMesh) TriangleCount() int   { return len(m.faces) }
func (m *mockMesh) GetFace(i int) [3]int { return m.faces[i] }
func (m *mockMesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	v := m.vertices[i]
	return v.pos, v.normal, v.uv
}

// boundedMesh adds bounds so the frustum test applies.
type boundedMesh struct {
	*mockMesh
	min, max math3d.Vec3
}

func (m boundedMesh) GetBounds() (min, max math3d.Vec3) { return m.min, m.max }

// quadMesh is a 10x10 quad at z=0 facing +Z, wound clockwise from the front.
func quadMesh() *mockMesh {
	n := math3d.V3(0, 0, 1)
	return &mockMesh{
		vertices: []mockVertex{
			{math3d.V3(-5, -5, 0), n, math3d.V2(0, 0)},
			{math3d.V3(5, -5, 0), n, math3d.V2(1, 0)},
			{math3d.V3(5, 5, 0), n, math3d.V2(1, 1)},
			{math3d.V3(-5, 5, 0), n, math3d.V2(0, 1)},
		},
		faces: [][3]int{
			{0, 3, 2}, // CW: bottom-left, top-left, top-right
			{0, 2, 1}, // CW: bottom-left, top-right, bottom-right
		},
	}
}

// createTestRasterizer creates a rasterizer with the camera at z=10 looking
// at the origin with a 90 degree field of view.
func createTestRasterizer(width, height int) (*Rasterizer, *Framebuffer) {
	fb := NewFramebuffer(width, height)
	camera := NewCamera()
	camera.SetPosition(math3d.V3(0, 0, 10))
	camera.LookAt(math3d.Zero3())
	camera.SetAspectRatio(float64(width) / float64(height))
	camera.SetFOV(math.Pi / 2)
	rasterizer := NewRasterizer(camera, fb)
	rasterizer.BeginFrame(ColorBlack)
	return rasterizer, fb
}

var frontLight = Light{Direction: math3d.V3(0, 0, 1), Ambient: 0.3, Diffuse: 0.7}

func countLit(fb *Framebuffer) int {
	n := 0
	for _, c := range fb.Pixels {
		if c.R > 0 || c.G > 0 || c.B > 0 {
			n++
		}
	}
	return n
}

func nearColor(a, b Color, tol int) bool {
	d := func(x, y uint8) int { return absInt(int(x) - int(y)) }
	return d(a.R, b.R) <= tol && d(a.G, b.G) <= tol && d(a.B, b.B) <= tol
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func TestLightIntensity(t *testing.T) {
	l := Light{Direction: math3d.V3(0, 2, 0), Ambient: 0.25, Diffuse: 0.5}

	tests := []struct {
		name   string
		normal math3d.Vec3
		want   float64
	}{
		{"facing light", math3d.V3(0, 1, 0), 0.75},
		{"grazing", math3d.V3(1, 0, 0), 0.25},
		{"facing away", math3d.V3(0, -1, 0), 0.25},
		{"45 degrees", math3d.V3(1, 1, 0).Normalize(), 0.25 + 0.5*math.Sqrt2/2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := l.Intensity(tc.normal); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Intensity(%v) = %v, want %v", tc.normal, got, tc.want)
			}
		})
	}
}

func TestDrawMesh_Lambert(t *testing.T) {
	tests := []struct {
		name   string
		normal math3d.Vec3
		want   Color
	}{
		{"lit", math3d.V3(0, 0, 1), RGB(200, 200, 200)},
		{"ambient only", math3d.V3(0, 0, -1), RGB(60, 60, 60)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, fb := createTestRasterizer(100, 100)
			mesh := quadMesh()
			for i := range mesh.vertices {
				mesh.vertices[i].normal = tc.normal
			}

			r.DrawMesh(mesh, math3d.Identity(), Paint{Color: RGB(200, 200, 200)}, frontLight)

			got := fb.GetPixel(50, 50)
			if !nearColor(got, tc.want, 1) {
				t.Errorf("center pixel = %v, want %v", got, tc.want)
			}
			if got.A != 255 {
				t.Errorf("alpha = %d, want 255", got.A)
			}
		})
	}
}

func TestDrawMesh_Coverage(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	r.DrawMesh(quadMesh(), math3d.Identity(), Paint{Color: ColorWhite}, frontLight)

	// The quad spans NDC [-0.5, 0.5] on both axes: pixels 25..75.
	if c := fb.GetPixel(30, 30); c == ColorBlack {
		t.Error("pixel inside the quad was not drawn")
	}
	if c := fb.GetPixel(10, 10); c != ColorBlack {
		t.Errorf("pixel outside the quad = %v, want background", c)
	}

	lit := countLit(fb)
	if lit < 2300 || lit > 2700 {
		t.Errorf("lit pixels = %d, want about 2500", lit)
	}
}

// drawWorld draws a triangle whose vertices are already in world space.
func drawWorld(r *Rasterizer, tri Triangle, paint Paint, light Light) {
	r.drawTriangle(tri, r.camera.ViewProjectionMatrix(), math3d.Identity(), paint, light)
}

func TestDrawWorldTriangle_BackfaceCulling(t *testing.T) {
	// Counter-clockwise as seen from the camera: back-facing.
	tri := Triangle{
		V: [3]Vertex{
			{Position: math3d.V3(-5, -5, 0), Normal: math3d.V3(0, 0, 1)},
			{Position: math3d.V3(5, -5, 0), Normal: math3d.V3(0, 0, 1)},
			{Position: math3d.V3(0, 5, 0), Normal: math3d.V3(0, 0, 1)},
		},
	}

	t.Run("culled", func(t *testing.T) {
		r, fb := createTestRasterizer(100, 100)
		drawWorld(r, tri, Paint{Color: ColorWhite}, frontLight)
		if n := countLit(fb); n > 0 {
			t.Errorf("back-facing triangle should be culled, got %d pixels", n)
		}
	})

	t.Run("double sided", func(t *testing.T) {
		r, fb := createTestRasterizer(100, 100)
		drawWorld(r, tri, Paint{Color: ColorWhite, DoubleSided: true}, frontLight)
		if n := countLit(fb); n == 0 {
			t.Error("double-sided triangle should be drawn from behind")
		}
		// The back side is lit with the flipped normal, which faces away
		// from the light.
		if c := fb.GetPixel(50, 50); !nearColor(c, RGB(76, 76, 76), 1) {
			t.Errorf("back side pixel = %v, want ambient only", c)
		}
	})

	t.Run("culling disabled", func(t *testing.T) {
		r, fb := createTestRasterizer(100, 100)
		r.DisableBackfaceCulling = true
		drawWorld(r, tri, Paint{Color: ColorWhite}, frontLight)
		if n := countLit(fb); n == 0 {
			t.Error("triangle should be drawn with culling disabled")
		}
	})
}

func TestDrawMesh_DepthTest(t *testing.T) {
	near := quadMesh()
	far := quadMesh()
	nearPaint := Paint{Color: RGB(255, 0, 0)}
	farPaint := Paint{Color: RGB(0, 0, 255)}
	light := Light{Direction: math3d.V3(0, 0, 1), Diffuse: 1}

	orders := []struct {
		name       string
		nearBefore bool
	}{
		{"near first", true},
		{"far first", false},
	}

	for _, o := range orders {
		t.Run(o.name, func(t *testing.T) {
			r, fb := createTestRasterizer(100, 100)
			nearModel := math3d.Translate(math3d.V3(0, 0, 1))
			farModel := math3d.Translate(math3d.V3(0, 0, -3))

			if o.nearBefore {
				r.DrawMesh(near, nearModel, nearPaint, light)
				r.DrawMesh(far, farModel, farPaint, light)
			} else {
				r.DrawMesh(far, farModel, farPaint, light)
				r.DrawMesh(near, nearModel, nearPaint, light)
			}

			if c := fb.GetPixel(50, 50); c.R < 250 || c.B != 0 {
				t.Errorf("center pixel = %v, want the nearer red quad", c)
			}
		})
	}
}

func TestDrawMesh_NearPlaneClipping(t *testing.T) {
	r, fb := createTestRasterizer(64, 64)

	// A floor triangle one unit below the eye, reaching from in front of
	// the camera to behind it.
	up := math3d.V3(0, 1, 0)
	floor := Triangle{
		V: [3]Vertex{
			{Position: math3d.V3(-2, -1, 0), Normal: up},
			{Position: math3d.V3(2, -1, 0), Normal: up},
			{Position: math3d.V3(0, -1, 20), Normal: up},
		},
	}
	drawWorld(r, floor, Paint{Color: ColorWhite, DoubleSided: true}, Light{Direction: up, Diffuse: 1})

	if n := countLit(fb); n == 0 {
		t.Fatal("clipped triangle should still draw its visible part")
	}

	// Everything on the floor lies below the horizon (the middle row).
	for y := range fb.Height / 2 {
		for x := range fb.Width {
			if c := fb.GetPixel(x, y); c != ColorBlack {
				t.Fatalf("pixel (%d, %d) above the horizon was written: %v", x, y, c)
			}
		}
	}

	// The floor directly below the view at the bottom edge is inside the triangle.
	if c := fb.GetPixel(fb.Width/2, fb.Height-1); c == ColorBlack {
		t.Error("bottom-center pixel should show the floor")
	}
}

func TestDrawWorldTriangle_FullyBehindCamera(t *testing.T) {
	r, fb := createTestRasterizer(64, 64)
	tri := Triangle{
		V: [3]Vertex{
			{Position: math3d.V3(-5, -5, 20)},
			{Position: math3d.V3(0, 5, 20)},
			{Position: math3d.V3(5, -5, 20)},
		},
	}
	drawWorld(r, tri, Paint{Color: ColorWhite, DoubleSided: true}, frontLight)

	if n := countLit(fb); n > 0 {
		t.Errorf("triangle behind the camera drew %d pixels", n)
	}
}

func TestDrawMesh_Textured(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)

	tex := NewTexture(2, 1)
	tex.WrapU, tex.WrapV = WrapClamp, WrapClamp
	tex.SetPixel(0, 0, RGB(255, 0, 0))
	tex.SetPixel(1, 0, RGB(0, 0, 255))

	light := Light{Direction: math3d.V3(0, 0, 1), Diffuse: 1}
	r.DrawMesh(quadMesh(), math3d.Identity(), Paint{Color: ColorWhite, Texture: tex}, light)

	if c := fb.GetPixel(30, 50); !nearColor(c, RGB(255, 0, 0), 1) {
		t.Errorf("left half = %v, want red", c)
	}
	if c := fb.GetPixel(70, 50); !nearColor(c, RGB(0, 0, 255), 1) {
		t.Errorf("right half = %v, want blue", c)
	}
}

func TestDrawMesh_MirroredModel(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	r.DrawMesh(quadMesh(), math3d.Scale(math3d.V3(-1, 1, 1)), Paint{Color: ColorWhite}, frontLight)

	if n := countLit(fb); n == 0 {
		t.Error("mirrored quad should stay front-facing")
	}
}

func TestDrawMesh_FrustumCulling(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	mesh := boundedMesh{mockMesh: quadMesh(), min: math3d.V3(-5, -5, 0), max: math3d.V3(5, 5, 0)}

	r.DrawMesh(mesh, math3d.Identity(), Paint{Color: ColorWhite}, frontLight)
	r.DrawMesh(mesh, math3d.Translate(math3d.V3(0, 0, 50)), Paint{Color: ColorWhite}, frontLight)

	if r.Stats.MeshesTested != 2 || r.Stats.MeshesCulled != 1 || r.Stats.MeshesDrawn != 1 {
		t.Errorf("stats = %+v, want 2 tested, 1 culled, 1 drawn", r.Stats)
	}
	if r.Stats.Triangles != 2 {
		t.Errorf("triangles = %d, want 2", r.Stats.Triangles)
	}
	if countLit(fb) == 0 {
		t.Error("visible mesh was not drawn")
	}

	r.BeginFrame(ColorBlack)
	if r.Stats != (FrameStats{}) {
		t.Errorf("BeginFrame should reset stats, got %+v", r.Stats)
	}
}

func TestDrawMeshWireframe(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	r.DrawMeshWireframe(quadMesh(), math3d.Identity(), ColorWhite)

	// Edges are drawn, the interior is not filled. The left edge sits on
	// column 25, give or take rounding.
	found := false
	for x := 23; x <= 27; x++ {
		if fb.GetPixel(x, 60) == ColorWhite {
			found = true
		}
	}
	if !found {
		t.Error("left edge was not drawn")
	}
	if c := fb.GetPixel(60, 68); c != ColorBlack {
		t.Errorf("interior pixel = %v, want background", c)
	}
}

func TestClipLine2D(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 float64
		ok             bool
		wx0, wx1       float64
	}{
		{"inside", 1, 1, 5, 5, true, 1, 5},
		{"crosses left", -10, 5, 5, 5, true, 0, 5},
		{"crosses both", -10, 5, 20, 5, true, 0, 10},
		{"outside", -10, -5, -1, -5, false, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x0, _, x1, _, ok := clipLine2D(tc.x0, tc.y0, tc.x1, tc.y1, 10, 10)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && (math.Abs(x0-tc.wx0) > 1e-9 || math.Abs(x1-tc.wx1) > 1e-9) {
				t.Errorf("x = %v..%v, want %v..%v", x0, x1, tc.wx0, tc.wx1)
			}
		})
	}
}

func TestClipNear(t *testing.T) {
	// One vertex behind the near plane turns the triangle into a quad.
	in := []clipVertex{
		{pos: math3d.V4(0, 0, 0, 1)},
		{pos: math3d.V4(1, 0, 0, 1)},
		{pos: math3d.V4(0, 1, -3, 1)},
	}
	out := clipNear(in, nil)
	if len(out) != 4 {
		t.Fatalf("clipped polygon has %d vertices, want 4", len(out))
	}
	for i, v := range out {
		if v.pos.Z+v.pos.W < -1e-9 {
			t.Errorf("vertex %d is behind the near plane: %v", i, v.pos)
		}
	}
}

func BenchmarkDrawMesh(b *testing.B) {
	r, _ := createTestRasterizer(160, 90)
	mesh := quadMesh()
	paint := Paint{Color: ColorWhite}

	for b.Loop() {
		r.ClearDepth()
		r.DrawMesh(mesh, math3d.Identity(), paint, frontLight)
	}
}
