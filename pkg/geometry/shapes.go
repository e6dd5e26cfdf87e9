package geometry

import (
	"math"

	"github.com/taigrr/diorama/pkg/math3d"
)

// Default tessellation for round shapes.
const (
	SphereWidthSegments  = 16
	SphereHeightSegments = 12
	RadialSegments       = 16
)

// boxSides lists each box face as (normal, u, v) with u x v = normal.
var boxSides = [6][3]math3d.Vec3{
	{{X: 1}, {Z: -1}, {Y: 1}},
	{{X: -1}, {Z: 1}, {Y: 1}},
	{{Y: 1}, {X: 1}, {Z: -1}},
	{{Y: -1}, {X: 1}, {Z: 1}},
	{{Z: 1}, {X: 1}, {Y: 1}},
	{{Z: -1}, {X: -1}, {Y: 1}},
}

// NewBox creates a box centred on the origin with flat-shaded faces.
func NewBox(width, height, depth float64) *Mesh {
	m := NewMesh("box")
	half := math3d.V3(width/2, height/2, depth/2)

	for _, side := range boxSides {
		n, u, v := side[0], side[1], side[2]
		corner := func(s, t float64) int {
			p := n.Add(u.Scale(s)).Add(v.Scale(t)).Mul(half)
			return m.AddVertex(p, n, math3d.V2((s+1)/2, (t+1)/2))
		}
		a := corner(-1, -1)
		b := corner(1, -1)
		c := corner(1, 1)
		d := corner(-1, 1)
		m.AddQuad(a, b, c, d)
	}

	m.CalculateBounds()
	return m
}

// NewSphere creates a UV sphere centred on the origin.
func NewSphere(radius float64, widthSegments, heightSegments int) *Mesh {
	widthSegments = max(3, widthSegments)
	heightSegments = max(2, heightSegments)

	m := NewMesh("sphere")
	grid := make([][]int, heightSegments+1)

	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		theta := v * math.Pi
		grid[iy] = make([]int, widthSegments+1)

		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)
			phi := u * 2 * math.Pi

			n := math3d.V3(
				-math.Cos(phi)*math.Sin(theta),
				math.Cos(theta),
				math.Sin(phi)*math.Sin(theta),
			)
			grid[iy][ix] = m.AddVertex(n.Scale(radius), n, math3d.V2(u, 1-v))
		}
	}

	for iy := range heightSegments {
		for ix := range widthSegments {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			d := grid[iy+1][ix+1]

			// The pole rows collapse to a point, so one triangle suffices.
			if iy != 0 {
				m.AddTriangle(a, b, d)
			}
			if iy != heightSegments-1 {
				m.AddTriangle(b, c, d)
			}
		}
	}

	m.CalculateBounds()
	return m
}

// NewCylinder creates a capped cylinder centred on the origin along Y.
// A zero radius collapses that end to a point and omits its cap.
func NewCylinder(radiusTop, radiusBottom, height float64, radialSegments int) *Mesh {
	radialSegments = max(3, radialSegments)

	m := NewMesh("cylinder")
	halfHeight := height / 2
	slope := 0.0
	if height != 0 {
		slope = (radiusBottom - radiusTop) / height
	}

	var rows [2][]int
	for y, radius := range [2]float64{radiusTop, radiusBottom} {
		py := halfHeight - float64(y)*height
		rows[y] = make([]int, radialSegments+1)

		for x := 0; x <= radialSegments; x++ {
			u := float64(x) / float64(radialSegments)
			sin, cos := math.Sincos(u * 2 * math.Pi)

			pos := math3d.V3(radius*sin, py, radius*cos)
			normal := math3d.V3(sin, slope, cos).Normalize()
			rows[y][x] = m.AddVertex(pos, normal, math3d.V2(u, 1-float64(y)))
		}
	}

	for x := range radialSegments {
		a := rows[0][x]
		b := rows[1][x]
		c := rows[1][x+1]
		d := rows[0][x+1]
		if radiusTop > 0 {
			m.AddTriangle(a, b, d)
		}
		if radiusBottom > 0 {
			m.AddTriangle(b, c, d)
		}
	}

	if radiusTop > 0 {
		addCap(m, radiusTop, halfHeight, radialSegments, true)
	}
	if radiusBottom > 0 {
		addCap(m, radiusBottom, -halfHeight, radialSegments, false)
	}

	m.CalculateBounds()
	return m
}

func addCap(m *Mesh, radius, y float64, radialSegments int, top bool) {
	sign := -1.0
	if top {
		sign = 1.0
	}
	normal := math3d.V3(0, sign, 0)
	center := m.AddVertex(math3d.V3(0, y, 0), normal, math3d.V2(0.5, 0.5))

	ring := make([]int, radialSegments+1)
	for x := 0; x <= radialSegments; x++ {
		sin, cos := math.Sincos(float64(x) / float64(radialSegments) * 2 * math.Pi)
		uv := math3d.V2(cos*0.5+0.5, sin*0.5*sign+0.5)
		ring[x] = m.AddVertex(math3d.V3(radius*sin, y, radius*cos), normal, uv)
	}

	for x := range radialSegments {
		if top {
			m.AddTriangle(ring[x], ring[x+1], center)
		} else {
			m.AddTriangle(ring[x+1], ring[x], center)
		}
	}
}

// NewCone creates a cone with its apex at +height/2 and base at -height/2.
func NewCone(radius, height float64, radialSegments int) *Mesh {
	m := NewCylinder(0, radius, height, radialSegments)
	m.Name = "cone"
	return m
}

// NewPlane creates a single-sided rectangle in the XY plane facing +Z.
// UV (0, 0) is the bottom-left corner.
func NewPlane(width, height float64) *Mesh {
	m := NewMesh("plane")
	hw, hh := width/2, height/2
	n := math3d.V3(0, 0, 1)

	a := m.AddVertex(math3d.V3(-hw, -hh, 0), n, math3d.V2(0, 0))
	b := m.AddVertex(math3d.V3(hw, -hh, 0), n, math3d.V2(1, 0))
	c := m.AddVertex(math3d.V3(hw, hh, 0), n, math3d.V2(1, 1))
	d := m.AddVertex(math3d.V3(-hw, hh, 0), n, math3d.V2(0, 1))
	m.AddQuad(a, b, c, d)

	m.CalculateBounds()
	return m
}
