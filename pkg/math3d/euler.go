package math3d

import "math"

// Euler is a rotation expressed as angles (radians) about the X, Y and Z axes,
// applied in XYZ order: the matrix is RotateX * RotateY * RotateZ.
type Euler struct {
	X, Y, Z float64
}

// E creates a new Euler rotation.
func E(x, y, z float64) Euler {
	return Euler{x, y, z}
}

// Yaw returns a rotation about the Y axis only.
func Yaw(angle float64) Euler {
	return Euler{Y: angle}
}

// Matrix returns the rotation matrix for e.
func (e Euler) Matrix() Mat4 {
	if e == (Euler{}) {
		return Identity()
	}
	return RotateX(e.X).Mul(RotateY(e.Y)).Mul(RotateZ(e.Z))
}

// Quat returns the unit quaternion equivalent to e.
func (e Euler) Quat() Quat {
	c1, s1 := math.Cos(e.X/2), math.Sin(e.X/2)
	c2, s2 := math.Cos(e.Y/2), math.Sin(e.Y/2)
	c3, s3 := math.Cos(e.Z/2), math.Sin(e.Z/2)

	return Quat{
		X: s1*c2*c3 + c1*s2*s3,
		Y: c1*s2*c3 - s1*c2*s3,
		Z: c1*c2*s3 + s1*s2*c3,
		W: c1*c2*c3 - s1*s2*s3,
	}
}

// Quat is a rotation quaternion (X, Y, Z imaginary, W real).
type Quat struct {
	X, Y, Z, W float64
}

// Array returns the quaternion in glTF component order (x, y, z, w).
func (q Quat) Array() [4]float64 {
	return [4]float64{q.X, q.Y, q.Z, q.W}
}

// Rotate rotates v by q.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := V3(q.X, q.Y, q.Z)
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// Matrix returns the rotation matrix for q, which must be a unit quaternion.
func (q Quat) Matrix() Mat4 {
	x2, y2, z2 := q.X*2, q.Y*2, q.Z*2
	xx, xy, xz := q.X*x2, q.X*y2, q.X*z2
	yy, yz, zz := q.Y*y2, q.Y*z2, q.Z*z2
	wx, wy, wz := q.W*x2, q.W*y2, q.W*z2

	return Mat4{
		1 - (yy + zz), xy + wz, xz - wy, 0,
		xy - wz, 1 - (xx + zz), yz + wx, 0,
		xz + wy, yz - wx, 1 - (xx + yy), 0,
		0, 0, 0, 1,
	}
}

// Euler returns the XYZ angles equivalent to q.
func (q Quat) Euler() Euler {
	return EulerFromMatrix(q.Matrix())
}

// EulerFromMatrix extracts XYZ angles from the upper 3x3 of m, which must be
// a pure rotation.
func EulerFromMatrix(m Mat4) Euler {
	m11, m12, m13 := m[0], m[4], m[8]
	m22, m23 := m[5], m[9]
	m32, m33 := m[6], m[10]

	e := Euler{Y: math.Asin(min(max(m13, -1), 1))}
	if math.Abs(m13) < 0.9999999 {
		e.X = math.Atan2(-m23, m33)
		e.Z = math.Atan2(-m12, m11)
	} else {
		// Gimbal lock: X and Z rotate about the same axis.
		e.X = math.Atan2(m32, m22)
	}
	return e
}

// Decompose splits an affine matrix into the arguments of Compose.
// Shear is discarded.
func Decompose(m Mat4) (position Vec3, rotation Euler, scale Vec3) {
	sx := V3(m[0], m[1], m[2]).Len()
	sy := V3(m[4], m[5], m[6]).Len()
	sz := V3(m[8], m[9], m[10]).Len()
	if m.Determinant() < 0 {
		sx = -sx
	}

	r := m
	r.setTranslation(Zero3())
	for i, s := range [3]float64{sx, sy, sz} {
		if s == 0 {
			continue
		}
		for j := range 3 {
			r[i*4+j] /= s
		}
	}
	return m.Translation(), EulerFromMatrix(r), V3(sx, sy, sz)
}
