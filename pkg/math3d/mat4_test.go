package math3d

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestComposeOrder(t *testing.T) {
	tests := []struct {
		name  string
		pos   Vec3
		rot   Euler
		scale Vec3
		in    Vec3
		want  Vec3
	}{
		{"identity", Zero3(), Euler{}, V3(1, 1, 1), V3(1, 2, 3), V3(1, 2, 3)},
		{"translate only", V3(1, 2, 3), Euler{}, V3(1, 1, 1), Zero3(), V3(1, 2, 3)},
		{"scale then translate", V3(1, 0, 0), Euler{}, V3(2, 2, 2), V3(1, 1, 1), V3(3, 2, 2)},
		{"yaw quarter turn", Zero3(), Yaw(math.Pi / 2), V3(1, 1, 1), V3(0, 0, 1), V3(1, 0, 0)},
		{"scale before rotate", Zero3(), Yaw(math.Pi / 2), V3(2, 1, 1), V3(1, 0, 0), V3(0, 0, -2)},
		{"rotate before translate", V3(1.8, 0, 3.5), Yaw(math.Pi / 2), V3(1, 1, 1), V3(0.47, 0.46, 0.05), V3(1.85, 0.46, 3.03)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compose(tt.pos, tt.rot, tt.scale).MulVec3(tt.in)
			if !got.ApproxEqual(tt.want, 1e-9) {
				t.Errorf("Compose(...).MulVec3(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestEulerMatrixMatchesQuat(t *testing.T) {
	rotations := []Euler{
		{},
		Yaw(math.Pi / 2),
		E(0.3, 0, 0),
		E(0, 0, -1.1),
		E(0.4, -0.7, 1.2),
	}
	points := []Vec3{V3(1, 0, 0), V3(0, 1, 0), V3(0.3, -2, 5)}

	for _, r := range rotations {
		m := r.Matrix()
		q := r.Quat()
		qlen := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
		if math.Abs(qlen-1) > eps {
			t.Errorf("Quat(%v) length = %v, want 1", r, qlen)
		}
		for _, p := range points {
			want := m.MulVec3(p)
			got := q.Rotate(p)
			if !got.ApproxEqual(want, 1e-9) {
				t.Errorf("Quat(%v).Rotate(%v) = %v, matrix gives %v", r, p, got, want)
			}
		}
	}
}

func TestInverse(t *testing.T) {
	m := Compose(V3(1, -2, 3), E(0.2, 0.5, -0.3), V3(2, 1, 0.5))
	got := m.Mul(m.Inverse())
	if !got.ApproxEqual(Identity(), 1e-9) {
		t.Errorf("m * m^-1 = %v, want identity", got)
	}
}

func TestNormalMatrixNonUniformScale(t *testing.T) {
	// A plane tilted 45 degrees, then squashed on Y. The transformed normal
	// must stay perpendicular to the transformed surface.
	m := Scale(V3(1, 0.5, 1))
	n := V3(0, 1, 1).Normalize()
	tangent := V3(0, 1, -1)

	tn := m.MulVec3Dir(tangent)
	nn := m.NormalMatrix().MulVec3Dir(n).Normalize()

	if d := nn.Dot(tn); math.Abs(d) > eps {
		t.Errorf("normal . tangent = %v, want 0", d)
	}

	// The plain model matrix would not keep it perpendicular.
	if d := m.MulVec3Dir(n).Dot(tn); math.Abs(d) < 1e-3 {
		t.Errorf("expected model matrix to skew the normal, dot = %v", d)
	}
}

func TestNormalMatrixIgnoresTranslation(t *testing.T) {
	m := Translate(V3(10, 20, 30)).Mul(RotateY(math.Pi / 2))
	got := m.NormalMatrix().MulVec3Dir(V3(0, 0, 1))
	if !got.ApproxEqual(V3(1, 0, 0), 1e-9) {
		t.Errorf("normal = %v, want (1, 0, 0)", got)
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	p := Perspective(math.Pi/4, 1, 0.1, 100)

	near := p.MulVec4(V4(0, 0, -0.1, 1)).PerspectiveDivide()
	far := p.MulVec4(V4(0, 0, -100, 1)).PerspectiveDivide()

	if math.Abs(near.Z+1) > 1e-9 {
		t.Errorf("near plane NDC z = %v, want -1", near.Z)
	}
	if math.Abs(far.Z-1) > 1e-9 {
		t.Errorf("far plane NDC z = %v, want 1", far.Z)
	}
}

func TestQuatMatrixMatchesEuler(t *testing.T) {
	for _, e := range []Euler{
		E(0.3, -1.1, 0.7),
		E(-2.5, 0.4, 3.0),
		Yaw(math.Pi / 2),
	} {
		if !e.Quat().Matrix().ApproxEqual(e.Matrix(), eps*10) {
			t.Errorf("quaternion matrix for %v differs from Euler matrix", e)
		}
	}
}

func TestEulerRoundTrip(t *testing.T) {
	for _, e := range []Euler{
		E(0.3, -1.1, 0.7),
		E(-2.5, 0.4, 3.0),
		E(0, 0, 0),
		E(0.2, math.Pi/2, 0), // gimbal lock
	} {
		got := EulerFromMatrix(e.Matrix())
		if !got.Matrix().ApproxEqual(e.Matrix(), 1e-6) {
			t.Errorf("EulerFromMatrix(%v) = %v, rotation differs", e, got)
		}
		if q := e.Quat().Euler(); !q.Matrix().ApproxEqual(e.Matrix(), 1e-6) {
			t.Errorf("Quat.Euler for %v = %v, rotation differs", e, q)
		}
	}
}

func TestDecompose(t *testing.T) {
	tests := []struct {
		pos   Vec3
		rot   Euler
		scale Vec3
	}{
		{V3(1.8, 0, 3.5), Yaw(math.Pi / 2), V3(1, 1, 1)},
		{V3(-1, 2, 0.5), E(0.3, -0.2, 1.1), V3(2, 0.5, 3)},
		{V3(0, 0, 0), E(0, 0, 0), V3(-1, 1, 1)},
	}

	for _, tc := range tests {
		m := Compose(tc.pos, tc.rot, tc.scale)
		pos, rot, scale := Decompose(m)
		if !Compose(pos, rot, scale).ApproxEqual(m, 1e-9) {
			t.Errorf("Decompose(%v, %v, %v) = %v, %v, %v does not recompose", tc.pos, tc.rot, tc.scale, pos, rot, scale)
		}
	}
}
