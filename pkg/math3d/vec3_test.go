package math3d

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Vec3
		want Vec3
	}{
		{"axis", V3(0, 0, 5), V3(0, 0, 1)},
		{"diagonal", V3(3, 4, 0), V3(0.6, 0.8, 0)},
		{"zero", Vec3{}, Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if got.Sub(tt.want).Len() > 1e-12 {
				t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLenMatchesLenSq(t *testing.T) {
	v := V3(1, -2, 2)
	if v.LenSq() != 9 || math.Abs(v.Len()-3) > 1e-12 {
		t.Errorf("LenSq = %v, Len = %v", v.LenSq(), v.Len())
	}
}
