package math

import (
	"testing"

	"github.com/chewxy/math32"
)

func approx(a, b float32) bool {
	return math32.Abs(a-b) < 1e-4
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{47.6498, -7.6999, 12.0860}
	n := v.Normalize()
	if !approx(n.Length(), 1) {
		t.Errorf("Normalize().Length() = %v, want 1", n.Length())
	}
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Error("zero vector should normalize to zero")
	}
}

func TestVec3IsZero(t *testing.T) {
	tests := []struct {
		v    Vec3
		want bool
	}{
		{Vec3{}, true},
		{Vec3{0, 0, 1e-3}, false},
		{Vec3{1, 2, 3}, false},
	}
	for _, tt := range tests {
		if got := tt.v.IsZero(); got != tt.want {
			t.Errorf("%v.IsZero() = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestVec3Cross(t *testing.T) {
	got := Vec3{1, 0, 0}.Cross(Vec3{0, 1, 0})
	if got != (Vec3{0, 0, 1}) {
		t.Errorf("Cross() = %v, want (0,0,1)", got)
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	if got := m.Mul(Identity()); got != m {
		t.Errorf("M * I = %v, want %v", got, m)
	}
}

func TestTransformVec3(t *testing.T) {
	m := Translate(10, 20, 30).Mul(Scale(2, 2, 2))
	got := m.TransformVec3(Vec3{1, 2, 3})
	want := Vec3{12, 24, 36}
	if got != want {
		t.Errorf("TransformVec3() = %v, want %v", got, want)
	}
}

func TestInverseRoundTrip(t *testing.T) {
	proj := Perspective(75*math32.Pi/180, 16.0/9.0, 0.1, 1000)
	view := LookAt(Vec3{}, Vec3{1, 0, 0}, Vec3{0, 1, 0})
	vp := proj.Mul(view)
	id := vp.Mul(vp.Inverse())
	for i := 0; i < 16; i++ {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		if math32.Abs(id[i]-want) > 1e-3 {
			t.Fatalf("VP * VP^-1 element %d = %v, want %v", i, id[i], want)
		}
	}
}

func TestLookAtForward(t *testing.T) {
	// A point straight ahead lands on the negative view-space Z axis.
	view := LookAt(Vec3{}, Vec3{1, 0, 0}, Vec3{0, 1, 0})
	p := view.TransformVec3(Vec3{5, 0, 0})
	if !approx(p.X, 0) || !approx(p.Y, 0) || !approx(p.Z, -5) {
		t.Errorf("LookAt forward point = %v, want (0,0,-5)", p)
	}
}
