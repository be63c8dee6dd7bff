package math

import (
	gomath "math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("QuatIdentity() = %v", q)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()
	length := float32(gomath.Sqrt(float64(n.Dot(n))))
	if length < 0.999 || length > 1.001 {
		t.Errorf("normalized quaternion length = %v, want ~1", length)
	}
}

func TestQuatNormalizeDegenerate(t *testing.T) {
	q := Quat{}
	n := q.Normalize()
	if n != QuatIdentity() {
		t.Errorf("normalizing zero quaternion = %v, want identity", n)
	}
}

func TestQuatFromAxisAngle(t *testing.T) {
	// 90 degrees around Y.
	q := QuatFromAxisAngle(Vec3{0, 1, 0}, gomath.Pi/2)
	want := Quat{X: 0, Y: float32(gomath.Sqrt(2)) / 2, Z: 0, W: float32(gomath.Sqrt(2)) / 2}
	const eps = 1e-6
	if gomath.Abs(float64(q.Y-want.Y)) > eps || gomath.Abs(float64(q.W-want.W)) > eps {
		t.Errorf("QuatFromAxisAngle() = %v, want %v", q, want)
	}
}
