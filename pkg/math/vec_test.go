package math

import (
	"testing"
)

func TestVec3Add(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}
	got := a.Add(b)
	want := Vec3{5, 7, 9}
	if got != want {
		t.Errorf("Vec3.Add() = %v, want %v", got, want)
	}
}

func TestVec3MulDiv(t *testing.T) {
	a := Vec3{2, 6, 8}
	b := Vec3{2, 3, 4}
	if got := a.Mul(b); got != (Vec3{4, 18, 32}) {
		t.Errorf("Vec3.Mul() = %v", got)
	}
	if got := a.Div(b); got != (Vec3{1, 2, 2}) {
		t.Errorf("Vec3.Div() = %v", got)
	}
}

func TestVec3MinMax(t *testing.T) {
	a := Vec3{1, 5, -3}
	b := Vec3{2, 4, -6}
	if got := a.Min(b); got != (Vec3{1, 4, -6}) {
		t.Errorf("Vec3.Min() = %v", got)
	}
	if got := a.Max(b); got != (Vec3{2, 5, -3}) {
		t.Errorf("Vec3.Max() = %v", got)
	}
}

func TestVec3Length(t *testing.T) {
	v := Vec3{0, 3, 4}
	got := v.Length()
	want := float32(5)
	if got != want {
		t.Errorf("Vec3.Length() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 4, 12}
	n := v.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Error("normalizing zero vector should return zero")
	}
}

func TestVec3Clamp01(t *testing.T) {
	v := Vec3{-0.5, 0.25, 1.5}
	got := v.Clamp01()
	want := Vec3{0, 0.25, 1}
	if got != want {
		t.Errorf("Vec3.Clamp01() = %v, want %v", got, want)
	}
}

func TestVec3Lerp(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{2, 4, 8}
	got := a.Lerp(b, 0.5)
	want := Vec3{1, 2, 4}
	if got != want {
		t.Errorf("Vec3.Lerp() = %v, want %v", got, want)
	}
}
