package vec2

import (
	"math"
	"testing"
)

func TestNorm(t *testing.T) {
	tests := []struct {
		v    Vec2
		want float64
	}{
		{Vec2{X: 3, Y: 4}, 5},
		{Vec2{X: 0, Y: 0}, 0},
		{Vec2{X: -3, Y: -4}, 5},
	}
	for _, tt := range tests {
		if got := tt.v.Norm(); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Norm(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestUnit(t *testing.T) {
	v := Vec2{X: 3, Y: 4}.Unit()
	if math.Abs(v.Norm()-1) > 1e-9 {
		t.Errorf("Unit() norm = %v, want 1", v.Norm())
	}
	zero := Vec2{}.Unit()
	if !zero.IsZero() {
		t.Errorf("Unit() of zero vector = %v, want zero", zero)
	}
}

func TestRotate90(t *testing.T) {
	v := Vec2{X: 1, Y: 0}.Rotate(math.Pi / 2)
	if math.Abs(v.X) > 1e-9 || math.Abs(v.Y-1) > 1e-9 {
		t.Errorf("Rotate(90deg) = %v, want (0,1)", v)
	}
}

func TestDot(t *testing.T) {
	a := Vec2{X: 1, Y: 0}
	b := Vec2{X: 0, Y: 1}
	if got := a.Dot(b); got != 0 {
		t.Errorf("Dot(perpendicular) = %v, want 0", got)
	}
	if got := a.Dot(a); got != 1 {
		t.Errorf("Dot(self) = %v, want 1", got)
	}
}

func TestIVec2Conversion(t *testing.T) {
	iv := IVec2{X: 3, Y: 7}
	v := iv.ToVec2()
	if v.X != 3 || v.Y != 7 {
		t.Errorf("ToVec2() = %v, want (3,7)", v)
	}
	back := v.ToIVec2()
	if back != iv {
		t.Errorf("round trip = %v, want %v", back, iv)
	}
}

func TestEight(t *testing.T) {
	offsets := Eight()
	if len(offsets) != 8 {
		t.Fatalf("Eight() returned %d offsets, want 8", len(offsets))
	}
	for _, o := range offsets {
		if o.X == 0 && o.Y == 0 {
			t.Errorf("Eight() includes the origin")
		}
	}
}
