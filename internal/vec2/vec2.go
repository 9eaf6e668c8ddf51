// Package vec2 provides 2D vector types shared across the navigation
// core: Vec2 for continuous positions and IVec2 for grid cell indices.
package vec2

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Number is the set of element types a Vector2 can be instantiated over.
type Number interface {
	constraints.Integer | constraints.Float
}

// Vector2 is a generic 2D vector.
type Vector2[T Number] struct {
	X, Y T
}

// Vec2 is a continuous 2D position or displacement.
type Vec2 = Vector2[float64]

// IVec2 is a grid cell index.
type IVec2 = Vector2[int32]

// New constructs a Vector2 from components.
func New[T Number](x, y T) Vector2[T] {
	return Vector2[T]{X: x, Y: y}
}

// Add returns v + o.
func (v Vector2[T]) Add(o Vector2[T]) Vector2[T] {
	return Vector2[T]{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vector2[T]) Sub(o Vector2[T]) Vector2[T] {
	return Vector2[T]{X: v.X - o.X, Y: v.Y - o.Y}
}

// Neg returns -v.
func (v Vector2[T]) Neg() Vector2[T] {
	return Vector2[T]{X: -v.X, Y: -v.Y}
}

// Scale returns v * s.
func (v Vector2[T]) Scale(s T) Vector2[T] {
	return Vector2[T]{X: v.X * s, Y: v.Y * s}
}

// Dot returns the dot product of v and o.
func (v Vector2[T]) Dot(o Vector2[T]) T {
	return v.X*o.X + v.Y*o.Y
}

// Eq reports whether v and o have identical components.
func (v Vector2[T]) Eq(o Vector2[T]) bool {
	return v.X == o.X && v.Y == o.Y
}

// IsZero reports whether v is the zero vector.
func (v Vector2[T]) IsZero() bool {
	var zero T
	return v.X == zero && v.Y == zero
}

// Norm returns the Euclidean length of v, promoted to float64.
func (v Vector2[T]) Norm() float64 {
	return math.Sqrt(float64(v.X)*float64(v.X) + float64(v.Y)*float64(v.Y))
}

// Dist returns the Euclidean distance between v and o.
func (v Vector2[T]) Dist(o Vector2[T]) float64 {
	return v.Sub(o).Norm()
}

// Dist2 returns the squared Euclidean distance between v and o.
func (v Vector2[T]) Dist2(o Vector2[T]) float64 {
	dx := float64(v.X - o.X)
	dy := float64(v.Y - o.Y)
	return dx*dx + dy*dy
}

// Unit returns v scaled to unit length, as a continuous vector.
// Returns the zero vector if v is the zero vector.
func (v Vector2[T]) Unit() Vec2 {
	n := v.Norm()
	if n <= 0 {
		return Vec2{}
	}
	return Vec2{X: float64(v.X) / n, Y: float64(v.Y) / n}
}

// Rotate returns v rotated counter-clockwise by theta radians, as a
// continuous vector.
func (v Vector2[T]) Rotate(theta float64) Vec2 {
	c, s := math.Cos(theta), math.Sin(theta)
	x, y := float64(v.X), float64(v.Y)
	return Vec2{
		X: x*c - y*s,
		Y: x*s + y*c,
	}
}

// ToVec2 converts v to a continuous vector.
func (v Vector2[T]) ToVec2() Vec2 {
	return Vec2{X: float64(v.X), Y: float64(v.Y)}
}

// ToIVec2 truncates v to its integer cell.
func (v Vector2[T]) ToIVec2() IVec2 {
	return IVec2{X: int32(v.X), Y: int32(v.Y)}
}

// Floor returns the cell containing v, rounding toward negative
// infinity.
func (v Vector2[T]) Floor() IVec2 {
	return IVec2{
		X: int32(math.Floor(float64(v.X))),
		Y: int32(math.Floor(float64(v.Y))),
	}
}

// Eight returns the eight 8-connected neighbor offsets in a fixed,
// deterministic iteration order (row-major, skipping the origin).
func Eight() []IVec2 {
	return []IVec2{
		{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
		{X: -1, Y: 0}, {X: 1, Y: 0},
		{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
	}
}
