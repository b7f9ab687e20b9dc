package imdraw

import "github.com/chewxy/math32"

// Vec2 is a 2D position or displacement in float32, the precision of the
// vertex format.
type Vec2 struct {
	X, Y float32
}

// V2 is a convenience function to create a Vec2.
func V2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns the sum of two vectors.
func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{X: v.X + w.X, Y: v.Y + w.Y}
}

// Sub returns the difference of two vectors.
func (v Vec2) Sub(w Vec2) Vec2 {
	return Vec2{X: v.X - w.X, Y: v.Y - w.Y}
}

// Mul returns the vector scaled by a scalar.
func (v Vec2) Mul(s float32) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Div divides component-wise. A zero divisor component yields zero.
func (v Vec2) Div(w Vec2) Vec2 {
	var out Vec2
	if w.X != 0 {
		out.X = v.X / w.X
	}
	if w.Y != 0 {
		out.Y = v.Y / w.Y
	}
	return out
}

// Approx returns true if two vectors are equal within epsilon.
func (v Vec2) Approx(w Vec2, epsilon float32) bool {
	return math32.Abs(v.X-w.X) < epsilon && math32.Abs(v.Y-w.Y) < epsilon
}

// Array returns the vector in vertex order.
func (v Vec2) Array() [2]float32 {
	return [2]float32{v.X, v.Y}
}

// Point is an integer pixel position, used for atlas cells and image
// destinations.
type Point struct {
	X, Y int32
}

// Pt is a convenience function to create a Point.
func Pt(x, y int32) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Vec2 converts the point to float coordinates.
func (p Point) Vec2() Vec2 {
	return Vec2{X: float32(p.X), Y: float32(p.Y)}
}

// Size is a width and height in pixels.
type Size struct {
	W, H uint32
}

// Empty reports whether the size has zero area.
func (s Size) Empty() bool {
	return s.W == 0 || s.H == 0
}

// Vec2 converts the size to float coordinates.
func (s Size) Vec2() Vec2 {
	return Vec2{X: float32(s.W), Y: float32(s.H)}
}

// Rect is an axis-aligned rectangle given by two corners. In pixel space
// (X0, Y0) is the top-left corner.
type Rect struct {
	X0, Y0, X1, Y1 float32
}

// R is a convenience function to create a Rect.
func R(x0, y0, x1, y1 float32) Rect {
	return Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// Inset shrinks the rectangle by d on every side.
func (r Rect) Inset(d float32) Rect {
	return Rect{X0: r.X0 + d, Y0: r.Y0 + d, X1: r.X1 - d, Y1: r.Y1 - d}
}

// Corners returns top-left, top-right, bottom-left and bottom-right, the
// order in which quads are emitted.
func (r Rect) Corners() [4]Vec2 {
	return [4]Vec2{
		{r.X0, r.Y0},
		{r.X1, r.Y0},
		{r.X0, r.Y1},
		{r.X1, r.Y1},
	}
}
