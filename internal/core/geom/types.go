// Package geom holds the screen-space primitives shared by the motion pipeline,
// the collision resolver and the renderer.
package geom

import (
	"fmt"
	"math"
)

// Vector2 is a position or displacement in screen units
type Vector2 struct {
	X, Y float64
}

// Add returns v + o
func (v Vector2) Add(o Vector2) Vector2 {
	return Vector2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o
func (v Vector2) Sub(o Vector2) Vector2 {
	return Vector2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale multiplies both components by k
func (v Vector2) Scale(k float64) Vector2 {
	return Vector2{X: v.X * k, Y: v.Y * k}
}

// IsZero reports whether both components are exactly zero
func (v Vector2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// IsFinite reports whether neither component is NaN or infinite
func (v Vector2) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y)
}

// Size is the extent of the playable screen
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
// Walls, the finish zone, ball boxes and the screen boundary are all Rects.
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// RectAround builds a square of the given side centered on c
func RectAround(c Vector2, side float64) Rect {
	return Rect{X: c.X - side/2, Y: c.Y - side/2, Width: side, Height: side}
}

func (r Rect) MinX() float64 { return r.X }
func (r Rect) MaxX() float64 { return r.X + r.Width }
func (r Rect) MinY() float64 { return r.Y }
func (r Rect) MaxY() float64 { return r.Y + r.Height }
func (r Rect) MidX() float64 { return r.X + r.Width/2 }
func (r Rect) MidY() float64 { return r.Y + r.Height/2 }

// Inset shrinks the rectangle by d on every side
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, Width: r.Width - 2*d, Height: r.Height - 2*d}
}

// Intersects reports whether the two rectangles overlap. Edges are inclusive,
// so rectangles that only share a border still intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.MinX() <= o.MaxX() && o.MinX() <= r.MaxX() &&
		r.MinY() <= o.MaxY() && o.MinY() <= r.MaxY()
}

// IsHorizontal reports whether the rectangle is wider than it is tall.
// Square rectangles count as vertical.
func (r Rect) IsHorizontal() bool {
	return r.Width > r.Height
}

// Contains reports whether p lies inside the rectangle, edges included
func (r Rect) Contains(p Vector2) bool {
	return p.X >= r.MinX() && p.X <= r.MaxX() && p.Y >= r.MinY() && p.Y <= r.MaxY()
}

// Validate checks that every field is finite and the dimensions are not negative
func (r Rect) Validate() error {
	if !isFinite(r.X) || !isFinite(r.Y) || !isFinite(r.Width) || !isFinite(r.Height) {
		return fmt.Errorf("rect %v has non-finite fields", r)
	}
	if r.Width < 0 || r.Height < 0 {
		return fmt.Errorf("rect %v has negative size", r)
	}
	return nil
}

// Bounds returns the screen as a rectangle anchored at the origin
func (s Size) Bounds() Rect {
	return Rect{Width: s.Width, Height: s.Height}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
