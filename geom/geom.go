// Package geom provides the geometry primitives shared by the overlay
// engine: viewport-relative points, sizes, safe-area insets and rectangles,
// plus the clamping rules that keep overlay elements reachable inside a
// viewport.
//
// Coordinates are float64 units. Terminal hosts map one unit to one cell
// and round at render time; the engine itself never rounds.
package geom

// Point is a viewport-relative coordinate, conventionally the top-left
// corner of an overlay element.
type Point struct {
	X float64
	Y float64
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Size is the width and height of an overlay element.
type Size struct {
	Width  float64
	Height float64
}

// IsZero reports whether both dimensions are zero.
func (s Size) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

// Insets are non-interactive viewport margins (status bars, notches,
// window chrome). All clamping subtracts them from the usable bounds.
type Insets struct {
	Top    float64
	Left   float64
	Bottom float64
	Right  float64
}

// Rect is a positioned, sized region; Point is its top-left corner.
type Rect struct {
	Point
	Size
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// MidX returns the horizontal midpoint of the rect.
func (r Rect) MidX() float64 { return r.X + r.Width/2 }

// Contains reports whether p falls inside r. The right and bottom edges are
// exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}
