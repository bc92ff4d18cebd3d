package geom

// Constraints carries the bounds positions are clamped against. The zero
// value clamps against an empty viewport; callers populate Viewport before
// use.
type Constraints struct {
	// Viewport is the full window size.
	Viewport Size
	// Insets are subtracted from the usable bounds on every side.
	Insets Insets
	// MinVisible is how much of an element must remain on screen at the
	// right edge. An element may hang off the edge down to this sliver so
	// that a mostly hidden element keeps a grabbable handle.
	MinVisible float64
	// TopPadding is extra clearance below the top inset.
	TopPadding float64
}

// Clamp constrains pos so an element of the given size stays reachable:
// x within [Insets.Left, Viewport.Width-MinVisible] and y within
// [Insets.Top+TopPadding, Viewport.Height-size.Height-Insets.Bottom].
// Pure and idempotent; when a range is inverted (element taller than the
// usable viewport) the lower bound wins.
func (c Constraints) Clamp(pos Point, size Size) Point {
	return Point{
		X: ClampLen(pos.X, c.Insets.Left, c.Viewport.Width-c.MinVisible),
		Y: ClampLen(pos.Y, c.Insets.Top+c.TopPadding, c.Viewport.Height-size.Height-c.Insets.Bottom),
	}
}

// ClampRect constrains both the position and the dimensions of r: the size
// is floored at min and capped at the usable viewport, then the position is
// clamped so the whole rect stays inside the usable viewport. Unlike Clamp,
// no part may hang off an edge; windows keep their chrome reachable.
func (c Constraints) ClampRect(r Rect, min Size) Rect {
	usableW := c.Viewport.Width - c.Insets.Left - c.Insets.Right
	usableH := c.Viewport.Height - c.Insets.Top - c.TopPadding - c.Insets.Bottom
	r.Width = ClampLen(r.Width, min.Width, usableW)
	r.Height = ClampLen(r.Height, min.Height, usableH)
	r.X = ClampLen(r.X, c.Insets.Left, c.Viewport.Width-c.Insets.Right-r.Width)
	r.Y = ClampLen(r.Y, c.Insets.Top+c.TopPadding, c.Viewport.Height-r.Height-c.Insets.Bottom)
	return r
}

// ClampLen clamps v to [lo, hi]. When hi < lo the lower bound wins.
func ClampLen(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
