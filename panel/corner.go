package panel

import "github.com/hudkit/hud/geom"

// Corner handles resize the floating panel by moving the grabbed corner's
// two edges while the opposite corner stays anchored. A gesture that never
// travels past the resize-intent threshold is a tap on the handle instead:
// the top-right handle closes the panel, the top-left navigates back when
// a back action is registered, the bottom handles do nothing.

// CornerDown begins a corner pointer session on handle c.
func (p *Panel) CornerDown(c Corner, pt geom.Point) {
	if p.headerRec.Active() {
		return
	}
	p.mu.Lock()
	p.corner = c
	p.mu.Unlock()
	p.cornerRec.Down(pt)
}

// CornerMove advances a corner pointer session.
func (p *Panel) CornerMove(pt geom.Point) {
	p.cornerRec.Move(pt)
}

// CornerUp ends a corner pointer session.
func (p *Panel) CornerUp(pt geom.Point) {
	p.cornerRec.Up(pt)
}

func (p *Panel) onCornerStart(geom.Point) {
	p.mu.Lock()
	p.dragStartFrame = p.frameLocked()
	p.resizing = true
	p.mu.Unlock()
	p.emit(ResizeState{Resizing: true})
}

func (p *Panel) onCornerDrag(origin geom.Point, dx, dy float64) {
	p.mu.Lock()
	f := p.resizeLocked(p.dragStartFrame, p.corner, dx, dy)
	changed := f != p.frame
	if changed {
		p.frame = f
	}
	p.mu.Unlock()
	if changed {
		p.emit(FrameChanged{Frame: f})
	}
}

func (p *Panel) onCornerEnd(geom.Point, float64, float64) {
	p.mu.Lock()
	p.resizing = false
	p.mu.Unlock()
	p.emit(ResizeState{Resizing: false})
}

func (p *Panel) onCornerTap(geom.Point) {
	p.mu.Lock()
	c := p.corner
	hasBack := p.hasBack
	p.mu.Unlock()
	switch {
	case c == TopRight:
		p.emit(CloseRequested{Flick: false})
	case c == TopLeft && hasBack:
		p.emit(BackRequested{})
	}
}

// resizeLocked applies a corner displacement to the session's starting
// frame. Only the grabbed corner's edges move; each is clamped between the
// anchored edge (offset by the minimum size) and the usable viewport.
func (p *Panel) resizeLocked(start geom.Rect, c Corner, dx, dy float64) geom.Rect {
	vp := p.disp.Bounds()
	min := p.minFloating()
	left, top := start.X, start.Y
	right, bottom := start.Right(), start.Bottom()

	switch c {
	case TopLeft, BottomLeft:
		left = geom.ClampLen(left+dx, p.insets.Left, right-min.Width)
	case TopRight, BottomRight:
		right = geom.ClampLen(right+dx, left+min.Width, vp.Width-p.insets.Right)
	}
	switch c {
	case TopLeft, TopRight:
		top = geom.ClampLen(top+dy, p.insets.Top+p.tuning.TopPadding, bottom-min.Height)
	case BottomLeft, BottomRight:
		bottom = geom.ClampLen(bottom+dy, top+min.Height, vp.Height-p.insets.Bottom)
	}

	return geom.Rect{
		Point: geom.Point{X: left, Y: top},
		Size:  geom.Size{Width: right - left, Height: bottom - top},
	}
}
