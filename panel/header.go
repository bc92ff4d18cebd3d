package panel

import "github.com/hudkit/hud/geom"

// Header gestures branch on mode: docked drags resize the panel height
// against the bottom edge, floating drags move the whole frame. Taps feed
// the multi-tap classifier in either mode.

// HeaderDown begins a header pointer session at an absolute viewport
// position.
func (p *Panel) HeaderDown(pt geom.Point) {
	if p.cornerRec.Active() {
		return
	}
	p.mu.Lock()
	p.lastY, p.prevY = pt.Y, pt.Y
	now := p.now()
	p.lastT, p.prevT = now, now
	p.moveSamples = 0
	p.mu.Unlock()
	p.headerRec.Down(pt)
}

// HeaderMove advances a header pointer session.
func (p *Panel) HeaderMove(pt geom.Point) {
	if !p.headerRec.Active() {
		return
	}
	p.mu.Lock()
	p.prevY, p.prevT = p.lastY, p.lastT
	p.lastY, p.lastT = pt.Y, p.now()
	p.moveSamples++
	p.mu.Unlock()
	p.headerRec.Move(pt)
}

// HeaderUp ends a header pointer session.
func (p *Panel) HeaderUp(pt geom.Point) {
	p.headerRec.Up(pt)
}

func (p *Panel) onHeaderStart(geom.Point) {
	p.mu.Lock()
	var ev Event
	if p.mode == Docked {
		p.dockStartHeight = p.height
		p.resizing = true
		ev = ResizeState{Resizing: true}
	} else {
		p.dragStartFrame = p.frameLocked()
		p.dragging = true
		ev = DragState{Dragging: true}
	}
	p.mu.Unlock()
	p.emit(ev)
}

func (p *Panel) onHeaderDrag(origin geom.Point, dx, dy float64) {
	p.mu.Lock()
	var events []Event
	if p.mode == Docked {
		// The header tracks the pointer: the target height is the span
		// from the pointer down to the bottom edge.
		pointerY := origin.Y + dy
		h := p.clampHeight(p.disp.Bounds().Height - pointerY)
		if h != p.height {
			p.height = h
			events = append(events, HeightTarget{Height: h})
		}
	} else {
		f := p.dragStartFrame
		f.Point = f.Point.Add(dx, dy)
		f = p.clampFrame(f)
		if f != p.frame {
			p.frame = f
			events = append(events, FrameChanged{Frame: f})
		}
	}
	p.mu.Unlock()
	p.emit(events...)
}

func (p *Panel) onHeaderEnd(origin geom.Point, dx, dy float64) {
	p.mu.Lock()
	var events []Event
	flick := false
	if p.mode == Docked {
		flick = p.flickLocked(dy)
		if flick {
			// A flick abandons the dragged height so the next open is
			// not squashed to the release size.
			if p.height != p.dockStartHeight {
				p.height = p.dockStartHeight
				events = append(events, HeightTarget{Height: p.height})
			}
		}
		p.resizing = false
		events = append(events, ResizeState{Resizing: false})
	} else {
		p.dragging = false
		events = append(events, DragState{Dragging: false})
	}
	if flick {
		events = append(events, CloseRequested{Flick: true})
	}
	p.mu.Unlock()
	p.emit(events...)
}

// flickLocked classifies a docked release as a flick-to-close: either a
// long downward pull released at minimum height, or a fast downward
// release past the minimum travel.
func (p *Panel) flickLocked(dy float64) bool {
	if dy > p.tuning.FlickCloseDistance && p.height <= p.tuning.MinHeightDocked {
		return true
	}
	return p.releaseVelocityLocked() > p.tuning.FlickCloseVelocity && dy > p.tuning.FlickCloseMinDrag
}

// releaseVelocityLocked derives the downward pointer velocity in units
// per millisecond from the last two move samples.
func (p *Panel) releaseVelocityLocked() float64 {
	if p.moveSamples < 2 {
		return 0
	}
	ms := float64(p.lastT.Sub(p.prevT).Microseconds()) / 1000
	if ms <= 0 {
		return 0
	}
	return (p.lastY - p.prevY) / ms
}

func (p *Panel) onHeaderTap(geom.Point) {
	p.taps.Tap(p.now())
}
