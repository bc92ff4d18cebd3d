package gesture

import "github.com/hudkit/hud/geom"

// Handler receives the outcome of a pointer session. Nil funcs are skipped.
// Deltas are the total signed displacement from the session origin, not
// per-move increments; consumers apply them to the geometry they captured
// when the session began.
type Handler struct {
	// Start fires once per session, on the move that first crosses the
	// tap threshold.
	Start func(origin geom.Point)
	// Drag fires on every move at or past the threshold, including the
	// crossing move itself.
	Drag func(origin geom.Point, dx, dy float64)
	// End fires on release of a session that crossed the threshold.
	End func(origin geom.Point, dx, dy float64)
	// Tap fires on release of a session that never crossed the threshold.
	Tap func(origin geom.Point)
}

// Recognizer disambiguates one pointer session at a time into a tap or a
// drag. It is not safe for concurrent use; hosts drive it from their event
// loop, which serializes pointer events by construction.
type Recognizer struct {
	// Threshold overrides the tap distance threshold; 0 means
	// DefaultTuning().TapThreshold.
	Threshold float64
	// Handler receives classifications.
	Handler Handler

	active  bool
	crossed bool
	origin  geom.Point
	last    geom.Point
}

// Active reports whether a pointer session is in flight. Hosts use it to
// keep routing move events to this recognizer even when the pointer leaves
// the element that started the session (pointer capture).
func (r *Recognizer) Active() bool { return r.active }

// Dragging reports whether the in-flight session has crossed the threshold.
func (r *Recognizer) Dragging() bool { return r.active && r.crossed }

// Down begins a session at p. A session already in flight is discarded
// first, firing nothing, so a missed release cannot wedge the recognizer.
func (r *Recognizer) Down(p geom.Point) {
	r.active = true
	r.crossed = false
	r.origin = p
	r.last = p
}

// Move feeds a pointer position. Crossing the threshold fires Start exactly
// once; the crossing flag is monotonic within the session, so a path that
// wanders back near the origin stays a drag.
func (r *Recognizer) Move(p geom.Point) {
	if !r.active {
		return
	}
	r.last = p
	dx, dy := p.X-r.origin.X, p.Y-r.origin.Y
	if !r.crossed {
		if abs(dx)+abs(dy) <= r.threshold() {
			return
		}
		r.crossed = true
		if f := r.Handler.Start; f != nil {
			f(r.origin)
		}
	}
	if f := r.Handler.Drag; f != nil {
		f(r.origin, dx, dy)
	}
}

// Up ends the session at p, firing Tap or End depending on whether the
// threshold was ever crossed.
func (r *Recognizer) Up(p geom.Point) {
	if !r.active {
		return
	}
	crossed, origin := r.crossed, r.origin
	r.reset()
	if !crossed {
		if f := r.Handler.Tap; f != nil {
			f(origin)
		}
		return
	}
	if f := r.Handler.End; f != nil {
		f(origin, p.X-origin.X, p.Y-origin.Y)
	}
}

// Cancel discards the in-flight session, firing nothing. Hosts call it when
// the gesture is interrupted (focus loss, terminal resize mid-drag).
func (r *Recognizer) Cancel() {
	r.reset()
}

func (r *Recognizer) reset() {
	r.active = false
	r.crossed = false
}

func (r *Recognizer) threshold() float64 {
	if r.Threshold > 0 {
		return r.Threshold
	}
	return DefaultTuning().TapThreshold
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
