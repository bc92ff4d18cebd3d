// Package badge owns the minimized overlay bubble: a small draggable
// element whose position persists across sessions and which can be parked
// mostly off the right viewport edge, leaving only a grabbable handle.
//
// The badge combines the position store (load, clamp, self-heal, debounced
// saves) with the visibility rules (midpoint hide check, remembered
// last-visible position). It owns the bubble's position exclusively; the
// expanded panel's geometry is a separate concern with its own controller.
package badge

import (
	"log/slog"
	"sync"
	"time"

	"github.com/hudkit/hud/display"
	"github.com/hudkit/hud/geom"
	"github.com/hudkit/hud/gesture"
	"github.com/hudkit/hud/store"
)

// Tuning holds the badge's layout and timing constants. The zero value is
// replaced by DefaultTuning.
type Tuning struct {
	// HandleWidth is the sliver left on screen when the badge is hidden
	// off the right edge; it doubles as the clamp's minimum visibility.
	HandleWidth float64
	// EdgeMargin is the default distance from the right viewport edge.
	EdgeMargin float64
	// TopPadding is extra clearance below the top inset.
	TopPadding float64
	// FallbackY is the default vertical position when nothing is saved.
	FallbackY float64
	// SaveDebounce coalesces position writes during a drag.
	SaveDebounce time.Duration
	// Tap is the gesture tuning; its TapThreshold also serves as the
	// tolerance for self-healing stale saved positions.
	Tap gesture.Tuning
}

// DefaultTuning returns the canonical constants.
func DefaultTuning() Tuning {
	return Tuning{
		HandleWidth:  32,
		EdgeMargin:   20,
		TopPadding:   20,
		FallbackY:    100,
		SaveDebounce: store.DefaultSaveDebounce,
		Tap:          gesture.DefaultTuning(),
	}
}

// DefaultSize is the canonical bubble footprint.
var DefaultSize = geom.Size{Width: 100, Height: 32}

// Event is a badge state notification delivered to subscribers in
// registration order, synchronously with the mutation.
type Event interface{ isBadgeEvent() }

// Moved reports a new committed position (drag move, drag end, resize
// re-clamp).
type Moved struct{ Position geom.Point }

// DragStarted reports the tap threshold was crossed.
type DragStarted struct{}

// DragEnded reports a drag finished at the clamped position.
type DragEnded struct{ Position geom.Point }

// Tapped reports a tap on the visible badge. Taps on the hidden handle
// show the badge instead and do not produce Tapped.
type Tapped struct{}

// Hidden reports the badge docked off the right edge.
type Hidden struct{ Position geom.Point }

// Shown reports the badge restored to a visible position.
type Shown struct{ Position geom.Point }

func (Moved) isBadgeEvent()       {}
func (DragStarted) isBadgeEvent() {}
func (DragEnded) isBadgeEvent()   {}
func (Tapped) isBadgeEvent()      {}
func (Hidden) isBadgeEvent()      {}
func (Shown) isBadgeEvent()       {}

// Config wires a Badge's collaborators. KV and Display are required.
type Config struct {
	KV      store.KV
	Display display.Display
	// Size is the bubble footprint; zero means DefaultSize.
	Size geom.Size
	// Insets are the viewport's non-interactive margins.
	Insets geom.Insets
	// Tuning configures constants; the zero value means DefaultTuning.
	// Pass a complete Tuning, zero fields are not filled in individually.
	Tuning Tuning
	// Keys overrides the persisted key pair, for hosts running several
	// badges against one store.
	Keys store.PositionKeys
	// Logger receives storage warnings; nil means slog.Default.
	Logger *slog.Logger
	// NewTimer overrides the debounce timer for tests.
	NewTimer store.NewTimer
}

type subscriber struct {
	id uint64
	fn func(Event)
}

// Badge is the minimized bubble controller. Pointer methods must be called
// from the host's event loop; all other methods are safe from any
// goroutine.
type Badge struct {
	disp   display.Display
	size   geom.Size
	insets geom.Insets
	tuning Tuning
	log    *slog.Logger
	pos    *store.Position

	rec gesture.Recognizer

	mu             sync.Mutex
	cur            geom.Point
	dragStart      geom.Point
	hidden         bool
	lastVisible    geom.Point
	hasLastVisible bool
	subs           []subscriber
	nextSub        uint64

	cancelWatch func()
}

// New loads or defaults the badge position and starts tracking viewport
// changes. It never fails: a broken store merely yields the default
// position.
func New(cfg Config) *Badge {
	tuning := cfg.Tuning
	if tuning == (Tuning{}) {
		tuning = DefaultTuning()
	}
	size := cfg.Size
	if size.IsZero() {
		size = DefaultSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "badge")

	b := &Badge{
		disp:   cfg.Display,
		size:   size,
		insets: cfg.Insets,
		tuning: tuning,
		log:    logger,
		pos: store.NewPosition(cfg.KV, store.PositionConfig{
			Keys:     cfg.Keys,
			Debounce: tuning.SaveDebounce,
			Logger:   logger,
			NewTimer: cfg.NewTimer,
		}),
	}
	b.rec = gesture.Recognizer{
		Threshold: tuning.Tap.TapThreshold,
		Handler: gesture.Handler{
			Start: b.onDragStart,
			Drag:  b.onDragMove,
			End:   b.onDragEnd,
			Tap:   b.onTap,
		},
	}

	b.initPosition()
	b.cancelWatch = cfg.Display.Watch(b.onViewportChange)
	return b
}

// initPosition implements the load protocol: saved position clamped and
// self-healed, or the deterministic default, which is deliberately not
// persisted so an untouched badge leaves storage empty.
func (b *Badge) initPosition() {
	if saved, ok := b.pos.Load(); ok {
		clamped := b.constraints().Clamp(saved, b.size)
		if manhattan(clamped, saved) > b.tuning.Tap.TapThreshold {
			b.log.Debug("healing stale saved position", "saved_x", saved.X, "saved_y", saved.Y, "x", clamped.X, "y", clamped.Y)
			b.pos.Save(clamped)
		}
		b.cur = clamped
		return
	}
	b.cur = b.defaultPosition()
}

// defaultPosition sits the badge near the top-right corner: EdgeMargin in
// from the right edge, FallbackY down, clamped into bounds.
func (b *Badge) defaultPosition() geom.Point {
	vp := b.disp.Bounds()
	p := geom.Point{
		X: vp.Width - b.size.Width - b.tuning.EdgeMargin - b.insets.Right,
		Y: b.tuning.FallbackY,
	}
	return b.constraints().Clamp(p, b.size)
}

func (b *Badge) constraints() geom.Constraints {
	return geom.Constraints{
		Viewport:   b.disp.Bounds(),
		Insets:     b.insets,
		MinVisible: b.tuning.HandleWidth,
		TopPadding: b.tuning.TopPadding,
	}
}

// Position returns the current committed position.
func (b *Badge) Position() geom.Point {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cur
}

// Size returns the bubble footprint.
func (b *Badge) Size() geom.Size { return b.size }

// Hidden reports whether the badge is docked off the right edge.
func (b *Badge) Hidden() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hidden
}

// Dragging reports whether a drag session is past the tap threshold.
func (b *Badge) Dragging() bool { return b.rec.Dragging() }

// Bounds returns the badge rect at its current position.
func (b *Badge) Bounds() geom.Rect {
	return geom.Rect{Point: b.Position(), Size: b.size}
}

// Subscribe registers fn for badge events and returns its cancel.
func (b *Badge) Subscribe(fn func(Event)) (cancel func()) {
	b.mu.Lock()
	b.nextSub++
	id := b.nextSub
	b.subs = append(b.subs, subscriber{id: id, fn: fn})
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

func (b *Badge) emit(evs ...Event) {
	b.mu.Lock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()
	for _, ev := range evs {
		for _, s := range subs {
			s.fn(ev)
		}
	}
}

// Down begins a pointer session on the badge.
func (b *Badge) Down(p geom.Point) { b.rec.Down(p) }

// Move feeds a pointer position; hosts route motion here while the session
// is active regardless of what the pointer is over.
func (b *Badge) Move(p geom.Point) { b.rec.Move(p) }

// Up ends the pointer session.
func (b *Badge) Up(p geom.Point) { b.rec.Up(p) }

// CancelGesture discards the in-flight pointer session: the position
// reverts to where the drag began, pending debounced writes are dropped,
// and nothing is persisted. Hosts call it on interruptions such as focus
// loss.
func (b *Badge) CancelGesture() {
	if !b.rec.Dragging() {
		b.rec.Cancel()
		return
	}
	b.rec.Cancel()
	b.mu.Lock()
	b.cur = b.dragStart
	p := b.cur
	b.mu.Unlock()
	b.pos.Stop()
	b.emit(Moved{Position: p})
}

// Active reports whether a pointer session is in flight.
func (b *Badge) Active() bool { return b.rec.Active() }

func (b *Badge) onDragStart(geom.Point) {
	b.mu.Lock()
	b.dragStart = b.cur
	b.mu.Unlock()
	b.emit(DragStarted{})
}

// onDragMove tracks the raw (unclamped) position during the drag; clamping
// waits for the gesture end so the badge follows the pointer faithfully.
func (b *Badge) onDragMove(_ geom.Point, dx, dy float64) {
	b.mu.Lock()
	b.cur = b.dragStart.Add(dx, dy)
	p := b.cur
	b.mu.Unlock()
	b.pos.DebouncedSave(p)
	b.emit(Moved{Position: p})
}

func (b *Badge) onDragEnd(_ geom.Point, dx, dy float64) {
	b.mu.Lock()
	raw := b.dragStart.Add(dx, dy)
	clamped := b.constraints().Clamp(raw, b.size)
	b.cur = clamped
	events := []Event{Moved{Position: clamped}, DragEnded{Position: clamped}}

	if b.shouldHide(raw) {
		events = append(events, b.hideLocked(clamped))
	} else if b.hidden {
		// Dragged back out of the docked sliver: visible again without
		// touching the remembered position.
		b.hidden = false
		events = append(events, Shown{Position: clamped})
	}
	final := b.cur
	b.mu.Unlock()

	b.pos.Save(clamped)
	if final != clamped {
		b.pos.Save(final)
	}
	b.emit(events...)
}

func (b *Badge) onTap(geom.Point) {
	b.mu.Lock()
	hidden := b.hidden
	b.mu.Unlock()
	if hidden {
		b.Show()
		return
	}
	b.emit(Tapped{})
}

// shouldHide reports whether pos leaves the bubble's horizontal midpoint
// past the right viewport edge.
func (b *Badge) shouldHide(pos geom.Point) bool {
	r := geom.Rect{Point: pos, Size: b.size}
	return r.MidX() > b.disp.Bounds().Width
}

// hideLocked docks the badge, remembering from as the last visible
// position on the visible-to-hidden transition only; re-hiding while
// already hidden keeps the older memory.
func (b *Badge) hideLocked(from geom.Point) Event {
	if !b.hidden {
		b.lastVisible = from
		b.hasLastVisible = true
	}
	b.hidden = true
	vp := b.disp.Bounds()
	docked := geom.Point{X: vp.Width - b.tuning.HandleWidth, Y: from.Y}
	docked = b.constraints().Clamp(docked, b.size)
	b.cur = docked
	return Hidden{Position: docked}
}

// Hide docks the badge off the right edge, leaving only the handle sliver,
// and persists the docked position.
func (b *Badge) Hide() {
	b.mu.Lock()
	ev := b.hideLocked(b.cur)
	docked := b.cur
	b.mu.Unlock()
	b.pos.Save(docked)
	b.emit(ev)
}

// Show restores the remembered last-visible position, or the default when
// nothing was remembered, and persists it.
func (b *Badge) Show() {
	b.mu.Lock()
	if !b.hidden {
		b.mu.Unlock()
		return
	}
	b.hidden = false
	p := b.defaultPosition()
	if b.hasLastVisible {
		p = b.constraints().Clamp(b.lastVisible, b.size)
	}
	b.cur = p
	b.mu.Unlock()
	b.pos.Save(p)
	b.emit(Shown{Position: p})
}

// Toggle hides or shows depending on the current state.
func (b *Badge) Toggle() {
	if b.Hidden() {
		b.Show()
	} else {
		b.Hide()
	}
}

// onViewportChange re-validates the position against the new bounds. A
// hidden badge tracks the moving right edge; a visible one is re-clamped.
// The corrected position is saved through the debounced path since live
// resizes arrive in bursts.
func (b *Badge) onViewportChange(vp geom.Size) {
	b.mu.Lock()
	old := b.cur
	var next geom.Point
	if b.hidden {
		next = b.constraints().Clamp(geom.Point{X: vp.Width - b.tuning.HandleWidth, Y: old.Y}, b.size)
	} else {
		next = b.constraints().Clamp(old, b.size)
	}
	moved := next != old
	if moved {
		b.cur = next
	}
	b.mu.Unlock()

	if moved {
		b.pos.DebouncedSave(next)
		b.emit(Moved{Position: next})
	}
}

// Close stops viewport tracking, cancels any in-flight gesture, and clears
// the debounce timer so nothing fires after disposal.
func (b *Badge) Close() {
	if b.cancelWatch != nil {
		b.cancelWatch()
		b.cancelWatch = nil
	}
	b.rec.Cancel()
	b.pos.Stop()
}

func manhattan(a, b geom.Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
