// Package panel implements the dual-mode overlay window controller: a
// panel either docked to the bottom viewport edge (full width, adjustable
// height) or floating (free position and size, draggable header, four
// corner resize handles).
//
// The controller owns geometry and mode only. It never renders, never
// persists, and never interpolates: rendering hosts subscribe to its
// events and feed the targets to their own transition layer. All pointer
// coordinates are absolute viewport units.
package panel

import (
	"log/slog"
	"sync"
	"time"

	"github.com/hudkit/hud/display"
	"github.com/hudkit/hud/geom"
	"github.com/hudkit/hud/gesture"
)

// Mode is the panel presentation mode.
type Mode int

const (
	// Docked anchors the panel to the bottom edge at full width; height
	// is the only mutable dimension.
	Docked Mode = iota
	// Floating gives the panel a free position and size.
	Floating
)

func (m Mode) String() string {
	switch m {
	case Docked:
		return "docked"
	case Floating:
		return "floating"
	}
	return "unknown"
}

// Tuning holds the panel's layout and gesture constants. The zero value is
// replaced by DefaultTuning.
type Tuning struct {
	// MinHeightDocked is the smallest height the docked panel resizes to.
	MinHeightDocked float64
	// MinWidthFrac is the floating panel's minimum width as a fraction of
	// the viewport width.
	MinWidthFrac float64
	// MinHeightFloating is the floating panel's minimum height.
	MinHeightFloating float64
	// TopPadding is extra clearance below the top inset.
	TopPadding float64
	// FlickCloseDistance closes the docked panel when a downward drag
	// travels at least this far and releases at minimum height.
	FlickCloseDistance float64
	// FlickCloseVelocity (units per millisecond) closes the docked panel
	// on a fast downward release that travelled at least
	// FlickCloseMinDrag.
	FlickCloseVelocity float64
	// FlickCloseMinDrag is the minimum downward travel for a velocity
	// flick.
	FlickCloseMinDrag float64
	// ResizeIntent is how far a corner-handle gesture must travel before
	// it counts as a resize; anything shorter is a tap on the handle.
	ResizeIntent float64
	// Tap is the gesture tuning for the header recognizer and multi-tap
	// classification.
	Tap gesture.Tuning
}

// DefaultTuning returns the canonical constants.
func DefaultTuning() Tuning {
	return Tuning{
		MinHeightDocked:    100,
		MinWidthFrac:       0.25,
		MinHeightFloating:  80,
		TopPadding:         20,
		FlickCloseDistance: 150,
		FlickCloseVelocity: 0.8,
		FlickCloseMinDrag:  50,
		ResizeIntent:       5,
		Tap:                gesture.DefaultTuning(),
	}
}

// DefaultInitialHeight is the docked height used when the host does not
// configure one.
const DefaultInitialHeight = 300

// Corner identifies a floating-mode resize handle.
type Corner int

const (
	TopLeft Corner = iota
	TopRight
	BottomLeft
	BottomRight
)

func (c Corner) String() string {
	switch c {
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomLeft:
		return "bottom-left"
	case BottomRight:
		return "bottom-right"
	}
	return "unknown"
}

// Event is a panel state notification delivered to subscribers in
// registration order. Most events fire synchronously with the mutation;
// multi-tap outcomes (ModeChanged, CloseRequested from a triple tap) fire
// from the resolution timer's goroutine.
type Event interface{ isPanelEvent() }

// ModeChanged reports a mode toggle.
type ModeChanged struct{ Mode Mode }

// HeightTarget reports a new docked height target; the render layer
// animates toward it.
type HeightTarget struct{ Height float64 }

// FrameChanged reports new floating geometry.
type FrameChanged struct{ Frame geom.Rect }

// CloseRequested asks the host to close the panel. Flick marks a
// flick-to-close release, which hosts usually animate differently from a
// deliberate close.
type CloseRequested struct{ Flick bool }

// BackRequested asks the host to navigate back; emitted only when the
// panel was configured with a back action.
type BackRequested struct{}

// DragState reports the floating free-drag flag.
type DragState struct{ Dragging bool }

// ResizeState reports the resize-in-progress flag (docked height drag or
// floating corner drag).
type ResizeState struct{ Resizing bool }

func (ModeChanged) isPanelEvent()    {}
func (HeightTarget) isPanelEvent()   {}
func (FrameChanged) isPanelEvent()   {}
func (CloseRequested) isPanelEvent() {}
func (BackRequested) isPanelEvent()  {}
func (DragState) isPanelEvent()      {}
func (ResizeState) isPanelEvent()    {}

// Config wires a Panel's collaborators; Display is required.
type Config struct {
	Display display.Display
	// Insets are the viewport's non-interactive margins.
	Insets geom.Insets
	// Tuning configures constants; the zero value means DefaultTuning.
	Tuning Tuning
	// InitialHeight is the docked starting height; 0 means
	// DefaultInitialHeight, clamped into range.
	InitialHeight float64
	// MaxHeight additionally caps the docked height below the structural
	// viewport limit; 0 means no extra cap.
	MaxHeight float64
	// InitialFrame is the floating starting geometry; the zero value
	// computes a centered default on first use.
	InitialFrame geom.Rect
	// HasBack enables the top-left corner handle's tap-to-go-back.
	HasBack bool
	// Logger receives debug logs; nil means slog.Default.
	Logger *slog.Logger
	// NewTimer overrides the multi-tap resolution timer for tests.
	NewTimer gesture.NewTimer
	// Now overrides the clock used for tap timing and flick velocity.
	Now func() time.Time
}

type subscriber struct {
	id uint64
	fn func(Event)
}

// Panel is the dual-mode window controller. Pointer methods must be
// called from the host's event loop; accessors are safe from any
// goroutine.
type Panel struct {
	disp    display.Display
	insets  geom.Insets
	tuning  Tuning
	maxH    float64
	hasBack bool
	log     *slog.Logger
	now     func() time.Time

	headerRec gesture.Recognizer
	cornerRec gesture.Recognizer
	taps      gesture.TapCounter

	mu       sync.Mutex
	mode     Mode
	height   float64
	frame    geom.Rect
	hasFrame bool
	dragging bool
	resizing bool

	dragStartFrame  geom.Rect
	dockStartHeight float64
	corner          Corner

	lastY, prevY float64
	lastT, prevT time.Time
	moveSamples  int

	subs    []subscriber
	nextSub uint64

	cancelWatch func()
}

// New returns a docked panel at its initial height.
func New(cfg Config) *Panel {
	tuning := cfg.Tuning
	if tuning == (Tuning{}) {
		tuning = DefaultTuning()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "panel")
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	p := &Panel{
		disp:    cfg.Display,
		insets:  cfg.Insets,
		tuning:  tuning,
		maxH:    cfg.MaxHeight,
		hasBack: cfg.HasBack,
		log:     logger,
		now:     now,
	}
	p.headerRec = gesture.Recognizer{
		Threshold: tuning.Tap.TapThreshold,
		Handler: gesture.Handler{
			Start: p.onHeaderStart,
			Drag:  p.onHeaderDrag,
			End:   p.onHeaderEnd,
			Tap:   p.onHeaderTap,
		},
	}
	p.cornerRec = gesture.Recognizer{
		Threshold: tuning.ResizeIntent,
		Handler: gesture.Handler{
			Start: p.onCornerStart,
			Drag:  p.onCornerDrag,
			End:   p.onCornerEnd,
			Tap:   p.onCornerTap,
		},
	}
	p.taps = gesture.TapCounter{
		Window:    tuning.Tap.MultiTapWindow,
		Resolve:   tuning.Tap.MultiTapResolve,
		OnResolve: p.onTapsResolved,
		NewTimer:  cfg.NewTimer,
	}

	initial := cfg.InitialHeight
	if initial <= 0 {
		initial = DefaultInitialHeight
	}
	p.height = p.clampHeight(initial)
	if !cfg.InitialFrame.Size.IsZero() {
		p.frame = p.clampFrame(cfg.InitialFrame)
		p.hasFrame = true
	}

	p.cancelWatch = cfg.Display.Watch(p.onViewportChange)
	return p
}

// Mode returns the current presentation mode.
func (p *Panel) Mode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// Height returns the docked height target.
func (p *Panel) Height() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.height
}

// Frame returns the floating geometry, materializing the default frame on
// first use.
func (p *Panel) Frame() geom.Rect {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frameLocked()
}

// Dragging reports whether a floating free-drag is in progress.
func (p *Panel) Dragging() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dragging
}

// Resizing reports whether a resize (docked height or floating corner) is
// in progress.
func (p *Panel) Resizing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resizing
}

// ToggleMode flips between docked and floating. Any in-flight gesture is
// discarded and the session flags clear; geometry of both modes is
// preserved. The operation is symmetric and carries no other side effects.
func (p *Panel) ToggleMode() {
	p.headerRec.Cancel()
	p.cornerRec.Cancel()

	p.mu.Lock()
	events := p.clearSessionLocked()
	if p.mode == Docked {
		p.mode = Floating
	} else {
		p.mode = Docked
	}
	mode := p.mode
	events = append(events, ModeChanged{Mode: mode})
	p.mu.Unlock()

	p.log.Debug("panel mode toggled", "mode", mode.String())
	p.emit(events...)
}

// SetDockedHeight sets the docked height target directly (hosts use it for
// the consumer-provided initial height), clamped into range.
func (p *Panel) SetDockedHeight(h float64) {
	p.mu.Lock()
	clamped := p.clampHeight(h)
	changed := clamped != p.height
	p.height = clamped
	p.mu.Unlock()
	if changed {
		p.emit(HeightTarget{Height: clamped})
	}
}

// SetFrame sets the floating geometry directly, clamped into range.
func (p *Panel) SetFrame(f geom.Rect) {
	p.mu.Lock()
	clamped := p.clampFrame(f)
	changed := !p.hasFrame || clamped != p.frame
	p.frame = clamped
	p.hasFrame = true
	p.mu.Unlock()
	if changed {
		p.emit(FrameChanged{Frame: clamped})
	}
}

// Cancel discards any in-flight gesture: geometry reverts to the last
// committed value, session flags clear, and nothing else changes.
func (p *Panel) Cancel() {
	p.headerRec.Cancel()
	p.cornerRec.Cancel()
	p.mu.Lock()
	events := p.clearSessionLocked()
	p.mu.Unlock()
	p.emit(events...)
}

// clearSessionLocked reverts in-flight geometry and clears the session
// flags, returning the events describing what changed.
func (p *Panel) clearSessionLocked() []Event {
	var events []Event
	if p.resizing && p.mode == Docked && p.height != p.dockStartHeight {
		p.height = p.dockStartHeight
		events = append(events, HeightTarget{Height: p.height})
	}
	if (p.dragging || (p.resizing && p.mode == Floating)) && p.frame != p.dragStartFrame {
		p.frame = p.dragStartFrame
		events = append(events, FrameChanged{Frame: p.frame})
	}
	if p.dragging {
		p.dragging = false
		events = append(events, DragState{Dragging: false})
	}
	if p.resizing {
		p.resizing = false
		events = append(events, ResizeState{Resizing: false})
	}
	return events
}

// Close stops viewport tracking and the multi-tap timer.
func (p *Panel) Close() {
	if p.cancelWatch != nil {
		p.cancelWatch()
		p.cancelWatch = nil
	}
	p.headerRec.Cancel()
	p.cornerRec.Cancel()
	p.taps.Stop()
}

// Subscribe registers fn for panel events and returns its cancel.
func (p *Panel) Subscribe(fn func(Event)) (cancel func()) {
	p.mu.Lock()
	p.nextSub++
	id := p.nextSub
	p.subs = append(p.subs, subscriber{id: id, fn: fn})
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, s := range p.subs {
			if s.id == id {
				p.subs = append(p.subs[:i], p.subs[i+1:]...)
				return
			}
		}
	}
}

func (p *Panel) emit(evs ...Event) {
	if len(evs) == 0 {
		return
	}
	p.mu.Lock()
	subs := make([]subscriber, len(p.subs))
	copy(subs, p.subs)
	p.mu.Unlock()
	for _, ev := range evs {
		for _, s := range subs {
			s.fn(ev)
		}
	}
}

// onTapsResolved maps a settled header tap sequence to its action: double
// toggles the mode, triple and beyond requests a close, a single tap does
// nothing at the panel level.
func (p *Panel) onTapsResolved(count int) {
	switch {
	case count == 2:
		p.ToggleMode()
	case count >= 3:
		p.emit(CloseRequested{Flick: false})
	}
}

// onViewportChange keeps both modes' geometry valid against the new
// bounds.
func (p *Panel) onViewportChange(geom.Size) {
	p.mu.Lock()
	var events []Event
	if h := p.clampHeight(p.height); h != p.height {
		p.height = h
		events = append(events, HeightTarget{Height: h})
	}
	if p.hasFrame {
		if f := p.clampFrame(p.frame); f != p.frame {
			p.frame = f
			events = append(events, FrameChanged{Frame: f})
		}
	}
	p.mu.Unlock()
	p.emit(events...)
}

// clampHeight constrains a docked height to [MinHeightDocked, usable
// viewport height], honoring the host's extra cap.
func (p *Panel) clampHeight(h float64) float64 {
	hi := p.disp.Bounds().Height - p.insets.Top
	if p.maxH > 0 && p.maxH < hi {
		hi = p.maxH
	}
	return geom.ClampLen(h, p.tuning.MinHeightDocked, hi)
}

func (p *Panel) minFloating() geom.Size {
	return geom.Size{
		Width:  p.tuning.MinWidthFrac * p.disp.Bounds().Width,
		Height: p.tuning.MinHeightFloating,
	}
}

func (p *Panel) constraints() geom.Constraints {
	return geom.Constraints{
		Viewport:   p.disp.Bounds(),
		Insets:     p.insets,
		MinVisible: p.minFloating().Width,
		TopPadding: p.tuning.TopPadding,
	}
}

func (p *Panel) clampFrame(f geom.Rect) geom.Rect {
	return p.constraints().ClampRect(f, p.minFloating())
}

// frameLocked returns the floating frame, computing the default centered
// geometry on first use.
func (p *Panel) frameLocked() geom.Rect {
	if !p.hasFrame {
		p.frame = p.defaultFrameLocked()
		p.hasFrame = true
	}
	return p.frame
}

// defaultFrameLocked centers a frame of 60% viewport width and half the
// usable height.
func (p *Panel) defaultFrameLocked() geom.Rect {
	vp := p.disp.Bounds()
	min := p.minFloating()
	w := geom.ClampLen(0.6*vp.Width, min.Width, vp.Width-p.insets.Left-p.insets.Right)
	h := geom.ClampLen(0.5*vp.Height, min.Height, vp.Height-p.insets.Top-p.tuning.TopPadding-p.insets.Bottom)
	f := geom.Rect{
		Point: geom.Point{X: (vp.Width - w) / 2, Y: (vp.Height - h) / 2},
		Size:  geom.Size{Width: w, Height: h},
	}
	return p.clampFrame(f)
}
