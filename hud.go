// Package hud embeds a developer-tools overlay in a Bubble Tea program: a
// small draggable badge that expands into a dockable/floatable panel
// hosting arbitrary content.
//
// Overlay is a component, not a root model. The host model forwards
// messages to Update, renders its own view, and hands it to Render for
// compositing:
//
//	func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
//		cmd := m.overlay.Update(msg)
//		...
//		return m, cmd
//	}
//
//	func (m model) View() string {
//		return m.overlay.Render(m.appView())
//	}
//
// The badge position persists across runs when a state directory is
// configured. Geometry animates with springs; the controllers under
// badge and panel own the semantics, this package owns the Bubble Tea
// plumbing, hit-testing, and drawing.
package hud

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	zone "github.com/lrstanley/bubblezone"

	"github.com/hudkit/hud/badge"
	"github.com/hudkit/hud/display"
	"github.com/hudkit/hud/geom"
	"github.com/hudkit/hud/motion"
	"github.com/hudkit/hud/panel"
	"github.com/hudkit/hud/store"
)

// Content is the host view rendered inside the expanded panel. SetSize
// reports the usable interior in cells whenever the panel geometry
// changes.
type Content interface {
	SetSize(width, height int)
	Update(msg tea.Msg) tea.Cmd
	View() string
}

const eventBuffer = 64

// Animator names within the motion group.
const (
	animBadgeX = "badge.x"
	animBadgeY = "badge.y"
	animPanelH = "panel.height"
	animFrameX = "frame.x"
	animFrameY = "frame.y"
	animFrameW = "frame.w"
	animFrameH = "frame.h"
)

// Zone id suffixes; each overlay namespaces them with its instance id.
const (
	zoneBadge  = "badge"
	zoneHeader = "header"
	zoneTL     = "tl"
	zoneTR     = "tr"
	zoneBL     = "bl"
	zoneBR     = "br"
)

// Option configures an Overlay.
type Option func(*Overlay)

// WithKV uses an explicit key-value store for position persistence. Takes
// precedence over WithStateDir.
func WithKV(kv store.KV) Option { return func(o *Overlay) { o.kv = kv } }

// WithStateDir persists positions under dir. An unusable directory is
// logged and falls back to in-memory storage.
func WithStateDir(dir string) Option { return func(o *Overlay) { o.stateDir = dir } }

// WithPositionKeys overrides the persisted key pair, for hosts running
// several overlays against one store.
func WithPositionKeys(keys store.PositionKeys) Option {
	return func(o *Overlay) { o.keys = keys }
}

// WithLogger sets the logger; defaults to slog.Default. Hosts running a
// terminal UI should point this away from the screen.
func WithLogger(l *slog.Logger) Option { return func(o *Overlay) { o.log = l } }

// WithContent sets the view hosted inside the expanded panel.
func WithContent(c Content) Option { return func(o *Overlay) { o.content = c } }

// WithTitle sets the panel header title.
func WithTitle(title string) Option { return func(o *Overlay) { o.title = title } }

// WithBadgeLabel sets the collapsed badge text.
func WithBadgeLabel(label string) Option { return func(o *Overlay) { o.label = label } }

// WithTuning replaces the cell-scale constants. Pass a complete Tuning.
func WithTuning(t Tuning) Option { return func(o *Overlay) { o.tuning = t } }

// WithStyles replaces the overlay styling. Pass a complete Styles.
func WithStyles(s Styles) Option { return func(o *Overlay) { o.styles = s } }

// WithKeyMap replaces the keyboard bindings.
func WithKeyMap(km KeyMap) Option { return func(o *Overlay) { o.keyMap = km } }

// WithInsets reserves non-interactive margins (host status bars and the
// like).
func WithInsets(in geom.Insets) Option { return func(o *Overlay) { o.insets = in } }

// WithInitialHeight sets the docked panel's starting height in rows;
// defaults to 40% of the viewport.
func WithInitialHeight(rows float64) Option {
	return func(o *Overlay) { o.initialHeight = rows }
}

// WithMaxHeight caps the docked panel height in rows.
func WithMaxHeight(rows float64) Option { return func(o *Overlay) { o.maxHeight = rows } }

// WithOnClose registers a callback fired when the panel collapses, in
// addition to the CollapsedMsg delivered to the host.
func WithOnClose(fn func()) Option { return func(o *Overlay) { o.onClose = fn } }

// WithOnBack registers a back action; it enables the floating panel's
// top-left handle and fires alongside BackMsg.
func WithOnBack(fn func()) Option { return func(o *Overlay) { o.onBack = fn } }

// WithOnModeChange registers a callback fired on docked/floating toggles,
// in addition to ModeChangedMsg.
func WithOnModeChange(fn func(panel.Mode)) Option {
	return func(o *Overlay) { o.onModeChange = fn }
}

// WithZone shares the host's bubblezone manager. The host then owns the
// final Scan; Render will not scan.
func WithZone(m *zone.Manager) Option { return func(o *Overlay) { o.zone = m } }

// Overlay is the Bubble Tea glue around the badge and panel controllers.
// Use it from a single program's event loop.
type Overlay struct {
	id      string
	log     *slog.Logger
	zone    *zone.Manager
	ownZone bool

	kv       store.KV
	disk     *store.Disk
	stateDir string
	keys     store.PositionKeys

	tuning  Tuning
	styles  Styles
	keyMap  KeyMap
	insets  geom.Insets
	title   string
	label   string
	content Content

	initialHeight float64
	maxHeight     float64

	onClose      func()
	onBack       func()
	onModeChange func(panel.Mode)

	disp      *display.Static
	badge     *badge.Badge
	panel     *panel.Panel
	motion    *motion.Group
	badgeSize geom.Size

	events chan any

	w, h       int
	ready      bool
	visible    bool
	expanded   bool
	closing    bool
	closeFlick bool
	ticking    bool

	cancelBadge func()
	cancelPanel func()
}

// New builds an overlay. The controllers come to life on the first
// WindowSizeMsg, once real bounds are known; until then the overlay
// renders nothing and ignores input.
func New(opts ...Option) *Overlay {
	o := &Overlay{
		id:      uuid.NewString(),
		tuning:  TerminalTuning(),
		styles:  DefaultStyles(),
		keyMap:  DefaultKeyMap(),
		title:   "Tools",
		label:   "hud",
		visible: true,
		events:  make(chan any, eventBuffer),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = slog.Default()
	}
	if o.tuning.FPS <= 0 {
		o.tuning.FPS = 60
	}
	if o.kv == nil {
		o.kv = o.openStore()
	}
	if o.zone == nil {
		o.zone = zone.New()
		o.ownZone = true
	}
	o.disp = display.NewStatic(geom.Size{})
	o.motion = motion.NewGroup(motion.WithFPS(o.tuning.FPS))
	return o
}

func (o *Overlay) openStore() store.KV {
	if o.stateDir == "" {
		return store.NewMemory()
	}
	disk, err := store.OpenDisk(o.stateDir)
	if err != nil {
		o.log.Warn("state dir unavailable, positions will not persist",
			"dir", o.stateDir, "error", err)
		return store.NewMemory()
	}
	o.disk = disk
	return disk
}

// setup constructs the controllers against the first real viewport.
func (o *Overlay) setup() {
	chip := o.styles.Badge.Render(badgeText(o.label))
	o.badgeSize = geom.Size{Width: float64(chipWidth(chip)), Height: 1}

	o.badge = badge.New(badge.Config{
		KV:      o.kv,
		Display: o.disp,
		Size:    o.badgeSize,
		Insets:  o.insets,
		Tuning:  o.tuning.Badge,
		Keys:    o.keys,
		Logger:  o.log,
	})
	initial := o.initialHeight
	if initial <= 0 {
		initial = 0.4 * float64(o.h)
	}
	o.panel = panel.New(panel.Config{
		Display:       o.disp,
		Insets:        o.insets,
		Tuning:        o.tuning.Panel,
		InitialHeight: initial,
		MaxHeight:     o.maxHeight,
		HasBack:       o.onBack != nil,
		Logger:        o.log,
	})
	o.cancelBadge = o.badge.Subscribe(func(ev badge.Event) { o.push(ev) })
	o.cancelPanel = o.panel.Subscribe(func(ev panel.Event) { o.push(ev) })

	p := o.badge.Position()
	o.motion.Get(animBadgeX).Snap(p.X)
	o.motion.Get(animBadgeY).Snap(p.Y)
	o.motion.Get(animPanelH).Snap(0)
	o.snapFrame(o.panel.Frame())
	o.ready = true
}

func (o *Overlay) snapFrame(f geom.Rect) {
	o.motion.Get(animFrameX).Snap(f.X)
	o.motion.Get(animFrameY).Snap(f.Y)
	o.motion.Get(animFrameW).Snap(f.Width)
	o.motion.Get(animFrameH).Snap(f.Height)
}

func (o *Overlay) targetFrame(f geom.Rect) {
	o.motion.Get(animFrameX).SetTarget(f.X)
	o.motion.Get(animFrameY).SetTarget(f.Y)
	o.motion.Get(animFrameW).SetTarget(f.Width)
	o.motion.Get(animFrameH).SetTarget(f.Height)
}

// push hands a controller event to the message pump without ever blocking
// the emitting goroutine.
func (o *Overlay) push(ev any) {
	select {
	case o.events <- ev:
	default:
		o.log.Warn("overlay event dropped", "event", fmt.Sprintf("%T", ev))
	}
}

// listen waits for the next controller event; Update re-arms it after
// every delivery.
func (o *Overlay) listen() tea.Cmd {
	ch := o.events
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg{ev: ev}
	}
}

func post(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// Init starts the event pump.
func (o *Overlay) Init() tea.Cmd { return o.listen() }

// Update processes one message. Unhandled messages are forwarded to the
// content so its own commands keep working while the panel is closed;
// keys reach the content only while the panel is expanded.
func (o *Overlay) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		o.w, o.h = msg.Width, msg.Height
		o.disp.Set(geom.Size{Width: float64(msg.Width), Height: float64(msg.Height)})
		if !o.ready && msg.Width > 0 && msg.Height > 0 {
			o.setup()
		}
		o.layoutContent()
		return nil

	case eventMsg:
		cmds := o.handleEvent(msg.ev)
		cmds = append(cmds, o.listen())
		return tea.Batch(cmds...)

	case frameMsg:
		return o.handleFrame()

	case tea.MouseMsg:
		if !o.ready || !o.visible {
			return nil
		}
		return o.handleMouse(msg)

	case tea.KeyMsg:
		if !o.ready || !o.visible || !o.expanded {
			return nil
		}
		switch {
		case key.Matches(msg, o.keyMap.Collapse):
			return tea.Batch(o.collapse(false)...)
		case key.Matches(msg, o.keyMap.ToggleMode):
			o.panel.ToggleMode()
			return nil
		}
	}
	if o.content != nil {
		return o.content.Update(msg)
	}
	return nil
}

// handleMouse routes pointer events: presses hit-test against the marked
// zones, while motion and release always reach every controller so an
// active session keeps the pointer captured wherever it goes. Wheel
// events belong to the content.
func (o *Overlay) handleMouse(m tea.MouseMsg) tea.Cmd {
	pt := geom.Point{X: float64(m.X), Y: float64(m.Y)}
	switch m.Action {
	case tea.MouseActionPress:
		if isWheel(m.Button) {
			if o.expanded && o.content != nil {
				return o.content.Update(m)
			}
			return nil
		}
		if m.Button != tea.MouseButtonLeft {
			return nil
		}
		switch {
		case !o.expanded && o.inZone(zoneBadge, m):
			o.badge.Down(pt)
		case o.expanded && o.panel.Mode() == panel.Floating && o.inZone(zoneTL, m):
			o.panel.CornerDown(panel.TopLeft, pt)
		case o.expanded && o.panel.Mode() == panel.Floating && o.inZone(zoneTR, m):
			o.panel.CornerDown(panel.TopRight, pt)
		case o.expanded && o.panel.Mode() == panel.Floating && o.inZone(zoneBL, m):
			o.panel.CornerDown(panel.BottomLeft, pt)
		case o.expanded && o.panel.Mode() == panel.Floating && o.inZone(zoneBR, m):
			o.panel.CornerDown(panel.BottomRight, pt)
		case o.expanded && o.inZone(zoneHeader, m):
			o.panel.HeaderDown(pt)
		}
	case tea.MouseActionMotion:
		o.badge.Move(pt)
		o.panel.HeaderMove(pt)
		o.panel.CornerMove(pt)
	case tea.MouseActionRelease:
		o.badge.Up(pt)
		o.panel.HeaderUp(pt)
		o.panel.CornerUp(pt)
	}
	return nil
}

func isWheel(b tea.MouseButton) bool {
	switch b {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown,
		tea.MouseButtonWheelLeft, tea.MouseButtonWheelRight:
		return true
	}
	return false
}

func (o *Overlay) inZone(suffix string, m tea.MouseMsg) bool {
	info := o.zone.Get(o.zid(suffix))
	return info != nil && !info.IsZero() && info.InBounds(m)
}

func (o *Overlay) zid(suffix string) string { return o.id + "." + suffix }

// handleEvent applies one controller event to the animation and panel
// state, returning any host messages it produces.
func (o *Overlay) handleEvent(ev any) []tea.Cmd {
	var cmds []tea.Cmd
	switch ev := ev.(type) {
	case badge.Moved:
		x, y := o.motion.Get(animBadgeX), o.motion.Get(animBadgeY)
		if o.badge.Dragging() {
			// Direct manipulation: the badge rides the pointer.
			x.Snap(ev.Position.X)
			y.Snap(ev.Position.Y)
		} else {
			x.SetTarget(ev.Position.X)
			y.SetTarget(ev.Position.Y)
		}
	case badge.DragEnded:
		o.motion.Get(animBadgeX).SetTarget(ev.Position.X)
		o.motion.Get(animBadgeY).SetTarget(ev.Position.Y)
	case badge.Hidden:
		o.motion.Get(animBadgeX).SetTarget(ev.Position.X)
		o.motion.Get(animBadgeY).SetTarget(ev.Position.Y)
	case badge.Shown:
		o.motion.Get(animBadgeX).SetTarget(ev.Position.X)
		o.motion.Get(animBadgeY).SetTarget(ev.Position.Y)
	case badge.Tapped:
		cmds = append(cmds, o.expand()...)

	case panel.HeightTarget:
		if o.expanded && !o.closing && o.panel.Mode() == panel.Docked {
			o.motion.Get(animPanelH).SetTarget(ev.Height)
			o.layoutContent()
		}
	case panel.FrameChanged:
		if o.panel.Dragging() || o.panel.Resizing() {
			o.snapFrame(ev.Frame)
		} else {
			o.targetFrame(ev.Frame)
		}
		o.layoutContent()
	case panel.ModeChanged:
		o.syncMode()
		o.layoutContent()
		cmds = append(cmds, post(ModeChangedMsg{Mode: ev.Mode}))
		if o.onModeChange != nil {
			o.onModeChange(ev.Mode)
		}
	case panel.CloseRequested:
		cmds = append(cmds, o.collapse(ev.Flick)...)
	case panel.BackRequested:
		cmds = append(cmds, post(BackMsg{}))
		if o.onBack != nil {
			o.onBack()
		}
	}
	if !o.motion.Settled() {
		cmds = append(cmds, o.startTicking()...)
	}
	return cmds
}

// syncMode pins the active mode's animators to the committed geometry so
// a toggle lands instantly instead of springing across the screen.
func (o *Overlay) syncMode() {
	if !o.ready || !o.expanded {
		return
	}
	if o.panel.Mode() == panel.Docked {
		o.motion.Get(animPanelH).Snap(o.panel.Height())
	} else {
		o.snapFrame(o.panel.Frame())
	}
}

// expand opens the panel: docked mode springs up from the bottom edge,
// floating mode appears in place.
func (o *Overlay) expand() []tea.Cmd {
	if !o.ready || o.expanded {
		return nil
	}
	o.expanded = true
	o.closing = false
	if o.panel.Mode() == panel.Docked {
		h := o.motion.Get(animPanelH)
		h.Snap(0)
		h.SetTarget(o.panel.Height())
	} else {
		o.snapFrame(o.panel.Frame())
	}
	o.layoutContent()
	cmds := []tea.Cmd{post(ExpandedMsg{})}
	cmds = append(cmds, o.startTicking()...)
	return cmds
}

// collapse closes the panel. Docked mode animates the height down and
// reports CollapsedMsg when the slide finishes; floating mode collapses
// immediately.
func (o *Overlay) collapse(flick bool) []tea.Cmd {
	if !o.ready || !o.expanded || o.closing {
		return nil
	}
	o.panel.Cancel()
	if o.panel.Mode() == panel.Docked {
		o.closing = true
		o.closeFlick = flick
		o.motion.Get(animPanelH).SetTarget(0)
		return o.startTicking()
	}
	o.expanded = false
	cmds := []tea.Cmd{post(CollapsedMsg{Flick: flick})}
	if o.onClose != nil {
		o.onClose()
	}
	return cmds
}

// handleFrame advances the springs one step and keeps ticking while
// anything is still moving.
func (o *Overlay) handleFrame() tea.Cmd {
	o.ticking = false
	if !o.ready {
		return nil
	}
	moving := o.motion.Step()
	var cmds []tea.Cmd
	if o.closing && o.motion.Get(animPanelH).Settled() {
		o.closing = false
		o.expanded = false
		cmds = append(cmds, post(CollapsedMsg{Flick: o.closeFlick}))
		if o.onClose != nil {
			o.onClose()
		}
	}
	if moving || o.closing {
		cmds = append(cmds, o.startTicking()...)
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (o *Overlay) startTicking() []tea.Cmd {
	if o.ticking {
		return nil
	}
	o.ticking = true
	return []tea.Cmd{tea.Tick(o.motion.FrameInterval(), func(t time.Time) tea.Msg {
		return frameMsg{at: t}
	})}
}

// layoutContent reports the panel interior to the content.
func (o *Overlay) layoutContent() {
	if o.content == nil || !o.ready {
		return
	}
	var w, h int
	if o.panel.Mode() == panel.Docked {
		w = o.w
		h = roundInt(o.panel.Height()) - 1
	} else {
		f := o.panel.Frame()
		w = roundInt(f.Width) - 2
		h = roundInt(f.Height) - 2
	}
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	o.content.SetSize(w, h)
}

// Expand opens the panel programmatically.
func (o *Overlay) Expand() tea.Cmd { return tea.Batch(o.expand()...) }

// Collapse closes the panel programmatically.
func (o *Overlay) Collapse() tea.Cmd { return tea.Batch(o.collapse(false)...) }

// ToggleMode flips docked/floating programmatically.
func (o *Overlay) ToggleMode() {
	if o.ready {
		o.panel.ToggleMode()
	}
}

// ShowBadge restores a hidden badge.
func (o *Overlay) ShowBadge() {
	if o.ready {
		o.badge.Show()
	}
}

// HideBadge docks the badge off the right edge.
func (o *Overlay) HideBadge() {
	if o.ready {
		o.badge.Hide()
	}
}

// ToggleBadge hides or shows the badge.
func (o *Overlay) ToggleBadge() {
	if o.ready {
		o.badge.Toggle()
	}
}

// SetVisible switches the whole overlay on or off. Turning it off cancels
// any in-flight gesture and collapses the panel without callbacks.
func (o *Overlay) SetVisible(v bool) {
	if o.visible == v {
		return
	}
	o.visible = v
	if !v && o.ready {
		o.badge.CancelGesture()
		o.panel.Cancel()
		o.closing = false
		o.expanded = false
	}
}

// Visible reports whether the overlay renders and accepts input.
func (o *Overlay) Visible() bool { return o.visible }

// Expanded reports whether the panel is open.
func (o *Overlay) Expanded() bool { return o.expanded }

// Mode returns the panel mode; Docked before the first layout.
func (o *Overlay) Mode() panel.Mode {
	if !o.ready {
		return panel.Docked
	}
	return o.panel.Mode()
}

// BadgeHidden reports whether the badge is docked off the right edge.
func (o *Overlay) BadgeHidden() bool {
	return o.ready && o.badge.Hidden()
}

// Close tears the overlay down: subscriptions first so nothing can reach
// the closed event channel, then the controllers and the store.
func (o *Overlay) Close() error {
	if o.cancelBadge != nil {
		o.cancelBadge()
		o.cancelBadge = nil
	}
	if o.cancelPanel != nil {
		o.cancelPanel()
		o.cancelPanel = nil
	}
	if o.badge != nil {
		o.badge.Close()
	}
	if o.panel != nil {
		o.panel.Close()
	}
	if o.events != nil {
		close(o.events)
		o.events = nil
	}
	if o.ownZone {
		o.zone.Close()
	}
	if o.disk != nil {
		return o.disk.Close()
	}
	return nil
}
