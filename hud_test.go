package hud

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hudkit/hud/geom"
	"github.com/hudkit/hud/panel"
	"github.com/hudkit/hud/store"
)

// quiet silences the warn logs failure-path tests provoke on purpose.
var quiet = slog.New(slog.DiscardHandler)

// fakeContent records the sizes the overlay reports.
type fakeContent struct {
	w, h int
	msgs []tea.Msg
}

func (f *fakeContent) SetSize(w, h int)           { f.w, f.h = w, h }
func (f *fakeContent) Update(msg tea.Msg) tea.Cmd { f.msgs = append(f.msgs, msg); return nil }
func (f *fakeContent) View() string               { return "content" }

func newTestOverlay(t *testing.T, opts ...Option) *Overlay {
	t.Helper()
	opts = append([]Option{WithKV(store.NewMemory()), WithLogger(quiet)}, opts...)
	o := New(opts...)
	t.Cleanup(func() { _ = o.Close() })
	o.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	if !o.ready {
		t.Fatal("overlay not ready after WindowSizeMsg")
	}
	return o
}

// pump delivers the next controller event to Update, failing if none
// arrives.
func pump(t *testing.T, o *Overlay) {
	t.Helper()
	select {
	case ev := <-o.events:
		o.Update(eventMsg{ev: ev})
	case <-time.After(time.Second):
		t.Fatal("no controller event arrived")
	}
}

// drainPumps delivers every queued controller event.
func drainPumps(o *Overlay) {
	for {
		select {
		case ev := <-o.events:
			o.Update(eventMsg{ev: ev})
		default:
			return
		}
	}
}

// runCmd executes a command tree and collects the produced messages.
// Not safe for commands that wait on the event channel.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// TestSetupDeferredUntilSize checks the overlay ignores input and renders
// nothing before the first real viewport arrives.
func TestSetupDeferredUntilSize(t *testing.T) {
	o := New(WithKV(store.NewMemory()), WithLogger(quiet))
	t.Cleanup(func() { _ = o.Close() })

	o.Update(tea.MouseMsg{X: 5, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if o.ready {
		t.Fatal("ready before any WindowSizeMsg")
	}
	if got := o.Render("base"); got != "base" {
		t.Fatalf("Render before setup = %q, want base passthrough", got)
	}

	o.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	if !o.ready {
		t.Fatal("not ready after WindowSizeMsg")
	}
}

// TestRenderCollapsedShowsBadge checks the badge chip lands at its
// default spot: right edge minus the margin, FallbackY rows down.
func TestRenderCollapsedShowsBadge(t *testing.T) {
	o := newTestOverlay(t)

	out := o.Render("")
	rows := strings.Split(out, "\n")
	if len(rows) != 24 {
		t.Fatalf("rendered %d rows, want 24", len(rows))
	}
	if !strings.Contains(rows[2], "● hud") {
		t.Fatalf("badge missing from row 2: %q", rows[2])
	}
	if strings.Contains(out, "Tools") {
		t.Fatal("panel chrome visible while collapsed")
	}
}

// TestBadgeTapExpands drives a tap through the event pipeline and checks
// the panel opens with the content sized to the docked interior.
func TestBadgeTapExpands(t *testing.T) {
	content := &fakeContent{}
	o := newTestOverlay(t, WithContent(content))

	pt := geom.Point{X: 72, Y: 2}
	o.badge.Down(pt)
	o.badge.Up(pt)
	pump(t, o)

	if !o.Expanded() {
		t.Fatal("tap did not expand the panel")
	}
	// 40% of 24 rows, minus the header row.
	if content.w != 80 || content.h != 9 {
		t.Fatalf("content size = %dx%d, want 80x9", content.w, content.h)
	}

	// The panel slides up from the bottom edge; settle the spring before
	// looking for the header.
	for i := 0; i < 600 && !o.motion.Settled(); i++ {
		o.Update(frameMsg{})
	}
	out := o.Render("")
	if !strings.Contains(out, "Tools") {
		t.Fatal("expanded render missing panel header")
	}
}

// TestExpandEmitsHostMsg checks the programmatic expand produces
// ExpandedMsg for the host.
func TestExpandEmitsHostMsg(t *testing.T) {
	o := newTestOverlay(t)

	var sawExpanded bool
	for _, msg := range runCmd(tea.Batch(o.expand()...)) {
		if _, ok := msg.(ExpandedMsg); ok {
			sawExpanded = true
		}
	}
	if !sawExpanded {
		t.Fatal("expand produced no ExpandedMsg")
	}
}

// TestDockedCollapseAnimatesOut expands, collapses, and steps frames until
// the slide-down finishes, expecting CollapsedMsg at the end.
func TestDockedCollapseAnimatesOut(t *testing.T) {
	var closed int
	o := newTestOverlay(t, WithOnClose(func() { closed++ }))

	o.expand()
	o.collapse(false)
	if !o.closing {
		t.Fatal("docked collapse should animate")
	}

	var sawCollapsed bool
	for i := 0; i < 600 && (o.closing || o.expanded); i++ {
		for _, msg := range runCmd(o.Update(frameMsg{})) {
			if c, ok := msg.(CollapsedMsg); ok {
				sawCollapsed = true
				if c.Flick {
					t.Fatal("deliberate collapse reported as flick")
				}
			}
		}
	}
	if o.expanded || o.closing {
		t.Fatal("collapse never finished")
	}
	if !sawCollapsed {
		t.Fatal("no CollapsedMsg produced")
	}
	if closed != 1 {
		t.Fatalf("onClose fired %d times, want 1", closed)
	}
}

// TestFloatingCollapseImmediate checks floating mode closes without an
// animation.
func TestFloatingCollapseImmediate(t *testing.T) {
	o := newTestOverlay(t)

	o.expand()
	o.panel.ToggleMode()
	drainPumps(o)
	if o.Mode() != panel.Floating {
		t.Fatalf("Mode() = %v, want Floating", o.Mode())
	}

	var sawCollapsed bool
	for _, msg := range runCmd(tea.Batch(o.collapse(false)...)) {
		if _, ok := msg.(CollapsedMsg); ok {
			sawCollapsed = true
		}
	}
	if o.Expanded() || o.closing {
		t.Fatal("floating collapse should be immediate")
	}
	if !sawCollapsed {
		t.Fatal("no CollapsedMsg produced")
	}
}

// TestModeToggleResizesContent checks the content learns the floating
// interior after a mode toggle.
func TestModeToggleResizesContent(t *testing.T) {
	content := &fakeContent{}
	o := newTestOverlay(t, WithContent(content))

	o.expand()
	o.panel.ToggleMode()
	drainPumps(o)

	// Default floating frame on 80x24 is 48x12; borders take one cell on
	// each side.
	if content.w != 46 || content.h != 10 {
		t.Fatalf("content size = %dx%d, want 46x10", content.w, content.h)
	}
	out := o.Render("")
	if !strings.Contains(out, "╭") || !strings.Contains(out, "╯") {
		t.Fatal("floating render missing window border")
	}
}

// TestMouseMotionCapturedByActiveDrag checks motion and release route to
// an active badge session regardless of zones.
func TestMouseMotionCapturedByActiveDrag(t *testing.T) {
	o := newTestOverlay(t)

	o.badge.Down(geom.Point{X: 72, Y: 2})
	o.Update(tea.MouseMsg{X: 60, Y: 10, Action: tea.MouseActionMotion})
	if !o.badge.Dragging() {
		t.Fatal("motion did not reach the active badge session")
	}
	o.Update(tea.MouseMsg{X: 60, Y: 10, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if o.badge.Dragging() {
		t.Fatal("release did not end the badge session")
	}
	drainPumps(o)
	// The badge started at {71 2}; the pointer travelled (-12, +8).
	if got := o.badge.Position(); got != (geom.Point{X: 59, Y: 10}) {
		t.Fatalf("badge position = %+v, want {59 10}", got)
	}
}

// TestKeysOnlyWhileExpanded checks the collapse binding is inert while
// collapsed and collapses while expanded.
func TestKeysOnlyWhileExpanded(t *testing.T) {
	o := newTestOverlay(t)

	o.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if o.Expanded() || o.closing {
		t.Fatal("esc changed state while collapsed")
	}

	o.expand()
	o.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !o.closing {
		t.Fatal("esc did not start the collapse")
	}
}

// TestContentGetsMessagesWhileCollapsed checks non-key messages keep
// flowing to the content so its async commands never strand.
func TestContentGetsMessagesWhileCollapsed(t *testing.T) {
	type customMsg struct{}
	content := &fakeContent{}
	o := newTestOverlay(t, WithContent(content))

	o.Update(customMsg{})
	if len(content.msgs) == 0 {
		t.Fatal("custom message not forwarded to content")
	}
	if _, ok := content.msgs[len(content.msgs)-1].(customMsg); !ok {
		t.Fatalf("forwarded %T, want customMsg", content.msgs[len(content.msgs)-1])
	}
}

// TestStateDirFallback points the overlay at an unusable state path and
// checks it still works on the in-memory fallback.
func TestStateDirFallback(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	o := New(WithStateDir(filepath.Join(file, "state")), WithLogger(quiet))
	t.Cleanup(func() { _ = o.Close() })
	o.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	if !o.ready {
		t.Fatal("overlay not ready on fallback store")
	}
	if o.disk != nil {
		t.Fatal("disk store should not exist for an unusable path")
	}
}

// TestSetVisibleHidesEverything checks an invisible overlay passes the
// base through and drops input.
func TestSetVisibleHidesEverything(t *testing.T) {
	o := newTestOverlay(t)

	o.expand()
	o.SetVisible(false)
	if o.Expanded() {
		t.Fatal("hiding the overlay should collapse the panel")
	}
	if got := o.Render("base"); got != "base" {
		t.Fatalf("Render while invisible = %q, want passthrough", got)
	}

	o.SetVisible(true)
	if got := o.Render(""); !strings.Contains(got, "● hud") {
		t.Fatal("badge missing after re-show")
	}
}

// TestCloseIdempotent checks double Close is safe.
func TestCloseIdempotent(t *testing.T) {
	o := newTestOverlay(t)
	if err := o.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := o.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
