package panel

import (
	"testing"

	"github.com/hudkit/hud/geom"
)

// newFloatingPanel returns a test panel toggled into floating mode with
// the default frame {80,200 240x400} materialized and the recorder
// cleared.
func newFloatingPanel(t *testing.T, mutate ...func(*Config)) *testPanel {
	t.Helper()
	tp := newTestPanel(t, mutate...)
	tp.panel.ToggleMode()
	if got := tp.panel.Mode(); got != Floating {
		t.Fatalf("Mode() = %v, want Floating", got)
	}
	tp.panel.Frame()
	tp.rec.reset()
	return tp
}

// TestFloatingDragMovesFrame drags the floating header and checks the
// frame follows the pointer displacement, with sub-threshold motion
// inert.
func TestFloatingDragMovesFrame(t *testing.T) {
	tp := newFloatingPanel(t)
	p := tp.panel

	p.HeaderDown(geom.Point{X: 100, Y: 210})
	p.HeaderMove(geom.Point{X: 102, Y: 211})
	if got := tp.rec.names(); len(got) != 0 {
		t.Fatalf("sub-threshold move emitted %v", got)
	}

	p.HeaderMove(geom.Point{X: 130, Y: 250})
	p.HeaderUp(geom.Point{X: 130, Y: 250})

	want := []string{"DragState", "FrameChanged", "DragState"}
	if got := tp.rec.names(); !equalStrings(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	wantFrame := geom.Rect{
		Point: geom.Point{X: 110, Y: 240},
		Size:  geom.Size{Width: 240, Height: 400},
	}
	if got := p.Frame(); got != wantFrame {
		t.Fatalf("Frame() = %+v, want %+v", got, wantFrame)
	}
	if p.Dragging() {
		t.Fatal("Dragging() still true after release")
	}
}

// TestFloatingDragClampsEachMove drags far past the top-left and checks
// the frame pins to the usable viewport rather than leaving it.
func TestFloatingDragClampsEachMove(t *testing.T) {
	tp := newFloatingPanel(t)
	p := tp.panel

	p.HeaderDown(geom.Point{X: 100, Y: 210})
	p.HeaderMove(geom.Point{X: -500, Y: -500})
	want := geom.Rect{
		Point: geom.Point{X: 0, Y: 20},
		Size:  geom.Size{Width: 240, Height: 400},
	}
	if got := p.Frame(); got != want {
		t.Fatalf("Frame() = %+v, want %+v", got, want)
	}
	p.HeaderUp(geom.Point{X: -500, Y: -500})
}

// TestCancelRevertsFloatingDrag cancels mid-drag and checks the frame
// reverts to the committed geometry.
func TestCancelRevertsFloatingDrag(t *testing.T) {
	tp := newFloatingPanel(t)
	p := tp.panel

	p.HeaderDown(geom.Point{X: 100, Y: 210})
	p.HeaderMove(geom.Point{X: 130, Y: 250})
	tp.rec.reset()
	p.Cancel()

	want := []string{"FrameChanged", "DragState"}
	if got := tp.rec.names(); !equalStrings(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	committed := geom.Rect{
		Point: geom.Point{X: 80, Y: 200},
		Size:  geom.Size{Width: 240, Height: 400},
	}
	if got := p.Frame(); got != committed {
		t.Fatalf("Frame() = %+v, want %+v", got, committed)
	}
}

// TestCornerResizeBottomRight grabs the bottom-right handle and checks
// the top-left corner stays anchored while width and height grow by the
// displacement.
func TestCornerResizeBottomRight(t *testing.T) {
	tp := newFloatingPanel(t)
	p := tp.panel

	p.CornerDown(BottomRight, geom.Point{X: 320, Y: 600})
	p.CornerMove(geom.Point{X: 322, Y: 601})
	if got := tp.rec.names(); len(got) != 0 {
		t.Fatalf("sub-intent move emitted %v", got)
	}

	p.CornerMove(geom.Point{X: 360, Y: 650})
	p.CornerUp(geom.Point{X: 360, Y: 650})

	want := []string{"ResizeState", "FrameChanged", "ResizeState"}
	if got := tp.rec.names(); !equalStrings(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	wantFrame := geom.Rect{
		Point: geom.Point{X: 80, Y: 200},
		Size:  geom.Size{Width: 280, Height: 450},
	}
	if got := p.Frame(); got != wantFrame {
		t.Fatalf("Frame() = %+v, want %+v", got, wantFrame)
	}
}

// TestCornerResizeTopLeft grabs the top-left handle and checks the
// bottom-right corner stays anchored.
func TestCornerResizeTopLeft(t *testing.T) {
	tp := newFloatingPanel(t)
	p := tp.panel

	p.CornerDown(TopLeft, geom.Point{X: 80, Y: 200})
	p.CornerMove(geom.Point{X: 60, Y: 150})
	p.CornerUp(geom.Point{X: 60, Y: 150})

	got := p.Frame()
	want := geom.Rect{
		Point: geom.Point{X: 60, Y: 150},
		Size:  geom.Size{Width: 260, Height: 450},
	}
	if got != want {
		t.Fatalf("Frame() = %+v, want %+v", got, want)
	}
	if got.Right() != 320 || got.Bottom() != 600 {
		t.Fatalf("anchor moved: right=%v bottom=%v, want 320/600", got.Right(), got.Bottom())
	}
}

// TestCornerResizeFloorsAtMinimum collapses the frame inward and checks
// width floors at a quarter of the viewport and height at the floating
// minimum.
func TestCornerResizeFloorsAtMinimum(t *testing.T) {
	tp := newFloatingPanel(t)
	p := tp.panel

	p.CornerDown(BottomRight, geom.Point{X: 320, Y: 600})
	p.CornerMove(geom.Point{X: 20, Y: 100})
	p.CornerUp(geom.Point{X: 20, Y: 100})

	want := geom.Rect{
		Point: geom.Point{X: 80, Y: 200},
		Size:  geom.Size{Width: 100, Height: 80},
	}
	if got := p.Frame(); got != want {
		t.Fatalf("Frame() = %+v, want %+v", got, want)
	}
}

// TestCornerResizeClampsToViewport expands the frame outward and checks
// the moving edges stop at the viewport.
func TestCornerResizeClampsToViewport(t *testing.T) {
	tp := newFloatingPanel(t)
	p := tp.panel

	p.CornerDown(BottomRight, geom.Point{X: 320, Y: 600})
	p.CornerMove(geom.Point{X: 900, Y: 900})
	p.CornerUp(geom.Point{X: 900, Y: 900})

	want := geom.Rect{
		Point: geom.Point{X: 80, Y: 200},
		Size:  geom.Size{Width: 320, Height: 600},
	}
	if got := p.Frame(); got != want {
		t.Fatalf("Frame() = %+v, want %+v", got, want)
	}
}

// TestCornerTapTopRightCloses taps the top-right handle without crossing
// the resize intent and expects a close request, untouched geometry, and
// no resize session.
func TestCornerTapTopRightCloses(t *testing.T) {
	tp := newFloatingPanel(t)
	p := tp.panel

	p.CornerDown(TopRight, geom.Point{X: 320, Y: 200})
	p.CornerUp(geom.Point{X: 322, Y: 201})

	want := []string{"CloseRequested"}
	if got := tp.rec.names(); !equalStrings(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	if tp.rec.all()[0].(CloseRequested).Flick {
		t.Fatal("corner tap close reported as flick")
	}
}

// TestCornerTapTopLeftBack checks the top-left handle tap navigates back
// only when a back action is registered.
func TestCornerTapTopLeftBack(t *testing.T) {
	t.Run("with back action", func(t *testing.T) {
		tp := newFloatingPanel(t, func(cfg *Config) { cfg.HasBack = true })
		tp.panel.CornerDown(TopLeft, geom.Point{X: 80, Y: 200})
		tp.panel.CornerUp(geom.Point{X: 80, Y: 200})
		want := []string{"BackRequested"}
		if got := tp.rec.names(); !equalStrings(got, want) {
			t.Fatalf("events = %v, want %v", got, want)
		}
	})
	t.Run("without back action", func(t *testing.T) {
		tp := newFloatingPanel(t)
		tp.panel.CornerDown(TopLeft, geom.Point{X: 80, Y: 200})
		tp.panel.CornerUp(geom.Point{X: 80, Y: 200})
		if got := tp.rec.names(); len(got) != 0 {
			t.Fatalf("events = %v, want none", got)
		}
	})
}

// TestCornerTapBottomIgnored checks the bottom handles have no tap
// action.
func TestCornerTapBottomIgnored(t *testing.T) {
	tp := newFloatingPanel(t)
	p := tp.panel

	p.CornerDown(BottomLeft, geom.Point{X: 80, Y: 600})
	p.CornerUp(geom.Point{X: 80, Y: 600})
	p.CornerDown(BottomRight, geom.Point{X: 320, Y: 600})
	p.CornerUp(geom.Point{X: 320, Y: 600})
	if got := tp.rec.names(); len(got) != 0 {
		t.Fatalf("events = %v, want none", got)
	}
}

// TestCornerIgnoredDuringHeaderSession checks a corner press is dropped
// while a header session is active.
func TestCornerIgnoredDuringHeaderSession(t *testing.T) {
	tp := newFloatingPanel(t)
	p := tp.panel

	p.HeaderDown(geom.Point{X: 100, Y: 210})
	p.CornerDown(BottomRight, geom.Point{X: 320, Y: 600})
	p.CornerMove(geom.Point{X: 360, Y: 650})
	if got := tp.rec.names(); len(got) != 0 {
		t.Fatalf("ignored corner session emitted %v", got)
	}
	p.HeaderUp(geom.Point{X: 100, Y: 210})
}
