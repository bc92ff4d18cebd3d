package display

import (
	"testing"

	"github.com/hudkit/hud/geom"
)

// TestStatic_WatchOrderAndCancel verifies watchers fire in registration
// order and stop firing once cancelled.
func TestStatic_WatchOrderAndCancel(t *testing.T) {
	s := NewStatic(geom.Size{Width: 80, Height: 24})

	var order []string
	cancelA := s.Watch(func(geom.Size) { order = append(order, "a") })
	s.Watch(func(geom.Size) { order = append(order, "b") })

	s.Set(geom.Size{Width: 100, Height: 40})
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("want notification order [a b], got %v", order)
	}
	if s.Bounds() != (geom.Size{Width: 100, Height: 40}) {
		t.Fatalf("Bounds not updated: %v", s.Bounds())
	}

	cancelA()
	s.Set(geom.Size{Width: 120, Height: 50})
	if len(order) != 3 || order[2] != "b" {
		t.Fatalf("cancelled watcher must not fire, got %v", order)
	}
	cancelA() // double cancel is a no-op
}

// TestStatic_UnchangedSizeIsNoop verifies publishing the same size does not
// notify.
func TestStatic_UnchangedSizeIsNoop(t *testing.T) {
	s := NewStatic(geom.Size{Width: 80, Height: 24})
	fired := 0
	s.Watch(func(geom.Size) { fired++ })

	s.Set(geom.Size{Width: 80, Height: 24})
	if fired != 0 {
		t.Fatalf("unchanged size must not notify, fired %d times", fired)
	}
}

// TestStatic_WatcherMayReenter verifies a watcher can read Bounds and
// register further watchers without deadlocking.
func TestStatic_WatcherMayReenter(t *testing.T) {
	s := NewStatic(geom.Size{})
	var inner bool
	s.Watch(func(sz geom.Size) {
		if s.Bounds() != sz {
			t.Errorf("Bounds during notification = %v, want %v", s.Bounds(), sz)
		}
		s.Watch(func(geom.Size) { inner = true })
	})

	s.Set(geom.Size{Width: 10, Height: 10})
	if inner {
		t.Fatal("watcher registered during notification must not fire for the same change")
	}
	s.Set(geom.Size{Width: 20, Height: 20})
	if !inner {
		t.Fatal("watcher registered during notification must fire for the next change")
	}
}
