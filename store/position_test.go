package store

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/hudkit/hud/geom"
)

// quiet silences the warn logs failure-path tests provoke on purpose.
var quiet = slog.New(slog.DiscardHandler)

// spyKV wraps Memory and counts Set calls per key so debounce tests can
// assert exactly how many writes reached storage.
type spyKV struct {
	*Memory
	mu   sync.Mutex
	sets []string
}

func newSpyKV() *spyKV {
	return &spyKV{Memory: NewMemory()}
}

func (s *spyKV) Set(key, value string) error {
	s.mu.Lock()
	s.sets = append(s.sets, key)
	s.mu.Unlock()
	return s.Memory.Set(key, value)
}

func (s *spyKV) setCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sets)
}

// manualTimer collects armed timers so tests control firing order.
type manualTimer struct {
	mu      sync.Mutex
	pending []func()
}

func (m *manualTimer) new(d time.Duration, fn func()) (stop func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, fn)
	return func() {}
}

func (m *manualTimer) fire(i int) {
	m.mu.Lock()
	fn := m.pending[i]
	m.mu.Unlock()
	fn()
}

func (m *manualTimer) fireLast() {
	m.mu.Lock()
	n := len(m.pending)
	m.mu.Unlock()
	m.fire(n - 1)
}

// TestPosition_RoundTrip verifies save-then-load returns the same point,
// including fractional coordinates.
func TestPosition_RoundTrip(t *testing.T) {
	p := NewPosition(NewMemory(), PositionConfig{})

	p.Save(geom.Point{X: 10, Y: 20})
	got, ok := p.Load()
	if !ok || got != (geom.Point{X: 10, Y: 20}) {
		t.Fatalf("Load = %v, %v; want {10 20}, true", got, ok)
	}

	p.Save(geom.Point{X: 12.5, Y: 33.25})
	got, ok = p.Load()
	if !ok || got != (geom.Point{X: 12.5, Y: 33.25}) {
		t.Fatalf("fractional round-trip failed: %v, %v", got, ok)
	}
}

// TestPosition_LoadAbsent verifies an empty store reports no position.
func TestPosition_LoadAbsent(t *testing.T) {
	p := NewPosition(NewMemory(), PositionConfig{})
	if _, ok := p.Load(); ok {
		t.Fatal("empty store must report no saved position")
	}
}

// TestPosition_LoadCorrupt verifies unparsable and non-finite stored values
// behave exactly like an absent position.
func TestPosition_LoadCorrupt(t *testing.T) {
	for _, bad := range []string{"", "garbage", "12abc", "NaN", "+Inf", "-Inf"} {
		kv := NewMemory()
		if err := kv.Set(DefaultKeyX, bad); err != nil {
			t.Fatal(err)
		}
		if err := kv.Set(DefaultKeyY, "10"); err != nil {
			t.Fatal(err)
		}
		p := NewPosition(kv, PositionConfig{Logger: quiet})
		if _, ok := p.Load(); ok {
			t.Fatalf("stored x=%q must load as absent", bad)
		}
	}
}

// TestPosition_LoadPartial verifies a single present coordinate is not
// enough.
func TestPosition_LoadPartial(t *testing.T) {
	kv := NewMemory()
	if err := kv.Set(DefaultKeyX, "42"); err != nil {
		t.Fatal(err)
	}
	p := NewPosition(kv, PositionConfig{})
	if _, ok := p.Load(); ok {
		t.Fatal("x without y must load as absent")
	}
}

// TestPosition_LoadReadFailure verifies a failing store behaves like an
// empty one rather than propagating the error.
func TestPosition_LoadReadFailure(t *testing.T) {
	kv := NewMemory()
	kv.FailReads = true
	p := NewPosition(kv, PositionConfig{Logger: quiet})
	if _, ok := p.Load(); ok {
		t.Fatal("read failure must report no saved position")
	}
}

// TestPosition_SaveWriteFailure verifies failed writes are swallowed.
func TestPosition_SaveWriteFailure(t *testing.T) {
	kv := NewMemory()
	kv.FailWrites = true
	p := NewPosition(kv, PositionConfig{Logger: quiet})
	p.Save(geom.Point{X: 1, Y: 2}) // must not panic
	kv.FailWrites = false
	if _, ok := p.Load(); ok {
		t.Fatal("failed save must not leave a value behind")
	}
}

// TestPosition_DebounceCoalesces verifies a burst of debounced saves
// commits exactly one write pair carrying the last value.
func TestPosition_DebounceCoalesces(t *testing.T) {
	kv := newSpyKV()
	var mt manualTimer
	p := NewPosition(kv, PositionConfig{NewTimer: mt.new})

	for i := 1; i <= 5; i++ {
		p.DebouncedSave(geom.Point{X: float64(i * 10), Y: float64(i)})
	}
	mt.fireLast()

	if n := kv.setCount(); n != 2 {
		t.Fatalf("want one write pair (2 Sets), got %d", n)
	}
	got, ok := p.Load()
	if !ok || got != (geom.Point{X: 50, Y: 5}) {
		t.Fatalf("want the last burst value {50 5}, got %v, %v", got, ok)
	}

	// Earlier timers lost the race; firing them must change nothing.
	mt.fire(0)
	mt.fire(3)
	if n := kv.setCount(); n != 2 {
		t.Fatalf("stale debounce timers must not write, got %d Sets", n)
	}
}

// TestPosition_SaveSupersedesPending verifies an immediate save wins over a
// debounced value still in flight.
func TestPosition_SaveSupersedesPending(t *testing.T) {
	kv := newSpyKV()
	var mt manualTimer
	p := NewPosition(kv, PositionConfig{NewTimer: mt.new})

	p.DebouncedSave(geom.Point{X: 111, Y: 1})
	p.Save(geom.Point{X: 222, Y: 2})
	mt.fire(0) // the debounce timer fires too late

	got, ok := p.Load()
	if !ok || got != (geom.Point{X: 222, Y: 2}) {
		t.Fatalf("immediate save must win, got %v, %v", got, ok)
	}
	if n := kv.setCount(); n != 2 {
		t.Fatalf("superseded debounce must not write, got %d Sets", n)
	}
}

// TestPosition_Flush verifies a pending debounced value can be forced out
// immediately, after which the original timer is a no-op.
func TestPosition_Flush(t *testing.T) {
	kv := newSpyKV()
	var mt manualTimer
	p := NewPosition(kv, PositionConfig{NewTimer: mt.new})

	p.DebouncedSave(geom.Point{X: 7, Y: 8})
	p.Flush()
	if got, ok := p.Load(); !ok || got != (geom.Point{X: 7, Y: 8}) {
		t.Fatalf("Flush must commit the pending value, got %v, %v", got, ok)
	}
	mt.fire(0)
	if n := kv.setCount(); n != 2 {
		t.Fatalf("timer after Flush must not double-write, got %d Sets", n)
	}

	p.Flush() // nothing pending: no-op
	if n := kv.setCount(); n != 2 {
		t.Fatalf("Flush with nothing pending must not write, got %d Sets", n)
	}
}

// TestPosition_Stop verifies teardown discards the pending value.
func TestPosition_Stop(t *testing.T) {
	kv := newSpyKV()
	var mt manualTimer
	p := NewPosition(kv, PositionConfig{NewTimer: mt.new})

	p.DebouncedSave(geom.Point{X: 9, Y: 9})
	p.Stop()
	mt.fire(0) // simulate losing the cancellation race
	if n := kv.setCount(); n != 0 {
		t.Fatalf("nothing may be written after Stop, got %d Sets", n)
	}
}

// TestPosition_Clear removes both coordinates.
func TestPosition_Clear(t *testing.T) {
	kv := NewMemory()
	p := NewPosition(kv, PositionConfig{})
	p.Save(geom.Point{X: 3, Y: 4})
	p.Clear()
	if _, ok := p.Load(); ok {
		t.Fatal("Clear must remove the saved position")
	}
	if kv.Len() != 0 {
		t.Fatalf("Clear must delete both keys, %d left", kv.Len())
	}
}

// TestPosition_CustomKeys verifies two stores with distinct key pairs do
// not interfere.
func TestPosition_CustomKeys(t *testing.T) {
	kv := NewMemory()
	a := NewPosition(kv, PositionConfig{})
	b := NewPosition(kv, PositionConfig{Keys: PositionKeys{X: "panel_x", Y: "panel_y"}})

	a.Save(geom.Point{X: 1, Y: 1})
	b.Save(geom.Point{X: 2, Y: 2})

	if got, _ := a.Load(); got != (geom.Point{X: 1, Y: 1}) {
		t.Fatalf("store a clobbered: %v", got)
	}
	if got, _ := b.Load(); got != (geom.Point{X: 2, Y: 2}) {
		t.Fatalf("store b clobbered: %v", got)
	}
}
