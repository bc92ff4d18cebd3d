package store

import (
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hudkit/hud/geom"
)

// Persisted key names for the bubble position. Bit-exact: other frontends
// of the same overlay state read and write these names.
const (
	DefaultKeyX = "@floating_tools_bubble_position_x"
	DefaultKeyY = "@floating_tools_bubble_position_y"
)

// DefaultSaveDebounce is how long a burst of debounced saves coalesces
// before the last value commits.
const DefaultSaveDebounce = 500 * time.Millisecond

// PositionKeys names the key pair one position is stored under. Distinct
// overlay positions use distinct key pairs; they must never share.
type PositionKeys struct {
	X string
	Y string
}

// DefaultPositionKeys returns the canonical bubble key pair.
func DefaultPositionKeys() PositionKeys {
	return PositionKeys{X: DefaultKeyX, Y: DefaultKeyY}
}

// NewTimer starts a one-shot timer that calls fn after d; the returned stop
// cancels it if it has not fired. Nil means time.AfterFunc.
type NewTimer func(d time.Duration, fn func()) (stop func())

// PositionConfig configures a Position store. Zero-valued fields take the
// package defaults.
type PositionConfig struct {
	Keys     PositionKeys
	Debounce time.Duration
	Logger   *slog.Logger
	NewTimer NewTimer
}

// Position persists one overlay position as two decimal-string keys, with
// an immediate write path for gesture ends and a debounced path for
// continuous drags. Storage failures are logged and swallowed: a failed
// read reports "no saved position" and a failed write is skipped, so a
// slow or broken store can never stall the gesture pipeline.
type Position struct {
	kv       KV
	keys     PositionKeys
	debounce time.Duration
	log      *slog.Logger
	newTimer NewTimer

	// mu guards the debounce bookkeeping; writeMu serializes whole
	// key-pair writes so x and y from different saves never interleave.
	mu         sync.Mutex
	writeMu    sync.Mutex
	pending    geom.Point
	hasPending bool
	gen        uint64
	stop       func()
}

// NewPosition returns a Position persisting through kv.
func NewPosition(kv KV, cfg PositionConfig) *Position {
	if cfg.Keys == (PositionKeys{}) {
		cfg.Keys = DefaultPositionKeys()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultSaveDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.NewTimer == nil {
		cfg.NewTimer = func(d time.Duration, fn func()) func() {
			t := time.AfterFunc(d, fn)
			return func() { t.Stop() }
		}
	}
	return &Position{
		kv:       kv,
		keys:     cfg.Keys,
		debounce: cfg.Debounce,
		log:      cfg.Logger,
		newTimer: cfg.NewTimer,
	}
}

// Load returns the saved position. ok is false when either coordinate is
// missing, unreadable, or not a finite number; corrupt storage therefore
// behaves exactly like an empty one.
func (p *Position) Load() (pos geom.Point, ok bool) {
	x, ok := p.loadCoord(p.keys.X)
	if !ok {
		return geom.Point{}, false
	}
	y, ok := p.loadCoord(p.keys.Y)
	if !ok {
		return geom.Point{}, false
	}
	return geom.Point{X: x, Y: y}, true
}

func (p *Position) loadCoord(key string) (float64, bool) {
	s, ok, err := p.kv.Get(key)
	if err != nil {
		p.log.Warn("failed to load saved position", "key", key, "error", err)
		return 0, false
	}
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		p.log.Warn("ignoring corrupt saved position", "key", key, "value", s)
		return 0, false
	}
	return v, true
}

// Save writes pos now, superseding any pending debounced value (the
// immediate value is newer).
func (p *Position) Save(pos geom.Point) {
	p.mu.Lock()
	p.cancelLocked()
	p.gen++
	gen := p.gen
	p.mu.Unlock()
	p.write(gen, pos)
}

// DebouncedSave schedules pos to be written after the debounce interval.
// Every call restarts the interval, so only the last value of a burst
// commits.
func (p *Position) DebouncedSave(pos geom.Point) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelLocked()
	p.pending = pos
	p.hasPending = true
	p.gen++
	gen := p.gen
	p.stop = p.newTimer(p.debounce, func() { p.commitPending(gen) })
}

// Flush writes a pending debounced value immediately, if there is one.
func (p *Position) Flush() {
	p.mu.Lock()
	if !p.hasPending {
		p.mu.Unlock()
		return
	}
	pos := p.pending
	gen := p.gen
	if p.stop != nil {
		p.stop()
		p.stop = nil
	}
	p.hasPending = false
	p.mu.Unlock()
	p.write(gen, pos)
}

// Stop cancels any pending debounced write without committing it. Call on
// teardown so no timer fires after disposal.
func (p *Position) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelLocked()
}

// Clear removes both saved coordinates.
func (p *Position) Clear() {
	p.mu.Lock()
	p.cancelLocked()
	p.mu.Unlock()
	for _, key := range []string{p.keys.X, p.keys.Y} {
		if err := p.kv.Delete(key); err != nil {
			p.log.Warn("failed to clear saved position", "key", key, "error", err)
		}
	}
}

func (p *Position) cancelLocked() {
	if p.stop != nil {
		p.stop()
		p.stop = nil
	}
	p.hasPending = false
	p.gen++
}

// commitPending is the debounce timer body; the generation check makes a
// timer that lost the race with a newer save a no-op.
func (p *Position) commitPending(gen uint64) {
	p.mu.Lock()
	if gen != p.gen || !p.hasPending {
		p.mu.Unlock()
		return
	}
	pos := p.pending
	p.hasPending = false
	p.stop = nil
	p.mu.Unlock()
	p.write(gen, pos)
}

// write commits both coordinates unless a newer save superseded gen while
// it waited its turn.
func (p *Position) write(gen uint64, pos geom.Point) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	p.mu.Lock()
	stale := gen != p.gen
	p.mu.Unlock()
	if stale {
		return
	}
	if err := p.kv.Set(p.keys.X, formatCoord(pos.X)); err != nil {
		p.log.Warn("failed to save position", "key", p.keys.X, "error", err)
	}
	if err := p.kv.Set(p.keys.Y, formatCoord(pos.Y)); err != nil {
		p.log.Warn("failed to save position", "key", p.keys.Y, "error", err)
	}
}

// formatCoord renders a coordinate as a minimal decimal string that
// strconv.ParseFloat round-trips exactly.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
