// Package gesture converts raw pointer sequences into taps, drags, and
// multi-tap counts. It is input-source agnostic: hosts feed it pointer
// down/move/up events from a mouse, touch layer, or test harness, and it
// reports classifications through explicit handlers.
//
// Classification is inherently delayed: a tap cannot be told from the start
// of a drag until the distance threshold is crossed or the pointer lifts,
// and a double tap cannot be told from a pending triple until the
// resolution window elapses. That latency is part of the contract, not an
// implementation artifact.
package gesture

import "time"

// Tuning carries the thresholds and windows that govern classification.
// Controllers receive it at construction so tests can tighten values.
type Tuning struct {
	// TapThreshold is the Manhattan distance (|dx|+|dy|) from the origin
	// above which a pointer session stops being a tap and becomes a drag.
	TapThreshold float64
	// MultiTapWindow is the maximum gap between consecutive taps counted
	// as one sequence.
	MultiTapWindow time.Duration
	// MultiTapResolve is how long after the last tap a sequence is
	// classified and dispatched.
	MultiTapResolve time.Duration
}

// DefaultTuning returns the canonical thresholds.
func DefaultTuning() Tuning {
	return Tuning{
		TapThreshold:    5,
		MultiTapWindow:  500 * time.Millisecond,
		MultiTapResolve: 300 * time.Millisecond,
	}
}

// NewTimer starts a one-shot timer that calls fn after d; the returned stop
// cancels it if it has not fired. A nil NewTimer field means time.AfterFunc.
// Tests substitute a manually fired implementation.
type NewTimer func(d time.Duration, fn func()) (stop func())

func afterFunc(d time.Duration, fn func()) (stop func()) {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
