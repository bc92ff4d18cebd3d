package gesture

import (
	"sync"
	"time"
)

// TapCounter turns a rapid sequence of taps into a discrete count. Each tap
// restarts the resolution timer; when the timer finally fires, OnResolve
// receives the number of taps in the sequence and the counter resets.
//
// Unlike Recognizer, TapCounter is safe for concurrent use: the resolution
// timer fires on its own goroutine, so OnResolve may too. Hosts that need
// event-loop ordering marshal the callback themselves.
type TapCounter struct {
	// Window is the maximum gap between taps in one sequence; 0 means
	// DefaultTuning().MultiTapWindow.
	Window time.Duration
	// Resolve is the delay after the last tap before the sequence is
	// classified; 0 means DefaultTuning().MultiTapResolve.
	Resolve time.Duration
	// OnResolve receives the final count (1, 2, 3, ...). May be invoked
	// from the timer goroutine.
	OnResolve func(count int)
	// NewTimer overrides the resolution timer; nil means time.AfterFunc.
	NewTimer NewTimer

	mu   sync.Mutex
	last time.Time
	n    int
	gen  uint64
	stop func()
}

// Tap records one tap observed at now. A gap longer than Window starts a
// fresh sequence.
func (c *TapCounter) Tap(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	if c.n > 0 && now.Sub(c.last) > c.window() {
		c.n = 0
	}
	c.n++
	c.last = now
	c.gen++
	gen := c.gen
	c.stop = c.newTimer()(c.resolve(), func() { c.fire(gen) })
}

// Stop cancels any pending resolution and discards the current sequence
// without dispatching. Call on teardown so no timer fires after disposal.
func (c *TapCounter) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	c.gen++
	c.n = 0
}

// fire is the timer body. The generation check makes a stale timer that
// lost the race with Tap or Stop a no-op.
func (c *TapCounter) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	n := c.n
	c.n = 0
	c.stop = nil
	cb := c.OnResolve
	c.mu.Unlock()
	if n > 0 && cb != nil {
		cb(n)
	}
}

func (c *TapCounter) window() time.Duration {
	if c.Window > 0 {
		return c.Window
	}
	return DefaultTuning().MultiTapWindow
}

func (c *TapCounter) resolve() time.Duration {
	if c.Resolve > 0 {
		return c.Resolve
	}
	return DefaultTuning().MultiTapResolve
}

func (c *TapCounter) newTimer() NewTimer {
	if c.NewTimer != nil {
		return c.NewTimer
	}
	return afterFunc
}
