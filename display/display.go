// Package display abstracts where the overlay learns its viewport size: a
// real terminal, a host-provided window, or a fixed size in tests. The
// engine only ever sees the Display interface.
package display

import (
	"sync"

	"github.com/hudkit/hud/geom"
)

// Display exposes the current viewport size and a change subscription.
type Display interface {
	// Bounds returns the current viewport size.
	Bounds() geom.Size
	// Watch registers fn to run on every size change, in registration
	// order, and returns a cancel that unregisters it. fn runs
	// synchronously on the goroutine that published the change.
	Watch(fn func(geom.Size)) (cancel func())
}

type watcher struct {
	id uint64
	fn func(geom.Size)
}

// Static is an in-memory Display whose size is pushed by the host. Bubble
// Tea hosts feed it window-size messages; tests set it directly.
type Static struct {
	mu       sync.Mutex
	size     geom.Size
	watchers []watcher
	nextID   uint64
}

// NewStatic returns a Static reporting the given size.
func NewStatic(size geom.Size) *Static {
	return &Static{size: size}
}

// Bounds implements Display.
func (s *Static) Bounds() geom.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Set updates the size and notifies watchers. Publishing an unchanged size
// is a no-op.
func (s *Static) Set(size geom.Size) {
	s.mu.Lock()
	if size == s.size {
		s.mu.Unlock()
		return
	}
	s.size = size
	ws := make([]watcher, len(s.watchers))
	copy(ws, s.watchers)
	s.mu.Unlock()

	// Outside the lock so a watcher may call Bounds or Watch.
	for _, w := range ws {
		w.fn(size)
	}
}

// Watch implements Display.
func (s *Static) Watch(fn func(geom.Size)) (cancel func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.watchers = append(s.watchers, watcher{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, w := range s.watchers {
			if w.id == id {
				s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
				return
			}
		}
	}
}
