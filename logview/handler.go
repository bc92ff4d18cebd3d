// Package logview captures structured logs in memory and renders them as
// overlay panel content. The Handler half is a slog.Handler backed by a
// bounded ring; the Model half is a scrolling view over it, so a program
// can point its logger at the overlay it is debugging.
package logview

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Entry is one captured log record.
type Entry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   []slog.Attr
}

// ring is the bounded entry buffer shared by a Handler and its WithAttrs
// and WithGroup clones.
type ring struct {
	mu      sync.RWMutex
	entries []Entry
	max     int
	seq     uint64
}

func (r *ring) add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	if len(r.entries) > r.max {
		r.entries = r.entries[1:]
	}
	r.seq++
}

// Handler is a slog.Handler that records into the ring. Clones from
// WithAttrs and WithGroup share the ring, so one buffer collects the
// whole program's logs.
type Handler struct {
	ring   *ring
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
}

// NewHandler returns a handler keeping the last max entries at or above
// level. max <= 0 keeps 1000; a nil level records everything.
func NewHandler(max int, level slog.Leveler) *Handler {
	if max <= 0 {
		max = 1000
	}
	return &Handler{
		ring:  &ring{entries: make([]Entry, 0, max), max: max},
		level: level,
	}
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	if h.level == nil {
		return true
	}
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	attrs := make([]slog.Attr, 0, len(h.attrs)+record.NumAttrs())
	attrs = append(attrs, h.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		attrs = append(attrs, h.qualify(attr))
		return true
	})
	h.ring.add(Entry{
		Time:    record.Time,
		Level:   record.Level,
		Message: record.Message,
		Attrs:   attrs,
	})
	return nil
}

// WithAttrs implements slog.Handler; the clone shares the ring.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, attr := range attrs {
		clone.attrs = append(clone.attrs, h.qualify(attr))
	}
	return &clone
}

// WithGroup implements slog.Handler; group names become key prefixes.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func (h *Handler) qualify(attr slog.Attr) slog.Attr {
	if h.prefix == "" {
		return attr
	}
	attr.Key = h.prefix + attr.Key
	return attr
}

// Recent returns up to n of the newest entries, oldest first. n <= 0
// returns everything retained.
func (h *Handler) Recent(n int) []Entry {
	h.ring.mu.RLock()
	defer h.ring.mu.RUnlock()
	entries := h.ring.entries
	if n <= 0 || n > len(entries) {
		n = len(entries)
	}
	out := make([]Entry, n)
	copy(out, entries[len(entries)-n:])
	return out
}

// Len returns the number of retained entries.
func (h *Handler) Len() int {
	h.ring.mu.RLock()
	defer h.ring.mu.RUnlock()
	return len(h.ring.entries)
}

// Seq returns a counter that advances on every recorded entry; views use
// it to notice new logs cheaply.
func (h *Handler) Seq() uint64 {
	h.ring.mu.RLock()
	defer h.ring.mu.RUnlock()
	return h.ring.seq
}

// Clear drops all retained entries.
func (h *Handler) Clear() {
	h.ring.mu.Lock()
	defer h.ring.mu.Unlock()
	h.ring.entries = h.ring.entries[:0]
	h.ring.seq++
}
