// Package motion interpolates overlay geometry toward target values using
// damped springs. It is purely declarative: controllers set targets and
// the render layer steps the group once per frame; no per-frame math ever
// runs in the logic layer.
package motion

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

// Defaults tuned for panel and badge movement: fast settle, no visible
// bounce on a cell grid.
const (
	DefaultFPS       = 60
	DefaultFrequency = 7.0
	DefaultDamping   = 0.9
)

// epsilon is the settle tolerance; well below half a terminal cell, so
// snapping at it is invisible.
const epsilon = 1e-2

// Animator springs one scalar toward its target.
type Animator struct {
	spring   harmonica.Spring
	value    float64
	velocity float64
	target   float64
}

// Snap jumps to v without animating.
func (a *Animator) Snap(v float64) {
	a.value = v
	a.target = v
	a.velocity = 0
}

// SetTarget starts moving toward v, preserving current momentum.
func (a *Animator) SetTarget(v float64) {
	a.target = v
}

// Value returns the current interpolated value.
func (a *Animator) Value() float64 { return a.value }

// Target returns the value being moved toward.
func (a *Animator) Target() float64 { return a.target }

// Settled reports whether the animator has reached its target.
func (a *Animator) Settled() bool {
	return math.Abs(a.value-a.target) < epsilon && math.Abs(a.velocity) < epsilon
}

// Step advances one frame and returns the new value. Once within the
// settle tolerance it pins the value exactly on target so rendering never
// jitters on the asymptote.
func (a *Animator) Step() float64 {
	a.value, a.velocity = a.spring.Update(a.value, a.velocity, a.target)
	if a.Settled() {
		a.value = a.target
		a.velocity = 0
	}
	return a.value
}

// Group is a named set of animators stepped together by the render loop.
type Group struct {
	fps       int
	frequency float64
	damping   float64
	as        map[string]*Animator
}

// Option configures a Group.
type Option func(*Group)

// WithFPS sets the frame rate the group is stepped at.
func WithFPS(fps int) Option {
	return func(g *Group) {
		if fps > 0 {
			g.fps = fps
		}
	}
}

// WithSpring sets the spring's angular frequency and damping ratio.
func WithSpring(frequency, damping float64) Option {
	return func(g *Group) {
		if frequency > 0 {
			g.frequency = frequency
		}
		if damping > 0 {
			g.damping = damping
		}
	}
}

// NewGroup returns an empty group.
func NewGroup(opts ...Option) *Group {
	g := &Group{
		fps:       DefaultFPS,
		frequency: DefaultFrequency,
		damping:   DefaultDamping,
		as:        make(map[string]*Animator),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Get returns the named animator, creating it at rest on zero.
func (g *Group) Get(name string) *Animator {
	a, ok := g.as[name]
	if !ok {
		a = &Animator{spring: harmonica.NewSpring(harmonica.FPS(g.fps), g.frequency, g.damping)}
		g.as[name] = a
	}
	return a
}

// Step advances every animator one frame and reports whether any of them
// is still moving; the render loop keeps ticking while it returns true.
func (g *Group) Step() (moving bool) {
	for _, a := range g.as {
		a.Step()
		if !a.Settled() {
			moving = true
		}
	}
	return moving
}

// Settled reports whether every animator is at rest.
func (g *Group) Settled() bool {
	for _, a := range g.as {
		if !a.Settled() {
			return false
		}
	}
	return true
}

// FrameInterval returns the tick interval matching the group's frame rate.
func (g *Group) FrameInterval() time.Duration {
	return time.Second / time.Duration(g.fps)
}
