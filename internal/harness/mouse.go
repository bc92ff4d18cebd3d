//go:build unix

package harness

import (
	"fmt"
	"time"
)

// SGR extended mouse reporting: CSI < code ; col ; row, ending in 'M'
// for press or motion and 'm' for release. Wire coordinates are
// one-based; this package speaks zero-based cell coordinates throughout
// and converts at the boundary.
const (
	sgrLeft      = 0
	sgrDrag      = 32
	sgrWheelUp   = 64
	sgrWheelDown = 65
)

const eventGap = 20 * time.Millisecond

func (t *Terminal) mouse(code, x, y int, release bool) error {
	final := byte('M')
	if release {
		final = 'm'
	}
	_, err := fmt.Fprintf(t.ptm, "\x1b[<%d;%d;%d%c", code, x+1, y+1, final)
	return err
}

// Press sends a left button press at cell (x, y).
func (t *Terminal) Press(x, y int) error { return t.mouse(sgrLeft, x, y, false) }

// Motion reports the pointer at (x, y) with the left button held.
func (t *Terminal) Motion(x, y int) error { return t.mouse(sgrLeft|sgrDrag, x, y, false) }

// Release lets go of the left button at (x, y).
func (t *Terminal) Release(x, y int) error { return t.mouse(sgrLeft, x, y, true) }

// Click presses and releases in place, with a beat between the two so
// the program sees distinct events.
func (t *Terminal) Click(x, y int) error {
	if err := t.Press(x, y); err != nil {
		return err
	}
	time.Sleep(eventGap)
	return t.Release(x, y)
}

// Drag presses at the start cell, walks the pointer to the end cell in
// steps motion events, and releases there.
func (t *Terminal) Drag(fromX, fromY, toX, toY, steps int) error {
	if steps < 1 {
		steps = 1
	}
	if err := t.Press(fromX, fromY); err != nil {
		return err
	}
	for i := 1; i <= steps; i++ {
		time.Sleep(eventGap)
		x := fromX + (toX-fromX)*i/steps
		y := fromY + (toY-fromY)*i/steps
		if err := t.Motion(x, y); err != nil {
			return err
		}
	}
	time.Sleep(eventGap)
	return t.Release(toX, toY)
}

// Wheel sends one wheel notch at (x, y).
func (t *Terminal) Wheel(x, y int, up bool) error {
	code := sgrWheelDown
	if up {
		code = sgrWheelUp
	}
	return t.mouse(code, x, y, false)
}
