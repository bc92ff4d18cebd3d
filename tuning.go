package hud

import (
	"time"

	"github.com/hudkit/hud/badge"
	"github.com/hudkit/hud/gesture"
	"github.com/hudkit/hud/panel"
)

// Tuning aggregates the controller constants plus the animation rate. The
// zero value is replaced by TerminalTuning.
type Tuning struct {
	Badge badge.Tuning
	Panel panel.Tuning
	// FPS is the animation step rate.
	FPS int
}

// TerminalTuning scales the layout constants to character cells. Distances
// shrink (a cell is roughly an order of magnitude coarser than a pixel)
// while the timing constants stay as they are; flick velocity is in cells
// per millisecond.
func TerminalTuning() Tuning {
	taps := gesture.Tuning{
		TapThreshold:    1,
		MultiTapWindow:  500 * time.Millisecond,
		MultiTapResolve: 300 * time.Millisecond,
	}
	return Tuning{
		Badge: badge.Tuning{
			HandleWidth:  4,
			EdgeMargin:   2,
			TopPadding:   1,
			FallbackY:    2,
			SaveDebounce: 500 * time.Millisecond,
			Tap:          taps,
		},
		Panel: panel.Tuning{
			MinHeightDocked:    3,
			MinWidthFrac:       0.25,
			MinHeightFloating:  5,
			TopPadding:         1,
			FlickCloseDistance: 6,
			FlickCloseVelocity: 0.03,
			FlickCloseMinDrag:  2,
			ResizeIntent:       1,
			Tap:                taps,
		},
		FPS: 60,
	}
}
