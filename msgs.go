package hud

import (
	"time"

	"github.com/hudkit/hud/panel"
)

// Messages the overlay delivers to the host model's Update. They are
// returned as commands from Overlay.Update, so they arrive through the
// normal Bubble Tea message flow.

// ExpandedMsg reports the panel opened (badge tap or Expand).
type ExpandedMsg struct{}

// CollapsedMsg reports the panel finished closing and the badge is back.
type CollapsedMsg struct {
	// Flick marks a flick-to-close collapse.
	Flick bool
}

// ModeChangedMsg reports a docked/floating toggle.
type ModeChangedMsg struct{ Mode panel.Mode }

// BackMsg reports a back navigation request from the floating panel's
// top-left handle.
type BackMsg struct{}

// eventMsg carries one controller event out of the subscription channel.
type eventMsg struct{ ev any }

// frameMsg drives one animation step.
type frameMsg struct{ at time.Time }
