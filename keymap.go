package hud

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the overlay's keyboard bindings. Keys act only while the
// panel is expanded; everything else passes through to the host.
type KeyMap struct {
	Collapse   key.Binding
	ToggleMode key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Collapse: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "collapse"),
		),
		ToggleMode: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "dock/float"),
		),
	}
}
