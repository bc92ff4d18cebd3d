package display

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/hudkit/hud/geom"
)

// Terminal is a Display backed by a tty. The size is probed once at
// construction; hosts call Refresh when they learn the window may have
// changed (SIGWINCH, a window-size message), which fans out through Watch.
type Terminal struct {
	*Static
	f *os.File
}

// NewTerminal probes f, which must be a terminal.
func NewTerminal(f *os.File) (*Terminal, error) {
	w, h, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to probe terminal size: %w", err)
	}
	return &Terminal{
		Static: NewStatic(geom.Size{Width: float64(w), Height: float64(h)}),
		f:      f,
	}, nil
}

// Refresh re-probes the terminal and publishes the size if it changed.
func (t *Terminal) Refresh() error {
	w, h, err := term.GetSize(int(t.f.Fd()))
	if err != nil {
		return fmt.Errorf("failed to probe terminal size: %w", err)
	}
	t.Set(geom.Size{Width: float64(w), Height: float64(h)})
	return nil
}
