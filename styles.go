package hud

import "github.com/charmbracelet/lipgloss"

// Styles holds the overlay's visual styling. Hosts override individual
// entries via WithStyles.
type Styles struct {
	// Badge styles the collapsed bubble chip.
	Badge lipgloss.Style
	// Handle styles the docked sliver left when the badge is hidden.
	Handle lipgloss.Style
	// Header styles the docked panel's top drag row.
	Header lipgloss.Style
	// HeaderHint styles the trailing hint text inside the header row.
	HeaderHint lipgloss.Style
	// Border styles the floating window border.
	Border lipgloss.Style
	// Title styles the panel title text.
	Title lipgloss.Style
	// Body styles the panel content area.
	Body lipgloss.Style
}

// DefaultStyles returns the stock look: a violet chip, a subdued border,
// and an inverse header row.
func DefaultStyles() Styles {
	return Styles{
		Badge: lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1),
		Handle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")),
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")),
		HeaderHint: lipgloss.NewStyle().
			Foreground(lipgloss.Color("189")).
			Background(lipgloss.Color("62")),
		Border: lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")),
		Title: lipgloss.NewStyle().Bold(true),
		Body:  lipgloss.NewStyle(),
	}
}
