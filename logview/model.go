package logview

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the log line styling.
type Styles struct {
	Time    lipgloss.Style
	Debug   lipgloss.Style
	Info    lipgloss.Style
	Warn    lipgloss.Style
	Error   lipgloss.Style
	Message lipgloss.Style
	Attr    lipgloss.Style
	Empty   lipgloss.Style
	// Thumb and Track style the scroll indicator column.
	Thumb lipgloss.Style
	Track lipgloss.Style
}

// DefaultStyles returns the stock log coloring.
func DefaultStyles() Styles {
	return Styles{
		Time:    lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		Debug:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
		Warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Message: lipgloss.NewStyle(),
		Attr:    lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		Empty:   lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true),
		Thumb:   lipgloss.NewStyle().Foreground(lipgloss.Color("62")),
		Track:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// Model is a scrolling view over a Handler's ring, shaped to serve as
// overlay panel content. It follows the newest entry until the user
// scrolls away from the bottom.
type Model struct {
	handler *Handler
	vp      viewport.Model
	styles  Styles
	seen    uint64
	ready   bool
}

// New returns a view over handler.
func New(handler *Handler) *Model {
	return &Model{
		handler: handler,
		styles:  DefaultStyles(),
		vp:      viewport.New(0, 0),
	}
}

// SetStyles replaces the log line styling.
func (m *Model) SetStyles(s Styles) {
	m.styles = s
	m.refresh(true)
}

// SetSize resizes the view. One column is reserved for the scroll
// indicator.
func (m *Model) SetSize(width, height int) {
	follow := m.vp.AtBottom()
	m.vp.Width = width - 1
	if m.vp.Width < 0 {
		m.vp.Width = 0
	}
	m.vp.Height = height
	m.ready = width > 0 && height > 0
	m.refresh(true)
	if follow {
		m.vp.GotoBottom()
	}
}

// Update handles scrolling input and picks up newly recorded entries.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	m.refresh(false)
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return cmd
}

// View renders the log window with a scroll indicator along its right
// edge.
func (m *Model) View() string {
	m.refresh(false)
	if !m.ready {
		return ""
	}
	window := lipgloss.NewStyle().Width(m.vp.Width).Render(m.vp.View())
	bar := scrollbar(m.vp.Height, m.vp.TotalLineCount(), m.vp.YOffset, m.styles.Thumb, m.styles.Track)
	return lipgloss.JoinHorizontal(lipgloss.Top, window, bar)
}

// refresh rebuilds the viewport content when the ring advanced, keeping
// the bottom pinned while following.
func (m *Model) refresh(force bool) {
	seq := m.handler.Seq()
	if !force && seq == m.seen {
		return
	}
	m.seen = seq
	follow := m.vp.AtBottom()
	m.vp.SetContent(m.renderEntries())
	if follow {
		m.vp.GotoBottom()
	}
}

func (m *Model) renderEntries() string {
	entries := m.handler.Recent(0)
	if len(entries) == 0 {
		return m.styles.Empty.Render("no log entries yet")
	}
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.renderEntry(e))
	}
	return b.String()
}

func (m *Model) renderEntry(e Entry) string {
	parts := []string{
		m.styles.Time.Render(e.Time.Format("15:04:05")),
		m.levelBadge(e.Level),
		m.styles.Message.Render(e.Message),
	}
	for _, attr := range e.Attrs {
		parts = append(parts, m.styles.Attr.Render(attr.Key+"="+attr.Value.String()))
	}
	return strings.Join(parts, " ")
}

func (m *Model) levelBadge(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return m.styles.Error.Render("ERR")
	case level >= slog.LevelWarn:
		return m.styles.Warn.Render("WRN")
	case level >= slog.LevelInfo:
		return m.styles.Info.Render("INF")
	}
	return m.styles.Debug.Render("DBG")
}
