// Command hud-demo runs a small host application with the overlay
// embedded. Simulated traffic fills an in-memory log that the overlay
// panel displays; the overlay's own logger points at the same buffer,
// so opening the inspector shows the gestures that opened it.
//
// Tap the badge to expand the panel, drag the header to resize it,
// double-tap the header to toggle floating mode, flick down to close.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hudkit/hud"
	"github.com/hudkit/hud/logview"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	showVersion := flag.Bool("version", false, "print version and exit")
	stateDir := flag.String("state-dir", defaultStateDir(), "directory for persisted badge position")
	level := flag.String("log-level", envOr("HUD_DEMO_LOG_LEVEL", "debug"), "minimum captured log level (debug|info|warn|error)")
	flag.Parse()

	if *showVersion {
		fmt.Println("hud-demo " + version)
		return nil
	}

	handler := logview.NewHandler(500, parseLevel(*level))
	logger := slog.New(handler)

	overlay := hud.New(
		hud.WithStateDir(*stateDir),
		hud.WithContent(logview.New(handler)),
		hud.WithTitle("Inspector"),
		hud.WithBadgeLabel("hud"),
		hud.WithLogger(logger),
	)
	defer overlay.Close()

	logger.Info("demo starting", "version", version, "state_dir", *stateDir)

	m := &model{overlay: overlay, logger: logger}
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	return err
}

func defaultStateDir() string {
	if dir := os.Getenv("HUD_DEMO_STATE_DIR"); dir != "" {
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "hud-demo")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(800*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// activity is the simulated traffic, replayed on a loop.
var activity = []struct {
	level slog.Level
	msg   string
	attrs []any
}{
	{slog.LevelInfo, "request served", []any{"method", "GET", "path", "/api/users", "status", 200}},
	{slog.LevelDebug, "cache probe", []any{"key", "session:41", "hit", false}},
	{slog.LevelInfo, "request served", []any{"method", "POST", "path", "/api/orders", "status", 201}},
	{slog.LevelWarn, "slow query", []any{"table", "orders", "ms", 412}},
	{slog.LevelInfo, "worker drained", []any{"queue", "emails", "jobs", 3}},
	{slog.LevelError, "upstream refused", []any{"host", "payments:8443"}},
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1)
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

type model struct {
	overlay *hud.Overlay
	logger  *slog.Logger
	w, h    int
	seq     int
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.overlay.Init(), tick())
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.w, m.h = msg.Width, msg.Height
	case tickMsg:
		entry := activity[m.seq%len(activity)]
		m.seq++
		m.logger.Log(context.Background(), entry.level, entry.msg, entry.attrs...)
		return m, tick()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "b":
			if !m.overlay.Expanded() {
				m.overlay.ToggleBadge()
				return m, nil
			}
		}
	}
	return m, m.overlay.Update(msg)
}

func (m *model) View() string {
	return m.overlay.Render(m.dashboard())
}

func (m *model) dashboard() string {
	if m.w <= 0 || m.h <= 0 {
		return ""
	}
	rows := make([]string, 0, m.h)
	rows = append(rows, titleStyle.Render(" hud-demo ")+subtleStyle.Render(" simulated traffic on a loop"))
	for len(rows) < m.h-1 {
		rows = append(rows, "")
	}
	rows = append(rows, subtleStyle.Render(" q quit · b hide/show badge · tap the badge to inspect"))
	return strings.Join(rows, "\n")
}
