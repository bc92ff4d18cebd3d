package hud

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/hudkit/hud/panel"
)

// Render composites the overlay onto the host's finished view. When the
// overlay owns its zone manager the result is scanned here; hosts sharing
// a manager via WithZone scan the outermost frame themselves.
func (o *Overlay) Render(base string) string {
	if !o.ready || !o.visible || o.w <= 0 || o.h <= 0 {
		return base
	}
	var out string
	if o.expanded || o.closing {
		if o.panel.Mode() == panel.Docked {
			out = o.renderDocked(base)
		} else {
			out = o.renderFloating(base)
		}
	} else {
		out = o.renderBadge(base)
	}
	if o.ownZone {
		out = o.zone.Scan(out)
	}
	return out
}

// renderBadge draws the chip at its animated position, clipping against
// the viewport edges so a mid-drag or docked badge shows only its
// on-screen sliver. The chip is clipped before marking so the zone
// markers stay intact.
func (o *Overlay) renderBadge(base string) string {
	x := roundInt(o.motion.Get(animBadgeX).Value())
	y := roundInt(o.motion.Get(animBadgeY).Value())
	chip := o.styles.Badge.Render(badgeText(o.label))
	if o.badge.Hidden() && !o.badge.Dragging() {
		chip = o.styles.Handle.Render(badgeHandleText(roundInt(o.tuning.Badge.HandleWidth)))
	}

	if x < 0 {
		chip = ansi.TruncateLeft(chip, -x, "")
		x = 0
	}
	if vis := o.w - x; vis < chipWidth(chip) {
		if vis <= 0 {
			return base
		}
		chip = ansi.Truncate(chip, vis, "")
	}
	return composite(base, o.zone.Mark(o.zid(zoneBadge), chip), x, y, o.w, o.h)
}

// renderDocked draws the bottom sheet at its animated height: a marked
// header drag row on top, content below.
func (o *Overlay) renderDocked(base string) string {
	ph := roundInt(o.motion.Get(animPanelH).Value())
	if ph > o.h {
		ph = o.h
	}
	if ph < 1 {
		return base
	}

	rows := []string{o.zone.Mark(o.zid(zoneHeader), o.headerRow())}
	if body := ph - 1; body > 0 {
		rows = append(rows, o.bodyLines(o.w, body)...)
	}
	return composite(base, strings.Join(rows, "\n"), 0, o.h-ph, o.w, o.h)
}

// headerRow builds the docked drag row: grip and title on the left, key
// hints on the right when they fit. Every segment carries the header
// background itself so the row stays solid across style boundaries.
func (o *Overlay) headerRow() string {
	left := o.styles.Header.Render(" "+dragGlyph+" ") +
		o.styles.Title.Inherit(o.styles.Header).Render(o.title)
	hint := o.styles.HeaderHint.Render(keyHints(o.keyMap) + " ")
	if gap := o.w - lipgloss.Width(left) - lipgloss.Width(hint); gap >= 1 {
		return left + o.styles.Header.Render(strings.Repeat(" ", gap)) + hint
	}
	if pad := o.w - lipgloss.Width(left); pad > 0 {
		return left + o.styles.Header.Render(strings.Repeat(" ", pad))
	}
	return ansi.Truncate(left, o.w, "")
}

func keyHints(km KeyMap) string {
	c, m := km.Collapse.Help(), km.ToggleMode.Help()
	return c.Key + " " + c.Desc + " · " + m.Key + " " + m.Desc
}

// renderFloating draws the bordered window at its animated frame. The
// corner glyphs are marked as resize handles, the rest of the top border
// doubles as the drag header.
func (o *Overlay) renderFloating(base string) string {
	x := roundInt(o.motion.Get(animFrameX).Value())
	y := roundInt(o.motion.Get(animFrameY).Value())
	w := roundInt(o.motion.Get(animFrameW).Value())
	h := roundInt(o.motion.Get(animFrameH).Value())
	if w < 4 {
		w = 4
	}
	if h < 2 {
		h = 2
	}
	// Springs overshoot; pin the drawn frame on screen.
	if x+w > o.w {
		x = o.w - w
	}
	if x < 0 {
		x = 0
	}
	if y+h > o.h {
		y = o.h - h
	}
	if y < 0 {
		y = 0
	}

	border := o.styles.Border
	mid := "─ " + o.title + " "
	if over := lipgloss.Width(mid) - (w - 2); over > 0 {
		mid = ansi.Truncate(mid, w-2, "")
	}
	mid += strings.Repeat("─", w-2-lipgloss.Width(mid))
	tl := "╭"
	if o.onBack != nil {
		tl = "‹"
	}
	top := o.zone.Mark(o.zid(zoneTL), border.Render(tl)) +
		o.zone.Mark(o.zid(zoneHeader), border.Render(mid)) +
		o.zone.Mark(o.zid(zoneTR), border.Render("✕"))
	bottom := o.zone.Mark(o.zid(zoneBL), border.Render("╰")) +
		border.Render(strings.Repeat("─", w-2)) +
		o.zone.Mark(o.zid(zoneBR), border.Render("╯"))

	rows := []string{top}
	side := border.Render("│")
	for _, line := range o.bodyLines(w-2, h-2) {
		rows = append(rows, side+line+side)
	}
	rows = append(rows, bottom)
	return composite(base, strings.Join(rows, "\n"), x, y, o.w, o.h)
}

// bodyLines returns the content view normalized to exactly w by h cells.
func (o *Overlay) bodyLines(w, h int) []string {
	if w <= 0 || h <= 0 {
		return nil
	}
	var view string
	if o.content != nil {
		view = o.content.View()
	}
	lines := normalize(view, w, h)
	for i, line := range lines {
		lines[i] = o.styles.Body.Render(line)
	}
	return lines
}

const dragGlyph = "⠿"

func badgeText(label string) string { return "● " + label }

// badgeHandleText is the docked sliver: a grab affordance sized to the
// handle width.
func badgeHandleText(width int) string {
	if width < 1 {
		width = 1
	}
	if width == 1 {
		return "◂"
	}
	return "◂" + strings.Repeat("▪", width-1)
}

func chipWidth(chip string) int { return lipgloss.Width(chip) }

func roundInt(v float64) int { return int(math.Round(v)) }
