package logview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	thumbGlyph = "█"
	trackGlyph = "│"
)

// scrollbar renders a one-column scroll indicator: thumb length is the
// visible share of the content, thumb position maps the scroll offset onto
// the leftover track. Content that fits renders a full-height thumb, the
// usual idiom for "nothing to scroll".
func scrollbar(height, total, offset int, thumb, track lipgloss.Style) string {
	if height <= 0 {
		return ""
	}
	top, length := 0, height
	if total > height {
		length = height * height / total
		if length < 1 {
			length = 1
		}
		maxOffset := total - height
		if offset < 0 {
			offset = 0
		}
		if offset > maxOffset {
			offset = maxOffset
		}
		top = (height - length) * offset / maxOffset
	}
	var b strings.Builder
	for i := 0; i < height; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		if i >= top && i < top+length {
			b.WriteString(thumb.Render(thumbGlyph))
		} else {
			b.WriteString(track.Render(trackGlyph))
		}
	}
	return b.String()
}
