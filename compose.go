package hud

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// composite draws over onto base with its top-left corner at cell (x, y).
// base is normalized to width by height first; every composed line is
// re-truncated to width so nothing escapes the viewport. Overlay rows
// outside the viewport are dropped. All width arithmetic is ANSI-aware,
// so styled content and zero-width zone markers pass through intact.
func composite(base, over string, x, y, width, height int) string {
	lines := normalize(base, width, height)
	if x >= width {
		return strings.Join(lines, "\n")
	}
	for i, overLine := range strings.Split(over, "\n") {
		row := y + i
		if row < 0 || row >= height {
			continue
		}
		ow := ansi.StringWidth(overLine)
		if ow == 0 {
			continue
		}
		left := ansi.Truncate(lines[row], x, "")
		if pad := x - ansi.StringWidth(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		var right string
		if x+ow < width {
			right = ansi.TruncateLeft(lines[row], x+ow, "")
		}
		lines[row] = ansi.Truncate(left+overLine+right, width, "")
	}
	return strings.Join(lines, "\n")
}

// normalize returns s as exactly height lines of exactly width cells,
// truncating or space-padding as needed.
func normalize(s string, width, height int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i, line := range lines {
		switch w := ansi.StringWidth(line); {
		case w > width:
			lines[i] = ansi.Truncate(line, width, "")
		case w < width:
			lines[i] = line + strings.Repeat(" ", width-w)
		}
	}
	return lines
}
