//go:build unix

package harness

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Screen is a decoded terminal display: a fixed cell grid built by
// replaying the output stream, with styling dropped and cursor motion,
// erases, and scrolling applied.
type Screen struct {
	cells [][]rune
	cols  int
	rows  int
}

// Rows returns the display as one string per row, right-trimmed.
func (s *Screen) Rows() []string {
	out := make([]string, s.rows)
	for i, row := range s.cells {
		out[i] = strings.TrimRight(string(row), " ")
	}
	return out
}

// Row returns row y right-trimmed, or "" off screen.
func (s *Screen) Row(y int) string {
	if y < 0 || y >= s.rows {
		return ""
	}
	return strings.TrimRight(string(s.cells[y]), " ")
}

// Contains reports whether text appears within a single row.
func (s *Screen) Contains(text string) bool {
	_, _, ok := s.Find(text)
	return ok
}

// Find locates the first occurrence of text, scanning rows top to
// bottom, and returns the cell coordinates of its first rune.
func (s *Screen) Find(text string) (x, y int, ok bool) {
	want := []rune(text)
	if len(want) == 0 {
		return 0, 0, false
	}
	for r, row := range s.cells {
		for c := 0; c+len(want) <= len(row); c++ {
			if row[c] != want[0] {
				continue
			}
			match := true
			for i := 1; i < len(want); i++ {
				if row[c+i] != want[i] {
					match = false
					break
				}
			}
			if match {
				return c, r, true
			}
		}
	}
	return 0, 0, false
}

// renderScreen replays stream onto a cols by rows grid.
func renderScreen(stream string, cols, rows int) *Screen {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	s := &Screen{cols: cols, rows: rows, cells: make([][]rune, rows)}
	for i := range s.cells {
		s.cells[i] = blankRow(cols)
	}
	d := &decoder{s: s}
	d.run(stream)
	return s
}

func blankRow(cols int) []rune {
	row := make([]rune, cols)
	for i := range row {
		row[i] = ' '
	}
	return row
}

type decoder struct {
	s   *Screen
	row int
	col int
}

func (d *decoder) run(stream string) {
	for i := 0; i < len(stream); {
		switch c := stream[i]; c {
		case 0x1b:
			i = d.escape(stream, i+1)
		case '\r':
			d.col = 0
			i++
		case '\n':
			d.lineFeed()
			i++
		case '\t':
			d.col = (d.col/8 + 1) * 8
			if d.col >= d.s.cols {
				d.col = d.s.cols - 1
			}
			i++
		case '\b':
			if d.col > 0 {
				d.col--
			}
			i++
		default:
			if c < 0x20 || c == 0x7f {
				i++
				break
			}
			r, size := utf8.DecodeRuneInString(stream[i:])
			if r == utf8.RuneError && size == 1 {
				i++
				break
			}
			d.put(r)
			i += size
		}
	}
}

func (d *decoder) put(r rune) {
	if d.col >= d.s.cols {
		d.col = 0
		d.lineFeed()
	}
	d.s.cells[d.row][d.col] = r
	d.col++
}

func (d *decoder) lineFeed() {
	if d.row+1 < d.s.rows {
		d.row++
		return
	}
	copy(d.s.cells, d.s.cells[1:])
	d.s.cells[d.s.rows-1] = blankRow(d.s.cols)
}

// escape consumes one escape sequence starting after the ESC byte and
// returns the index of the next unread byte. Truncated sequences at the
// end of a capture snapshot are ignored.
func (d *decoder) escape(stream string, i int) int {
	if i >= len(stream) {
		return i
	}
	switch stream[i] {
	case '[':
		return d.csi(stream, i+1)
	case ']':
		return skipOSC(stream, i+1)
	case '(', ')':
		return i + 2
	default:
		return i + 1
	}
}

func (d *decoder) csi(stream string, i int) int {
	start := i
	for i < len(stream) && !isFinalByte(stream[i]) {
		i++
	}
	if i >= len(stream) {
		return i
	}
	d.apply(stream[i], stream[start:i])
	return i + 1
}

// isFinalByte reports a CSI-terminating byte (0x40 through 0x7e).
func isFinalByte(b byte) bool { return b >= 0x40 && b <= 0x7e }

func (d *decoder) apply(cmd byte, params string) {
	private := strings.HasPrefix(params, "?")
	args := csiArgs(strings.TrimPrefix(params, "?"))
	switch cmd {
	case 'H', 'f':
		d.row = clampCell(arg(args, 0, 1)-1, d.s.rows)
		d.col = clampCell(arg(args, 1, 1)-1, d.s.cols)
	case 'A':
		d.row = clampCell(d.row-arg(args, 0, 1), d.s.rows)
	case 'B':
		d.row = clampCell(d.row+arg(args, 0, 1), d.s.rows)
	case 'C':
		d.col = clampCell(d.col+arg(args, 0, 1), d.s.cols)
	case 'D':
		d.col = clampCell(d.col-arg(args, 0, 1), d.s.cols)
	case 'J':
		d.eraseDisplay(arg(args, 0, 0))
	case 'K':
		d.eraseLine(arg(args, 0, 0))
	case 'h':
		// Entering the alternate screen presents a cleared display.
		if private && (hasArg(args, 1049) || hasArg(args, 47)) {
			d.eraseDisplay(2)
			d.row, d.col = 0, 0
		}
	}
}

func (d *decoder) eraseDisplay(mode int) {
	switch mode {
	case 0:
		d.eraseLine(0)
		for r := d.row + 1; r < d.s.rows; r++ {
			d.s.cells[r] = blankRow(d.s.cols)
		}
	case 1:
		for r := 0; r < d.row; r++ {
			d.s.cells[r] = blankRow(d.s.cols)
		}
		d.eraseLine(1)
	case 2, 3:
		for r := range d.s.cells {
			d.s.cells[r] = blankRow(d.s.cols)
		}
	}
}

func (d *decoder) eraseLine(mode int) {
	row := d.s.cells[d.row]
	switch mode {
	case 0:
		for c := d.col; c < d.s.cols; c++ {
			row[c] = ' '
		}
	case 1:
		for c := 0; c <= d.col && c < d.s.cols; c++ {
			row[c] = ' '
		}
	case 2:
		for c := range row {
			row[c] = ' '
		}
	}
}

func skipOSC(stream string, i int) int {
	for i < len(stream) {
		if stream[i] == 0x07 {
			return i + 1
		}
		if stream[i] == 0x1b && i+1 < len(stream) && stream[i+1] == '\\' {
			return i + 2
		}
		i++
	}
	return i
}

func csiArgs(params string) []int {
	if params == "" {
		return nil
	}
	parts := strings.Split(params, ";")
	args := make([]int, len(parts))
	for i, p := range parts {
		args[i], _ = strconv.Atoi(p)
	}
	return args
}

// arg returns args[i], substituting def for missing or zero parameters.
func arg(args []int, i, def int) int {
	if i >= len(args) || args[i] == 0 {
		return def
	}
	return args[i]
}

func hasArg(args []int, v int) bool {
	for _, a := range args {
		if a == v {
			return true
		}
	}
	return false
}

func clampCell(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
