//go:build unix

// Package harness runs terminal programs against a real pty and
// synthesizes the byte sequences a terminal emulator would send. A test
// points a Bubble Tea program at Tty, decodes the captured output into
// a Screen, finds the cell it wants to hit, and clicks it.
package harness

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
)

const pollInterval = 10 * time.Millisecond

// Terminal is one test terminal: a pty pair with the control side
// captured for assertions. The program under test reads input from and
// writes output to Tty.
type Terminal struct {
	tb   testing.TB
	ptm  *os.File
	pts  *os.File
	cols int
	rows int

	mu     sync.Mutex
	out    strings.Builder
	closed bool
}

// Open allocates a pty sized to cols by rows and starts capturing its
// output. The terminal closes itself during test cleanup.
func Open(tb testing.TB, cols, rows int) *Terminal {
	tb.Helper()
	ptm, pts, err := pty.Open()
	if err != nil {
		tb.Fatalf("open pty: %v", err)
	}
	if err := pty.Setsize(ptm, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)}); err != nil {
		ptm.Close()
		pts.Close()
		tb.Fatalf("size pty: %v", err)
	}
	t := &Terminal{tb: tb, ptm: ptm, pts: pts, cols: cols, rows: rows}
	go t.capture()
	tb.Cleanup(func() { t.Close() })
	return t
}

// Tty returns the program side of the pty, for use as a Bubble Tea
// program's input and output.
func (t *Terminal) Tty() *os.File { return t.pts }

// Size returns the terminal dimensions in cells.
func (t *Terminal) Size() (cols, rows int) { return t.cols, t.rows }

func (t *Terminal) capture() {
	buf := make([]byte, 4096)
	for {
		n, err := t.ptm.Read(buf)
		if n > 0 {
			t.mu.Lock()
			t.out.Write(buf[:n])
			t.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// Output returns the raw byte stream captured so far.
func (t *Terminal) Output() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.out.String()
}

// Screen decodes the captured stream into the current display.
func (t *Terminal) Screen() *Screen {
	return renderScreen(t.Output(), t.cols, t.rows)
}

// Send writes raw bytes to the program's input.
func (t *Terminal) Send(s string) error {
	_, err := t.ptm.WriteString(s)
	return err
}

// WaitFor polls until text appears somewhere on the screen.
func (t *Terminal) WaitFor(text string, timeout time.Duration) error {
	if t.wait(func(s *Screen) bool { return s.Contains(text) }, timeout) {
		return nil
	}
	return fmt.Errorf("%q never appeared within %v; screen:\n%s", text, timeout, t.dump())
}

// WaitGone polls until text no longer appears anywhere on the screen.
func (t *Terminal) WaitGone(text string, timeout time.Duration) error {
	if t.wait(func(s *Screen) bool { return !s.Contains(text) }, timeout) {
		return nil
	}
	return fmt.Errorf("%q still on screen after %v; screen:\n%s", text, timeout, t.dump())
}

// WaitUntil polls the screen until cond holds.
func (t *Terminal) WaitUntil(cond func(*Screen) bool, timeout time.Duration) error {
	if t.wait(cond, timeout) {
		return nil
	}
	return fmt.Errorf("condition never held within %v; screen:\n%s", timeout, t.dump())
}

func (t *Terminal) wait(cond func(*Screen) bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if cond(t.Screen()) {
			return true
		}
		if !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(pollInterval)
	}
}

func (t *Terminal) dump() string {
	return strings.Join(t.Screen().Rows(), "\n")
}

// Close releases both ends of the pty. Safe to call more than once.
func (t *Terminal) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()
	err := t.pts.Close()
	if err2 := t.ptm.Close(); err == nil {
		err = err2
	}
	return err
}
