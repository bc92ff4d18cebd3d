//go:build !windows

package store

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// acquireFileLock takes an exclusive, non-blocking advisory lock on path,
// creating the file if needed. Declared as a var so tests can substitute a
// failing implementation.
var acquireFileLock = func(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("failed to acquire state lock: %w", err)
	}
	return f, nil
}

// releaseFileLock unlocks, closes, and removes the lock file.
func releaseFileLock(f *os.File) error {
	if f == nil {
		return nil
	}
	path := f.Name()

	// Flock with LOCK_UN does not fail on unix.
	unix.Flock(int(f.Fd()), unix.LOCK_UN)

	err1 := f.Close()
	err2 := os.Remove(path)
	if err2 != nil && os.IsNotExist(err2) {
		err2 = nil
	}
	return errors.Join(err1, err2)
}
