package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/peterbourgon/diskv/v3"
)

// Disk is a KV persisted under a state directory, one file per key. The
// directory is guarded by an exclusive advisory lock so only one process
// mutates a given overlay's state at a time.
type Disk struct {
	d        *diskv.Diskv
	lockFile *os.File
}

// OpenDisk opens (creating if needed) the state directory at dir and
// acquires its lock. It returns ErrLocked when another process already
// holds the directory.
func OpenDisk(dir string) (*Disk, error) {
	if dir == "" {
		return nil, fmt.Errorf("state directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	lockFile, err := acquireFileLock(filepath.Join(dir, ".lock"))
	if err != nil {
		return nil, err
	}

	return &Disk{
		d: diskv.New(diskv.Options{
			BasePath:     dir,
			Transform:    func(string) []string { return []string{} },
			CacheSizeMax: 64 * 1024,
		}),
		lockFile: lockFile,
	}, nil
}

// Get implements KV. A missing key is ("", false, nil).
func (s *Disk) Get(key string) (string, bool, error) {
	v, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return string(v), true, nil
}

// Set implements KV.
func (s *Disk) Set(key, value string) error {
	if err := s.d.Write(key, []byte(value)); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

// Delete implements KV. Deleting an absent key is a no-op.
func (s *Disk) Delete(key string) error {
	if err := s.d.Erase(key); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// Close releases the directory lock. The Disk must not be used afterwards.
func (s *Disk) Close() error {
	err := releaseFileLock(s.lockFile)
	s.lockFile = nil
	return err
}
