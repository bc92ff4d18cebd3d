// Package store persists overlay state as string key-value pairs. It
// provides the narrow KV contract the engine consumes, a disk-backed
// implementation guarded by an exclusive lock, an in-memory implementation
// for tests and lock-fallback, and the debounced position store built on
// top of them.
//
// Storage failures are never fatal to the overlay: callers log and treat a
// failed read as an absent value and a failed write as a skipped write.
package store

import "errors"

// ErrLocked is returned when another process holds the state directory.
var ErrLocked = errors.New("store: state directory locked by another process")

// KV is an overlay state store. Implementations must report a missing key
// as ("", false, nil), reserving errors for actual I/O failures, and must
// be safe for concurrent use.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}
