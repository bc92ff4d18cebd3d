package store

import (
	"fmt"
	"sync"
)

// Memory is a map-backed KV. It backs tests and serves as the fallback
// when a disk store cannot be opened; in that role persistence degrades
// to session-local state.
type Memory struct {
	mu sync.Mutex
	m  map[string]string

	// FailReads and FailWrites inject storage failures for tests.
	FailReads  bool
	FailWrites bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{m: make(map[string]string)}
}

// Get implements KV.
func (s *Memory) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailReads {
		return "", false, fmt.Errorf("injected read failure for %q", key)
	}
	v, ok := s.m[key]
	return v, ok, nil
}

// Set implements KV.
func (s *Memory) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites {
		return fmt.Errorf("injected write failure for %q", key)
	}
	if s.m == nil {
		s.m = make(map[string]string)
	}
	s.m[key] = value
	return nil
}

// Delete implements KV.
func (s *Memory) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites {
		return fmt.Errorf("injected delete failure for %q", key)
	}
	delete(s.m, key)
	return nil
}

// Len reports the number of stored keys.
func (s *Memory) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
