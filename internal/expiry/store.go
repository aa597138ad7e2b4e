// Package expiry provides an in-memory key table with lazy TTL eviction.
//
// Expired entries are swept on every access rather than by a background
// goroutine, so callers with an injected clock get fully deterministic tests
// and an idle process holds no timers.
package expiry

import (
	"sync"
	"time"
)

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store maps string keys to deadlines. A key is "live" until its deadline
// passes; after that any access treats it as absent and removes it.
type Store struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	deadlines map[string]time.Time
}

// NewStore creates an empty store whose entries live for ttl after arming.
func NewStore(ttl time.Duration, opts ...Option) *Store {
	s := &Store{
		ttl:       ttl,
		now:       time.Now,
		deadlines: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Remember reports whether key was live, arming it with a fresh deadline when
// it was not. The check and the write happen under one lock acquisition.
func (s *Store) Remember(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	if _, ok := s.deadlines[key]; ok {
		return true
	}
	s.deadlines[key] = s.now().Add(s.ttl)
	return false
}

// Arm sets (or resets) key with a fresh deadline regardless of prior state.
func (s *Store) Arm(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.deadlines[key] = s.now().Add(s.ttl)
}

// Live reports whether key is currently live without modifying it.
func (s *Store) Live(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	_, ok := s.deadlines[key]
	return ok
}

// Len returns the number of live entries after a sweep.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	return len(s.deadlines)
}

func (s *Store) sweepLocked() {
	now := s.now()
	for key, deadline := range s.deadlines {
		if now.After(deadline) {
			delete(s.deadlines, key)
		}
	}
}
