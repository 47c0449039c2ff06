package store

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

type memoryCounter struct {
	count       int64
	windowStart time.Time
	window      time.Duration
}

// MemoryStore is a process-local KeyValueStore backed by maps. It is the
// fallback when no Redis URL is configured and the workhorse of tests.
// Expired entries are dropped lazily on access.
type MemoryStore struct {
	mu       sync.Mutex
	entries  map[string]memoryEntry
	counters map[string]*memoryCounter

	// now is swappable so tests can advance time without sleeping.
	now func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:  make(map[string]memoryEntry),
		counters: make(map[string]*memoryCounter),
		now:      time.Now,
	}
}

// SetClock overrides the store's time source. Tests only.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return "", ErrNotFound
	}
	return e.value, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.entries, key)
		delete(s.counters, key)
	}
	return nil
}

// DeletePattern supports the trailing-asterisk globs the cache invalidator
// uses; anything else is treated as an exact key.
func (s *MemoryStore) DeletePattern(_ context.Context, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		for key := range s.entries {
			if strings.HasPrefix(key, prefix) {
				delete(s.entries, key)
			}
		}
		for key := range s.counters {
			if strings.HasPrefix(key, prefix) {
				delete(s.counters, key)
			}
		}
		return nil
	}

	delete(s.entries, pattern)
	delete(s.counters, pattern)
	return nil
}

func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c, ok := s.counters[key]
	if !ok || now.Sub(c.windowStart) >= c.window {
		c = &memoryCounter{windowStart: now, window: window}
		s.counters[key] = c
	}
	c.count++
	ttl := c.window - now.Sub(c.windowStart)
	return c.count, ttl, nil
}

func (s *MemoryStore) Decrement(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.counters[key]; ok && c.count > 0 {
		c.count--
	}
	return nil
}

func (s *MemoryStore) Counter(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[key]
	if !ok || s.now().Sub(c.windowStart) >= c.window {
		return 0, nil
	}
	return c.count, nil
}
