package cooldown

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	expires time.Time
	timer   *time.Timer
}

// MemoryStore keeps windows in a map. Entries are removed by a timer when the
// window ends, or on the next lookup if the clock says they are stale.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

// NewMemoryStore creates an empty store using the wall clock.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// WithClock replaces the clock used for lookups.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *MemoryStore) Acquire(_ context.Context, key string, window time.Duration) (time.Duration, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[key]; ok {
		if left := e.expires.Sub(now); left > 0 {
			return left, false, nil
		}
		e.timer.Stop()
		delete(s.entries, key)
	}

	e := &entry{expires: now.Add(window)}
	e.timer = time.AfterFunc(window, func() { s.expire(key, e) })
	s.entries[key] = e
	return 0, true, nil
}

// expire removes key only if it still maps to e.
func (s *MemoryStore) expire(key string, e *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.entries[key]; ok && cur == e {
		delete(s.entries, key)
	}
}

// Len returns the number of tracked requesters.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close stops all pending timers.
func (s *MemoryStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		e.timer.Stop()
		delete(s.entries, k)
	}
}
