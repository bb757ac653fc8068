package store

import (
	"sync"
	"time"
)

// Heartbeat is a liveness assertion produced by its origin node.
// Immutable once created; it propagates by value through relays.
type Heartbeat struct {
	Origin    string `json:"origin"`
	Addr      string `json:"addr"`
	Timestamp int64  `json:"timestamp"`
}

// NewerThan reports whether h supersedes other under the
// last-writer-wins rule. Equal timestamps are not newer.
func (h Heartbeat) NewerThan(other Heartbeat) bool {
	return h.Timestamp > other.Timestamp
}

// Entry is the stored record for one origin: the freshest heartbeat
// seen plus the local wall-clock time it was accepted. LastSeen drives
// the liveness judgments made by external consumers; the heartbeat's
// own timestamp only drives the merge.
type Entry struct {
	Heartbeat Heartbeat
	LastSeen  time.Time
}

// Store maps origin identity to its latest known heartbeat. Entries
// are replaced whole under a single lock, so readers never observe a
// partially updated entry.
type Store struct {
	mu   sync.RWMutex
	data map[string]Entry
	now  func() time.Time
}

// New creates an empty store backed by the system clock.
func New() *Store {
	return NewWithNow(time.Now)
}

// NewWithNow creates an empty store with an injectable clock for tests.
func NewWithNow(now func() time.Time) *Store {
	return &Store{
		data: make(map[string]Entry),
		now:  now,
	}
}

// Upsert applies hb iff it is strictly newer than the stored entry for
// its origin, or no entry exists yet. It returns true when the entry
// was replaced; stale and duplicate heartbeats leave the store
// unchanged and return false.
func (s *Store) Upsert(hb Heartbeat) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.data[hb.Origin]; ok && !hb.NewerThan(cur.Heartbeat) {
		return false
	}
	s.data[hb.Origin] = Entry{Heartbeat: hb, LastSeen: s.now()}
	return true
}

// Get returns a snapshot of the entry for the given origin.
func (s *Store) Get(origin string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[origin]
	return e, ok
}

// Snapshot returns a full copy of the table for external inspection.
// Writers are only blocked for the duration of the copy.
func (s *Store) Snapshot() map[string]Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Entry, len(s.data))
	for origin, e := range s.data {
		out[origin] = e
	}
	return out
}

// Len returns the number of known origins.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
