package clock

import (
	"sync"
	"time"
)

// Source issues strictly increasing heartbeat timestamps.
type Source struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewSource creates a source backed by the system wall clock.
func NewSource() *Source {
	return &Source{now: time.Now}
}

// NewSourceAt creates a source backed by the given clock function.
// Used by tests to simulate stalled or stepped clocks.
func NewSourceAt(now func() time.Time) *Source {
	return &Source{now: now}
}

// Next returns the current time in epoch milliseconds, bumped by one
// if the wall clock has not advanced past the last issued value.
func (s *Source) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().UnixMilli()
	if ts <= s.last {
		ts = s.last + 1
	}
	s.last = ts
	return ts
}

// Last returns the most recently issued timestamp, or 0 if none was
// issued yet.
func (s *Source) Last() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
