package clock

import (
	"testing"
	"time"
)

func TestSource_StrictlyIncreasing(t *testing.T) {
	s := NewSource()

	prev := s.Next()
	for i := 0; i < 1000; i++ {
		ts := s.Next()
		if ts <= prev {
			t.Fatalf("Next() = %d, not greater than previous %d", ts, prev)
		}
		prev = ts
	}
}

func TestSource_StalledClock(t *testing.T) {
	frozen := time.UnixMilli(1000)
	s := NewSourceAt(func() time.Time { return frozen })

	if got := s.Next(); got != 1000 {
		t.Fatalf("first Next() = %d, want 1000", got)
	}
	// Wall clock does not move; each call must still advance by 1ms.
	if got := s.Next(); got != 1001 {
		t.Errorf("Next() = %d, want 1001", got)
	}
	if got := s.Next(); got != 1002 {
		t.Errorf("Next() = %d, want 1002", got)
	}
}

func TestSource_BackwardsClockStep(t *testing.T) {
	now := time.UnixMilli(5000)
	s := NewSourceAt(func() time.Time { return now })

	if got := s.Next(); got != 5000 {
		t.Fatalf("Next() = %d, want 5000", got)
	}

	// Step the clock backwards; issued timestamps must not regress.
	now = time.UnixMilli(3000)
	if got := s.Next(); got != 5001 {
		t.Errorf("Next() after backwards step = %d, want 5001", got)
	}

	// Once the clock catches up again, real time wins.
	now = time.UnixMilli(9000)
	if got := s.Next(); got != 9000 {
		t.Errorf("Next() after catch-up = %d, want 9000", got)
	}
}

func TestSource_Last(t *testing.T) {
	s := NewSource()
	if got := s.Last(); got != 0 {
		t.Fatalf("Last() before any Next() = %d, want 0", got)
	}
	ts := s.Next()
	if got := s.Last(); got != ts {
		t.Errorf("Last() = %d, want %d", got, ts)
	}
}
