package store

import (
	"fmt"
	"math/rand"
	"testing"
)

// TestStore_MergeIdempotentUnderPermutation checks that for any
// sequence of heartbeats applied in any order, the final entry per
// origin is the one with the maximum timestamp seen for that origin.
func TestStore_MergeIdempotentUnderPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 50; trial++ {
		heartbeats := make([]Heartbeat, 0, 60)
		maxTS := make(map[string]int64)

		for i := 0; i < 60; i++ {
			origin := fmt.Sprintf("node-%d", rng.Intn(5))
			ts := int64(rng.Intn(100))
			heartbeats = append(heartbeats, Heartbeat{Origin: origin, Addr: origin, Timestamp: ts})
			if ts > maxTS[origin] {
				maxTS[origin] = ts
			}
		}

		// Apply the same multiset twice in independent random orders,
		// with duplicates mixed in; both stores must converge.
		stores := [2]*Store{New(), New()}
		for _, s := range stores {
			order := rng.Perm(len(heartbeats))
			for _, idx := range order {
				s.Upsert(heartbeats[idx])
				if rng.Intn(4) == 0 {
					s.Upsert(heartbeats[idx]) // duplicate delivery
				}
			}
		}

		for origin, want := range maxTS {
			for i, s := range stores {
				e, ok := s.Get(origin)
				if !ok {
					t.Fatalf("trial %d store %d: missing origin %s", trial, i, origin)
				}
				if e.Heartbeat.Timestamp != want {
					t.Fatalf("trial %d store %d: origin %s timestamp = %d, want max %d",
						trial, i, origin, e.Heartbeat.Timestamp, want)
				}
			}
		}
	}
}

// TestStore_NoRegression checks that an upsert with a timestamp less
// than or equal to the stored one always returns false and leaves the
// entry bit-for-bit unchanged.
func TestStore_NoRegression(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := New()
	s.Upsert(Heartbeat{Origin: "a", Addr: "a:1", Timestamp: 1000})
	before, _ := s.Get("a")

	for i := 0; i < 500; i++ {
		ts := int64(rng.Intn(1001)) // always <= 1000
		if s.Upsert(Heartbeat{Origin: "a", Addr: "other", Timestamp: ts}) {
			t.Fatalf("Upsert(ts=%d) accepted against stored 1000", ts)
		}
		after, _ := s.Get("a")
		if after.Heartbeat != before.Heartbeat || !after.LastSeen.Equal(before.LastSeen) {
			t.Fatalf("entry changed by rejected upsert: %+v -> %+v", before, after)
		}
	}
}
