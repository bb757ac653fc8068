package node

import (
	"math/rand"
	"sync"
)

// PeerSet tracks the (identity, endpoint) pairs a node may gossip to.
// It only ever grows: peers are learned from the origin field of
// incoming heartbeats and never expire. A silent peer is judged by
// store recency, not by membership.
type PeerSet struct {
	mu    sync.RWMutex
	addrs map[string]string // identity -> endpoint
}

// NewPeerSet creates an empty peer set.
func NewPeerSet() *PeerSet {
	return &PeerSet{addrs: make(map[string]string)}
}

// Add registers a peer, returning true if the identity was unseen.
// Re-adding a known identity updates its endpoint, so a node that
// comes back on a new port is reachable again.
func (ps *PeerSet) Add(id, addr string) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	_, known := ps.addrs[id]
	ps.addrs[id] = addr
	return !known
}

// Len returns the number of known peers.
func (ps *PeerSet) Len() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.addrs)
}

// Addrs returns a copy of all known peer endpoints.
func (ps *PeerSet) Addrs() []string {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	out := make([]string, 0, len(ps.addrs))
	for _, addr := range ps.addrs {
		out = append(out, addr)
	}
	return out
}

// Pick returns up to n distinct peer endpoints chosen uniformly at
// random, excluding every endpoint in skip. If fewer than n eligible
// peers exist, all of them are returned.
func (ps *PeerSet) Pick(n int, rng *rand.Rand, skip ...string) []string {
	ps.mu.RLock()
	candidates := make([]string, 0, len(ps.addrs))
	for _, addr := range ps.addrs {
		if !containsString(skip, addr) {
			candidates = append(candidates, addr)
		}
	}
	ps.mu.RUnlock()

	return sampleAddrs(candidates, n, rng)
}

// sampleAddrs shuffles addrs in place and returns at most n of them.
func sampleAddrs(addrs []string, n int, rng *rand.Rand) []string {
	rng.Shuffle(len(addrs), func(i, j int) {
		addrs[i], addrs[j] = addrs[j], addrs[i]
	})
	if len(addrs) > n {
		addrs = addrs[:n]
	}
	return addrs
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
