package config

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// Peer is a known (identity, endpoint) pair a node may gossip to.
type Peer struct {
	ID   string
	Addr string
}

// Node holds the configuration for a single gossip node. Invalid
// values are fatal at node construction; a running node never sees a
// configuration error.
type Node struct {
	// ID is the node's identity: opaque, unique cluster-wide, stable
	// for the node's lifetime.
	ID string
	// ListenAddr is the host:port the node binds for gossip datagrams
	// and advertises as the origin address of its heartbeats.
	ListenAddr string
	// Seeds are the peers gossiped to while nothing has been learned
	// from incoming traffic yet.
	Seeds []Peer

	// Fanout is the number of peers targeted per send or relay.
	Fanout int
	// HeartbeatInterval is the base delay between own heartbeats.
	HeartbeatInterval time.Duration
	// Spread is the upper bound of the uniform jitter added to each
	// heartbeat interval, desynchronizing producers across the cluster.
	Spread time.Duration
	// PollInterval bounds how long the listener blocks per receive,
	// and with it how quickly a stop request is honored.
	PollInterval time.Duration

	// BaseProbability and DecayFactor parameterize the forwarding
	// probability baseProbability * decayFactor^relayCount.
	BaseProbability float64
	DecayFactor     float64
}

// Validate checks the configuration. Forwarding parameters are
// validated separately by forward.New.
func (c *Node) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("node ID is required")
	}
	if _, err := net.ResolveUDPAddr("udp", c.ListenAddr); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", c.ListenAddr, err)
	}
	if c.HeartbeatInterval <= 0 {
		return fmt.Errorf("heartbeat interval must be positive, got %v", c.HeartbeatInterval)
	}
	if c.Spread < 0 {
		return fmt.Errorf("spread must not be negative, got %v", c.Spread)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.PollInterval)
	}
	for _, p := range c.Seeds {
		if p.Addr == "" {
			return fmt.Errorf("seed peer %q has no address", p.ID)
		}
	}
	return nil
}

// ParsePeers parses a comma-separated list of peers in the format:
// "id1=addr1,id2=addr2,id3=addr3"
func ParsePeers(peersStr string) ([]Peer, error) {
	if peersStr == "" {
		return []Peer{}, nil
	}

	parts := strings.Split(peersStr, ",")
	peers := make([]Peer, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid peer format: %s (expected id=addr)", part)
		}

		id := strings.TrimSpace(kv[0])
		addr := strings.TrimSpace(kv[1])

		if id == "" || addr == "" {
			return nil, fmt.Errorf("peer ID and address cannot be empty: %s", part)
		}

		peers = append(peers, Peer{
			ID:   id,
			Addr: addr,
		})
	}

	return peers, nil
}
