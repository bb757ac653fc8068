// Package forward implements the flood-control side of the protocol:
// a pure decision function that relays a freshly accepted heartbeat
// with probability baseProbability * decayFactor^relayCount. Early
// hops are near-certain, later hops increasingly unlikely, which
// bounds redundant traffic while keeping coverage high. Stale
// heartbeats never reach this decision at all.
package forward
