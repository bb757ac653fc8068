// Package transport moves gossip messages between nodes as JSON-coded
// UDP datagrams. Delivery is connectionless and best effort: a send
// failure to one peer is logged and skipped, and the protocol's
// redundancy, not retries, compensates for the loss. One datagram
// carries exactly one message, so the encoding is self-delimiting.
package transport
