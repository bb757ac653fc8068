// Package store implements the per-node heartbeat table: a thread-safe
// mapping from origin identity to the freshest heartbeat known for it.
// Merging follows last-writer-wins on the heartbeat timestamp, which
// makes the final state order-independent and idempotent under
// duplicate or out-of-order delivery. Entries are never removed;
// absence of updates, not deletion, is what signals a suspected
// failure to external consumers.
package store
