// Package node runs the gossip engine for one cluster member: a
// producer loop that emits the node's own heartbeats on a jittered
// interval, and a listener loop that merges incoming heartbeats into
// the local store and probabilistically relays the fresh ones. Failure
// detection is purely traffic-based: a node that stops producing
// simply stops refreshing its entry in everyone else's store, and
// external consumers judge that age against their own threshold.
package node
