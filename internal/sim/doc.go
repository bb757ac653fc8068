// Package sim runs an in-process gossip cluster for experiments: it
// spawns the configured number of nodes on a loopback port range,
// samples cluster-wide coverage on an interval, and optionally drives
// a kill-and-restart churn schedule to watch the protocol heal.
package sim
