// Package config holds the configuration surfaces of the gossip
// engine: per-node protocol parameters with construction-time
// validation, peer-list parsing, and the simulation profile consumed
// by the in-process cluster driver.
package config
