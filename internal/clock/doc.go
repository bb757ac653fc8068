// Package clock provides the timestamp source for locally produced
// heartbeats. Timestamps are wall-clock epoch milliseconds with a
// monotonic guard: a node never issues a timestamp less than or equal
// to one it issued before, so its own heartbeats always win the
// last-writer-wins merge against its previous ones, including across
// a stop/restart cycle.
package clock
