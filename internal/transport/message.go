package transport

import (
	"encoding/json"
	"errors"
	"fmt"

	"gossipmesh/internal/store"
)

// ErrMalformed marks datagrams that do not decode into a valid
// message. They are dropped without touching any state.
var ErrMalformed = errors.New("malformed gossip message")

// Message is the wire unit exchanged between nodes: one heartbeat plus
// the number of relays it has been through. RelayCount starts at zero
// at the origin and increments on every hop that decides to forward;
// it drives the forwarding decay on the receiving side.
type Message struct {
	Heartbeat  store.Heartbeat `json:"heartbeat"`
	RelayCount uint32          `json:"relay_count"`
}

// Encode serializes m into a single datagram payload.
func Encode(m Message) ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses a datagram payload. Messages missing the origin
// identity or address are rejected: well-behaved senders always fill
// both in, and a store entry without them would be unusable.
func Decode(payload []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(payload, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if m.Heartbeat.Origin == "" || m.Heartbeat.Addr == "" {
		return Message{}, fmt.Errorf("%w: missing origin identity or address", ErrMalformed)
	}
	return m, nil
}
