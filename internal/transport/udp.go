package transport

import (
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
)

// maxDatagram bounds the receive buffer. A message is a short JSON
// object, so this leaves generous headroom for long identities.
const maxDatagram = 2048

var (
	// ErrTimeout reports an idle poll interval with no datagram.
	ErrTimeout = errors.New("receive timed out")
	// ErrClosed reports a receive attempted after Close.
	ErrClosed = errors.New("transport closed")
)

// UDP sends and receives gossip messages over a single bound datagram
// socket. The same socket serves the producer's heartbeats, the
// listener's inbound traffic and its relays.
type UDP struct {
	conn *net.UDPConn
	log  *zap.Logger
}

// Listen binds addr (host:port) for gossip traffic.
func Listen(addr string, logger *zap.Logger) (*UDP, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", addr, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UDP{conn: conn, log: logger}, nil
}

// LocalAddr returns the bound endpoint.
func (t *UDP) LocalAddr() string {
	return t.conn.LocalAddr().String()
}

// Send encodes m once and fires it at every address. It returns how
// many sends succeeded and how many failed; failed peers are skipped
// without retry, the next heartbeat cycle is the retry.
func (t *UDP) Send(m Message, addrs []string) (sent, failed int) {
	payload, err := Encode(m)
	if err != nil {
		t.log.Error("encode gossip message", zap.Error(err))
		return 0, len(addrs)
	}

	for _, addr := range addrs {
		udpAddr, err := net.ResolveUDPAddr("udp", addr)
		if err != nil {
			t.log.Warn("resolve peer", zap.String("peer", addr), zap.Error(err))
			failed++
			continue
		}
		if _, err := t.conn.WriteToUDP(payload, udpAddr); err != nil {
			t.log.Warn("send gossip message", zap.String("peer", addr), zap.Error(err))
			failed++
			continue
		}
		sent++
	}
	return sent, failed
}

// Receive waits up to poll for one datagram and decodes it, returning
// the message and the sender's endpoint. ErrTimeout means an idle
// interval, ErrClosed that the socket was shut down; an ErrMalformed
// payload is returned with the source that sent it.
func (t *UDP) Receive(poll time.Duration) (Message, string, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(poll)); err != nil {
		return Message{}, "", ErrClosed
	}

	buf := make([]byte, maxDatagram)
	n, src, err := t.conn.ReadFromUDP(buf)
	if err != nil {
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			return Message{}, "", ErrTimeout
		}
		if errors.Is(err, net.ErrClosed) {
			return Message{}, "", ErrClosed
		}
		return Message{}, "", err
	}

	m, err := Decode(buf[:n])
	if err != nil {
		return Message{}, src.String(), err
	}
	return m, src.String(), nil
}

// Close shuts the socket down, unblocking any pending Receive.
func (t *UDP) Close() error {
	return t.conn.Close()
}
