package node

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"gossipmesh/internal/clock"
	"gossipmesh/internal/config"
	"gossipmesh/internal/forward"
	"gossipmesh/internal/store"
	"gossipmesh/internal/telemetry"
	"gossipmesh/internal/transport"
)

// ErrRunning is returned by Start on a node that is already running.
var ErrRunning = errors.New("node is already running")

// Node is one cluster member. Store, peer set and timestamp source
// survive stop/start cycles: a restart models crash recovery, where
// peers re-learn liveness from fresh heartbeats, not a fresh join.
type Node struct {
	cfg    config.Node
	policy forward.Policy
	log    *zap.Logger

	hbs   *store.Store
	peers *PeerSet
	ts    *clock.Source

	seedAddrs []string

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      *sync.WaitGroup
	tr      *transport.UDP
}

// New validates cfg and builds a stopped node. Every configuration
// error surfaces here, before any socket is bound; a running node
// never fails on configuration.
func New(cfg config.Node, logger *zap.Logger) (*Node, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("node %s: %w", cfg.ID, err)
	}
	policy, err := forward.New(cfg.BaseProbability, cfg.DecayFactor, cfg.Fanout)
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", cfg.ID, err)
	}

	seedAddrs := make([]string, 0, len(cfg.Seeds))
	for _, p := range cfg.Seeds {
		if p.ID == cfg.ID || p.Addr == cfg.ListenAddr {
			continue // a seed node does not seed to itself
		}
		seedAddrs = append(seedAddrs, p.Addr)
	}

	return &Node{
		cfg:       cfg,
		policy:    policy,
		log:       logger.With(zap.String("node", cfg.ID), zap.String("addr", cfg.ListenAddr)),
		hbs:       store.New(),
		peers:     NewPeerSet(),
		ts:        clock.NewSource(),
		seedAddrs: seedAddrs,
	}, nil
}

// ID returns the node's identity.
func (n *Node) ID() string { return n.cfg.ID }

// Addr returns the node's gossip endpoint.
func (n *Node) Addr() string { return n.cfg.ListenAddr }

// Store exposes the heartbeat table for external inspection. Safe to
// call concurrently with a running node.
func (n *Node) Store() *store.Store { return n.hbs }

// Peers exposes the learned peer set.
func (n *Node) Peers() *PeerSet { return n.peers }

// Running reports whether the node's loops are active.
func (n *Node) Running() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.running
}

// Start binds the node's address and launches the producer and
// listener loops. Starting after Stop resumes with all previously
// learned state and strictly newer heartbeat timestamps.
func (n *Node) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.running {
		return fmt.Errorf("node %s: %w", n.cfg.ID, ErrRunning)
	}

	tr, err := transport.Listen(n.cfg.ListenAddr, n.log)
	if err != nil {
		return fmt.Errorf("node %s: %w", n.cfg.ID, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	n.tr = tr
	n.cancel = cancel
	n.wg = wg
	n.running = true

	wg.Add(2)
	go n.produceLoop(ctx, tr, wg)
	go n.listenLoop(ctx, tr, wg)

	n.log.Info("node started")
	return nil
}

// Stop halts both loops and closes the socket. An in-flight store
// update may complete, but no new send or receive starts once Stop
// returns. Stopping a stopped node is a no-op.
func (n *Node) Stop() {
	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		return
	}
	cancel, tr, wg := n.cancel, n.tr, n.wg
	n.running = false
	n.mu.Unlock()

	cancel()
	tr.Close() // unblocks the listener's pending read
	wg.Wait()

	n.log.Info("node stopped")
}

// produceLoop emits the node's own heartbeat, then sleeps for the
// configured interval plus a uniform jitter so producers across the
// cluster stay desynchronized.
func (n *Node) produceLoop(ctx context.Context, tr *transport.UDP, wg *sync.WaitGroup) {
	defer wg.Done()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		n.emit(tr, rng)

		timer := time.NewTimer(n.jitteredInterval(rng))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (n *Node) jitteredInterval(rng *rand.Rand) time.Duration {
	d := n.cfg.HeartbeatInterval
	if n.cfg.Spread > 0 {
		d += time.Duration(rng.Int63n(int64(n.cfg.Spread)))
	}
	return d
}

// emit produces one heartbeat: self-upsert (always strictly newer, so
// always accepted), then fan out to random peers, falling back to the
// seed list while nothing has been learned yet.
func (n *Node) emit(tr *transport.UDP, rng *rand.Rand) {
	hb := store.Heartbeat{
		Origin:    n.cfg.ID,
		Addr:      n.cfg.ListenAddr,
		Timestamp: n.ts.Next(),
	}
	n.hbs.Upsert(hb)

	var targets []string
	if n.peers.Len() == 0 {
		targets = sampleAddrs(append([]string(nil), n.seedAddrs...), n.cfg.Fanout, rng)
	} else {
		targets = n.peers.Pick(n.cfg.Fanout, rng, n.cfg.ListenAddr)
	}
	if len(targets) == 0 {
		return
	}

	sent, failed := tr.Send(transport.Message{Heartbeat: hb, RelayCount: 0}, targets)
	telemetry.MessagesSent.WithLabelValues("heartbeat").Add(float64(sent))
	telemetry.SendErrors.Add(float64(failed))
	n.log.Debug("heartbeat sent",
		zap.Int64("timestamp", hb.Timestamp),
		zap.Int("peers", sent),
	)
}

// listenLoop drains the socket. No error terminates the loop: idle
// polls, malformed datagrams and transient socket errors all continue,
// and only a stop request (socket close or context cancel) exits.
func (n *Node) listenLoop(ctx context.Context, tr *transport.UDP, wg *sync.WaitGroup) {
	defer wg.Done()
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + 1))

	for {
		if ctx.Err() != nil {
			return
		}

		msg, src, err := tr.Receive(n.cfg.PollInterval)
		switch {
		case err == nil:
			telemetry.MessagesReceived.Inc()
			n.handle(tr, msg, src, rng)
		case errors.Is(err, transport.ErrTimeout):
			// idle poll
		case errors.Is(err, transport.ErrClosed):
			return
		case errors.Is(err, transport.ErrMalformed):
			telemetry.MalformedDropped.Inc()
			n.log.Debug("dropped malformed datagram", zap.String("src", src), zap.Error(err))
		default:
			n.log.Warn("receive failed", zap.Error(err))
		}
	}
}

// handle merges one inbound message and decides whether to relay it.
// Stale messages stop here: rejecting them without a forwarding draw
// is what damps the flood down to genuinely new information.
func (n *Node) handle(tr *transport.UDP, msg transport.Message, src string, rng *rand.Rand) {
	hb := msg.Heartbeat

	if hb.Origin != n.cfg.ID && n.peers.Add(hb.Origin, hb.Addr) {
		n.log.Debug("learned peer", zap.String("origin", hb.Origin), zap.String("peer", hb.Addr))
	}

	if !n.hbs.Upsert(hb) {
		telemetry.StaleDropped.Inc()
		return
	}

	if !n.policy.Decide(msg.RelayCount, rng) {
		return
	}

	targets := n.peers.Pick(n.cfg.Fanout, rng, n.cfg.ListenAddr, hb.Addr, src)
	if len(targets) == 0 {
		return
	}

	relay := transport.Message{Heartbeat: hb, RelayCount: msg.RelayCount + 1}
	sent, failed := tr.Send(relay, targets)
	telemetry.MessagesSent.WithLabelValues("relay").Add(float64(sent))
	telemetry.SendErrors.Add(float64(failed))
	n.log.Debug("heartbeat relayed",
		zap.String("origin", hb.Origin),
		zap.Uint32("relay_count", relay.RelayCount),
		zap.Int("peers", sent),
	)
}
