package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"gossipmesh/internal/config"
	"gossipmesh/internal/node"
	"gossipmesh/internal/telemetry"
)

// Cluster is a set of in-process gossip nodes sharing one protocol
// profile. Nodes keep their state across kill/restart cycles, so a
// restarted node rejoins with its old store and peer set.
type Cluster struct {
	cfg *config.Sim
	log *zap.Logger

	mu    sync.Mutex
	nodes []*node.Node
}

// NewCluster constructs all nodes without starting any of them. Any
// invalid per-node configuration fails the whole cluster here.
func NewCluster(cfg *config.Sim, logger *zap.Logger) (*Cluster, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	nodes := make([]*node.Node, 0, cfg.Nodes)
	for i := 0; i < cfg.Nodes; i++ {
		n, err := node.New(cfg.NodeConfig(i), logger)
		if err != nil {
			return nil, fmt.Errorf("build node %d: %w", i, err)
		}
		nodes = append(nodes, n)
	}

	return &Cluster{cfg: cfg, log: logger, nodes: nodes}, nil
}

// Nodes returns the cluster's members, running or not.
func (c *Cluster) Nodes() []*node.Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*node.Node, len(c.nodes))
	copy(out, c.nodes)
	return out
}

// Start launches every node. On any bind failure the nodes already
// started are stopped again.
func (c *Cluster) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, n := range c.nodes {
		if err := n.Start(); err != nil {
			for _, started := range c.nodes[:i] {
				started.Stop()
			}
			return fmt.Errorf("start node %d: %w", i, err)
		}
	}
	c.log.Info("cluster started", zap.Int("nodes", len(c.nodes)))
	return nil
}

// Stop halts every running node.
func (c *Cluster) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, n := range c.nodes {
		n.Stop()
	}
	c.log.Info("cluster stopped")
}

// KillRandom stops k distinct running nodes chosen at random and
// returns their identities.
func (c *Cluster) KillRandom(k int, rng *rand.Rand) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	running := make([]*node.Node, 0, len(c.nodes))
	for _, n := range c.nodes {
		if n.Running() {
			running = append(running, n)
		}
	}
	rng.Shuffle(len(running), func(i, j int) {
		running[i], running[j] = running[j], running[i]
	})
	if k > len(running) {
		k = len(running)
	}

	killed := make([]string, 0, k)
	for _, n := range running[:k] {
		n.Stop()
		killed = append(killed, n.ID())
	}
	c.log.Info("killed nodes", zap.Strings("nodes", killed))
	return killed
}

// RestartStopped starts every node that is not currently running.
func (c *Cluster) RestartStopped() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	restarted := 0
	for _, n := range c.nodes {
		if n.Running() {
			continue
		}
		if err := n.Start(); err != nil {
			return fmt.Errorf("restart %s: %w", n.ID(), err)
		}
		restarted++
	}
	c.log.Info("restarted nodes", zap.Int("count", restarted))
	return nil
}

// Coverage is one sample of cluster-wide dissemination quality.
type Coverage struct {
	// Alive counts nodes currently running.
	Alive int
	// KnowAll counts nodes whose store holds an entry for every
	// cluster identity, fresh or not.
	KnowAll int
	// FullyInformed counts nodes whose every entry was refreshed
	// within the health threshold.
	FullyInformed int
}

// Sample computes coverage across all nodes at the given instant.
// Stopped nodes still count toward KnowAll and FullyInformed: their
// stores persist and their entries age like everyone else's.
func (c *Cluster) Sample(now time.Time) Coverage {
	c.mu.Lock()
	nodes := make([]*node.Node, len(c.nodes))
	copy(nodes, c.nodes)
	c.mu.Unlock()

	total := len(nodes)
	var cov Coverage
	for _, n := range nodes {
		if n.Running() {
			cov.Alive++
		}

		snap := n.Store().Snapshot()
		if len(snap) < total {
			continue
		}
		cov.KnowAll++

		fresh := true
		for _, ent := range snap {
			if now.Sub(ent.LastSeen) >= c.cfg.HealthThreshold {
				fresh = false
				break
			}
		}
		if fresh {
			cov.FullyInformed++
		}
	}
	return cov
}

// Run starts the cluster and samples coverage until ctx is cancelled,
// publishing each sample to the telemetry gauges and the log. When the
// churn schedule is enabled it stops KillCount random nodes KillAfter
// into the run and restarts them RestartAfter later.
func (c *Cluster) Run(ctx context.Context) error {
	if err := c.Start(); err != nil {
		return err
	}
	defer c.Stop()

	if c.cfg.KillAfter > 0 && c.cfg.KillCount > 0 {
		go c.churn(ctx)
	}

	ticker := time.NewTicker(c.cfg.SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			cov := c.Sample(now)
			telemetry.NodesAlive.Set(float64(cov.Alive))
			telemetry.NodesKnowAll.Set(float64(cov.KnowAll))
			telemetry.NodesFullyInformed.Set(float64(cov.FullyInformed))
			c.log.Info("coverage",
				zap.Int("alive", cov.Alive),
				zap.Int("know_all", cov.KnowAll),
				zap.Int("fully_informed", cov.FullyInformed),
				zap.Int("total", len(c.nodes)),
			)
		}
	}
}

func (c *Cluster) churn(ctx context.Context) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	select {
	case <-ctx.Done():
		return
	case <-time.After(c.cfg.KillAfter):
	}
	c.KillRandom(c.cfg.KillCount, rng)

	if c.cfg.RestartAfter <= 0 {
		return
	}
	select {
	case <-ctx.Done():
		return
	case <-time.After(c.cfg.RestartAfter):
	}
	if err := c.RestartStopped(); err != nil {
		c.log.Error("restart stopped nodes", zap.Error(err))
	}
}
