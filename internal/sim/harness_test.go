package sim

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gossipmesh/internal/config"
	"gossipmesh/internal/store"
)

func testSim(nodes, portBase int) *config.Sim {
	return &config.Sim{
		Nodes:             nodes,
		SeedCount:         2,
		Host:              "127.0.0.1",
		PortBase:          portBase,
		HeartbeatInterval: 50 * time.Millisecond,
		Spread:            10 * time.Millisecond,
		PollInterval:      5 * time.Millisecond,
		Fanout:            3,
		BaseProbability:   1.0,
		DecayFactor:       0.8,
		HealthThreshold:   2 * time.Second,
		SampleInterval:    50 * time.Millisecond,
	}
}

func TestSample_Coverage(t *testing.T) {
	cfg := testSim(3, 47100)
	c, err := NewCluster(cfg, zap.NewNop())
	require.NoError(t, err)

	now := time.Now()

	// Hand-feed the stores without starting anything. Nodes 0 and 1
	// know everyone with fresh entries; node 2 knows only itself.
	for i, n := range c.Nodes() {
		hb := store.Heartbeat{Origin: n.ID(), Addr: n.Addr(), Timestamp: int64(i + 1)}
		for _, m := range c.Nodes()[:2] {
			m.Store().Upsert(hb)
		}
	}
	c.Nodes()[2].Store().Upsert(store.Heartbeat{
		Origin: c.Nodes()[2].ID(), Addr: c.Nodes()[2].Addr(), Timestamp: 99,
	})

	cov := c.Sample(now)
	require.Equal(t, 0, cov.Alive)
	require.Equal(t, 2, cov.KnowAll)
	require.Equal(t, 2, cov.FullyInformed)

	// Past the threshold nothing counts as fresh any more.
	cov = c.Sample(now.Add(cfg.HealthThreshold + time.Second))
	require.Equal(t, 2, cov.KnowAll)
	require.Equal(t, 0, cov.FullyInformed)
}

func TestCluster_Dissemination(t *testing.T) {
	cfg := testSim(5, 47110)
	c, err := NewCluster(cfg, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, c.Start())
	defer c.Stop()

	require.Eventually(t, func() bool {
		cov := c.Sample(time.Now())
		return cov.KnowAll == cfg.Nodes
	}, 10*time.Second, 50*time.Millisecond, "cluster never converged to full knowledge")
}

func TestCluster_KillAndRestart(t *testing.T) {
	cfg := testSim(4, 47120)
	c, err := NewCluster(cfg, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, c.Start())
	defer c.Stop()

	rng := rand.New(rand.NewSource(1))
	killed := c.KillRandom(2, rng)
	require.Len(t, killed, 2)
	require.Equal(t, 2, c.Sample(time.Now()).Alive)

	require.NoError(t, c.RestartStopped())
	require.Equal(t, 4, c.Sample(time.Now()).Alive)
}

func TestKillRandom_MoreThanRunning(t *testing.T) {
	cfg := testSim(2, 47130)
	c, err := NewCluster(cfg, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, c.Start())
	defer c.Stop()

	rng := rand.New(rand.NewSource(1))
	killed := c.KillRandom(10, rng)
	require.Len(t, killed, 2)
	require.Equal(t, 0, c.Sample(time.Now()).Alive)
}
