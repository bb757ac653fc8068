package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Sim describes an in-process simulation cluster: how many nodes to
// spawn, the protocol parameters they share, the churn schedule, and
// the health threshold the driver judges coverage against.
type Sim struct {
	Nodes     int    `mapstructure:"nodes"`
	SeedCount int    `mapstructure:"seed_count"`
	Host      string `mapstructure:"host"`
	PortBase  int    `mapstructure:"port_base"`

	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	Spread            time.Duration `mapstructure:"spread"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	Fanout            int           `mapstructure:"fanout"`
	BaseProbability   float64       `mapstructure:"base_probability"`
	DecayFactor       float64       `mapstructure:"decay_factor"`

	// HealthThreshold is the maximum age of an entry's local receipt
	// time for the driver to still count it as fresh. It is a metrics
	// judgment only; the core never reads it.
	HealthThreshold time.Duration `mapstructure:"health_threshold"`
	SampleInterval  time.Duration `mapstructure:"sample_interval"`

	// Churn schedule: KillCount nodes are stopped KillAfter into the
	// run, and every stopped node is restarted RestartAfter later.
	// A zero KillAfter or KillCount disables churn.
	KillAfter    time.Duration `mapstructure:"kill_after"`
	KillCount    int           `mapstructure:"kill_count"`
	RestartAfter time.Duration `mapstructure:"restart_after"`

	MetricsAddr string `mapstructure:"metrics_addr"`
}

// LoadSim loads the simulation profile from an optional config file,
// environment variables prefixed GOSSIPMESH_, and defaults.
func LoadSim(configPath string) (*Sim, error) {
	v := viper.New()
	v.SetConfigName("sim")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
	}

	setSimDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("GOSSIPMESH")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Sim
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setSimDefaults mirrors the reference simulation profile: a hundred
// nodes heartbeating every 5s with two seeds, a 30s health threshold,
// and a fifth of the cluster killed a minute in.
func setSimDefaults(v *viper.Viper) {
	v.SetDefault("nodes", 100)
	v.SetDefault("seed_count", 2)
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port_base", 8000)

	v.SetDefault("heartbeat_interval", "5s")
	v.SetDefault("spread", "1s")
	v.SetDefault("poll_interval", "10ms")
	v.SetDefault("fanout", 5)
	v.SetDefault("base_probability", 1.0)
	v.SetDefault("decay_factor", 0.8)

	v.SetDefault("health_threshold", "30s")
	v.SetDefault("sample_interval", "1s")

	v.SetDefault("kill_after", "60s")
	v.SetDefault("kill_count", 20)
	v.SetDefault("restart_after", "40s")

	v.SetDefault("metrics_addr", ":9090")
}

// Validate checks the cluster-level parameters. Per-node parameters
// are validated again by node construction.
func (c *Sim) Validate() error {
	if c.Nodes < 1 {
		return fmt.Errorf("nodes must be at least 1, got %d", c.Nodes)
	}
	if c.SeedCount < 1 || c.SeedCount > c.Nodes {
		return fmt.Errorf("seed_count must be in [1, %d], got %d", c.Nodes, c.SeedCount)
	}
	if c.PortBase < 1 || c.PortBase+c.Nodes > 65536 {
		return fmt.Errorf("port range %d-%d out of bounds", c.PortBase, c.PortBase+c.Nodes-1)
	}
	if c.KillCount < 0 || c.KillCount > c.Nodes {
		return fmt.Errorf("kill_count must be in [0, %d], got %d", c.Nodes, c.KillCount)
	}
	if c.HealthThreshold <= 0 {
		return fmt.Errorf("health_threshold must be positive, got %v", c.HealthThreshold)
	}
	if c.SampleInterval <= 0 {
		return fmt.Errorf("sample_interval must be positive, got %v", c.SampleInterval)
	}
	return nil
}

// NodeConfig builds the configuration for the i-th simulated node.
// The first SeedCount nodes double as everyone's seed peers.
func (c *Sim) NodeConfig(i int) Node {
	seeds := make([]Peer, 0, c.SeedCount)
	for s := 0; s < c.SeedCount; s++ {
		seeds = append(seeds, Peer{
			ID:   c.nodeID(s),
			Addr: c.nodeAddr(s),
		})
	}
	return Node{
		ID:                c.nodeID(i),
		ListenAddr:        c.nodeAddr(i),
		Seeds:             seeds,
		Fanout:            c.Fanout,
		HeartbeatInterval: c.HeartbeatInterval,
		Spread:            c.Spread,
		PollInterval:      c.PollInterval,
		BaseProbability:   c.BaseProbability,
		DecayFactor:       c.DecayFactor,
	}
}

func (c *Sim) nodeID(i int) string {
	return fmt.Sprintf("node-%d", i)
}

func (c *Sim) nodeAddr(i int) string {
	return fmt.Sprintf("%s:%d", c.Host, c.PortBase+i)
}
