package config

import (
	"testing"
	"time"
)

func TestParsePeers(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Peer
		wantErr bool
	}{
		{
			name:  "empty string",
			input: "",
			want:  []Peer{},
		},
		{
			name:  "single peer",
			input: "n1=127.0.0.1:8000",
			want: []Peer{
				{ID: "n1", Addr: "127.0.0.1:8000"},
			},
		},
		{
			name:  "multiple peers",
			input: "n1=127.0.0.1:8000,n2=127.0.0.1:8001,n3=127.0.0.1:8002",
			want: []Peer{
				{ID: "n1", Addr: "127.0.0.1:8000"},
				{ID: "n2", Addr: "127.0.0.1:8001"},
				{ID: "n3", Addr: "127.0.0.1:8002"},
			},
		},
		{
			name:  "with spaces",
			input: "n1 = 127.0.0.1:8000 , n2 = 127.0.0.1:8001",
			want: []Peer{
				{ID: "n1", Addr: "127.0.0.1:8000"},
				{ID: "n2", Addr: "127.0.0.1:8001"},
			},
		},
		{
			name:    "invalid format - no equals",
			input:   "n1:127.0.0.1:8000",
			wantErr: true,
		},
		{
			name:    "invalid format - empty ID",
			input:   "=127.0.0.1:8000",
			wantErr: true,
		},
		{
			name:    "invalid format - empty addr",
			input:   "n1=",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePeers(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParsePeers() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				if len(got) != len(tt.want) {
					t.Errorf("ParsePeers() length = %d, want %d", len(got), len(tt.want))
					return
				}
				for i := range got {
					if got[i].ID != tt.want[i].ID || got[i].Addr != tt.want[i].Addr {
						t.Errorf("ParsePeers()[%d] = %v, want %v", i, got[i], tt.want[i])
					}
				}
			}
		})
	}
}

func validNode() Node {
	return Node{
		ID:                "n1",
		ListenAddr:        "127.0.0.1:8000",
		Fanout:            5,
		HeartbeatInterval: 5 * time.Second,
		Spread:            time.Second,
		PollInterval:      10 * time.Millisecond,
		BaseProbability:   1.0,
		DecayFactor:       0.8,
	}
}

func TestNode_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Node)
		wantErr bool
	}{
		{"valid", func(c *Node) {}, false},
		{"missing id", func(c *Node) { c.ID = "" }, true},
		{"bad address", func(c *Node) { c.ListenAddr = "no-port" }, true},
		{"zero interval", func(c *Node) { c.HeartbeatInterval = 0 }, true},
		{"negative spread", func(c *Node) { c.Spread = -time.Second }, true},
		{"zero spread ok", func(c *Node) { c.Spread = 0 }, false},
		{"zero poll interval", func(c *Node) { c.PollInterval = 0 }, true},
		{"seed without address", func(c *Node) { c.Seeds = []Peer{{ID: "s"}} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validNode()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadSim_Defaults(t *testing.T) {
	cfg, err := LoadSim("")
	if err != nil {
		t.Fatalf("LoadSim: %v", err)
	}

	if cfg.Nodes != 100 {
		t.Errorf("Nodes = %d, want 100", cfg.Nodes)
	}
	if cfg.SeedCount != 2 {
		t.Errorf("SeedCount = %d, want 2", cfg.SeedCount)
	}
	if cfg.HeartbeatInterval != 5*time.Second {
		t.Errorf("HeartbeatInterval = %v, want 5s", cfg.HeartbeatInterval)
	}
	if cfg.PollInterval != 10*time.Millisecond {
		t.Errorf("PollInterval = %v, want 10ms", cfg.PollInterval)
	}
	if cfg.DecayFactor != 0.8 {
		t.Errorf("DecayFactor = %v, want 0.8", cfg.DecayFactor)
	}
	if cfg.HealthThreshold != 30*time.Second {
		t.Errorf("HealthThreshold = %v, want 30s", cfg.HealthThreshold)
	}
}

func TestSim_Validate(t *testing.T) {
	base := Sim{
		Nodes: 10, SeedCount: 2, Host: "127.0.0.1", PortBase: 9000,
		HeartbeatInterval: time.Second, PollInterval: 10 * time.Millisecond,
		Fanout: 3, BaseProbability: 1.0, DecayFactor: 0.8,
		HealthThreshold: 30 * time.Second, SampleInterval: time.Second,
	}

	tests := []struct {
		name    string
		mutate  func(*Sim)
		wantErr bool
	}{
		{"valid", func(c *Sim) {}, false},
		{"zero nodes", func(c *Sim) { c.Nodes = 0 }, true},
		{"seed count above nodes", func(c *Sim) { c.SeedCount = 11 }, true},
		{"port range overflow", func(c *Sim) { c.PortBase = 65530 }, true},
		{"kill count above nodes", func(c *Sim) { c.KillCount = 11 }, true},
		{"zero health threshold", func(c *Sim) { c.HealthThreshold = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSim_NodeConfig(t *testing.T) {
	cfg := Sim{
		Nodes: 5, SeedCount: 2, Host: "127.0.0.1", PortBase: 9000,
		HeartbeatInterval: time.Second, Spread: 100 * time.Millisecond,
		PollInterval: 10 * time.Millisecond, Fanout: 3,
		BaseProbability: 1.0, DecayFactor: 0.8,
		HealthThreshold: 30 * time.Second, SampleInterval: time.Second,
	}

	nc := cfg.NodeConfig(3)
	if nc.ID != "node-3" {
		t.Errorf("ID = %s, want node-3", nc.ID)
	}
	if nc.ListenAddr != "127.0.0.1:9003" {
		t.Errorf("ListenAddr = %s, want 127.0.0.1:9003", nc.ListenAddr)
	}
	if len(nc.Seeds) != 2 {
		t.Fatalf("Seeds len = %d, want 2", len(nc.Seeds))
	}
	if nc.Seeds[0].Addr != "127.0.0.1:9000" || nc.Seeds[1].Addr != "127.0.0.1:9001" {
		t.Errorf("Seeds = %+v, want first two node addresses", nc.Seeds)
	}
	if err := nc.Validate(); err != nil {
		t.Errorf("generated node config invalid: %v", err)
	}
}
