package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gossipmesh/internal/config"
	"gossipmesh/internal/node"
)

var (
	nodeID            string
	listenAddr        string
	seedsStr          string
	fanout            int
	heartbeatInterval time.Duration
	spread            time.Duration
	pollInterval      time.Duration
	baseProbability   float64
	decayFactor       float64
)

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Run a single gossip node",
	Long: `Run one cluster member: it heartbeats on a jittered interval and
relays fresh heartbeats it hears about.

Examples:
  # First seed node
  gossipmesh node --node-id=node-0 --listen=127.0.0.1:8000

  # Join via seeds
  gossipmesh node --listen=127.0.0.1:8005 --seeds=node-0=127.0.0.1:8000,node-1=127.0.0.1:8001`,
	Run: runNode,
}

func init() {
	rootCmd.AddCommand(nodeCmd)

	nodeCmd.Flags().StringVar(&nodeID, "node-id", "", "unique node identity (default: random UUID)")
	nodeCmd.Flags().StringVar(&listenAddr, "listen", "127.0.0.1:8000", "host:port to bind and advertise")
	nodeCmd.Flags().StringVar(&seedsStr, "seeds", "", "seed peers as id1=addr1,id2=addr2")
	nodeCmd.Flags().IntVar(&fanout, "fanout", 5, "peers targeted per send or relay")
	nodeCmd.Flags().DurationVar(&heartbeatInterval, "heartbeat-interval", 5*time.Second, "base delay between own heartbeats")
	nodeCmd.Flags().DurationVar(&spread, "spread", time.Second, "upper bound of the heartbeat jitter")
	nodeCmd.Flags().DurationVar(&pollInterval, "poll-interval", 10*time.Millisecond, "listener receive timeout")
	nodeCmd.Flags().Float64Var(&baseProbability, "base-probability", 1.0, "forwarding probability at relay count zero")
	nodeCmd.Flags().Float64Var(&decayFactor, "decay-factor", 0.8, "per-hop forwarding probability decay")
}

func runNode(cmd *cobra.Command, args []string) {
	logger, err := buildLogger()
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	if nodeID == "" {
		nodeID = uuid.NewString()
	}
	seeds, err := config.ParsePeers(seedsStr)
	if err != nil {
		logger.Fatal("parse seeds", zap.Error(err))
	}

	cfg := config.Node{
		ID:                nodeID,
		ListenAddr:        listenAddr,
		Seeds:             seeds,
		Fanout:            fanout,
		HeartbeatInterval: heartbeatInterval,
		Spread:            spread,
		PollInterval:      pollInterval,
		BaseProbability:   baseProbability,
		DecayFactor:       decayFactor,
	}

	n, err := node.New(cfg, logger)
	if err != nil {
		logger.Fatal("create node", zap.Error(err))
	}
	if err := n.Start(); err != nil {
		logger.Fatal("start node", zap.Error(err))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	n.Stop()
}
