package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "gossipmesh",
	Short: "Epidemic heartbeat dissemination over UDP",
	Long: `gossipmesh runs nodes that flood their own liveness heartbeats through
a cluster with a decaying forwarding probability. Use "node" to run a
single member, or "sim" to spawn a whole cluster in one process.`,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func buildLogger() (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
