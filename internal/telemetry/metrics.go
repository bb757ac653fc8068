package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics live in their own registry so the simulation binary only
// exposes gossip series, not the default Go collectors of whatever
// process embeds the engine.
var (
	Registry = prometheus.NewRegistry()

	MessagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gossipmesh",
			Name:      "messages_sent_total",
			Help:      "Gossip datagrams sent, by kind (heartbeat or relay).",
		},
		[]string{"kind"},
	)

	MessagesReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gossipmesh",
			Name:      "messages_received_total",
			Help:      "Gossip datagrams received and decoded.",
		},
	)

	StaleDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gossipmesh",
			Name:      "stale_dropped_total",
			Help:      "Heartbeats rejected by the last-writer-wins merge and never relayed.",
		},
	)

	MalformedDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gossipmesh",
			Name:      "malformed_dropped_total",
			Help:      "Inbound datagrams dropped because they did not decode.",
		},
	)

	SendErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gossipmesh",
			Name:      "send_errors_total",
			Help:      "Per-peer send failures, skipped without retry.",
		},
	)

	// ---- Simulation coverage ----

	NodesAlive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "gossipmesh",
			Name:      "nodes_alive",
			Help:      "Simulation: nodes currently running.",
		},
	)

	NodesKnowAll = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "gossipmesh",
			Name:      "nodes_know_all",
			Help:      "Simulation: nodes whose store holds an entry for every identity.",
		},
	)

	NodesFullyInformed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "gossipmesh",
			Name:      "nodes_fully_informed",
			Help:      "Simulation: nodes holding a fresh entry for every identity.",
		},
	)
)

func init() {
	Registry.MustRegister(
		MessagesSent, MessagesReceived,
		StaleDropped, MalformedDropped, SendErrors,
		NodesAlive, NodesKnowAll, NodesFullyInformed,
	)
}

// MetricsHandler exposes the gossipmesh registry over HTTP. Mount it
// with mux.Handle("/metrics", telemetry.MetricsHandler()).
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
