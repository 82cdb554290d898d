// Package metrics provides Prometheus instrumentation for the relay.
// It exposes gauges for live connections and presence, counters for chat
// and signal throughput, and a histogram for transcript append latency.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectionsTotal tracks the current number of open WebSocket connections.
	ConnectionsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gemchat_connections_total",
		Help: "Current number of open WebSocket connections",
	})

	// OnlineUsers tracks the current size of the presence registry.
	OnlineUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gemchat_online_users",
		Help: "Current number of authenticated users online",
	})

	// MessagesTotal counts chat messages, labeled "posted" or "dropped".
	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gemchat_messages_total",
		Help: "Total number of chat messages processed",
	}, []string{"outcome"}) // outcome = "posted", "dropped"

	// SignalsTotal counts relayed game signals by type.
	SignalsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gemchat_signals_total",
		Help: "Total number of game signals relayed",
	}, []string{"type"}) // type = "invite", "gameStart", "gemUpdate"

	// TranscriptAppendSeconds records transcript append latency.
	TranscriptAppendSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gemchat_transcript_append_seconds",
		Help:    "Transcript append latency in seconds",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	})
)

func init() {
	prometheus.MustRegister(
		ConnectionsTotal,
		OnlineUsers,
		MessagesTotal,
		SignalsTotal,
		TranscriptAppendSeconds,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
