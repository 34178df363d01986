// Package metrics instruments transport and connection activity with
// Prometheus collectors. It is ambient instrumentation, not part of the
// protocol: conn and transport run correctly with no metrics.Registry
// wired in at all.
//
// Grounded on the teacher's stats/common_statsd.go for the counter/gauge
// naming and registration shape, with the backend swapped for
// prometheus/client_golang -- see DESIGN.md.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the set of collectors one process registers once and
// shares across every connection it creates.
type Registry struct {
	FramesSent    prometheus.Counter
	FramesRecv    prometheus.Counter
	DecodeErrors  prometheus.Counter
	PendingCalls  prometheus.Gauge
	PeersAccepted prometheus.Counter
}

// NewRegistry builds a Registry and registers every collector against reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		FramesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ipc",
			Name:      "frames_sent_total",
			Help:      "Frames written to a transport port.",
		}),
		FramesRecv: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ipc",
			Name:      "frames_recv_total",
			Help:      "Frames read from a transport port.",
		}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ipc",
			Name:      "decode_errors_total",
			Help:      "Frames dropped for failing to decode.",
		}),
		PendingCalls: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ipc",
			Name:      "pending_calls",
			Help:      "Outstanding send_with_reply calls across all connections.",
		}),
		PeersAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ipc",
			Name:      "peers_accepted_total",
			Help:      "Peer connections accepted by listeners.",
		}),
	}
	reg.MustRegister(r.FramesSent, r.FramesRecv, r.DecodeErrors, r.PendingCalls, r.PeersAccepted)
	return r
}
