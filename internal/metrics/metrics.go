// Package metrics is a small Prometheus collector set for the
// simulation driver (internal/sim): tick count, blocked-agent count,
// replan count, and live index size. The simulation loop itself never
// opens a listener; a caller mounts Registry on its own HTTP mux.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Sim is one simulation run's metric set, registered against its own
// Registry rather than the global default registry, so multiple
// simulations (or tests) in the same process never collide on
// duplicate registration.
type Sim struct {
	Registry *prometheus.Registry

	Ticks         prometheus.Counter
	AgentsBlocked prometheus.Gauge
	Replans       prometheus.Counter
	// ItCapHits is registered, but nothing in this module increments
	// it, so it stays at zero.
	ItCapHits     prometheus.Counter
	HBBLeaves     prometheus.Gauge
}

// NewSim constructs a fresh, independently registered metric set.
func NewSim() *Sim {
	reg := prometheus.NewRegistry()
	s := &Sim{
		Registry: reg,
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sdpf_sim_ticks_total",
			Help: "Simulation ticks executed.",
		}),
		AgentsBlocked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sdpf_sim_agents_blocked",
			Help: "Agents that could not move on the most recent tick.",
		}),
		Replans: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sdpf_sim_replans_total",
			Help: "Target-flow recomputations (one per simulation tick).",
		}),
		ItCapHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sdpf_sim_it_cap_hits_total",
			Help: "Graph searches or flow fields that returned early on an iteration cap.",
		}),
		HBBLeaves: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sdpf_sim_hbb_leaves",
			Help: "Agents currently registered in the dynamic spatial index.",
		}),
	}
	reg.MustRegister(s.Ticks, s.AgentsBlocked, s.Replans, s.ItCapHits, s.HBBLeaves)
	return s
}
