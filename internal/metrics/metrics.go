// Package metrics owns the server's Prometheus collectors. Everything
// hangs off one private registry so tests can assert on scrapes without
// fighting global state.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles every collector the server exports.
type Metrics struct {
	registry *prometheus.Registry

	GamesCreated prometheus.Counter
	GamesActive  prometheus.Gauge
	GamesFailed  prometheus.Counter
	HandsPlayed  prometheus.Counter

	// ActionsApplied counts applied betting actions by kind (FOLD,
	// CHECK, CALL, RAISE).
	ActionsApplied *prometheus.CounterVec

	// Diagnostics counts non-fatal error events by kind.
	Diagnostics *prometheus.CounterVec

	// EventsDropped counts StateUpdate events shed by slow subscribers.
	EventsDropped prometheus.Counter

	// LLMRequestSeconds observes gateway completion latency by model,
	// mode (structured/text) and outcome (ok/error).
	LLMRequestSeconds *prometheus.HistogramVec
}

// New builds the collector set on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		GamesCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: "holdemd", Name: "games_created_total",
			Help: "Games created since start.",
		}),
		GamesActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "holdemd", Name: "games_active",
			Help: "Games currently live, including those in their post-terminal grace period.",
		}),
		GamesFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: "holdemd", Name: "games_failed_total",
			Help: "Games that ended in the error state.",
		}),
		HandsPlayed: f.NewCounter(prometheus.CounterOpts{
			Namespace: "holdemd", Name: "hands_played_total",
			Help: "Hands dealt across all games.",
		}),
		ActionsApplied: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "holdemd", Name: "actions_applied_total",
			Help: "Betting actions accepted by the rules engine.",
		}, []string{"kind"}),
		Diagnostics: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "holdemd", Name: "diagnostics_total",
			Help: "Non-fatal diagnostic events by kind.",
		}, []string{"kind"}),
		EventsDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: "holdemd", Name: "events_dropped_total",
			Help: "State updates shed from slow subscriber buffers.",
		}),
		LLMRequestSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "holdemd", Name: "llm_request_seconds",
			Help:    "LLM gateway completion latency.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}, []string{"model", "mode", "outcome"}),
	}
}

// Handler serves the scrape endpoint for this collector set.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gather exposes the raw registry for tests.
func (m *Metrics) Gather() prometheus.Gatherer { return m.registry }
