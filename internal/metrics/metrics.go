// Package metrics exposes the prometheus counters shared by the AI client and
// the generation service.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the process-wide counters.
type Metrics struct {
	// UpstreamRequests counts calls to user-configured providers by protocol
	// family, operation (chat|image) and outcome (ok|error).
	UpstreamRequests *prometheus.CounterVec

	// Generations counts orchestrator runs by operation and execution path
	// (custom|default).
	Generations *prometheus.CounterVec

	// GenerationFailures counts orchestrator runs that ended in an error.
	GenerationFailures *prometheus.CounterVec
}

var (
	once   sync.Once
	global *Metrics
)

// Global returns the lazily registered counters.
func Global() *Metrics {
	once.Do(func() {
		global = &Metrics{
			UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "creatorpilot",
				Name:      "upstream_requests_total",
				Help:      "Total requests sent to user-configured AI providers",
			}, []string{"family", "operation", "outcome"}),
			Generations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "creatorpilot",
				Name:      "generations_total",
				Help:      "Total generation runs by execution path",
			}, []string{"operation", "path"}),
			GenerationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "creatorpilot",
				Name:      "generation_failures_total",
				Help:      "Total generation runs that failed",
			}, []string{"operation"}),
		}
		prometheus.MustRegister(global.UpstreamRequests, global.Generations, global.GenerationFailures)
	})
	return global
}
