package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	backendSpawns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kryashell",
			Subsystem: "backend",
			Name:      "spawns_total",
			Help:      "Number of successful backend spawns.",
		},
	)
	backendSpawnFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kryashell",
			Subsystem: "backend",
			Name:      "spawn_fallbacks_total",
			Help:      "Number of spawns that succeeded only with the alternate interpreter.",
		},
	)
	backendStops = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kryashell",
			Subsystem: "backend",
			Name:      "stops_total",
			Help:      "Number of backend terminations requested by the shell.",
		},
	)
	backendUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "kryashell",
			Subsystem: "backend",
			Name:      "up",
			Help:      "Whether a backend process is currently recorded as running.",
		},
	)
	probeOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kryashell",
			Subsystem: "backend",
			Name:      "probe_outcomes_total",
			Help:      "Health probe outcomes by classification.",
		}, []string{"outcome"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{backendSpawns, backendSpawnFallbacks, backendStops, backendUp, probeOutcomes}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler returns an http.Handler serving Prometheus metrics for the
// DefaultGatherer. The caller wires the route and server.
func Handler() http.Handler { return promhttp.Handler() }

// The helpers below no-op until Register has been called.

func IncSpawn() {
	if regOK.Load() {
		backendSpawns.Inc()
	}
}

func IncSpawnFallback() {
	if regOK.Load() {
		backendSpawnFallbacks.Inc()
	}
}

func IncStop() {
	if regOK.Load() {
		backendStops.Inc()
	}
}

func SetBackendUp(up bool) {
	if regOK.Load() {
		if up {
			backendUp.Set(1)
		} else {
			backendUp.Set(0)
		}
	}
}

func IncProbeOutcome(outcome string) {
	if regOK.Load() {
		probeOutcomes.WithLabelValues(outcome).Inc()
	}
}
