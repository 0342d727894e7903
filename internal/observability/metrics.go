package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modhost",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total ops endpoint requests.",
		},
		[]string{"host", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "modhost",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Ops endpoint request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"host", "method", "path", "status"},
	)
	registryCandidates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modhost",
			Subsystem: "registry",
			Name:      "candidates_total",
			Help:      "Service candidates registered, by service id.",
		},
		[]string{"service"},
	)
	registryElections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modhost",
			Subsystem: "registry",
			Name:      "elections_total",
			Help:      "Service elections run, by service id and outcome.",
		},
		[]string{"service", "outcome"},
	)
	registryDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modhost",
			Subsystem: "registry",
			Name:      "dropped_candidates_total",
			Help:      "Candidates dropped for failing the provider contract.",
		},
		[]string{"service"},
	)
	lightingShapes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "modhost",
			Subsystem: "lighting",
			Name:      "shapes",
			Help:      "Custom light shapes currently in the shared catalog.",
		},
	)
	lightingCacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "modhost",
			Subsystem: "lighting",
			Name:      "cache_entries",
			Help:      "Live emitters tracked in the brightness cache.",
		},
	)
	lightingUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modhost",
			Subsystem: "lighting",
			Name:      "lit_cell_updates_total",
			Help:      "Full lit-cell recomputes, by shape id.",
		},
		[]string{"shape"},
	)
	lightingUpdateDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "modhost",
			Subsystem: "lighting",
			Name:      "update_duration_seconds",
			Help:      "Lit-cell recompute duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"shape"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			registryCandidates,
			registryElections,
			registryDropped,
			lightingShapes,
			lightingCacheEntries,
			lightingUpdates,
			lightingUpdateDuration,
		)
	})
}

func RecordHTTPRequest(host, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(host, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(host, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordCandidateRegistered(service string) {
	RegisterMetrics()
	registryCandidates.WithLabelValues(service).Inc()
}

func RecordElection(service, outcome string) {
	RegisterMetrics()
	registryElections.WithLabelValues(service, outcome).Inc()
}

func RecordCandidateDropped(service string) {
	RegisterMetrics()
	registryDropped.WithLabelValues(service).Inc()
}

func SetLightingShapes(count int) {
	RegisterMetrics()
	lightingShapes.Set(float64(count))
}

func SetLightingCacheEntries(count int64) {
	RegisterMetrics()
	lightingCacheEntries.Set(float64(count))
}

func RecordLitCellUpdate(shape string, duration time.Duration) {
	RegisterMetrics()
	lightingUpdates.WithLabelValues(shape).Inc()
	lightingUpdateDuration.WithLabelValues(shape).Observe(duration.Seconds())
}
