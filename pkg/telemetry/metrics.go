package telemetry

import (
	"net/http"

	"github.com/lao-tseu-is-alive/go-boids-index/pkg/simulation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const indexLabel = "index"

// Metrics exports step statistics on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	ticks          prometheus.Counter
	boids          prometheus.Gauge
	neighborsMean  prometheus.Gauge
	reindexedTotal prometheus.Counter
	stepSeconds    prometheus.Histogram
}

// NewMetrics registers the boids_* collectors labelled with the index kind.
func NewMetrics(indexKind string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	labels := prometheus.Labels{indexLabel: indexKind}

	return &Metrics{
		registry: reg,
		ticks: factory.NewCounter(prometheus.CounterOpts{
			Name:        "boids_ticks_total",
			Help:        "The number of simulation steps.",
			ConstLabels: labels,
		}),
		boids: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "boids_count",
			Help:        "The number of boids in the flock.",
			ConstLabels: labels,
		}),
		neighborsMean: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "boids_neighbors_mean",
			Help:        "Mean neighbours per boid in the last step.",
			ConstLabels: labels,
		}),
		reindexedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name:        "boids_reindexed_total",
			Help:        "Index entries replaced by incremental updates.",
			ConstLabels: labels,
		}),
		stepSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:        "boids_step_seconds",
			Help:        "Wall time of one simulation step.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
	}
}

// Observe records one step.
func (m *Metrics) Observe(s simulation.StepStats) {
	m.ticks.Inc()
	m.boids.Set(float64(s.Boids))
	m.reindexedTotal.Add(float64(s.Reindexed))
	m.stepSeconds.Observe(s.Duration.Seconds())

	if len(s.Neighbors) > 0 {
		total := 0
		for _, n := range s.Neighbors {
			total += n
		}
		m.neighborsMean.Set(float64(total) / float64(len(s.Neighbors)))
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
