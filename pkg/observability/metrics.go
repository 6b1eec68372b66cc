package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricStepsTotal   = "benchwalk_walk_steps_total"
	metricMeanSeconds  = "benchwalk_measurement_mean_seconds"
	metricStepDuration = "benchwalk_walk_step_duration_seconds"

	labelKind = "kind"
)

// stepBucketBoundaries covers sub-second validation failures up to
// multi-minute calibrated measurement phases.
var stepBucketBoundaries = []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600}

// WalkMetrics holds Prometheus instruments for the history walk.
// Each instance owns an independent registry to avoid collector conflicts
// across repeated walks in tests.
type WalkMetrics struct {
	registry *prometheus.Registry

	stepsTotal   *prometheus.CounterVec
	meanSeconds  prometheus.Histogram
	stepDuration prometheus.Histogram
}

// NewWalkMetrics creates and registers the walk instruments.
func NewWalkMetrics() *WalkMetrics {
	registry := prometheus.NewRegistry()

	wm := &WalkMetrics{
		registry: registry,
		stepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricStepsTotal,
			Help: "Walk steps completed, by outcome kind.",
		}, []string{labelKind}),
		meanSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricMeanSeconds,
			Help:    "Mean workload duration reported by the measurement tool.",
			Buckets: prometheus.DefBuckets,
		}),
		stepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricStepDuration,
			Help:    "Wall-clock duration of one walk step.",
			Buckets: stepBucketBoundaries,
		}),
	}

	registry.MustRegister(wm.stepsTotal, wm.meanSeconds, wm.stepDuration)

	return wm
}

// RecordStep records one completed walk step with its outcome kind and duration.
func (wm *WalkMetrics) RecordStep(kind string, seconds float64) {
	wm.stepsTotal.WithLabelValues(kind).Inc()
	wm.stepDuration.Observe(seconds)
}

// RecordMean records the mean workload duration of a successful measurement.
func (wm *WalkMetrics) RecordMean(seconds float64) {
	wm.meanSeconds.Observe(seconds)
}

// Handler returns an http.Handler serving the /metrics scrape endpoint for
// this instance's registry.
func (wm *WalkMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(wm.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (wm *WalkMetrics) Registry() *prometheus.Registry {
	return wm.registry
}
