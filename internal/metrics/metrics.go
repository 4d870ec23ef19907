// Package metrics exposes monitor results as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pin"

// Collector records check results for one target.
//
// Each Collector owns its registry so tests and multiple binaries in one
// process never collide on the global default registry.
type Collector struct {
	registry *prometheus.Registry

	checks   *prometheus.CounterVec
	duration prometheus.Histogram
	up       prometheus.Gauge
	lastSeen prometheus.Gauge
}

// New creates a Collector labelled with target.
func New(target string) *Collector {
	labels := prometheus.Labels{"target": target}

	c := &Collector{
		registry: prometheus.NewRegistry(),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "checks_total",
			Help:        "Completed checks by result.",
			ConstLabels: labels,
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "check_duration_seconds",
			Help:        "Time from issuing a check to its completion.",
			ConstLabels: labels,
			Buckets:     []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		up: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "target_up",
			Help:        "1 if the last check was up, 0 otherwise.",
			ConstLabels: labels,
		}),
		lastSeen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_check_timestamp_seconds",
			Help:        "Unix time of the last completed check.",
			ConstLabels: labels,
		}),
	}
	c.registry.MustRegister(c.checks, c.duration, c.up, c.lastSeen)
	return c
}

// Observe records one completed check.
func (c *Collector) Observe(up bool, d time.Duration, at time.Time) {
	result := "down"
	value := 0.0
	if up {
		result = "up"
		value = 1
	}
	c.checks.WithLabelValues(result).Inc()
	c.duration.Observe(d.Seconds())
	c.up.Set(value)
	c.lastSeen.Set(float64(at.UnixNano()) / 1e9)
}

// Handler serves the collected metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
