// Package metrics exposes refresh, mutation and wipe counters in the
// Prometheus text format. A nil *Collector is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Refresh outcomes.
const (
	RefreshSuccess    = "success"
	RefreshFailed     = "failed"
	RefreshSuperseded = "superseded"
)

// Wipe outcomes.
const (
	WipeSuccess   = "success"
	WipeFailed    = "failed"
	WipeContended = "contended"
)

// Collector owns its registry so tests and multiple services never clash
// on the global default registerer.
type Collector struct {
	registry *prometheus.Registry

	RefreshesTotal  *prometheus.CounterVec
	RefreshDuration prometheus.Histogram
	Generation      prometheus.Gauge
	LiveMode        prometheus.Gauge
	MutationsTotal  *prometheus.CounterVec
	WipesTotal      *prometheus.CounterVec
}

// NewCollector creates and registers every metric under namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		RefreshesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Refresh cycles by outcome.",
		}, []string{"result"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Time to fetch a snapshot and build the view-model.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		Generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "view_model_generation",
			Help:      "Generation of the view-model currently served.",
		}),
		LiveMode: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_mode",
			Help:      "1 while live refresh is running.",
		}),
		MutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Store mutations by operation and outcome.",
		}, []string{"op", "result"}),
		WipesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wipes_total",
			Help:      "Data wipe attempts by outcome.",
		}, []string{"result"}),
	}
	c.registry.MustRegister(
		c.RefreshesTotal,
		c.RefreshDuration,
		c.Generation,
		c.LiveMode,
		c.MutationsTotal,
		c.WipesTotal,
	)
	return c
}

// ObserveRefresh records one finished cycle.
func (c *Collector) ObserveRefresh(result string, took time.Duration) {
	if c == nil {
		return
	}
	c.RefreshesTotal.WithLabelValues(result).Inc()
	c.RefreshDuration.Observe(took.Seconds())
}

func (c *Collector) SetGeneration(gen uint64) {
	if c == nil {
		return
	}
	c.Generation.Set(float64(gen))
}

func (c *Collector) SetLive(live bool) {
	if c == nil {
		return
	}
	if live {
		c.LiveMode.Set(1)
	} else {
		c.LiveMode.Set(0)
	}
}

func (c *Collector) ObserveMutation(op string, err error) {
	if c == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failed"
	}
	c.MutationsTotal.WithLabelValues(op, result).Inc()
}

func (c *Collector) ObserveWipe(result string) {
	if c == nil {
		return
	}
	c.WipesTotal.WithLabelValues(result).Inc()
}

// Handler serves the registry for scraping.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
