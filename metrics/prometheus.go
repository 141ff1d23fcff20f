package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the service's Prometheus series.
type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ErrorsTotal     *prometheus.CounterVec

	ScenesFound    prometheus.Histogram
	ScenesSelected prometheus.Histogram
	ComputeSeconds prometheus.Histogram
	CatalogSeconds prometheus.Histogram
	AOIAreaKm2     prometheus.Histogram

	ActiveRuns prometheus.Gauge
}

// NewCollector registers the service metrics with reg. A nil reg uses the
// default Prometheus registry.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of NDVI requests by endpoint and result status",
			},
			[]string{"endpoint", "status"},
		),

		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "NDVI request duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
			[]string{"endpoint"},
		),

		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of failed runs by pipeline stage",
			},
			[]string{"stage"},
		),

		ScenesFound: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scenes_found",
				Help:      "Number of catalogue items returned per search",
				Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100, 200},
			},
		),

		ScenesSelected: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scenes_selected",
				Help:      "Number of scenes kept after footprint deduplication",
				Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
			},
		),

		ComputeSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "compute_duration_seconds",
				Help:      "Time spent materializing the composite",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
		),

		CatalogSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "catalog_duration_seconds",
				Help:      "Time spent searching the catalogue",
				Buckets:   []float64{0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10},
			},
		),

		AOIAreaKm2: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "aoi_area_km2",
				Help:      "Area of accepted AOIs in square kilometres",
				Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
			},
		),

		ActiveRuns: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_runs",
				Help:      "Number of pipeline runs in progress",
			},
		),
	}
}

// ObserveRun records the outcome of a finished run.
func (c *Collector) ObserveRun(info *MetricsInfo) {
	if c == nil || info == nil {
		return
	}
	if info.Catalog != nil {
		c.CatalogSeconds.Observe(info.Catalog.Duration.Seconds())
		c.ScenesFound.Observe(float64(info.Catalog.NumFound))
		c.ScenesSelected.Observe(float64(info.Catalog.NumSelected))
		if info.Catalog.GeometryArea > 0 {
			c.AOIAreaKm2.Observe(info.Catalog.GeometryArea)
		}
	}
	if info.Compute != nil && info.Compute.Duration > 0 {
		c.ComputeSeconds.Observe(info.Compute.Duration.Seconds())
	}
}

func (c *Collector) RecordRequest(endpoint, status string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.RequestsTotal.WithLabelValues(endpoint, status).Inc()
	c.RequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (c *Collector) RecordError(stage string) {
	if c == nil {
		return
	}
	c.ErrorsTotal.WithLabelValues(stage).Inc()
}

func (c *Collector) RunStarted() {
	if c == nil {
		return
	}
	c.ActiveRuns.Inc()
}

func (c *Collector) RunFinished() {
	if c == nil {
		return
	}
	c.ActiveRuns.Dec()
}
