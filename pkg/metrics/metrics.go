// Package metrics records synthesis outcomes as Prometheus metrics and can
// export them in the node_exporter textfile format.
package metrics

import (
	"time"

	"github.com/arthur-debert/confsynth/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the synthesis metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	Files     *prometheus.CounterVec
	FileBytes prometheus.Histogram
	LastRun   prometheus.Gauge
}

// NewCollector creates a Collector with its metrics registered.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		Files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "confsynth_files_total",
			Help: "Total number of file specs processed, by format and outcome",
		}, []string{"format", "status"}),

		FileBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "confsynth_file_bytes",
			Help:    "Size of serialized config files",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		}),

		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "confsynth_last_run_timestamp_seconds",
			Help: "Unix time of the last completed synthesis run",
		}),
	}
	c.registry.MustRegister(c.Files, c.FileBytes, c.LastRun)
	return c
}

// Observe records one result.
func (c *Collector) Observe(r types.Result) {
	format := r.Format
	if format == "" {
		format = "unknown"
	}
	c.Files.WithLabelValues(format, string(r.Status)).Inc()
	if !r.Failed() {
		c.FileBytes.Observe(float64(r.Bytes))
	}
}

// RunCompleted marks the end of a run.
func (c *Collector) RunCompleted(at time.Time) {
	c.LastRun.Set(float64(at.Unix()))
}

// Registry exposes the private registry, for serving or gathering.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile writes every metric to path in the text exposition format.
// The file is replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
