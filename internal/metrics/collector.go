// Package metrics records build counters in a private Prometheus registry
// and exports them in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "picogen"

// Collector implements the generator metrics recorder.
type Collector struct {
	registry           *prometheus.Registry
	documents          *prometheus.CounterVec
	indexes            *prometheus.CounterVec
	conversionFailures *prometheus.CounterVec
	buildDuration      *prometheus.GaugeVec
}

// NewCollector builds a collector with its own registry so repeated watch
// runs never collide with the default registerer.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_generated_total",
			Help:      "Documents written per target format.",
		}, []string{"format"}),
		indexes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "indexes_generated_total",
			Help:      "Index outputs generated per target format, kind and output type.",
		}, []string{"format", "kind", "output"}),
		conversionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversion_failures_total",
			Help:      "Document bodies left unconverted per target format.",
		}, []string{"format"}),
		buildDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Duration of the last generation per target format.",
		}, []string{"format"}),
	}
	c.registry.MustRegister(c.documents, c.indexes, c.conversionFailures, c.buildDuration)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) DocumentGenerated(format string) {
	c.documents.WithLabelValues(format).Inc()
}

func (c *Collector) IndexGenerated(format, kind, output string) {
	c.indexes.WithLabelValues(format, kind, output).Inc()
}

func (c *Collector) ConversionFailed(format string) {
	c.conversionFailures.WithLabelValues(format).Inc()
}

func (c *Collector) BuildCompleted(format string, duration time.Duration) {
	c.buildDuration.WithLabelValues(format).Set(duration.Seconds())
}

// WriteToTextfile atomically writes the current values to path.
func (c *Collector) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
