package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters for an optimize run.
type Metrics struct {
	registry *prometheus.Registry

	FilesProcessed  prometheus.Counter
	ProbeFailures   prometheus.Counter
	VariantsEncoded *prometheus.CounterVec
	VariantFailures *prometheus.CounterVec
	VariantBytes    *prometheus.CounterVec
	EncodeDuration  *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FilesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "webopt_files_processed_total",
			Help: "The total number of source images processed",
		}),
		ProbeFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "webopt_probe_failures_total",
			Help: "Source images whose width could not be probed",
		}),
		VariantsEncoded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "webopt_variants_encoded_total",
			Help: "Variants written to disk",
		}, []string{"format"}),
		VariantFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "webopt_variant_failures_total",
			Help: "Variants that failed to encode",
		}, []string{"format"}),
		VariantBytes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "webopt_variant_bytes_total",
			Help: "Bytes written across all variants",
		}, []string{"format"}),
		EncodeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "webopt_encode_duration_seconds",
			Help:    "Duration of single variant encodes",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"format"}),
	}
}

func (m *Metrics) IncFilesProcessed() {
	m.FilesProcessed.Inc()
}

func (m *Metrics) IncProbeFailures() {
	m.ProbeFailures.Inc()
}

func (m *Metrics) ObserveVariant(format string, size int64, took time.Duration) {
	m.VariantsEncoded.WithLabelValues(format).Inc()
	m.VariantBytes.WithLabelValues(format).Add(float64(size))
	m.EncodeDuration.WithLabelValues(format).Observe(took.Seconds())
}

func (m *Metrics) IncVariantFailures(format string) {
	m.VariantFailures.WithLabelValues(format).Inc()
}

// WriteTextfile writes all metrics in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
