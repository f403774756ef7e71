package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "atlas_outreach"

// Metrics are shared by every worker, collectors are goroutine safe
type Metrics struct {
	EventsProcessed *prometheus.CounterVec
	EventsSelected  *prometheus.CounterVec
	SamplesFailed   *prometheus.CounterVec
	SampleDuration  *prometheus.HistogramVec
	ActiveSamples   prometheus.Gauge
}

// New registers the collectors with reg, prometheus.DefaultRegisterer when nil
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		EventsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_processed_total",
			Help:      "Events handed to the cut flow.",
		}, []string{"sample", "analysis"}),
		EventsSelected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_selected_total",
			Help:      "Events passing every cut.",
		}, []string{"sample", "analysis"}),
		SamplesFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_failed_total",
			Help:      "Samples aborted by a setup or run error.",
		}, []string{"analysis"}),
		SampleDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sample_duration_seconds",
			Help:      "Wall time of one sample.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}, []string{"analysis"}),
		ActiveSamples: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_samples",
			Help:      "Samples currently being processed.",
		}),
	}
}

func (m *Metrics) SampleStarted() {
	m.ActiveSamples.Inc()
}

// SampleFinished records one sample, failed samples only count as failures
func (m *Metrics) SampleFinished(sample, analysis string, processed, selected int, elapsed time.Duration, err error) {
	m.ActiveSamples.Dec()
	m.SampleDuration.WithLabelValues(analysis).Observe(elapsed.Seconds())

	if err != nil {
		m.SamplesFailed.WithLabelValues(analysis).Inc()
		return
	}

	m.EventsProcessed.WithLabelValues(sample, analysis).Add(float64(processed))
	m.EventsSelected.WithLabelValues(sample, analysis).Add(float64(selected))
}
