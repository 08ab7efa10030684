// Package metrics holds the Prometheus instruments for chat processing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	registry *prometheus.Registry

	Messages           *prometheus.CounterVec
	ClassifierFallback prometheus.Counter
	GenerateFallback   prometheus.Counter
	StoreFailures      prometheus.Counter
	GenerateLatency    prometheus.Histogram
	Emotions           *prometheus.CounterVec
}

// New registers the instruments on a fresh registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Messages: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mindvault_messages_total",
			Help: "Chat inputs processed, by kind (entry or command)",
		}, []string{"kind"}),

		ClassifierFallback: f.NewCounter(prometheus.CounterOpts{
			Name: "mindvault_classifier_fallbacks_total",
			Help: "Classifications that fell back to the neutral label",
		}),

		GenerateFallback: f.NewCounter(prometheus.CounterOpts{
			Name: "mindvault_generate_fallbacks_total",
			Help: "Replies replaced by the fallback message",
		}),

		StoreFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "mindvault_store_failures_total",
			Help: "Entries the memory store failed to persist",
		}),

		GenerateLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "mindvault_generate_duration_seconds",
			Help:    "Reply generation latency in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),

		Emotions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mindvault_emotions_total",
			Help: "Stored entries by emotion label",
		}, []string{"emotion"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Message(kind string) {
	if m != nil {
		m.Messages.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) ClassifyFallback() {
	if m != nil {
		m.ClassifierFallback.Inc()
	}
}

func (m *Metrics) GenerationFallback() {
	if m != nil {
		m.GenerateFallback.Inc()
	}
}

func (m *Metrics) StoreFailure() {
	if m != nil {
		m.StoreFailures.Inc()
	}
}

func (m *Metrics) Stored(emotion string) {
	if m != nil {
		m.Emotions.WithLabelValues(emotion).Inc()
	}
}

func (m *Metrics) ObserveGenerate(start time.Time) {
	if m != nil {
		m.GenerateLatency.Observe(time.Since(start).Seconds())
	}
}
