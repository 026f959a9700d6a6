package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the Prometheus collectors used across the service.
type Metrics struct {
	TurnsProcessed       *prometheus.CounterVec
	LLMRequests          *prometheus.CounterVec
	LLMLatency           *prometheus.HistogramVec
	TranscribeRequests   *prometheus.CounterVec
	ValidationRejections *prometheus.CounterVec
	ComplaintsFinalized  prometheus.Counter
	Errors               *prometheus.CounterVec
}

// New registers all collectors on the given registerer.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TurnsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_processed_total",
			Help:      "Turns processed, labelled by session mode at turn start.",
		}, []string{"mode"}),
		LLMRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "LLM completion requests by outcome.",
		}, []string{"outcome"}),
		LLMLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM request latency by HTTP status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		TranscribeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcribe_requests_total",
			Help:      "Audio transcription requests by outcome.",
		}, []string{"outcome"}),
		ValidationRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_rejections_total",
			Help:      "Field validator rejections by field name.",
		}, []string{"field"}),
		ComplaintsFinalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "complaints_finalized_total",
			Help:      "Complaints confirmed by the user.",
		}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Internal errors by component.",
		}, []string{"component"}),
	}

	reg.MustRegister(
		m.TurnsProcessed,
		m.LLMRequests,
		m.LLMLatency,
		m.TranscribeRequests,
		m.ValidationRejections,
		m.ComplaintsFinalized,
		m.Errors,
	)
	return m
}

// NewNop returns metrics backed by a throwaway registry, for tests.
func NewNop() *Metrics {
	return New("test", prometheus.NewRegistry())
}
