package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the safety service.
type Metrics struct {
	Verifications         *prometheus.CounterVec
	ConsentsGranted       *prometheus.CounterVec
	ConsentsRevoked       *prometheus.CounterVec
	ConsentCheckPassed    *prometheus.CounterVec
	ConsentCheckFailed    *prometheus.CounterVec
	ContentChecks         *prometheus.CounterVec
	SuspicionScore        prometheus.Histogram
	SuspicionHits         prometheus.Counter
	PanicActivations      prometheus.Counter
	StoreSaves            prometheus.Counter
	StoreSaveFailures     prometheus.Counter
	EndpointLatency       *prometheus.HistogramVec
	ClassifierLatency     prometheus.Histogram
	ClassifierUnavailable prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aegis_verifications_total",
			Help: "Total verification operations, labeled by result (cached, issued)",
		}, []string{"result"}),
		ConsentsGranted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aegis_consents_granted_total",
			Help: "Total consents granted, labeled by feature",
		}, []string{"feature"}),
		ConsentsRevoked: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aegis_consents_revoked_total",
			Help: "Total consents revoked, labeled by feature",
		}, []string{"feature"}),
		ConsentCheckPassed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aegis_consent_checks_passed_total",
			Help: "Total consent checks that passed, labeled by feature",
		}, []string{"feature"}),
		ConsentCheckFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aegis_consent_checks_failed_total",
			Help: "Total consent checks that failed, labeled by feature",
		}, []string{"feature"}),
		ContentChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "aegis_content_checks_total",
			Help: "Total content safety checks, labeled by outcome (safe, unsafe, error, skipped)",
		}, []string{"outcome"}),
		SuspicionScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "aegis_suspicion_score",
			Help:    "Distribution of computed suspicion scores",
			Buckets: []float64{0.0, 0.1, 0.3, 0.5, 0.7, 1.0, 1.5, 2.0, 3.0},
		}),
		SuspicionHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aegis_suspicion_hits_total",
			Help: "Total activity evaluations that crossed the recording threshold",
		}),
		PanicActivations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aegis_panic_activations_total",
			Help: "Total panic button activations",
		}),
		StoreSaves: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aegis_store_saves_total",
			Help: "Total successful encrypt-and-save cycles of the safety store",
		}),
		StoreSaveFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aegis_store_save_failures_total",
			Help: "Total failed encrypt-and-save cycles of the safety store",
		}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aegis_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		ClassifierLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "aegis_classifier_latency_seconds",
			Help:    "Latency of classifier inference calls in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		ClassifierUnavailable: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aegis_classifier_unavailable_total",
			Help: "Total content checks performed without a configured classifier",
		}),
	}
}

// IncrementVerifications records a verification operation outcome.
func (m *Metrics) IncrementVerifications(result string) {
	m.Verifications.WithLabelValues(result).Inc()
}

// IncrementConsentsGranted increments the consents granted counter with a feature label.
func (m *Metrics) IncrementConsentsGranted(feature string) {
	m.ConsentsGranted.WithLabelValues(feature).Inc()
}

// IncrementConsentsRevoked increments the consents revoked counter with a feature label.
func (m *Metrics) IncrementConsentsRevoked(feature string) {
	m.ConsentsRevoked.WithLabelValues(feature).Inc()
}

// IncrementConsentCheckPassed increments the passed consent check counter.
func (m *Metrics) IncrementConsentCheckPassed(feature string) {
	m.ConsentCheckPassed.WithLabelValues(feature).Inc()
}

// IncrementConsentCheckFailed increments the failed consent check counter.
func (m *Metrics) IncrementConsentCheckFailed(feature string) {
	m.ConsentCheckFailed.WithLabelValues(feature).Inc()
}

// IncrementContentChecks records a content safety check outcome.
func (m *Metrics) IncrementContentChecks(outcome string) {
	m.ContentChecks.WithLabelValues(outcome).Inc()
}

// ObserveSuspicionScore records a computed suspicion score.
func (m *Metrics) ObserveSuspicionScore(score float64) {
	m.SuspicionScore.Observe(score)
}

// IncrementSuspicionHits counts evaluations above the recording threshold.
func (m *Metrics) IncrementSuspicionHits() {
	m.SuspicionHits.Inc()
}

// IncrementPanicActivations counts panic button activations.
func (m *Metrics) IncrementPanicActivations() {
	m.PanicActivations.Inc()
}

// IncrementStoreSaves counts successful store persistence cycles.
func (m *Metrics) IncrementStoreSaves() {
	m.StoreSaves.Inc()
}

// IncrementStoreSaveFailures counts failed store persistence cycles.
func (m *Metrics) IncrementStoreSaveFailures() {
	m.StoreSaveFailures.Inc()
}

// ObserveEndpointLatency records the latency for a given endpoint.
func (m *Metrics) ObserveEndpointLatency(endpoint string, durationSeconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint).Observe(durationSeconds)
}

// ObserveClassifierLatency records the latency of a classifier call.
func (m *Metrics) ObserveClassifierLatency(durationSeconds float64) {
	m.ClassifierLatency.Observe(durationSeconds)
}

// IncrementClassifierUnavailable counts checks that ran without a classifier.
func (m *Metrics) IncrementClassifierUnavailable() {
	m.ClassifierUnavailable.Inc()
}
