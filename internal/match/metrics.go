package match

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics names as constants for consistency.
const (
	MetricMatchRequestsTotal      = "match_requests_total"
	MetricMatchCandidates         = "match_candidates"
	MetricMatchVocabularySize     = "match_vocabulary_size"
	MetricMatchRankDuration       = "match_rank_duration_seconds"
	MetricMatchValidationFailures = "match_validation_failures_total"
)

// Metrics contains Prometheus metrics for match requests.
// All operations are thread-safe.
type Metrics struct {
	requestsTotal      *prometheus.CounterVec
	candidates         prometheus.Histogram
	vocabularySize     prometheus.Histogram
	rankDuration       prometheus.Histogram
	validationFailures *prometheus.CounterVec
}

// NewMetrics creates and returns a new Metrics instance with all collectors initialized.
// The metrics are not registered; call Register to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricMatchRequestsTotal,
			Help: "Total number of ranked match requests by scoring mode",
		}, []string{"normalize", "stop_words"}),
		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricMatchCandidates,
			Help:    "Histogram of candidate users per match request",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 250, 500, 1000},
		}),
		vocabularySize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricMatchVocabularySize,
			Help:    "Histogram of distinct terms per ranked corpus",
			Buckets: prometheus.ExponentialBuckets(8, 4, 8),
		}),
		rankDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricMatchRankDuration,
			Help:    "Histogram of ranking computation duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricMatchValidationFailures,
			Help: "Total number of rejected match requests by reason",
		}, []string{"reason"}),
	}
}

// Register registers all metrics with the given registry.
// Returns an error if registration fails.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveRank records one ranking computation.
func (m *Metrics) ObserveRank(normalize, stopWords bool, candidates, vocabularySize int, seconds float64) {
	m.requestsTotal.WithLabelValues(boolLabel(normalize), boolLabel(stopWords)).Inc()
	m.candidates.Observe(float64(candidates))
	m.vocabularySize.Observe(float64(vocabularySize))
	m.rankDuration.Observe(seconds)
}

// IncValidationFailures increments the rejected request counter for reason.
func (m *Metrics) IncValidationFailures(reason string) {
	m.validationFailures.WithLabelValues(reason).Inc()
}

// Collectors returns all Prometheus collectors for testing.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.requestsTotal,
		m.candidates,
		m.vocabularySize,
		m.rankDuration,
		m.validationFailures,
	}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
