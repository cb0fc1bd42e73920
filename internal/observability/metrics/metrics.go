// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "call_assessment"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Ingestion session metrics
	SessionsTotal   prometheus.Counter
	SessionsFailed  prometheus.Counter
	SessionDuration prometheus.Histogram
	UtterancesTotal prometheus.Counter

	// Topic publish metrics
	PublishTotal   *prometheus.CounterVec
	PublishErrors  *prometheus.CounterVec
	PublishLatency *prometheus.HistogramVec

	// Subscription metrics
	MessagesTotal *prometheus.CounterVec

	// Scorer metrics
	ScorerLatency *prometheus.HistogramVec
	ScorerErrors  *prometheus.CounterVec

	// Persistence metrics
	AssessmentsPersisted *prometheus.CounterVec
	TranscriptsPersisted prometheus.Counter
	StoreErrors          *prometheus.CounterVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		SessionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total number of speech sessions started",
		}),
		SessionsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_failed_total",
			Help:      "Total number of speech sessions that failed before publishing",
		}),
		SessionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Duration of speech sessions in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		}),
		UtterancesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "utterances_total",
			Help:      "Total number of utterances received from the recognizer",
		}),

		PublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_total",
			Help:      "Total number of messages published to the transcript topic",
		}, []string{"topic"}),
		PublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Total number of publish errors",
		}, []string{"topic"}),
		PublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_latency_seconds",
			Help:      "Publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),

		MessagesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Total number of messages handled per subscription by outcome",
		}, []string{"subscription", "outcome"}),

		ScorerLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scorer_latency_seconds",
			Help:      "Generative scorer call latency in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"dimension"}),
		ScorerErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scorer_errors_total",
			Help:      "Total number of generative scorer call failures",
		}, []string{"dimension"}),

		AssessmentsPersisted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_persisted_total",
			Help:      "Total number of assessment records written",
		}, []string{"dimension"}),
		TranscriptsPersisted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcripts_persisted_total",
			Help:      "Total number of transcript records written",
		}),
		StoreErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Total number of document store failures",
		}, []string{"operation"}),
	}
}

// RecordSessionStart records a new speech session starting.
func (m *Metrics) RecordSessionStart() {
	m.SessionsTotal.Inc()
}

// RecordSessionEnd records a speech session ending.
func (m *Metrics) RecordSessionEnd(success bool, durationSeconds float64) {
	m.SessionDuration.Observe(durationSeconds)
	if !success {
		m.SessionsFailed.Inc()
	}
}

// RecordUtterance records an utterance received from the recognizer.
func (m *Metrics) RecordUtterance() {
	m.UtterancesTotal.Inc()
}

// RecordPublish records a publish attempt on the transcript topic.
func (m *Metrics) RecordPublish(topic string, err error, latencySeconds float64) {
	m.PublishTotal.WithLabelValues(topic).Inc()
	m.PublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.PublishErrors.WithLabelValues(topic).Inc()
	}
}

// RecordMessage records a handled message outcome for a subscription.
// Outcome is one of "processed", "dropped", "failed".
func (m *Metrics) RecordMessage(subscription, outcome string) {
	m.MessagesTotal.WithLabelValues(subscription, outcome).Inc()
}

// RecordScorerCall records a generative scorer invocation.
func (m *Metrics) RecordScorerCall(dimension string, err error, latencySeconds float64) {
	m.ScorerLatency.WithLabelValues(dimension).Observe(latencySeconds)
	if err != nil {
		m.ScorerErrors.WithLabelValues(dimension).Inc()
	}
}

// RecordAssessmentPersisted records an assessment record written.
func (m *Metrics) RecordAssessmentPersisted(dimension string) {
	m.AssessmentsPersisted.WithLabelValues(dimension).Inc()
}

// RecordTranscriptPersisted records a transcript record written.
func (m *Metrics) RecordTranscriptPersisted() {
	m.TranscriptsPersisted.Inc()
}

// RecordStoreError records a document store failure.
func (m *Metrics) RecordStoreError(operation string) {
	m.StoreErrors.WithLabelValues(operation).Inc()
}
